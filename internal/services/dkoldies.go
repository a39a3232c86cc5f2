package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/models"
)

const (
	// SearchSpring site id, found in the retailer's page JS.
	dkoSiteID = "6pjfbh"

	dkoSearchURLFormat = "https://%s.a.searchspring.io/api/search/search.json"
	dkoSellPageURL     = "https://www.dkoldies.com/sell-video-games/"

	dkoRetailTimeout  = 8 * time.Second
	dkoBuylistTimeout = 20 * time.Second

	// Cloudflare interstitial marker; its presence means the scrape is blocked.
	botChallengeMarker = "just a moment"

	bundledBuylistFile = "dko_buylist.json"
)

// DKOldiesService talks to the retailer two ways: its hosted search API for
// retail asking prices, and its sell page for the buy-list. The sell page
// blocks most automated clients, so a bundled snapshot backs it up.
type DKOldiesService struct {
	retailClient  *http.Client
	buylistClient *http.Client
	searchURL     string
	sellPageURL   string
	snapshotPath  string
}

// NewDKOldiesService creates the retailer client. dataDir holds the bundled
// buy-list snapshot.
func NewDKOldiesService(dataDir string) *DKOldiesService {
	return &DKOldiesService{
		retailClient:  &http.Client{Timeout: dkoRetailTimeout},
		buylistClient: &http.Client{Timeout: dkoBuylistTimeout},
		searchURL:     fmt.Sprintf(dkoSearchURLFormat, dkoSiteID),
		sellPageURL:   dkoSellPageURL,
		snapshotPath:  filepath.Join(dataDir, bundledBuylistFile),
	}
}

// searchSpringResponse is the slice of the search API response we care
// about. Price fields arrive as either JSON numbers or formatted strings
// depending on the product, so they stay raw until picked.
type searchSpringResponse struct {
	Results []searchSpringResult `json:"results"`
}

type searchSpringResult struct {
	Name        string          `json:"name"`
	URL         string          `json:"url"`
	Price       json.RawMessage `json:"price"`
	SSSalePrice json.RawMessage `json:"ss_sale_price"`
	MSRP        json.RawMessage `json:"msrp"`
	SSPrice     json.RawMessage `json:"ss_price"`
}

// GetRetailPrice looks up the retailer's current asking price for a game.
// Returns nil on any failure or when no result carries a usable price.
func (s *DKOldiesService) GetRetailPrice(ctx context.Context, gameName, platformName string) *models.RetailQuote {
	query := strings.TrimSpace(gameName + " " + platformName)
	if query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("siteId", dkoSiteID)
	params.Set("q", query)
	params.Set("resultsFormat", "json")
	params.Set("resultsPerPage", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := s.retailClient.Do(req)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "failed").Inc()
		log.Printf("dkoldies retail search failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "failed").Inc()
		return nil
	}

	var searchResp searchSpringResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "failed").Inc()
		return nil
	}
	metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "success").Inc()

	if len(searchResp.Results) == 0 {
		return nil
	}

	first := searchResp.Results[0]
	cents, ok := firstUsablePrice(first.Price, first.SSSalePrice, first.MSRP, first.SSPrice)
	if !ok {
		return nil
	}

	return &models.RetailQuote{
		Name:       first.Name,
		PriceCents: cents,
		URL:        first.URL,
	}
}

// firstUsablePrice returns the first raw price field that parses to cents.
func firstUsablePrice(raws ...json.RawMessage) (int64, bool) {
	for _, raw := range raws {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		text := string(raw)
		if unquoted, err := strconv.Unquote(text); err == nil {
			text = unquoted
		}
		if cents, ok := ParsePrice(text); ok && cents > 0 {
			return cents, true
		}
	}
	return 0, false
}

// FetchBuylist acquires the retailer's buy-price list. It tries a live
// scrape of the sell page first; a bad status, a bot challenge, or zero
// parsed rows falls back to the bundled snapshot. The returned source is
// "live", "bundled", or "none" (empty list). Never returns an error.
func (s *DKOldiesService) FetchBuylist(ctx context.Context) (models.Buylist, string) {
	start := time.Now()
	buylist, err := s.scrapeBuylist(ctx)
	metrics.ScrapeDuration.WithLabelValues("dkoldies").Observe(time.Since(start).Seconds())

	if err == nil && len(buylist) > 0 {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "success").Inc()
		return buylist, "live"
	}
	if err != nil {
		log.Printf("live buylist fetch failed (%v), using bundled snapshot", err)
	} else {
		log.Printf("live buylist fetch yielded no rows, using bundled snapshot")
	}

	if bundled := s.loadBundledBuylist(); len(bundled) > 0 {
		return bundled, "bundled"
	}
	return models.Buylist{}, "none"
}

// scrapeBuylist parses the sell page's label/price row pairs. Only rows with
// a strictly positive price are kept; labels are normalized for the key.
func (s *DKOldiesService) scrapeBuylist(ctx context.Context) (models.Buylist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sellPageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.buylistClient.Do(req)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "failed").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "failed").Inc()
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "blocked").Inc()
		return nil, fmt.Errorf("blocked or bad status: %d", resp.StatusCode)
	}
	if strings.Contains(strings.ToLower(string(body)), botChallengeMarker) {
		metrics.ScrapeRequestsTotal.WithLabelValues("dkoldies", "blocked").Inc()
		return nil, fmt.Errorf("bot challenge page detected")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	buylist := models.Buylist{}
	doc.Find(".pd_row").Each(func(_ int, row *goquery.Selection) {
		label := row.Find(".pd_label").First()
		if label.Length() == 0 {
			label = row.Find("label").First()
		}
		price := row.Find(".pd_price").First()
		if label.Length() == 0 || price.Length() == 0 {
			return
		}

		name := strings.Join(strings.Fields(label.Text()), " ")
		priceText := strings.Map(func(r rune) rune {
			// Price cells carry up/down trend arrows.
			if r == '▲' || r == '▼' {
				return -1
			}
			return r
		}, price.Text())

		cents, ok := ParsePrice(priceText)
		if !ok || cents <= 0 {
			return
		}
		buylist[Normalize(name)] = models.BuylistEntry{Name: name, Cents: cents}
	})

	return buylist, nil
}

// loadBundledBuylist reads the committed snapshot, a flat list of
// {name, cents} records, and keys it the same way as the live scrape.
func (s *DKOldiesService) loadBundledBuylist() models.Buylist {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		log.Printf("bundled buylist load failed: %v", err)
		return models.Buylist{}
	}

	var items []models.BuylistEntry
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("bundled buylist parse failed: %v", err)
		return models.Buylist{}
	}

	buylist := models.Buylist{}
	for _, item := range items {
		buylist[Normalize(item.Name)] = item
	}
	return buylist
}
