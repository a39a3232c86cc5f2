package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/models"
)

const (
	priceChartingBaseURL = "https://www.pricecharting.com"
	priceChartingTimeout = 12 * time.Second

	// The site serves a challenge page to clients without a browser identity.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxSearchResults  = 15
	searchCacheSize   = 256
	searchCacheTTL    = 15 * time.Minute
	titlePricesSuffix = " Prices"
)

// chartDataPattern locates the inline VGPC.chart_data assignment that carries
// the per-condition price history as JSON.
var chartDataPattern = regexp.MustCompile(`(?s)VGPC\.chart_data\s*=\s*(\{.*?\});`)

// chartSeries maps the embedded data's series keys to condition tiers.
var chartSeries = []struct {
	key  string
	cond models.Condition
}{
	{"used", models.ConditionLoose},
	{"cib", models.ConditionCIB},
	{"new", models.ConditionNew},
	{"graded", models.ConditionGraded},
	{"boxonly", models.ConditionBoxOnly},
	{"manualonly", models.ConditionManualOnly},
}

// PriceChartingService scrapes the market source for catalog search results
// and per-condition price breakdowns.
type PriceChartingService struct {
	client      *http.Client
	baseURL     string
	limiter     *rate.Limiter
	searchCache *expirable.LRU[string, []models.CatalogEntry]
}

func NewPriceChartingService() *PriceChartingService {
	return &PriceChartingService{
		client:  &http.Client{Timeout: priceChartingTimeout},
		baseURL: priceChartingBaseURL,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		searchCache: expirable.NewLRU[string, []models.CatalogEntry](
			searchCacheSize, nil, searchCacheTTL),
	}
}

// Search queries the market source's search endpoint and returns up to 15
// catalog entries in source order, optionally restricted to one platform.
// Any request or parse failure yields an empty slice, never an error.
func (s *PriceChartingService) Search(ctx context.Context, query, platformKey string) []models.CatalogEntry {
	cacheKey := query + "|" + platformKey
	if cached, ok := s.searchCache.Get(cacheKey); ok {
		return cached
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "videogames")
	reqURL := fmt.Sprintf("%s/search-products?%s", s.baseURL, params.Encode())

	body, err := s.get(ctx, reqURL)
	if err != nil {
		log.Printf("pricecharting search failed: %v", err)
		return []models.CatalogEntry{}
	}

	entries, ok := parseSearchResults(body, models.MarketSourceID(platformKey))
	if ok {
		s.searchCache.Add(cacheKey, entries)
	}
	return entries
}

// GetPrices fetches the full price breakdown for one game page. It always
// returns a snapshot: on failure the prices are empty, the title is
// humanized from the slug, and Err records what went wrong.
func (s *PriceChartingService) GetPrices(ctx context.Context, platformID, slug string) *models.PriceSnapshot {
	pageURL := fmt.Sprintf("%s/game/%s/%s", s.baseURL, platformID, slug)
	snap := &models.PriceSnapshot{
		Title:  models.HumanizeSlug(slug),
		URL:    pageURL,
		Prices: map[models.Condition]int64{},
	}

	body, err := s.get(ctx, pageURL)
	if err != nil {
		snap.Err = err.Error()
		return snap
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(body))

	// Primary extraction: most recent point of each embedded price series.
	if !parseChartData(body, snap.Prices) && docErr == nil {
		parsePriceElements(doc, snap.Prices)
	}

	if docErr == nil {
		if title := extractTitle(doc); title != "" {
			snap.Title = title
		}
	}

	return snap
}

// get issues one rate-limited GET with a browser identity and returns the
// response body. Non-2xx statuses are errors.
func (s *PriceChartingService) get(ctx context.Context, reqURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("pricecharting", "failed").Inc()
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ScrapeDuration.WithLabelValues("pricecharting").Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ScrapeRequestsTotal.WithLabelValues("pricecharting", "failed").Inc()
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues("pricecharting", "failed").Inc()
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	metrics.ScrapeRequestsTotal.WithLabelValues("pricecharting", "success").Inc()
	return string(body), nil
}

// parseChartData extracts prices from the embedded chart JSON. Each series is
// a time-ordered array of [timestamp, cents] points; the last point is the
// current price. The known series keys are decoded independently so an
// unexpected member or one malformed series cannot take down the rest.
// Returns false when the block is absent or no series yielded a price, so the
// caller can fall through to the HTML elements.
func parseChartData(body string, prices map[models.Condition]int64) bool {
	match := chartDataPattern.FindStringSubmatch(body)
	if match == nil {
		return false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match[1]), &raw); err != nil {
		return false
	}

	found := false
	for _, cs := range chartSeries {
		var points [][]float64
		if err := json.Unmarshal(raw[cs.key], &points); err != nil {
			continue
		}
		if len(points) == 0 {
			continue
		}
		last := points[len(points)-1]
		if len(last) < 2 {
			continue
		}
		prices[cs.cond] = int64(last[1])
		found = true
	}
	return found
}

// parsePriceElements reads the three price table cells by id. Each cell
// degrades independently: a missing or malformed cell just leaves that
// condition absent.
func parsePriceElements(doc *goquery.Document, prices map[models.Condition]int64) {
	ids := []struct {
		id   string
		cond models.Condition
	}{
		{"used-price", models.ConditionLoose},
		{"complete-price", models.ConditionCIB},
		{"new-price", models.ConditionNew},
	}

	for _, entry := range ids {
		sel := doc.Find("#" + entry.id)
		if sel.Length() == 0 {
			continue
		}
		raw, ok := sel.Attr("data-price")
		if !ok {
			raw = sel.Text()
		}
		if cents, ok := ParsePrice(raw); ok {
			prices[entry.cond] = cents
		}
	}
}

// extractTitle returns the first non-empty text fragment anywhere inside the
// page's h1, which may sit in a nested element like a link or span. Falls
// back to the heading's collapsed full text. A trailing " Prices" suffix is
// stripped either way.
func extractTitle(doc *goquery.Document) string {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return ""
	}

	title := firstTextFragment(h1.Get(0))
	if title == "" {
		title = strings.Join(strings.Fields(h1.Text()), " ")
	}
	return strings.TrimSuffix(title, titlePricesSuffix)
}

// firstTextFragment walks the subtree depth-first and returns the first
// text node with non-whitespace content.
func firstTextFragment(n *html.Node) string {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			return text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := firstTextFragment(c); text != "" {
			return text
		}
	}
	return ""
}

// parseSearchResults walks the results table. Rows whose link does not have
// the /game/{platform}/{slug} shape are skipped; the filter, when non-empty,
// keeps only rows for that market platform id. The second return is false
// when the page carried no results table at all (a challenge page served
// with an OK status, not a genuine empty result), so callers can treat it
// like a transport failure and avoid caching it.
func parseSearchResults(body, platformFilter string) ([]models.CatalogEntry, bool) {
	entries := []models.CatalogEntry{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Printf("pricecharting search parse failed: %v", err)
		return entries, false
	}

	table := doc.Find("#games_table")
	if table.Length() == 0 {
		table = doc.Find("table.games")
	}
	if table.Length() == 0 {
		log.Printf("pricecharting search returned no results table")
		return entries, false
	}

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("td.title a").First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		idx := strings.Index(href, "/game/")
		if idx < 0 {
			return
		}
		parts := strings.Split(href[idx+len("/game/"):], "/")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return
		}
		platformID, slug := parts[0], parts[1]

		if platformFilter != "" && platformID != platformFilter {
			return
		}

		platformName := strings.TrimSpace(row.Find("td.console").Text())
		if platformName == "" {
			platformName = models.HumanizeSlug(platformID)
		}

		entry := models.CatalogEntry{
			Name:         strings.TrimSpace(link.Text()),
			PlatformName: platformName,
			PlatformID:   platformID,
			Slug:         slug,
		}

		priceCells := row.Find("td.price")
		if priceCells.Length() > 0 {
			entry.LooseCents = centsPtr(priceCells.Eq(0).Text())
		}
		if priceCells.Length() > 1 {
			entry.CIBCents = centsPtr(priceCells.Eq(1).Text())
		}

		entries = append(entries, entry)
	})

	if len(entries) > maxSearchResults {
		entries = entries[:maxSearchResults]
	}
	return entries, true
}

func centsPtr(text string) *int64 {
	if cents, ok := ParsePrice(text); ok {
		return &cents
	}
	return nil
}
