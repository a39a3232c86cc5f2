package services

import (
	"context"
	"sync"

	"github.com/Jondude1/retro-pricer/internal/database"
	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/models"
)

// PriceService assembles a full price lookup: market prices from the price
// chart page, the retailer's asking price, and the fuzzy-matched buy price,
// persisted through the store.
type PriceService struct {
	market  *PriceChartingService
	retail  *DKOldiesService
	buylist *BuylistService
	store   *database.Store
}

func NewPriceService(market *PriceChartingService, retail *DKOldiesService, buylist *BuylistService, store *database.Store) *PriceService {
	return &PriceService{
		market:  market,
		retail:  retail,
		buylist: buylist,
		store:   store,
	}
}

// Lookup resolves prices for one catalog item. A fresh cached record short-
// circuits the scrape unless force is set. The live path never fails: each
// source degrades independently to absent fields.
func (s *PriceService) Lookup(ctx context.Context, platformID, slug, gameName, platformKey string, force bool) *models.LookupResult {
	if !force {
		if rec := s.store.GetCached(platformID, slug); rec != nil {
			metrics.PriceCacheHits.Inc()
			return database.ResultFromRecord(rec)
		}
	}
	metrics.PriceCacheMisses.Inc()

	snap := s.market.GetPrices(ctx, platformID, slug)

	// The retailer lookups are independent of each other and of the
	// market fetch result; run them together.
	var (
		wg     sync.WaitGroup
		quote  *models.RetailQuote
		match  *models.BuyMatch
		byName = gameName
	)
	if byName == "" {
		byName = snap.Title
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		quote = s.retail.GetRetailPrice(ctx, byName, models.PlatformName(platformKey))
	}()
	go func() {
		defer wg.Done()
		match = s.buylist.MatchBuyPrice(ctx, byName)
	}()
	wg.Wait()

	result := &models.LookupResult{
		PlatformID: platformID,
		Slug:       slug,
		Title:      snap.Title,
		MarketURL:  snap.URL,
		Prices:     snap.Prices,
		Source:     "live",
	}
	if quote != nil {
		result.RetailCents = &quote.PriceCents
		result.RetailURL = quote.URL
	}
	if match != nil {
		result.BuyCents = &match.BuyCents
		result.BuyName = match.Name
	}

	s.store.Save(result)
	return result
}
