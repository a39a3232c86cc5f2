package database

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jondude1/retro-pricer/internal/models"
)

// Store wraps the gorm handle with the queries the price service needs.
// Freshness policy lives here, not in the scrapers.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewStore creates a store with the given cache freshness window.
func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// GetCached returns the persisted record for (platformID, slug) if it is
// younger than the freshness window, or nil.
func (s *Store) GetCached(platformID, slug string) *models.PriceRecord {
	var rec models.PriceRecord
	cutoff := time.Now().Add(-s.ttl)
	err := s.db.Where("platform_id = ? AND slug = ? AND updated_at > ?", platformID, slug, cutoff).
		First(&rec).Error
	if err != nil {
		return nil
	}
	return &rec
}

// Save upserts a lookup result keyed by (platform id, slug).
func (s *Store) Save(result *models.LookupResult) {
	rec := recordFromResult(result)
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform_id"}, {Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "loose_cents", "cib_cents", "new_cents", "graded_cents",
			"retail_cents", "buy_cents", "buy_name", "market_url", "retail_url",
			"updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		log.Printf("Failed to save price record for %s/%s: %v", result.PlatformID, result.Slug, err)
	}
}

// LogSearch records a search query.
func (s *Store) LogSearch(query, platformKey string) {
	entry := models.SearchLog{Query: query, PlatformKey: platformKey}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log search %q: %v", query, err)
	}
}

// RecentLookups returns the most recently updated price records.
func (s *Store) RecentLookups(limit int) []models.PriceRecord {
	var recs []models.PriceRecord
	if err := s.db.Order("updated_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		log.Printf("Failed to load recent lookups: %v", err)
		return nil
	}
	return recs
}

func recordFromResult(result *models.LookupResult) *models.PriceRecord {
	rec := &models.PriceRecord{
		PlatformID:  result.PlatformID,
		Slug:        result.Slug,
		Title:       result.Title,
		RetailCents: result.RetailCents,
		BuyCents:    result.BuyCents,
		BuyName:     result.BuyName,
		MarketURL:   result.MarketURL,
		RetailURL:   result.RetailURL,
	}
	pick := func(c models.Condition) *int64 {
		if cents, ok := result.Prices[c]; ok {
			return &cents
		}
		return nil
	}
	rec.LooseCents = pick(models.ConditionLoose)
	rec.CIBCents = pick(models.ConditionCIB)
	rec.NewCents = pick(models.ConditionNew)
	rec.GradedCents = pick(models.ConditionGraded)
	return rec
}

// ResultFromRecord rebuilds a LookupResult from a cached record, marking its
// source as "cached".
func ResultFromRecord(rec *models.PriceRecord) *models.LookupResult {
	result := &models.LookupResult{
		PlatformID:  rec.PlatformID,
		Slug:        rec.Slug,
		Title:       rec.Title,
		MarketURL:   rec.MarketURL,
		RetailURL:   rec.RetailURL,
		Prices:      map[models.Condition]int64{},
		RetailCents: rec.RetailCents,
		BuyCents:    rec.BuyCents,
		BuyName:     rec.BuyName,
		Source:      "cached",
	}
	put := func(c models.Condition, cents *int64) {
		if cents != nil {
			result.Prices[c] = *cents
		}
	}
	put(models.ConditionLoose, rec.LooseCents)
	put(models.ConditionCIB, rec.CIBCents)
	put(models.ConditionNew, rec.NewCents)
	put(models.ConditionGraded, rec.GradedCents)
	return result
}
