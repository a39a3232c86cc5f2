package models

import "time"

// PriceRecord is the persisted form of a LookupResult, keyed by the market
// source's (platform id, slug) pair.
type PriceRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PlatformID  string    `json:"platform_id" gorm:"not null;uniqueIndex:idx_platform_slug"`
	Slug        string    `json:"slug" gorm:"not null;uniqueIndex:idx_platform_slug"`
	Title       string    `json:"title"`
	LooseCents  *int64    `json:"loose_cents"`
	CIBCents    *int64    `json:"cib_cents"`
	NewCents    *int64    `json:"new_cents"`
	GradedCents *int64    `json:"graded_cents"`
	RetailCents *int64    `json:"retail_cents"`
	BuyCents    *int64    `json:"buy_cents"`
	BuyName     string    `json:"buy_name"`
	MarketURL   string    `json:"market_url"`
	RetailURL   string    `json:"retail_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"index"`
}

// SearchLog records every search query for the recent-lookups view.
type SearchLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Query       string    `json:"query"`
	PlatformKey string    `json:"platform_key"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
