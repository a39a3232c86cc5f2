package models

// DealTier classifies how favorable an acquisition cost is relative to the
// market price.
type DealTier string

const (
	DealSteal DealTier = "steal"
	DealGood  DealTier = "good"
	DealFair  DealTier = "fair"
	DealPass  DealTier = "pass"
)

// DealRating is the result of rating a proposed cost against a market price.
// Profit may be negative when the cost exceeds the market price.
type DealRating struct {
	Tag         DealTier `json:"tag"`
	Label       string   `json:"label"`
	ProfitCents int64    `json:"profit_cents"`
	MarginPct   float64  `json:"margin_pct"`
}
