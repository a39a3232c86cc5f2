package models

// Condition is a grading of physical completeness used as the key for price
// breakdowns.
type Condition string

const (
	ConditionLoose      Condition = "loose"
	ConditionCIB        Condition = "cib"
	ConditionNew        Condition = "new"
	ConditionGraded     Condition = "graded"
	ConditionBoxOnly    Condition = "box_only"
	ConditionManualOnly Condition = "manual_only"
)

// AllConditions returns every condition tier the market source publishes.
func AllConditions() []Condition {
	return []Condition{
		ConditionLoose,
		ConditionCIB,
		ConditionNew,
		ConditionGraded,
		ConditionBoxOnly,
		ConditionManualOnly,
	}
}

// PriceSnapshot is a per-game price breakdown from the market source.
// Prices holds only the conditions the page actually reported; a fetch that
// fails entirely still produces a snapshot with empty Prices and Err set.
type PriceSnapshot struct {
	Title  string              `json:"title"`
	URL    string              `json:"url"`
	Prices map[Condition]int64 `json:"prices"`
	Err    string              `json:"error,omitempty"`
}

// LookupResult is the assembled answer for one price lookup: market prices
// plus the retailer's asking and buy prices where they could be resolved.
type LookupResult struct {
	PlatformID  string              `json:"platform_id"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	MarketURL   string              `json:"market_url"`
	RetailURL   string              `json:"retail_url,omitempty"`
	Prices      map[Condition]int64 `json:"prices"`
	RetailCents *int64              `json:"retail_cents,omitempty"`
	BuyCents    *int64              `json:"buy_cents,omitempty"`
	BuyName     string              `json:"buy_name,omitempty"`
	Source      string              `json:"source"` // "live" or "cached"
}
