package models

// BuylistEntry is one record from the retailer's "what we pay you" list.
type BuylistEntry struct {
	Name  string `json:"name"`
	Cents int64  `json:"cents"`
}

// Buylist maps normalized game names to buy-price entries. Keys collide when
// two titles normalize identically; last write wins, matching the source
// page's behavior.
type Buylist map[string]BuylistEntry

// BuyMatch is a fuzzy-match hit against the buy-list.
type BuyMatch struct {
	Name     string  `json:"name"`
	BuyCents int64   `json:"buy_cents"`
	Score    float64 `json:"score"`
}
