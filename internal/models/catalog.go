package models

// CatalogEntry is one market-source search result. The (PlatformID, Slug)
// pair is the stable external key for the game's price page.
type CatalogEntry struct {
	Name         string `json:"name"`
	PlatformName string `json:"platform_name"`
	PlatformID   string `json:"platform_id"`
	Slug         string `json:"slug"`
	LooseCents   *int64 `json:"loose_cents"`
	CIBCents     *int64 `json:"cib_cents"`
}

// RetailQuote is a retailer's current asking price for a game.
type RetailQuote struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	URL        string `json:"url"`
}
