package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jondude1/retro-pricer/internal/database"
	"github.com/Jondude1/retro-pricer/internal/models"
	"github.com/Jondude1/retro-pricer/internal/services"
)

const recentLookupLimit = 8

type SearchHandler struct {
	market *services.PriceChartingService
	store  *database.Store
}

func NewSearchHandler(market *services.PriceChartingService, store *database.Store) *SearchHandler {
	return &SearchHandler{market: market, store: store}
}

// Search handles GET /api/search?q=&platform=
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	platformKey := strings.TrimSpace(c.Query("platform"))

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if platformKey != "" && models.MarketSourceID(platformKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}

	h.store.LogSearch(query, platformKey)
	results := h.market.Search(c.Request.Context(), query, platformKey)
	c.JSON(http.StatusOK, results)
}

// History handles GET /api/history: the most recent cached lookups.
func (h *SearchHandler) History(c *gin.Context) {
	records := h.store.RecentLookups(recentLookupLimit)
	if records == nil {
		records = []models.PriceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// Platforms handles GET /api/platforms: the fixed platform catalog.
func (h *SearchHandler) Platforms(c *gin.Context) {
	type platformInfo struct {
		Key      string `json:"key"`
		Name     string `json:"name"`
		MarketID string `json:"market_id"`
	}

	out := make([]platformInfo, 0, len(models.Platforms))
	for _, key := range models.PlatformKeys() {
		p := models.Platforms[key]
		out = append(out, platformInfo{Key: key, Name: p.Name, MarketID: p.MarketID})
	}
	c.JSON(http.StatusOK, out)
}
