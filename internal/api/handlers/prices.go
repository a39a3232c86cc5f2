package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jondude1/retro-pricer/internal/services"
)

type PriceHandler struct {
	prices *services.PriceService
}

func NewPriceHandler(prices *services.PriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// GetPrices handles GET /api/prices?platform_id=&slug=&name=&platform=&refresh=
func (h *PriceHandler) GetPrices(c *gin.Context) {
	platformID := strings.TrimSpace(c.Query("platform_id"))
	slug := strings.TrimSpace(c.Query("slug"))
	gameName := strings.TrimSpace(c.Query("name"))
	platformKey := strings.TrimSpace(c.Query("platform"))
	force := c.Query("refresh") == "1" || c.Query("refresh") == "true"

	if platformID == "" || slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform_id and slug are required"})
		return
	}

	result := h.prices.Lookup(c.Request.Context(), platformID, slug, gameName, platformKey, force)
	c.JSON(http.StatusOK, result)
}
