package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jondude1/retro-pricer/internal/services"
)

type DealHandler struct{}

func NewDealHandler() *DealHandler {
	return &DealHandler{}
}

// RateDeal handles GET /api/deal?pawn=&loose=&cib=&new=, one rating per
// supplied market tier. All amounts are integer cents.
func (h *DealHandler) RateDeal(c *gin.Context) {
	pawnCents, err := strconv.ParseInt(c.Query("pawn"), 10, 64)
	if err != nil || pawnCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pawn price in cents is required"})
		return
	}

	out := gin.H{}
	for _, tier := range []string{"loose", "cib", "new"} {
		raw := c.Query(tier)
		if raw == "" {
			continue
		}
		marketCents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if rating := services.RateDeal(pawnCents, marketCents); rating != nil {
			out[tier] = rating
		}
	}

	c.JSON(http.StatusOK, out)
}
