package services

import (
	"math"

	"github.com/Jondude1/retro-pricer/internal/models"
)

// dealTiers are evaluated in order; the first tier whose upper bound exceeds
// the cost/market ratio wins. The final tier catches everything at or above
// 0.85.
var dealTiers = []struct {
	below float64
	tag   models.DealTier
	label string
}{
	{0.40, models.DealSteal, "STEAL"},
	{0.65, models.DealGood, "GOOD DEAL"},
	{0.85, models.DealFair, "FAIR"},
	{math.Inf(1), models.DealPass, "PASS"},
}

// RateDeal classifies a proposed acquisition cost against a market price.
// Returns nil when either side is missing or zero; there is nothing to
// rate and no ratio to take.
func RateDeal(costCents, marketCents int64) *models.DealRating {
	if costCents <= 0 || marketCents <= 0 {
		return nil
	}

	ratio := float64(costCents) / float64(marketCents)
	profit := marketCents - costCents
	margin := math.Round(float64(profit)/float64(marketCents)*1000) / 10

	for _, tier := range dealTiers {
		if ratio < tier.below {
			return &models.DealRating{
				Tag:         tier.tag,
				Label:       tier.label,
				ProfitCents: profit,
				MarginPct:   margin,
			}
		}
	}
	return nil // unreachable
}
