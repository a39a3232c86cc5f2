package services

import (
	"testing"

	"github.com/Jondude1/retro-pricer/internal/models"
)

func TestRateDeal(t *testing.T) {
	tests := []struct {
		name        string
		costCents   int64
		marketCents int64
		wantTag     models.DealTier
		wantProfit  int64
		wantMargin  float64
	}{
		{"steal", 3000, 10000, models.DealSteal, 7000, 70.0},
		{"steal just below boundary", 3999, 10000, models.DealSteal, 6001, 60.0},
		{"good at 0.40 boundary", 4000, 10000, models.DealGood, 6000, 60.0},
		{"fair at 0.65 boundary", 6500, 10000, models.DealFair, 3500, 35.0},
		{"fair just below pass", 8499, 10000, models.DealFair, 1501, 15.0},
		{"pass at 0.85 boundary", 8500, 10000, models.DealPass, 1500, 15.0},
		{"pass", 9000, 10000, models.DealPass, 1000, 10.0},
		{"pass over market", 12000, 10000, models.DealPass, -2000, -20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating := RateDeal(tt.costCents, tt.marketCents)
			if rating == nil {
				t.Fatalf("RateDeal(%d, %d) = nil, want %s", tt.costCents, tt.marketCents, tt.wantTag)
			}
			if rating.Tag != tt.wantTag {
				t.Errorf("Tag = %s, want %s", rating.Tag, tt.wantTag)
			}
			if rating.ProfitCents != tt.wantProfit {
				t.Errorf("ProfitCents = %d, want %d", rating.ProfitCents, tt.wantProfit)
			}
			if rating.MarginPct != tt.wantMargin {
				t.Errorf("MarginPct = %v, want %v", rating.MarginPct, tt.wantMargin)
			}
		})
	}
}

func TestRateDealMarginRounding(t *testing.T) {
	// 3333/9999: profit 6666, margin 66.666... -> 66.7
	rating := RateDeal(3333, 9999)
	if rating == nil {
		t.Fatal("expected a rating")
	}
	if rating.MarginPct != 66.7 {
		t.Errorf("MarginPct = %v, want 66.7", rating.MarginPct)
	}
}

func TestRateDealMissingInputs(t *testing.T) {
	tests := []struct {
		name        string
		costCents   int64
		marketCents int64
	}{
		{"zero cost", 0, 10000},
		{"zero market", 5000, 0},
		{"both zero", 0, 0},
		{"negative cost", -100, 10000},
		{"negative market", 5000, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rating := RateDeal(tt.costCents, tt.marketCents); rating != nil {
				t.Errorf("RateDeal(%d, %d) = %+v, want nil", tt.costCents, tt.marketCents, rating)
			}
		})
	}
}
