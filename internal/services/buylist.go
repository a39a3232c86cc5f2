package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/models"
)

const (
	defaultBuylistTTL = time.Hour

	// matchThreshold is the minimum token-overlap score for a buy-price
	// match to count.
	matchThreshold = 0.5
)

// BuylistFetcher acquires the retailer buy-list. Implemented by
// DKOldiesService; the second return names the source used.
type BuylistFetcher interface {
	FetchBuylist(ctx context.Context) (models.Buylist, string)
}

// BuylistService owns the process-wide buy-list cache and the fuzzy
// matching against it. The cache refreshes at most once per TTL, except
// that an empty cache always triggers acquisition. The check-and-refresh
// sequence runs under one mutex so concurrent requests cannot race into
// redundant scrapes.
type BuylistService struct {
	fetcher BuylistFetcher
	ttl     time.Duration

	mu        sync.Mutex
	entries   models.Buylist
	keys      []string // sorted normalized keys, for deterministic matching
	fetchedAt time.Time
	source    string
}

func NewBuylistService(fetcher BuylistFetcher, ttl time.Duration) *BuylistService {
	if ttl <= 0 {
		ttl = defaultBuylistTTL
	}
	return &BuylistService{
		fetcher: fetcher,
		ttl:     ttl,
		entries: models.Buylist{},
	}
}

// Get returns the current buy-list mapping, refreshing it first when the
// cache is stale or empty.
func (s *BuylistService) Get(ctx context.Context) models.Buylist {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	return s.entries
}

func (s *BuylistService) refreshLocked(ctx context.Context) {
	if time.Since(s.fetchedAt) <= s.ttl && len(s.entries) > 0 {
		return
	}

	entries, source := s.fetcher.FetchBuylist(ctx)
	s.entries = entries
	s.fetchedAt = time.Now()
	s.source = source

	s.keys = make([]string, 0, len(entries))
	for k := range entries {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)

	metrics.BuylistRefreshTotal.WithLabelValues(source).Inc()
	metrics.BuylistSize.Set(float64(len(entries)))
	log.Printf("buylist refreshed from %s: %d entries", source, len(entries))
}

// MatchBuyPrice finds the buy-list entry whose normalized name best overlaps
// the given title. Score is |N∩K| / max(|N|, |K|): a perfect subset match
// from the larger side scores 1.0. Ties keep the first candidate in sorted
// key order. Returns nil below the confidence threshold.
func (s *BuylistService) MatchBuyPrice(ctx context.Context, gameName string) *models.BuyMatch {
	needle := TokenSet(Normalize(gameName))
	if len(needle) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	if len(s.entries) == 0 {
		return nil
	}

	var bestKey string
	var bestScore float64
	for _, key := range s.keys {
		keyTokens := TokenSet(key)
		if len(keyTokens) == 0 {
			continue
		}

		overlap := 0
		for token := range needle {
			if keyTokens[token] {
				overlap++
			}
		}

		denom := len(needle)
		if len(keyTokens) > denom {
			denom = len(keyTokens)
		}
		score := float64(overlap) / float64(denom)
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}

	metrics.MatchScore.Observe(bestScore)
	if bestScore < matchThreshold || bestKey == "" {
		return nil
	}

	entry := s.entries[bestKey]
	return &models.BuyMatch{
		Name:     entry.Name,
		BuyCents: entry.Cents,
		Score:    bestScore,
	}
}

// Status reports the cache state for the health endpoint.
func (s *BuylistService) Status() (int, string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), s.source, s.fetchedAt
}

// Start warms the cache and keeps it fresh in the background. Runs until
// the context is cancelled.
func (s *BuylistService) Start(ctx context.Context) {
	s.Get(ctx)

	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Get(ctx)
		}
	}
}
