package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Jondude1/retro-pricer/internal/models"
)

const gamePageHTML = `<html><body>
<h1 itemprop="name">Super Mario 64 <span class="console">Nintendo 64</span> Prices</h1>
<table>
<td id="used-price" data-price="31.00">$31.00</td>
<td id="complete-price">$75.50</td>
<td id="new-price">$999.99</td>
</table>
<script>
VGPC.chart_data = {"used": [[1700000000000, 2900], [1710000000000, 3150]], "cib": [[1710000000000, 7600]], "new": [], "graded": [[1710000000000, 45000]]};
</script>
</body></html>`

func TestGetPricesChartDataPreferred(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/game/nintendo-64/super-mario-64" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(gamePageHTML))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	snap := svc.GetPrices(context.Background(), "nintendo-64", "super-mario-64")
	if snap.Err != "" {
		t.Fatalf("unexpected error: %s", snap.Err)
	}
	if snap.Title != "Super Mario 64" {
		t.Errorf("Title = %q, want heading text without suffix", snap.Title)
	}

	// The embedded series wins over the HTML cells, and only the most
	// recent point of each series counts.
	want := map[models.Condition]int64{
		models.ConditionLoose:  3150,
		models.ConditionCIB:    7600,
		models.ConditionGraded: 45000,
	}
	if len(snap.Prices) != len(want) {
		t.Fatalf("Prices = %+v, want %+v", snap.Prices, want)
	}
	for cond, cents := range want {
		if snap.Prices[cond] != cents {
			t.Errorf("Prices[%s] = %d, want %d", cond, snap.Prices[cond], cents)
		}
	}
}

func TestGetPricesChartDataSkipsForeignMembers(t *testing.T) {
	// The embedded object can grow members that are not price series, and a
	// single corrupt series must not take down the others.
	page := `<html><body>
<h1>Super Mario 64 Prices</h1>
<script>
VGPC.chart_data = {"used": [[1710000000000, 2900]], "cib": [[1710000000000, 7600]], "currency": "USD", "new": {"bad": "shape"}};
</script>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	snap := svc.GetPrices(context.Background(), "nintendo-64", "super-mario-64")
	if snap.Prices[models.ConditionLoose] != 2900 {
		t.Errorf("loose = %d, want 2900", snap.Prices[models.ConditionLoose])
	}
	if snap.Prices[models.ConditionCIB] != 7600 {
		t.Errorf("cib = %d, want 7600", snap.Prices[models.ConditionCIB])
	}
	if _, ok := snap.Prices[models.ConditionNew]; ok {
		t.Error("malformed series must stay absent")
	}
}

func TestGetPricesTitleInNestedElement(t *testing.T) {
	page := `<html><body>
<h1><a href="/game/super-nintendo/chrono-trigger">Chrono Trigger</a> Prices</h1>
<td id="used-price">$118.00</td>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	snap := svc.GetPrices(context.Background(), "super-nintendo", "chrono-trigger")
	if snap.Title != "Chrono Trigger" {
		t.Errorf("Title = %q, want text inside the nested link", snap.Title)
	}
}

func TestGetPricesElementFallback(t *testing.T) {
	page := `<html><body>
<h1>Chrono Trigger Prices</h1>
<td id="used-price">$118.00</td>
<td id="complete-price" data-price="260.49">ignored</td>
<td id="new-price">N/A</td>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	snap := svc.GetPrices(context.Background(), "super-nintendo", "chrono-trigger")
	if snap.Prices[models.ConditionLoose] != 11800 {
		t.Errorf("loose = %d, want 11800", snap.Prices[models.ConditionLoose])
	}
	if snap.Prices[models.ConditionCIB] != 26049 {
		t.Errorf("cib = %d, want 26049", snap.Prices[models.ConditionCIB])
	}
	if _, ok := snap.Prices[models.ConditionNew]; ok {
		t.Error("unparseable new price should stay absent")
	}
}

func TestGetPricesFailureSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	snap := svc.GetPrices(context.Background(), "nes", "mega-man-2")
	if snap == nil {
		t.Fatal("expected a snapshot even on failure")
	}
	if snap.Err == "" {
		t.Error("expected Err to record the failure")
	}
	if snap.Title != "Mega Man 2" {
		t.Errorf("Title = %q, want humanized slug", snap.Title)
	}
	if len(snap.Prices) != 0 {
		t.Errorf("expected no prices, got %+v", snap.Prices)
	}
}

func searchTableHTML(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="games_table"><tbody>`)
	b.WriteString(`<tr><td class="title"><a href="/game/nintendo-64/super-mario-64">Super Mario 64</a></td><td class="console">Nintendo 64</td><td class="price">$31.00</td><td class="price">$76.00</td></tr>`)
	b.WriteString(`<tr><td class="title"><a href="/game/super-nintendo/chrono-trigger">Chrono Trigger</a></td><td class="console">Super Nintendo</td><td class="price">$118.00</td></tr>`)
	b.WriteString(`<tr><td class="title"><a href="/no-game-link">Bad Row</a></td></tr>`)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, `<tr><td class="title"><a href="/game/nintendo-64/filler-%d">Filler %d</a></td></tr>`, i, i)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func TestSearch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(searchTableHTML(0)))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	entries := svc.Search(context.Background(), "mario", "")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (malformed row skipped): %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Name != "Super Mario 64" || first.PlatformID != "nintendo-64" || first.Slug != "super-mario-64" {
		t.Errorf("first entry = %+v", first)
	}
	if first.LooseCents == nil || *first.LooseCents != 3100 {
		t.Errorf("first LooseCents = %v, want 3100", first.LooseCents)
	}
	if first.CIBCents == nil || *first.CIBCents != 7600 {
		t.Errorf("first CIBCents = %v, want 7600", first.CIBCents)
	}

	second := entries[1]
	if second.CIBCents != nil {
		t.Errorf("missing second price cell should leave CIBCents nil, got %v", *second.CIBCents)
	}

	// Second identical query comes from the cache.
	svc.Search(context.Background(), "mario", "")
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (cached)", requests)
	}
}

func TestSearchPlatformFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchTableHTML(0)))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	entries := svc.Search(context.Background(), "mario", "snes")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	if entries[0].PlatformID != "super-nintendo" {
		t.Errorf("PlatformID = %q, want super-nintendo", entries[0].PlatformID)
	}
}

func TestSearchTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchTableHTML(20)))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	entries := svc.Search(context.Background(), "everything", "")
	if len(entries) != 15 {
		t.Errorf("got %d entries, want cap of 15", len(entries))
	}
}

func TestSearchDoesNotCacheMissingTable(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// An OK status whose body is not a results page.
		w.Write([]byte(`<html><body>checking your browser</body></html>`))
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	if entries := svc.Search(context.Background(), "mario", ""); len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
	svc.Search(context.Background(), "mario", "")
	if requests != 2 {
		t.Errorf("requests = %d, want 2 (tableless page must not be cached)", requests)
	}
}

func TestSearchFailureReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewPriceChartingService()
	svc.baseURL = server.URL

	entries := svc.Search(context.Background(), "mario", "")
	if entries == nil || len(entries) != 0 {
		t.Errorf("want empty non-nil slice, got %v", entries)
	}
}
