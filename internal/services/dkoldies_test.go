package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jondude1/retro-pricer/internal/models"
)

func TestGetRetailPrice(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantQuote *models.RetailQuote
	}{
		{
			name:   "string price",
			status: http.StatusOK,
			body:   `{"results":[{"name":"Super Mario 64","url":"https://example.com/sm64","price":"39.99"}]}`,
			wantQuote: &models.RetailQuote{
				Name:       "Super Mario 64",
				PriceCents: 3999,
				URL:        "https://example.com/sm64",
			},
		},
		{
			name:   "numeric sale price preferred over msrp",
			status: http.StatusOK,
			body:   `{"results":[{"name":"Chrono Trigger","url":"https://example.com/ct","price":null,"ss_sale_price":129.95,"msrp":"199.99"}]}`,
			wantQuote: &models.RetailQuote{
				Name:       "Chrono Trigger",
				PriceCents: 12995,
				URL:        "https://example.com/ct",
			},
		},
		{
			name:   "no results",
			status: http.StatusOK,
			body:   `{"results":[]}`,
		},
		{
			name:   "first result has no usable price",
			status: http.StatusOK,
			body:   `{"results":[{"name":"Broken Listing","url":"https://example.com/x","price":"0.00"}]}`,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"results":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("q"); got != "Super Mario 64 Nintendo 64" {
					t.Errorf("query = %q, want game plus platform", got)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewDKOldiesService("testdata")
			svc.searchURL = server.URL

			quote := svc.GetRetailPrice(context.Background(), "Super Mario 64", "Nintendo 64")
			if tt.wantQuote == nil {
				if quote != nil {
					t.Fatalf("expected nil quote, got %+v", quote)
				}
				return
			}
			if quote == nil {
				t.Fatal("expected a quote")
			}
			if *quote != *tt.wantQuote {
				t.Errorf("quote = %+v, want %+v", *quote, *tt.wantQuote)
			}
		})
	}
}

const sellPageHTML = `<html><body>
<div class="pd_row"><div class="pd_label">Super Mario 64</div><div class="pd_price">$22.00 ▲</div></div>
<div class="pd_row"><label>EarthBound SNES</label><div class="pd_price">▼ $145.50</div></div>
<div class="pd_row"><div class="pd_label">Missing Price</div></div>
<div class="pd_row"><div class="pd_label">Free Listing</div><div class="pd_price">$0.00</div></div>
</body></html>`

func TestFetchBuylistLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sellPageHTML))
	}))
	defer server.Close()

	svc := NewDKOldiesService("testdata")
	svc.sellPageURL = server.URL

	buylist, source := svc.FetchBuylist(context.Background())
	if source != "live" {
		t.Fatalf("source = %q, want live", source)
	}
	if len(buylist) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(buylist), buylist)
	}

	mario, ok := buylist["super mario 64"]
	if !ok {
		t.Fatal("missing normalized mario entry")
	}
	if mario.Cents != 2200 || mario.Name != "Super Mario 64" {
		t.Errorf("mario entry = %+v", mario)
	}

	earthbound, ok := buylist["earthbound"]
	if !ok {
		t.Fatal("missing normalized earthbound entry")
	}
	if earthbound.Cents != 14550 {
		t.Errorf("earthbound cents = %d, want 14550", earthbound.Cents)
	}
}

func TestFetchBuylistFallsBackToBundled(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "bot challenge",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><title>Just a Moment...</title></html>`))
			},
		},
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "no rows",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><body>nothing here</body></html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := NewDKOldiesService("testdata")
			svc.sellPageURL = server.URL

			buylist, source := svc.FetchBuylist(context.Background())
			if source != "bundled" {
				t.Fatalf("source = %q, want bundled", source)
			}
			entry, ok := buylist["super mario bros 3"]
			if !ok {
				t.Fatalf("bundled snapshot not keyed as expected: %+v", buylist)
			}
			if entry.Cents != 1100 {
				t.Errorf("cents = %d, want 1100", entry.Cents)
			}
		})
	}
}

func TestFetchBuylistNoSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewDKOldiesService(t.TempDir())
	svc.sellPageURL = server.URL

	buylist, source := svc.FetchBuylist(context.Background())
	if source != "none" {
		t.Errorf("source = %q, want none", source)
	}
	if len(buylist) != 0 {
		t.Errorf("expected empty buylist, got %+v", buylist)
	}
}
