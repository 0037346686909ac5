package data

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var (
	underlying = "SPY"
	expiryDate = time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
)

func newTestProvider(handler http.Handler) (*massiveDataProvider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	prov := NewMassiveDataProvider("test-key")
	prov.BaseURL = srv.URL
	return prov, srv
}

func TestMassiveGetQuote(t *testing.T) {
	prov, srv := newTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/snapshot/locale/us/markets/stocks/tickers/SPY" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"ticker": {
				"day": {"c": 581.10, "v": 1200000},
				"lastTrade": {"p": 581.39},
				"lastQuote": {"p": 581.35, "P": 581.42},
				"prevDay": {"c": 579.80}
			}
		}`)
	}))
	defer srv.Close()

	q, err := prov.GetQuote(underlying)
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if q.LastTrade != 581.39 {
		t.Fatalf("expected last trade 581.39, got %f", q.LastTrade)
	}
	if q.Bid != 581.35 || q.Ask != 581.42 {
		t.Fatalf("unexpected spread %f/%f", q.Bid, q.Ask)
	}
	if q.PrevClose != 579.80 {
		t.Fatalf("expected prev close 579.80, got %f", q.PrevClose)
	}
	if !q.Traded {
		t.Fatalf("expected Traded=true with session volume")
	}
}

func TestMassiveGetQuoteNoTradeSentinel(t *testing.T) {
	// Zero last price plus zero volume is the no-trade sentinel; it must
	// surface as Traded=false rather than a zero mark input.
	prov, srv := newTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status": "OK",
			"ticker": {
				"day": {"c": 0, "v": 0},
				"lastTrade": {"p": 0},
				"lastQuote": {"p": 49.90, "P": 50.10},
				"prevDay": {"c": 50.00}
			}
		}`)
	}))
	defer srv.Close()

	q, err := prov.GetQuote("THIN")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if q.Traded {
		t.Fatalf("expected Traded=false for a no-print session")
	}
	if q.PrevClose != 50.00 {
		t.Fatalf("expected prev close 50.00, got %f", q.PrevClose)
	}
}

func TestMassiveGetExpirationsPaginated(t *testing.T) {
	var srv *httptest.Server
	prov, srv := newTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "page2" {
			fmt.Fprint(w, `{
				"status": "OK",
				"results": [
					{"ticker": "O:SPY250214C00580000", "contract_type": "call", "strike_price": 580, "expiration_date": "2025-02-14", "underlying_ticker": "SPY"}
				],
				"next_url": ""
			}`)
			return
		}
		fmt.Fprintf(w, `{
			"status": "OK",
			"results": [
				{"ticker": "O:SPY250117C00580000", "contract_type": "call", "strike_price": 580, "expiration_date": "2025-01-17", "underlying_ticker": "SPY"},
				{"ticker": "O:SPY250117P00580000", "contract_type": "put", "strike_price": 580, "expiration_date": "2025-01-17", "underlying_ticker": "SPY"}
			],
			"next_url": "%s/v3/reference/options/contracts?cursor=page2"
		}`, srv.URL)
	}))
	defer srv.Close()

	expiries, err := prov.GetExpirations(underlying)
	if err != nil {
		t.Fatalf("GetExpirations failed: %v", err)
	}
	if len(expiries) != 2 {
		t.Fatalf("expected 2 unique expiries across pages, got %d", len(expiries))
	}
	if !expiries[0].Equal(expiryDate) {
		t.Fatalf("expected first expiry %s, got %s", expiryDate, expiries[0])
	}
	if !expiries[0].Before(expiries[1]) {
		t.Fatalf("expected sorted expiries")
	}
}

func TestMassiveGetChain(t *testing.T) {
	prov, srv := newTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("expiration_date"); got != "2025-01-17" {
			t.Fatalf("expected expiration_date filter, got %q", got)
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [
				{
					"details": {"ticker": "O:SPY250117C00580000", "contract_type": "call", "strike_price": 580, "expiration_date": "2025-01-17"},
					"last_quote": {"bid": 4.10, "ask": 4.30},
					"last_trade": {"price": 4.15},
					"day": {"volume": 1500},
					"open_interest": 9000,
					"implied_volatility": 0.18
				}
			],
			"next_url": ""
		}`)
	}))
	defer srv.Close()

	chain, err := prov.GetChain(underlying, expiryDate)
	if err != nil {
		t.Fatalf("GetChain failed: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(chain))
	}

	c := chain[0]
	if c.Type != "call" || c.Strike != 580 {
		t.Fatalf("unexpected contract %+v", c)
	}
	if c.Bid != 4.10 || c.Ask != 4.30 {
		t.Fatalf("unexpected spread %f/%f", c.Bid, c.Ask)
	}
	if !c.Expiry.Equal(expiryDate) {
		t.Fatalf("expected expiry %s, got %s", expiryDate, c.Expiry)
	}
	if !c.Traded {
		t.Fatalf("expected Traded=true for a contract with prints")
	}
}

func TestMassiveErrorStatus(t *testing.T) {
	prov, srv := newTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"status": "ERROR", "message": "unknown api key"}`)
	}))
	defer srv.Close()

	if _, err := prov.GetQuote(underlying); err == nil {
		t.Fatalf("expected error on 403 response")
	}
}
