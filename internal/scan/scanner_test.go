package scan

import (
	"context"
	"testing"
	"time"

	"github.com/contactkeval/option-scan/internal/data"
)

func newTestScanner(filters Filters) *Scanner {
	s := New(data.NewSyntheticProviderAt(100), filters)
	s.MaxExpirations = 2
	return s
}

// flaglessProvider serves a fixed chain whose contracts never set
// InTheMoney, the way chain snapshots without a moneyness field arrive.
type flaglessProvider struct {
	contracts []data.Contract
}

func (p *flaglessProvider) Secondary() data.Provider { return nil }

func (p *flaglessProvider) GetQuote(symbol string) (*data.Quote, error) {
	return &data.Quote{
		Symbol:    symbol,
		LastTrade: 100,
		Traded:    true,
		Bid:       99.95,
		Ask:       100.05,
		PrevClose: 99.50,
		Volume:    1000,
	}, nil
}

func (p *flaglessProvider) GetExpirations(symbol string) ([]time.Time, error) {
	return []time.Time{time.Now().UTC().AddDate(0, 0, 14)}, nil
}

func (p *flaglessProvider) GetChain(symbol string, expiry time.Time) ([]data.Contract, error) {
	out := make([]data.Contract, len(p.contracts))
	copy(out, p.contracts)
	for i := range out {
		out[i].Expiry = expiry
	}
	return out, nil
}

func TestScanProducesOrderedRows(t *testing.T) {
	s := newTestScanner(Filters{})

	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if res.Symbol != "TEST" {
		t.Fatalf("unexpected symbol %s", res.Symbol)
	}
	if res.Spot != 100 {
		t.Fatalf("expected spot 100, got %f", res.Spot)
	}
	if len(res.Calls) == 0 || len(res.Puts) == 0 {
		t.Fatalf("expected rows on both sides, got %d calls %d puts",
			len(res.Calls), len(res.Puts))
	}

	for _, rows := range [][]Row{res.Calls, res.Puts} {
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if cur.Expiration.Before(prev.Expiration) {
				t.Fatalf("rows not ordered by expiration")
			}
			if cur.Expiration.Equal(prev.Expiration) && cur.Strike < prev.Strike {
				t.Fatalf("rows not ordered by strike within expiration")
			}
		}
	}
}

func TestScanMarksAreMidpoints(t *testing.T) {
	s := newTestScanner(Filters{IncludeITM: true})

	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	for _, r := range append(res.Calls, res.Puts...) {
		expected := (r.Bid + r.Ask) / 2
		if r.Mark != expected {
			t.Fatalf("strike %f: expected mark %f, got %f", r.Strike, expected, r.Mark)
		}
	}
}

func TestScanExcludesITMByDefault(t *testing.T) {
	s := newTestScanner(Filters{})

	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	for _, r := range append(res.Calls, res.Puts...) {
		if r.InTheMoney {
			t.Fatalf("in-the-money strike %f survived the default filter", r.Strike)
		}
	}

	s = newTestScanner(Filters{IncludeITM: true})
	withITM, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(withITM.Calls) <= len(res.Calls) {
		t.Fatalf("expected more calls when in-the-money strikes are included")
	}
}

func TestScanReturnFilter(t *testing.T) {
	s := newTestScanner(Filters{
		ReturnFilter:  true,
		MinCallReturn: 7.0,
		MinPutReturn:  15.0,
	})

	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, r := range res.Calls {
		if r.AnnualizedReturn <= 7.0 {
			t.Fatalf("call with %.2f%% annualized survived the 7%% floor", r.AnnualizedReturn)
		}
	}
	for _, r := range res.Puts {
		if r.AnnualizedReturn <= 15.0 {
			t.Fatalf("put with %.2f%% annualized survived the 15%% floor", r.AnnualizedReturn)
		}
	}
}

func TestScanDerivesMoneynessWithoutProviderFlag(t *testing.T) {
	prov := &flaglessProvider{contracts: []data.Contract{
		{Symbol: "itm-call", Type: "call", Strike: 80, Bid: 20.50, Ask: 20.70, Traded: true},
		{Symbol: "otm-call", Type: "call", Strike: 120, Bid: 0.50, Ask: 0.60, Traded: true},
		{Symbol: "itm-put", Type: "put", Strike: 120, Bid: 20.20, Ask: 20.40, Traded: true},
		{Symbol: "otm-put", Type: "put", Strike: 80, Bid: 0.40, Ask: 0.50, Traded: true},
	}}

	s := New(prov, Filters{})
	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(res.Calls) != 1 || res.Calls[0].ContractSymbol != "otm-call" {
		t.Fatalf("expected only the out-of-the-money call to survive, got %+v", res.Calls)
	}
	if len(res.Puts) != 1 || res.Puts[0].ContractSymbol != "otm-put" {
		t.Fatalf("expected only the out-of-the-money put to survive, got %+v", res.Puts)
	}

	// With the filter relaxed, derived moneyness still annotates rows.
	s = New(prov, Filters{IncludeITM: true})
	res, err = s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, r := range append(res.Calls, res.Puts...) {
		wantITM := r.ContractSymbol == "itm-call" || r.ContractSymbol == "itm-put"
		if r.InTheMoney != wantITM {
			t.Fatalf("%s: expected InTheMoney=%v, got %v", r.ContractSymbol, wantITM, r.InTheMoney)
		}
	}
}

func TestScanStopsOnCancelledContext(t *testing.T) {
	s := newTestScanner(Filters{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Scan(ctx, "TEST"); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestScanRespectsMaxExpirations(t *testing.T) {
	s := newTestScanner(Filters{IncludeITM: true})
	s.MaxExpirations = 1

	res, err := s.Scan(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	seen := map[time.Time]bool{}
	for _, r := range append(res.Calls, res.Puts...) {
		seen[r.Expiration] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected rows from 1 expiration, saw %d", len(seen))
	}
}
