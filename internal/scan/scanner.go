// Package scan ties a market data provider to the pricing rules and
// produces filtered, annotated option-chain rows for one underlying.
package scan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-scan/internal/data"
	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/pricing"
)

// Filters narrows a scan result to tradeable rows.
type Filters struct {
	// ReturnFilter enables the per-side minimum annualized return.
	ReturnFilter bool
	// MinCallReturn is the annualized covered-call yield floor, percent.
	MinCallReturn float64
	// MinPutReturn is the annualized cash-secured-put yield floor, percent.
	MinPutReturn float64
	// IncludeITM keeps in-the-money contracts; off by default since
	// premium-selling scans only want out-of-the-money strikes.
	IncludeITM bool
}

// Row is one option contract annotated with its derived columns.
type Row struct {
	ContractSymbol   string    `json:"contract_symbol"`
	Expiration       time.Time `json:"expiration"`
	Strike           float64   `json:"strike"`
	Bid              float64   `json:"bid"`
	Ask              float64   `json:"ask"`
	LastPrice        float64   `json:"last_price"`
	Mark             float64   `json:"mark"`
	Spot             float64   `json:"spot"`
	DaysToExpiry     int       `json:"days_to_expiry"`
	AnnualizedReturn float64   `json:"annualized_return"`
	Distance         float64   `json:"distance"`
	OpenInterest     int64     `json:"open_interest"`
	ImpliedVol       float64   `json:"implied_vol"`
	InTheMoney       bool      `json:"in_the_money"`
}

// Result is a complete scan of one underlying, split by side and
// ordered by expiration then strike.
type Result struct {
	Symbol      string    `json:"symbol"`
	Spot        float64   `json:"spot"`
	GeneratedAt time.Time `json:"generated_at"`
	Calls       []Row     `json:"calls"`
	Puts        []Row     `json:"puts"`
}

// Scanner runs chain scans against a single provider.
type Scanner struct {
	prov    data.Provider
	filters Filters

	// MaxExpirations caps how many expiration dates are fetched per
	// underlying; zero means all of them.
	MaxExpirations int

	// Concurrency bounds the parallel chain fetches. Spec'd fetch order
	// does not matter: every row is priced independently.
	Concurrency int

	// now is swappable for tests.
	now func() time.Time
}

// New constructs a Scanner over prov with the given filters.
func New(prov data.Provider, filters Filters) *Scanner {
	return &Scanner{
		prov:        prov,
		filters:     filters,
		Concurrency: 4,
		now:         time.Now,
	}
}

// Scan fetches the chain for symbol across its expirations and returns
// the annotated, filtered result.
func (s *Scanner) Scan(ctx context.Context, symbol string) (*Result, error) {
	quote, err := s.prov.GetQuote(symbol)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", symbol, err)
	}

	// Underlying mark is the spot every derived column hangs off.
	spot := pricing.Mark(pricing.Quote{
		Kind:      pricing.Equity,
		LastTrade: quote.LastTrade,
		Traded:    quote.Traded,
		Bid:       quote.Bid,
		Ask:       quote.Ask,
		PrevClose: quote.PrevClose,
	})
	if spot <= 0 {
		return nil, fmt.Errorf("scan %s: no usable spot price", symbol)
	}

	expiries, err := s.prov.GetExpirations(symbol)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", symbol, err)
	}
	if s.MaxExpirations > 0 && len(expiries) > s.MaxExpirations {
		expiries = expiries[:s.MaxExpirations]
	}

	logger.Infof("%s: scanning %d expirations, spot=%.2f", symbol, len(expiries), spot)

	// One slot per expiration keeps output ordering independent of
	// goroutine completion order.
	chains := make([][]data.Contract, len(expiries))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency())

	for i, expiry := range expiries {
		i, expiry := i, expiry
		group.Go(func() error {
			// Providers fetch without a context, so cancellation is
			// honored between fetches rather than mid-request.
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Debugf("%s: fetching chain for expiration %s",
				symbol, expiry.Format("2006-01-02"))
			chain, err := s.prov.GetChain(symbol, expiry)
			if err != nil {
				return fmt.Errorf("chain %s %s: %w",
					symbol, expiry.Format("2006-01-02"), err)
			}
			chains[i] = chain
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Symbol:      symbol,
		Spot:        spot,
		GeneratedAt: s.now().UTC(),
	}

	for i, chain := range chains {
		dte := s.daysToExpiry(expiries[i])
		for _, c := range chain {
			row, keep := s.buildRow(c, spot, dte)
			if !keep {
				continue
			}
			switch c.Type {
			case "call":
				res.Calls = append(res.Calls, row)
			case "put":
				res.Puts = append(res.Puts, row)
			}
		}
	}

	sortRows(res.Calls)
	sortRows(res.Puts)

	logger.Infof("%s: %d calls, %d puts after filters",
		symbol, len(res.Calls), len(res.Puts))
	return res, nil
}

// buildRow computes the derived columns for one contract and applies
// the filters. The second return is false when the row is filtered out.
func (s *Scanner) buildRow(c data.Contract, spot float64, dte int) (Row, bool) {
	// Moneyness is derived here against our own spot mark rather than
	// trusted from the provider: some chain snapshots carry no flag at
	// all, and the distance columns already hang off this spot.
	itm := c.InTheMoney || inTheMoney(c.Type, c.Strike, spot)
	if !s.filters.IncludeITM && itm {
		return Row{}, false
	}

	mark := pricing.Mark(pricing.Quote{
		Kind: pricing.Option,
		Bid:  c.Bid,
		Ask:  c.Ask,
	})

	var annualized, distance, floor float64
	switch c.Type {
	case "call":
		annualized = pricing.AnnualizedCallReturn(c.Bid, spot, dte)
		distance = pricing.CallDistance(c.Strike, c.Bid, spot)
		floor = s.filters.MinCallReturn
	case "put":
		annualized = pricing.AnnualizedPutReturn(c.Bid, c.Strike, dte)
		distance = pricing.PutDistance(c.Strike, c.Bid, spot)
		floor = s.filters.MinPutReturn
	default:
		return Row{}, false
	}

	if s.filters.ReturnFilter && annualized <= floor {
		return Row{}, false
	}

	return Row{
		ContractSymbol:   c.Symbol,
		Expiration:       c.Expiry,
		Strike:           c.Strike,
		Bid:              c.Bid,
		Ask:              c.Ask,
		LastPrice:        c.LastPrice,
		Mark:             mark,
		Spot:             spot,
		DaysToExpiry:     dte,
		AnnualizedReturn: annualized,
		Distance:         distance,
		OpenInterest:     c.OpenInterest,
		ImpliedVol:       c.ImpliedVol,
		InTheMoney:       itm,
	}, true
}

// inTheMoney reports whether a contract has intrinsic value at spot.
func inTheMoney(optType string, strike, spot float64) bool {
	switch optType {
	case "call":
		return strike < spot
	case "put":
		return strike > spot
	}
	return false
}

func (s *Scanner) daysToExpiry(expiry time.Time) int {
	return int(expiry.Sub(s.now()).Hours() / 24)
}

func (s *Scanner) concurrency() int {
	if s.Concurrency <= 0 {
		return 1
	}
	return s.Concurrency
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Expiration.Equal(rows[j].Expiration) {
			return rows[i].Expiration.Before(rows[j].Expiration)
		}
		return rows[i].Strike < rows[j].Strike
	})
}
