// Package data provides market data provider implementations.
//
// This file contains a Yahoo Finance backed Provider built on the
// piquette/finance-go client. Yahoo needs no API key, which makes it the
// default source for interactive use.
package data

import (
	"fmt"
	"sort"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/options"
	"github.com/piquette/finance-go/quote"

	"github.com/contactkeval/option-scan/internal/logger"
)

// yahooDataProvider implements the Provider interface using Yahoo Finance.
type yahooDataProvider struct {
	secondary Provider
}

// NewYahooDataProvider constructs a Yahoo-backed data provider.
func NewYahooDataProvider() Provider {
	logger.Infof("initializing Yahoo data provider")
	return &yahooDataProvider{}
}

// Secondary returns the configured secondary Provider, if any.
func (yahooDataProv *yahooDataProvider) Secondary() Provider {
	return yahooDataProv.secondary
}

// GetQuote fetches the underlying equity quote for symbol.
//
// Yahoo always reports a RegularMarketPrice, including on sessions with
// no prints, so the no-trade sentinel is resolved here from session
// volume: zero volume means Traded=false and the previous close becomes
// the fallback for marking.
func (yahooDataProv *yahooDataProvider) GetQuote(symbol string) (*Quote, error) {
	logger.Debugf("quote request: %s", symbol)

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	out := &Quote{
		Symbol:    symbol,
		LastTrade: q.RegularMarketPrice,
		Traded:    q.RegularMarketVolume > 0,
		Bid:       q.Bid,
		Ask:       q.Ask,
		PrevClose: q.RegularMarketPreviousClose,
		Volume:    int64(q.RegularMarketVolume),
	}

	logger.Tracef("quote %s last=%.2f bid=%.2f ask=%.2f close=%.2f vol=%d",
		symbol, out.LastTrade, out.Bid, out.Ask, out.PrevClose, out.Volume)

	return out, nil
}

// GetExpirations returns the available option expiration dates for
// symbol, sorted ascending. The dates come from the chain metadata of
// the nearest expiration, which Yahoo populates on the first page.
func (yahooDataProv *yahooDataProvider) GetExpirations(symbol string) ([]time.Time, error) {
	logger.Debugf("expirations request: %s", symbol)

	iter := options.GetStraddle(symbol)

	// Meta is only populated after the iterator has fetched a page.
	iter.Next()
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch option meta for %s: %w", symbol, err)
	}

	meta := iter.Meta()
	if meta == nil || len(meta.AllExpirationDates) == 0 {
		return nil, fmt.Errorf("no options data available for %s", symbol)
	}

	out := make([]time.Time, 0, len(meta.AllExpirationDates))
	for _, ts := range meta.AllExpirationDates {
		out = append(out, time.Unix(int64(ts), 0).UTC())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	logger.Tracef("resolved %d expirations for %s", len(out), symbol)
	return out, nil
}

// GetChain returns all contracts for symbol expiring on expiry. A zero
// expiry requests the nearest expiration.
func (yahooDataProv *yahooDataProvider) GetChain(symbol string, expiry time.Time) ([]Contract, error) {
	logger.Debugf("chain request: %s expiry=%s", symbol, expiry.Format("2006-01-02"))

	params := &options.Params{UnderlyingSymbol: symbol}
	if !expiry.IsZero() {
		params.Expiration = datetime.New(&expiry)
	}

	iter := options.GetStraddleP(params)

	var out []Contract
	for iter.Next() {
		straddle := iter.Straddle()
		if straddle == nil {
			continue
		}
		if straddle.Call != nil {
			out = append(out, contractFromYahoo(symbol, "call", straddle.Call))
		}
		if straddle.Put != nil {
			out = append(out, contractFromYahoo(symbol, "put", straddle.Put))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch chain for %s %s: %w",
			symbol, expiry.Format("2006-01-02"), err)
	}

	logger.Tracef("received %d contracts for %s", len(out), symbol)
	return out, nil
}

// contractFromYahoo normalizes one Yahoo option contract. Yahoo reports
// a zero LastPrice for contracts that never traded, so that sentinel is
// folded into Traded here.
func contractFromYahoo(underlying, optType string, c *finance.Contract) Contract {
	return Contract{
		Symbol:       c.Symbol,
		Underlying:   underlying,
		Type:         optType,
		Strike:       c.Strike,
		Expiry:       time.Unix(int64(c.Expiration), 0).UTC(),
		Bid:          c.Bid,
		Ask:          c.Ask,
		LastPrice:    c.LastPrice,
		Traded:       c.LastPrice > 0 && c.Volume > 0,
		Volume:       int64(c.Volume),
		OpenInterest: int64(c.OpenInterest),
		ImpliedVol:   c.ImpliedVolatility,
		InTheMoney:   c.InTheMoney,
	}
}
