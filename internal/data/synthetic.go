package data

import (
	"fmt"
	"time"
)

// synthDataProvider implements Data Provider generating synthetic chains.
// Output is fully deterministic so tests can assert on it, and offline
// runs produce stable reports.
type synthDataProvider struct {
	secondary Provider

	// Spot anchors the generated chain. Zero means the 100.00 default.
	Spot float64
}

func NewSyntheticProvider() Provider { return &synthDataProvider{} }

// NewSyntheticProviderAt returns a synthetic provider anchored at spot.
func NewSyntheticProviderAt(spot float64) Provider {
	return &synthDataProvider{Spot: spot}
}

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return synthDataProv.secondary
}

func (synthDataProv *synthDataProvider) spot() float64 {
	if synthDataProv.Spot > 0 {
		return synthDataProv.Spot
	}
	return 100.0
}

func (synthDataProv *synthDataProvider) GetQuote(symbol string) (*Quote, error) {
	if synthDataProv.secondary != nil {
		return synthDataProv.secondary.GetQuote(symbol)
	}
	spot := synthDataProv.spot()
	return &Quote{
		Symbol:    symbol,
		LastTrade: spot,
		Traded:    true,
		Bid:       spot - 0.05,
		Ask:       spot + 0.05,
		PrevClose: spot - 0.50,
		Volume:    1_000_000,
	}, nil
}

func (synthDataProv *synthDataProvider) GetExpirations(symbol string) ([]time.Time, error) {
	if synthDataProv.secondary != nil {
		return synthDataProv.secondary.GetExpirations(symbol)
	}
	// Next three weekly expirations from today, on date boundaries.
	base := time.Now().UTC().Truncate(24 * time.Hour)
	return []time.Time{
		base.AddDate(0, 0, 7),
		base.AddDate(0, 0, 14),
		base.AddDate(0, 0, 28),
	}, nil
}

// GetChain generates a chain of strikes bracketing spot in 5-point
// steps. Premiums are intrinsic value plus a flat time value, quoted
// with a fixed 0.10 spread; no randomness.
func (synthDataProv *synthDataProvider) GetChain(symbol string, expiry time.Time) ([]Contract, error) {
	if synthDataProv.secondary != nil {
		return synthDataProv.secondary.GetChain(symbol, expiry)
	}
	if expiry.IsZero() {
		return nil, fmt.Errorf("synthetic provider requires an explicit expiry")
	}

	spot := synthDataProv.spot()
	var out []Contract

	for strike := spot - 20; strike <= spot+20; strike += 5 {
		callIntrinsic := spot - strike
		if callIntrinsic < 0 {
			callIntrinsic = 0
		}
		putIntrinsic := strike - spot
		if putIntrinsic < 0 {
			putIntrinsic = 0
		}

		callBid := callIntrinsic + 1.50
		putBid := putIntrinsic + 1.20

		out = append(out, Contract{
			Symbol:       OptionSymbolFromParts(symbol, expiry, "call", strike),
			Underlying:   symbol,
			Type:         "call",
			Strike:       strike,
			Expiry:       expiry,
			Bid:          callBid,
			Ask:          callBid + 0.10,
			LastPrice:    callBid + 0.05,
			Traded:       true,
			Volume:       100,
			OpenInterest: 500,
			ImpliedVol:   0.25,
			InTheMoney:   strike < spot,
		}, Contract{
			Symbol:       OptionSymbolFromParts(symbol, expiry, "put", strike),
			Underlying:   symbol,
			Type:         "put",
			Strike:       strike,
			Expiry:       expiry,
			Bid:          putBid,
			Ask:          putBid + 0.10,
			LastPrice:    putBid + 0.05,
			Traded:       true,
			Volume:       100,
			OpenInterest: 500,
			ImpliedVol:   0.25,
			InTheMoney:   strike > spot,
		})
	}

	return out, nil
}
