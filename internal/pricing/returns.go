package pricing

import "math"

// Annualized Return = (premium collected / capital at risk) * (365 / holding period)
//
// The bid is used as the targeted premium throughout: it is the price a
// seller can actually collect without waiting for a fill.

// AnnualizedCallReturn returns the annualized covered-call yield, as a
// percentage. Capital at risk for a covered call is the stock itself, so
// the return is premium over spot scaled to a year.
//
// A non-positive holding period or zero spot yields 0 rather than a
// non-finite value.
func AnnualizedCallReturn(bid, spot float64, daysToExpiry int) float64 {
	if daysToExpiry <= 0 {
		return 0
	}
	return finite(bid / spot * 365 / float64(daysToExpiry) * 100)
}

// AnnualizedPutReturn returns the annualized cash-secured-put yield, as
// a percentage. Capital reserved for a cash-secured put is the strike
// less the premium collected.
func AnnualizedPutReturn(bid, strike float64, daysToExpiry int) float64 {
	if daysToExpiry <= 0 {
		return 0
	}
	return finite(bid / (strike - bid) * 365 / float64(daysToExpiry) * 100)
}

// CallDistance returns how far, in percent of spot, the stock must move
// before a covered call's strike plus premium is breached.
func CallDistance(strike, bid, spot float64) float64 {
	return finite((strike + bid - spot) / spot * 100)
}

// PutDistance returns the cushion between spot and a put's effective
// cost basis (strike less premium), as a fraction of spot.
func PutDistance(strike, bid, spot float64) float64 {
	return finite((spot - bid - strike) / spot)
}

// finite clamps Inf and NaN to 0, e.g. for options with zero capital at
// risk.
func finite(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}
	return x
}
