package pricing

// Kind identifies the class of instrument a Quote describes.
type Kind int

const (
	// Equity is a stock or ETF underlying.
	Equity Kind = iota
	// Option is a single option contract.
	Option
)

// Quote carries the session prices needed to mark one instrument.
//
// Traded reports whether any trade printed during the session. Data
// providers that signal a no-trade session with a zero or absent last
// price must normalize that to Traded=false before calling Mark; the
// calculator itself never inspects LastTrade when Traded is false, so a
// legitimate zero price cannot be confused with the sentinel here.
type Quote struct {
	Kind      Kind
	LastTrade float64 // meaningful only when Traded is true
	Traded    bool
	Bid       float64
	Ask       float64
	PrevClose float64 // prior settlement, equity fallback
}

// Mark returns the mark price for q.
//
// Options are always marked at the midpoint of the quoted spread. An
// equity marks at the prior close when no trade printed this session;
// otherwise the last trade is clamped into [Bid, Ask], with both
// boundaries inclusive (a print exactly at the bid or ask passes
// through unchanged).
//
// Mark is a pure function: no side effects, no I/O, no error path.
// Inputs are assumed valid (Bid <= Ask, prices >= 0); validation is the
// ingestion layer's job, and violated preconditions yield a defined but
// meaningless value rather than an error.
func Mark(q Quote) float64 {
	if q.Kind == Option {
		return (q.Bid + q.Ask) / 2
	}

	if !q.Traded {
		return q.PrevClose
	}

	switch {
	case q.LastTrade < q.Bid:
		return q.Bid
	case q.LastTrade > q.Ask:
		return q.Ask
	}
	return q.LastTrade
}
