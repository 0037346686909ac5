// Package display renders scan results to the console.
package display

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-scan/internal/scan"
)

// ResultsDisplay handles console output for one scan result.
type ResultsDisplay struct {
	res *scan.Result
}

// NewResultsDisplay creates a display handler for res.
func NewResultsDisplay(res *scan.Result) *ResultsDisplay {
	return &ResultsDisplay{res: res}
}

// Show prints the full result: header, calls table, puts table.
func (d *ResultsDisplay) Show() {
	d.showHeader()
	d.showSide("CALLS (covered call candidates)", d.res.Calls)
	fmt.Println()
	d.showSide("PUTS (cash-secured put candidates)", d.res.Puts)
	fmt.Println()
}

func (d *ResultsDisplay) showHeader() {
	fmt.Println()
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	fmt.Printf("  %s  spot=%s  scanned=%s\n",
		d.res.Symbol,
		money(d.res.Spot),
		d.res.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
}

func (d *ResultsDisplay) showSide(title string, rows []scan.Row) {
	fmt.Printf("%s\n", title)
	fmt.Println("──────────────────────────────────────────────────────────────────────────")
	if len(rows) == 0 {
		fmt.Println("(no rows after filters)")
		return
	}

	fmt.Printf("%-12s %9s %8s %8s %8s %5s %9s %9s\n",
		"expiration", "strike", "bid", "ask", "mark", "dte", "ann_ret%", "distance")
	for _, r := range rows {
		fmt.Printf("%-12s %9s %8s %8s %8s %5d %9s %9s\n",
			r.Expiration.Format("2006-01-02"),
			money(r.Strike),
			money(r.Bid),
			money(r.Ask),
			money(r.Mark),
			r.DaysToExpiry,
			money(r.AnnualizedReturn),
			money(r.Distance))
	}
}

// money rounds half-up to two decimals, so displayed marks match what a
// broker ladder would show.
func money(x float64) string {
	return decimal.NewFromFloat(x).Round(2).StringFixed(2)
}
