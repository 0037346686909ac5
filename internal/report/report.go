// Package report writes scan results to disk: a per-ticker text dump,
// strike-by-expiration CSV pivots, and a JSON copy of the full result.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

// WriteJSON dumps the full scan result as indented JSON to
// <SYMBOL>_scan.json in outdir.
func WriteJSON(res *scan.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s_scan.json", res.Symbol)
	return os.WriteFile(filepath.Join(outdir, name), b, 0644)
}

// WriteText writes <SYMBOL>_option_returns.txt: both sides of the scan
// as fixed-width tables, the way a terminal dump reads.
func WriteText(res *scan.Result, outdir string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n--- Ticker: %s ---\n", res.Symbol)
	fmt.Fprintf(&b, "Spot: %.2f  Generated: %s\n\n",
		res.Spot, res.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("Calls with Annualized Returns:\n")
	writeSide(&b, res.Calls)
	b.WriteString("\n")

	b.WriteString("Puts with Annualized Returns:\n")
	writeSide(&b, res.Puts)

	name := fmt.Sprintf("%s_option_returns.txt", res.Symbol)
	return os.WriteFile(filepath.Join(outdir, name), []byte(b.String()), 0644)
}

func writeSide(b *strings.Builder, rows []scan.Row) {
	if len(rows) == 0 {
		b.WriteString("(no rows)\n")
		return
	}

	fmt.Fprintf(b, "%-12s %9s %8s %8s %8s %5s %9s %9s %8s\n",
		"expiration", "strike", "bid", "ask", "mark", "dte", "ann_ret%", "distance", "oi")
	for _, r := range rows {
		fmt.Fprintf(b, "%-12s %9.2f %8.2f %8.2f %8.2f %5d %9.2f %9.2f %8d\n",
			r.Expiration.Format("2006-01-02"),
			r.Strike, r.Bid, r.Ask, r.Mark,
			r.DaysToExpiry, r.AnnualizedReturn, r.Distance, r.OpenInterest)
	}
}

// WritePivotCSV writes <SYMBOL>_<side>_pivot.csv: strikes as rows,
// expiration dates as columns, with a (annualized return, bid) value
// pair per expiration. Duplicate cells are averaged.
func WritePivotCSV(symbol, side string, rows []scan.Row, outdir string) error {
	name := fmt.Sprintf("%s_%s_pivot.csv", symbol, side)
	f, err := os.Create(filepath.Join(outdir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	type cell struct {
		annSum, bidSum float64
		n              int
	}

	strikeSet := map[float64]bool{}
	expirySet := map[string]time.Time{}
	cells := map[string]*cell{}

	key := func(strike float64, expiry string) string {
		return fmt.Sprintf("%.8g|%s", strike, expiry)
	}

	for _, r := range rows {
		expiry := r.Expiration.Format("2006-01-02")
		strikeSet[r.Strike] = true
		expirySet[expiry] = r.Expiration

		c := cells[key(r.Strike, expiry)]
		if c == nil {
			c = &cell{}
			cells[key(r.Strike, expiry)] = c
		}
		c.annSum += r.AnnualizedReturn
		c.bidSum += r.Bid
		c.n++
	}

	strikes := make([]float64, 0, len(strikeSet))
	for s := range strikeSet {
		strikes = append(strikes, s)
	}
	sort.Float64s(strikes)

	expiries := make([]string, 0, len(expirySet))
	for e := range expirySet {
		expiries = append(expiries, e)
	}
	sort.Strings(expiries)

	// Two header rows: expiration dates, then the value name under each.
	header := []string{"strike"}
	subheader := []string{""}
	for _, e := range expiries {
		header = append(header, e, e)
		subheader = append(subheader, "annualized_return", "bid")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.Write(subheader); err != nil {
		return err
	}

	for _, strike := range strikes {
		row := []string{fmt.Sprintf("%.2f", strike)}
		for _, e := range expiries {
			c := cells[key(strike, e)]
			if c == nil {
				row = append(row, "", "")
				continue
			}
			row = append(row,
				fmt.Sprintf("%.2f", c.annSum/float64(c.n)),
				fmt.Sprintf("%.2f", c.bidSum/float64(c.n)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// WriteAll writes every output format for one result into outdir,
// creating the directory if needed.
func WriteAll(res *scan.Result, outdir string) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("create report dir %s: %w", outdir, err)
	}
	if err := WriteText(res, outdir); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	if err := WritePivotCSV(res.Symbol, "calls", res.Calls, outdir); err != nil {
		return fmt.Errorf("write calls pivot: %w", err)
	}
	if err := WritePivotCSV(res.Symbol, "puts", res.Puts, outdir); err != nil {
		return fmt.Errorf("write puts pivot: %w", err)
	}
	if err := WriteJSON(res, outdir); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
