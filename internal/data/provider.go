package data

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Provider supplies market data for the scanner.
//
// Implementations normalize the source's no-trade convention into the
// Traded flag: a zero or absent last price with no session volume means
// no trade printed, a real zero close with Traded=false stays a
// legitimate zero. Downstream pricing never has to guess.
type Provider interface {
	Secondary() Provider
	GetQuote(symbol string) (*Quote, error)
	GetExpirations(symbol string) ([]time.Time, error)
	GetChain(symbol string, expiry time.Time) ([]Contract, error)
}

// Quote is a normalized underlying quote for one session.
type Quote struct {
	Symbol    string
	LastTrade float64
	Traded    bool // false when no trade printed this session
	Bid       float64
	Ask       float64
	PrevClose float64
	Volume    int64
}

// Contract is one option in a chain, with its session quote attached.
type Contract struct {
	Symbol       string // OCC-style contract symbol
	Underlying   string
	Type         string // "call" or "put"
	Strike       float64
	Expiry       time.Time
	Bid          float64
	Ask          float64
	LastPrice    float64
	Traded       bool
	Volume       int64
	OpenInterest int64
	ImpliedVol   float64
	InTheMoney   bool
}

// OptionSymbolFromParts builds the OCC-style option ticker Massive
// expects: O:<root><YYMMDD><C|P><strike*1000 padded to 8 digits>.
func OptionSymbolFromParts(underlying string, expiryDate time.Time, optionType string, strike float64) string {
	expDt := expiryDate.UTC().Format("060102")
	optType := "C"
	if strings.ToLower(optionType) == "put" || strings.ToLower(optionType) == "p" {
		optType = "P"
	}
	strikeInt := int(math.Round(strike * 1000))
	strFmt := fmt.Sprintf("%08d", strikeInt)
	return fmt.Sprintf("O:%s%s%s%s", strings.ToUpper(underlying), expDt, optType, strFmt)
}
