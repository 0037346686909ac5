// This file contains a Massive-backed Provider implementation that
// retrieves underlying quotes, expirations, and full chain snapshots via
// Massive HTTP APIs.
//
// Design notes:
//   - Uses raw HTTP calls instead of the official Massive SDK
//   - Supports pagination on reference and snapshot endpoints
//   - Requests are single-shot: a non-2xx status is an error, callers
//     decide whether to fall back to the secondary provider
package data

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/contactkeval/option-scan/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// secondary is an optional fallback provider.
	secondary Provider
}

// massiveContract represents a single option contract
// returned by Massive's contracts reference endpoint.
type massiveContract struct {
	ContractType      string  `json:"contract_type"`
	ExpiryDate        string  `json:"expiration_date"`
	SharesPerContract int     `json:"shares_per_contract"`
	StrikePrice       float64 `json:"strike_price"`
	Ticker            string  `json:"ticker"`
	UnderlyingTicker  string  `json:"underlying_ticker"`
}

// massiveContractsResp models the paginated response
// returned by Massive's option contracts API.
type massiveContractsResp struct {
	Results   []massiveContract `json:"results"`
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	NextURL   string            `json:"next_url"`
}

// massiveChainResp models the paginated per-underlying option chain
// snapshot response.
type massiveChainResp struct {
	Results []struct {
		Details struct {
			Ticker       string  `json:"ticker"`
			ContractType string  `json:"contract_type"`
			StrikePrice  float64 `json:"strike_price"`
			ExpiryDate   string  `json:"expiration_date"`
		} `json:"details"`
		LastQuote struct {
			Bid float64 `json:"bid"`
			Ask float64 `json:"ask"`
		} `json:"last_quote"`
		LastTrade struct {
			Price float64 `json:"price"`
		} `json:"last_trade"`
		Day struct {
			Volume float64 `json:"volume"`
		} `json:"day"`
		OpenInterest float64 `json:"open_interest"`
		ImpliedVol   float64 `json:"implied_volatility"`
	} `json:"results"`
	Status  string `json:"status"`
	NextURL string `json:"next_url"`
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// It initializes an HTTP client with sensible defaults for timeouts,
// connection pooling, HTTP/2 support, and gzip decompression.
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL: "https://api.massive.com",
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetQuote retrieves the underlying equity snapshot for symbol.
//
// Massive reports a zero last-trade price together with zero session
// volume on days without prints; both are required before the quote is
// marked Traded, so a genuine zero previous close survives untouched.
func (massiveDataProv *massiveDataProvider) GetQuote(symbol string) (*Quote, error) {
	logger.Debugf("quote snapshot request: %s", symbol)

	reqURL := fmt.Sprintf(
		"%s/v2/snapshot/locale/us/markets/stocks/tickers/%s?apiKey=%s",
		massiveDataProv.BaseURL, symbol, massiveDataProv.APIKey,
	)

	body, err := massiveDataProv.get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("massive quote snapshot: %w", err)
	}

	var resp struct {
		Ticker struct {
			Day struct {
				Close  float64 `json:"c"`
				Volume float64 `json:"v"`
			} `json:"day"`
			LastTrade struct {
				Price float64 `json:"p"`
			} `json:"lastTrade"`
			LastQuote struct {
				Bid float64 `json:"p"`
				Ask float64 `json:"P"`
			} `json:"lastQuote"`
			PrevDay struct {
				Close float64 `json:"c"`
			} `json:"prevDay"`
		} `json:"ticker"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode quote snapshot: %w", err)
	}

	tick := resp.Ticker
	out := &Quote{
		Symbol:    symbol,
		LastTrade: tick.LastTrade.Price,
		Traded:    tick.Day.Volume > 0 && tick.LastTrade.Price > 0,
		Bid:       tick.LastQuote.Bid,
		Ask:       tick.LastQuote.Ask,
		PrevClose: tick.PrevDay.Close,
		Volume:    int64(tick.Day.Volume),
	}

	logger.Tracef("quote %s last=%.2f bid=%.2f ask=%.2f close=%.2f",
		symbol, out.LastTrade, out.Bid, out.Ask, out.PrevClose)

	return out, nil
}

// GetExpirations returns the sorted unique expiration dates of all
// listed contracts on symbol, collected from the paginated reference
// contracts endpoint.
func (massiveDataProv *massiveDataProvider) GetExpirations(symbol string) ([]time.Time, error) {
	logger.Debugf("expirations request: %s", symbol)

	base, err := url.Parse(massiveDataProv.BaseURL + "/v3/reference/options/contracts")
	if err != nil {
		return nil, err
	}

	query := base.Query()
	query.Set("underlying_ticker", symbol)
	query.Set("limit", "1000")
	query.Set("apiKey", massiveDataProv.APIKey)
	base.RawQuery = query.Encode()

	expiryMap := map[string]time.Time{}

	// Handle pagination
	reqURL := base.String()
	for reqURL != "" {
		logger.Tracef("contracts request URL: %s", reqURL)

		body, err := massiveDataProv.get(reqURL)
		if err != nil {
			return nil, fmt.Errorf("massive contracts: %w", err)
		}

		var massiveResp massiveContractsResp
		if err := json.Unmarshal(body, &massiveResp); err != nil {
			return nil, fmt.Errorf("decode contracts: %w", err)
		}

		for _, result := range massiveResp.Results {
			t, err := time.Parse("2006-01-02", result.ExpiryDate)
			if err != nil {
				continue // skip malformed expiry dates
			}
			expiryMap[result.ExpiryDate] = t
		}

		reqURL = massiveResp.NextURL
	}

	if len(expiryMap) == 0 {
		return nil, fmt.Errorf("no options data available for %s", symbol)
	}

	expiries := make([]time.Time, 0, len(expiryMap))
	for _, dt := range expiryMap {
		expiries = append(expiries, dt)
	}
	sort.Slice(expiries, func(i, j int) bool {
		return expiries[i].Before(expiries[j])
	})

	logger.Tracef("resolved %d unique expiries for %s", len(expiries), symbol)
	return expiries, nil
}

// GetChain retrieves the chain snapshot for symbol on the given expiry,
// following pagination until the chain is complete.
func (massiveDataProv *massiveDataProvider) GetChain(symbol string, expiry time.Time) ([]Contract, error) {
	logger.Debugf("chain snapshot request: %s expiry=%s",
		symbol, expiry.Format("2006-01-02"))

	base, err := url.Parse(massiveDataProv.BaseURL + "/v3/snapshot/options/" + symbol)
	if err != nil {
		return nil, err
	}

	query := base.Query()
	if !expiry.IsZero() {
		query.Set("expiration_date", expiry.Format("2006-01-02"))
	}
	query.Set("limit", "250")
	query.Set("apiKey", massiveDataProv.APIKey)
	base.RawQuery = query.Encode()

	out := []Contract{}

	reqURL := base.String()
	for reqURL != "" {
		logger.Tracef("chain request URL: %s", reqURL)

		body, err := massiveDataProv.get(reqURL)
		if err != nil {
			return nil, fmt.Errorf("massive chain snapshot: %w", err)
		}

		var chainResp massiveChainResp
		if err := json.Unmarshal(body, &chainResp); err != nil {
			return nil, fmt.Errorf("decode chain snapshot: %w", err)
		}

		for _, result := range chainResp.Results {
			t, err := time.Parse("2006-01-02", result.Details.ExpiryDate)
			if err != nil {
				continue // skip malformed expiry dates
			}

			out = append(out, Contract{
				Symbol:       result.Details.Ticker,
				Underlying:   symbol,
				Type:         result.Details.ContractType,
				Strike:       result.Details.StrikePrice,
				Expiry:       t,
				Bid:          result.LastQuote.Bid,
				Ask:          result.LastQuote.Ask,
				LastPrice:    result.LastTrade.Price,
				Traded:       result.LastTrade.Price > 0 && result.Day.Volume > 0,
				Volume:       int64(result.Day.Volume),
				OpenInterest: int64(result.OpenInterest),
				ImpliedVol:   result.ImpliedVol,
				// The snapshot carries no moneyness flag; the scanner
				// derives it from strike vs its own spot mark.
				InTheMoney: false,
			})
		}

		reqURL = chainResp.NextURL
	}

	logger.Tracef("received %d contracts for %s", len(out), symbol)
	return out, nil
}

// get executes a single GET request and returns the response body.
// There is deliberately no retry or backoff here; a rate-limited or
// failed request surfaces as an error.
func (massiveDataProv *massiveDataProvider) get(reqURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+massiveDataProv.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "massive-client/1.0")

	resp, err := massiveDataProv.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if resp.StatusCode != http.StatusOK {
		var dbg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &dbg)

		logger.Errorf("massive API error status=%d message=%s",
			resp.StatusCode, dbg.Message)
		return nil, fmt.Errorf("massive returned status %d: %s",
			resp.StatusCode, dbg.Message)
	}

	return body, nil
}
