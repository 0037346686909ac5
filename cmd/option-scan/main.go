package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-scan/internal/config"
	"github.com/contactkeval/option-scan/internal/data"
	"github.com/contactkeval/option-scan/internal/display"
	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/report"
	"github.com/contactkeval/option-scan/internal/scan"
)

var (
	configPath string
	verbosity  int
	tickers    []string
	provider   string
	listenAddr string
)

func main() {
	root := &cobra.Command{
		Use:   "option-scan",
		Short: "Scan option chains for covered-call and cash-secured-put yield",
		Long: "option-scan fetches option chains for stock tickers, marks every\n" +
			"contract off its quoted spread, computes annualized premium yields,\n" +
			"and writes text, CSV pivot, and JSON reports.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON config")
	root.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", -1, "log verbosity (0=error .. 3=trace)")

	scanCmd := &cobra.Command{
		Use:   "scan [tickers...]",
		Short: "Run one scan over the configured tickers and write reports",
		RunE:  runScan,
	}
	scanCmd.Flags().StringSliceVarP(&tickers, "tickers", "t", nil, "tickers to scan (overrides config)")
	scanCmd.Flags().StringVarP(&provider, "provider", "p", "", "data provider: yahoo, massive, synthetic")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scans over HTTP (GET /scan?symbol=...)",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address (host:port or :port)")
	serveCmd.Flags().StringVarP(&provider, "provider", "p", "", "data provider: yahoo, massive, synthetic")

	root.AddCommand(scanCmd, serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides, and picks a provider.
func setup(cmd *cobra.Command, args []string) (*config.Config, data.Provider, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if verbosity >= 0 {
		cfg.Verbosity = verbosity
	}
	logger.SetVerbosity(cfg.Verbosity)

	if len(args) > 0 {
		cfg.Tickers = args
	}
	if len(tickers) > 0 {
		cfg.Tickers = tickers
	}
	if provider != "" {
		cfg.Provider = provider
	}

	prov, err := chooseProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, prov, nil
}

func chooseProvider(cfg *config.Config) (data.Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "yahoo":
		return data.NewYahooDataProvider(), nil
	case "massive":
		if cfg.MassiveAPIKey == "" {
			return nil, fmt.Errorf("massive provider requires MASSIVE_API_KEY")
		}
		return data.NewMassiveDataProvider(cfg.MassiveAPIKey), nil
	case "synthetic":
		return data.NewSyntheticProvider(), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newScanner(cfg *config.Config, prov data.Provider) *scan.Scanner {
	s := scan.New(prov, scan.Filters{
		ReturnFilter:  cfg.ReturnFilter,
		MinCallReturn: cfg.CallsThreshold,
		MinPutReturn:  cfg.PutsThreshold,
		IncludeITM:    cfg.IncludeITM,
	})
	s.MaxExpirations = cfg.MaxExpirations
	if cfg.Concurrency > 0 {
		s.Concurrency = cfg.Concurrency
	}
	return s
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, prov, err := setup(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Tickers) == 0 {
		return fmt.Errorf("no tickers configured; pass them as arguments or set them in the config")
	}

	scanner := newScanner(cfg, prov)
	start := time.Now()

	for _, ticker := range cfg.Tickers {
		res, err := scanner.Scan(cmd.Context(), ticker)
		if err != nil {
			logger.Errorf("%s: %v", ticker, err)
			continue
		}

		display.NewResultsDisplay(res).Show()

		if err := report.WriteAll(res, cfg.ReportDir); err != nil {
			logger.Errorf("%s: %v", ticker, err)
		}
	}

	logger.Infof("finished %d tickers in %v, reports in %s",
		len(cfg.Tickers), time.Since(start).Round(time.Millisecond), cfg.ReportDir)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, prov, err := setup(cmd, nil)
	if err != nil {
		return err
	}

	scanner := newScanner(cfg, prov)

	mux := http.NewServeMux()
	mux.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
		if symbol == "" {
			http.Error(w, "missing symbol parameter", http.StatusBadRequest)
			return
		}
		logger.Infof("received /scan request for %s", symbol)

		res, err := scanner.Scan(r.Context(), symbol)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Infof("starting HTTP server on %s", listenAddr)
	return http.ListenAndServe(listenAddr, mux)
}
