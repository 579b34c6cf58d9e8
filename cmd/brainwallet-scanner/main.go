package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/screa/brainwallet-scanner/internal/checkpoint"
	"github.com/screa/brainwallet-scanner/internal/config"
	"github.com/screa/brainwallet-scanner/internal/index"
	logpkg "github.com/screa/brainwallet-scanner/internal/logger"
	"github.com/screa/brainwallet-scanner/internal/observability"
	"github.com/screa/brainwallet-scanner/internal/phrases"
	"github.com/screa/brainwallet-scanner/internal/report"
	"github.com/screa/brainwallet-scanner/pkg/provider"
	scannerpkg "github.com/screa/brainwallet-scanner/pkg/scanner"
	"github.com/screa/brainwallet-scanner/pkg/types"
	"github.com/screa/brainwallet-scanner/pkg/worker"
)

var (
	cfg          = config.NewConfig()
	providerList string
	logger       *logpkg.Logger
	logCloser    io.Closer
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "brainwallet-scanner",
		Short: "Concurrent brainwallet passphrase scanner",
		Long: `Scans a wordlist of base phrases, derives brainwallet keys for a bounded set
of mutations of each phrase and checks the resulting P2PKH addresses for
on-chain history. Progress is checkpointed after every phrase so a scan can be
interrupted and resumed.`,
		Run: runScanner,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.PhraseFile, "phrases", "f", "", "File with one base phrase per line (required)")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Number of concurrent lookup workers")
	flags.BoolVar(&cfg.Reset, "reset", false, "Delete checkpoint, hits and log before starting")
	flags.BoolVar(&cfg.Status, "status", false, "Print scan progress and recorded hits, then exit")
	flags.StringVar(&providerList, "providers", strings.Join(cfg.Providers, ","), "Comma separated provider rotation")
	flags.IntVar(&cfg.MaxMutations, "max-mutations", cfg.MaxMutations, "Maximum candidates generated per base phrase")
	flags.IntVar(&cfg.ErrorThreshold, "error-threshold", cfg.ErrorThreshold, "Consecutive errors before a provider is skipped")
	flags.DurationVar(&cfg.Backoff, "backoff", cfg.Backoff, "Cooldown after a provider answers HTTP 429")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout of a single provider request")
	flags.StringVar(&cfg.AddressFile, "address-file", "", "Local list of known funded addresses, checked before providers")
	flags.BoolVar(&cfg.Offline, "offline", false, "Only use --address-file, never call providers")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for checkpoint.json, hits.json and scan.log")
	flags.StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file (default: <data-dir>/scan.log)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	flags.IntVarP(&cfg.LogInterval, "log-interval", "i", cfg.LogInterval, "Logging interval in seconds (default: 5)")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty to disable)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScanner(cmd *cobra.Command, args []string) {
	cfg.Providers = config.ParseProviders(providerList)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	store := checkpoint.NewStore(cfg.CheckpointPath(), cfg.HitsPath())

	if cfg.Status {
		if err := printStatus(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Reset {
		if err := resetState(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Checkpoint, hits and log cleared.")
		if cfg.PhraseFile == "" {
			return
		}
	}

	// Setup logging
	setupLogging()
	defer logCloser.Close()

	if err := scan(store); err != nil {
		logger.Errorf("%v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func scan(store *checkpoint.Store) error {
	list, err := phrases.Load(cfg.PhraseFile)
	if err != nil {
		return err
	}

	logger.Printf("Starting brainwallet scanner with %d workers...", cfg.Workers)
	logger.Printf("Phrases: %d from %s", len(list), cfg.PhraseFile)
	logger.Printf("Source: %s", cfg.GetSourceDescription())
	logger.Printf("Max mutations per phrase: %d", cfg.MaxMutations)

	metrics := observability.NewMetrics("")
	if cfg.MetricsAddr != "" {
		go serveMetrics(metrics)
	}

	var opts []scannerpkg.Option
	opts = append(opts, scannerpkg.WithMetrics(metrics))
	if cfg.AddressFile != "" {
		idx, err := index.Load(cfg.AddressFile)
		if err != nil {
			return err
		}
		logger.Printf("Loaded %d addresses from %s", idx.Len(), cfg.AddressFile)
		opts = append(opts, scannerpkg.WithIndex(idx))
	}

	var checker worker.Checker
	if !cfg.Offline {
		providers, err := cfg.BuildProviders()
		if err != nil {
			return err
		}
		pool, err := provider.NewPool(providers,
			provider.WithErrorThreshold(cfg.ErrorThreshold),
			provider.WithRateLimitBackoff(cfg.Backoff),
			provider.WithRequestTimeout(cfg.Timeout),
			provider.WithLogger(logger),
			provider.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}
		checker = pool
	}

	scanner := scannerpkg.NewScanner(cfg, logger, store, checker, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
		case <-done:
			return
		}
		logger.Println("Received interrupt signal. Finishing current phrase...")
		scanner.Stop()
		cancel()

		// Second signal forces exit; the checkpoint on disk is still consistent
		select {
		case <-sigChan:
			logger.Println("Received second signal, exiting immediately")
			os.Exit(1)
		case <-done:
		}
	}()

	summary, err := scanner.Run(ctx, list)
	logSummary(summary)
	return err
}

func logSummary(s *types.Summary) {
	if s == nil {
		return
	}
	rate := 0.0
	if s.Duration.Seconds() > 0 {
		rate = float64(s.AddressesChecked) / s.Duration.Seconds()
	}

	if s.Interrupted {
		logger.Println("Scan stopped by user.")
	} else {
		logger.Println("Scan finished.")
	}
	logger.Printf("Phrases scanned: %d (skipped %d)", s.PhrasesScanned, s.PhrasesSkipped)
	logger.Printf("Candidates: %d, addresses: %d, unknown: %d, derivation errors: %d",
		s.CandidatesChecked, s.AddressesChecked, s.Unknown, s.DerivationErrors)
	logger.Printf("Duration: %v", s.Duration)
	logger.Printf("Rate: %.2f lookups/sec", rate)
	logger.Printf("Hits this run: %d (see %s)", len(s.Hits), cfg.HitsPath())
}

func printStatus(store *checkpoint.Store) error {
	cp, err := store.Load()
	if err != nil {
		return err
	}
	hits, err := store.LoadHits()
	if err != nil {
		return err
	}
	total := 0
	if cfg.PhraseFile != "" {
		list, err := phrases.Load(cfg.PhraseFile)
		if err != nil {
			return err
		}
		total = len(list)
	}
	return report.Status(os.Stdout, cp, hits, total)
}

func resetState(store *checkpoint.Store) error {
	if err := store.Reset(); err != nil {
		return err
	}
	if err := os.Remove(cfg.LogPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reset log: %w", err)
	}
	return nil
}

func serveMetrics(metrics *observability.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Printf("Starting metrics server on %s", cfg.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("Metrics server error: %v", err)
	}
}

func setupLogging() {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data dir: %v\n", err)
		os.Exit(1)
	}

	// Log to stdout and the log file
	l, closer, err := logpkg.OpenFile(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	logger = l
	logCloser = closer
	logger.SetVerbose(cfg.Verbose)
}
