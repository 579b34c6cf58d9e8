// Package scanner coordinates a brainwallet scan: it walks the phrase list,
// fans candidate lookups out to workers and checkpoints after every phrase.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/screa/brainwallet-scanner/internal/checkpoint"
	"github.com/screa/brainwallet-scanner/internal/config"
	"github.com/screa/brainwallet-scanner/internal/crypto"
	"github.com/screa/brainwallet-scanner/internal/index"
	"github.com/screa/brainwallet-scanner/internal/logger"
	"github.com/screa/brainwallet-scanner/internal/observability"
	"github.com/screa/brainwallet-scanner/pkg/mutate"
	"github.com/screa/brainwallet-scanner/pkg/provider"
	"github.com/screa/brainwallet-scanner/pkg/types"
	"github.com/screa/brainwallet-scanner/pkg/worker"
)

// Scanner provides phrase-by-phrase scan coordination
type Scanner struct {
	config    *config.Config
	logger    *logger.Logger
	store     *checkpoint.Store
	checker   worker.Checker
	index     *index.Index
	metrics   *observability.Metrics
	generator *mutate.Generator
	now       func() time.Time

	attempts   int64 // addresses looked up
	candidates int64
	hits       int64

	done chan bool
	once sync.Once
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIndex answers lookups from a local address index first.
func WithIndex(idx *index.Index) Option {
	return func(s *Scanner) {
		s.index = idx
	}
}

// WithMetrics records scan progress on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// NewScanner creates a new scanner instance. checker may be nil for an
// offline scan against the local index.
func NewScanner(cfg *config.Config, log *logger.Logger, store *checkpoint.Store, checker worker.Checker, opts ...Option) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Scanner{
		config:    cfg,
		logger:    log,
		store:     store,
		checker:   checker,
		generator: mutate.NewGenerator(cfg.MaxMutations),
		now:       time.Now,
		done:      make(chan bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// phraseResult aggregates the outcome of one base phrase
type phraseResult struct {
	candidates       int64
	addresses        int64
	unknown          int64
	derivationErrors int64
	hits             []types.Hit
}

// Run scans phrases in order, skipping those already completed in the
// checkpoint. Stop and ctx cancellation take effect between phrases; the
// phrase in flight always finishes and is persisted. A persistence failure
// stops the scan and is returned along with the partial summary.
func (s *Scanner) Run(ctx context.Context, phrases []string) (*types.Summary, error) {
	start := time.Now()
	summary := &types.Summary{}

	cp, err := s.store.Load()
	if err != nil {
		return summary, fmt.Errorf("load checkpoint: %w", err)
	}
	if cp.StartedAt.IsZero() {
		cp.StartedAt = s.now()
	}
	if len(cp.CompletedBasePhrases) > 0 {
		s.logger.Printf("Resuming: %d phrases already completed, index %d, %d candidates checked",
			len(cp.CompletedBasePhrases), cp.CurrentIndex, cp.TotalChecked)
	}

	// Start periodic logging if verbose mode is enabled
	var logTicker *time.Ticker
	var logDone chan bool
	if s.config.Verbose && s.config.LogInterval > 0 {
		interval := time.Duration(s.config.LogInterval) * time.Second
		logTicker = time.NewTicker(interval)
		logDone = make(chan bool)
		go s.periodicLogger(logTicker, logDone, start)

		s.logger.Printf("Scan started with %d workers, logging every %d seconds...",
			s.config.Workers, s.config.LogInterval)
	}
	defer func() {
		if logTicker != nil {
			logTicker.Stop()
			close(logDone)
		}
		summary.Duration = time.Since(start)
	}()

	// lookups of the current phrase survive cancellation
	workCtx := context.WithoutCancel(ctx)

	for i, phrase := range phrases {
		if s.stopped(ctx) {
			summary.Interrupted = true
			s.logger.Printf("Stop requested, %d of %d phrases processed", i, len(phrases))
			break
		}
		if cp.CompletedBasePhrases.Has(phrase) {
			summary.PhrasesSkipped++
			continue
		}

		res := s.scanPhrase(workCtx, phrase)

		if err := s.store.AppendHits(res.hits); err != nil {
			return summary, fmt.Errorf("phrase %d: %w", i, err)
		}
		cp.MarkCompleted(phrase, i, res.candidates, int64(len(res.hits)), s.now())
		if err := s.store.Save(cp); err != nil {
			return summary, fmt.Errorf("phrase %d: %w", i, err)
		}

		summary.PhrasesScanned++
		summary.CandidatesChecked += res.candidates
		summary.AddressesChecked += res.addresses
		summary.Unknown += res.unknown
		summary.DerivationErrors += res.derivationErrors
		summary.Hits = append(summary.Hits, res.hits...)
		s.metrics.ObservePhrase(cp.CurrentIndex, res.candidates, res.addresses, res.unknown, res.derivationErrors, len(res.hits))

		s.logger.Debugf("Phrase %d/%d %q: %d candidates, %d addresses, %d unknown, %d hits",
			i+1, len(phrases), phrase, res.candidates, res.addresses, res.unknown, len(res.hits))
	}

	return summary, nil
}

// scanPhrase runs every mutation of phrase through the worker pool and
// returns once all lookups have finished.
func (s *Scanner) scanPhrase(ctx context.Context, phrase string) phraseResult {
	var res phraseResult

	candidates := s.generator.Generate(phrase)
	tasks := make([]types.Task, 0, 2*len(candidates))
	for _, c := range candidates {
		pair, err := crypto.Derive(c)
		if err != nil {
			res.derivationErrors++
			s.logger.Warnf("skipping candidate of %q: %v", phrase, err)
			continue
		}
		res.candidates++
		for _, t := range []types.AddressType{types.AddressCompressed, types.AddressUncompressed} {
			tasks = append(tasks, types.Task{
				BasePhrase:  phrase,
				Pair:        pair,
				AddressType: t,
				Address:     pair.Address(t),
			})
		}
	}
	if len(tasks) == 0 {
		return res
	}

	taskCh := make(chan types.Task, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	results := make(chan types.WorkerResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < min(s.config.Workers, len(tasks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := worker.NewWorker(s.checker, s.index, &s.attempts)
			w.Run(ctx, taskCh, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		res.addresses++
		switch {
		case r.Result.Unknown():
			res.unknown++
			s.logger.Debugf("lookup of %s failed: %v", r.Task.Address, r.Result.Err)
		case r.Result.IsHit():
			hit := r.Hit(s.now())
			res.hits = append(res.hits, hit)
			atomic.AddInt64(&s.hits, 1)
			s.logger.Printf("HIT: %q -> %s (%s) txs=%d received=%d balance=%d via %s",
				hit.Candidate, hit.Address, hit.AddressType, hit.TxCount,
				hit.ReceivedSatoshis, hit.BalanceSatoshis, hit.Provider)
		}
	}
	atomic.AddInt64(&s.candidates, res.candidates)

	sort.SliceStable(res.hits, func(a, b int) bool {
		if res.hits[a].Candidate != res.hits[b].Candidate {
			return res.hits[a].Candidate < res.hits[b].Candidate
		}
		return res.hits[a].AddressType < res.hits[b].AddressType
	})
	return res
}

func (s *Scanner) stopped(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Stop requests the scan to end after the current phrase
func (s *Scanner) Stop() {
	s.once.Do(func() { close(s.done) })
}

// Checked returns the number of addresses looked up so far
func (s *Scanner) Checked() int64 {
	return atomic.LoadInt64(&s.attempts)
}

// periodicLogger logs scan progress at regular intervals
func (s *Scanner) periodicLogger(ticker *time.Ticker, done chan bool, start time.Time) {
	for {
		select {
		case <-ticker.C:
			attempts := atomic.LoadInt64(&s.attempts)
			candidates := atomic.LoadInt64(&s.candidates)
			hits := atomic.LoadInt64(&s.hits)
			elapsed := time.Since(start)

			// Calculate rate safely
			rate := 0.0
			if elapsed.Seconds() > 0 {
				rate = float64(attempts) / elapsed.Seconds()
			}

			s.logger.Printf("Progress: %d candidates, %d addresses, %.2f lookups/sec, %d hits",
				candidates, attempts, rate, hits)
			if stats := s.providerStats(); stats != "" {
				s.logger.Printf("Providers: %s", stats)
			}
		case <-done:
			return
		}
	}
}

// providerStats formats pool counters when the checker exposes them
func (s *Scanner) providerStats() string {
	pool, ok := s.checker.(interface{ Stats() []provider.ProviderStats })
	if !ok {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, st := range pool.Stats() {
		parts = append(parts, fmt.Sprintf("%s calls=%d errors=%d", st.Name, st.TotalCalls, st.ConsecutiveErrors))
	}
	return strings.Join(parts, ", ")
}
