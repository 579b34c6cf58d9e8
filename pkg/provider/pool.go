package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/screa/brainwallet-scanner/internal/logger"
	"github.com/screa/brainwallet-scanner/internal/observability"
	"github.com/screa/brainwallet-scanner/pkg/types"
)

// Default pool configuration values.
const (
	DefaultErrorThreshold   = 10
	DefaultRateLimitBackoff = 3 * time.Second
	DefaultRequestTimeout   = 10 * time.Second

	maxBodySize = 1 << 20
	userAgent   = "brainwallet-scanner/1.0"
)

// providerState is the per-provider mutable state. mu guards every field
// below it; the limiter is safe for concurrent use on its own.
type providerState struct {
	provider Provider
	limiter  *rate.Limiter

	mu                sync.Mutex
	lastCall          time.Time
	cooldownUntil     time.Time
	consecutiveErrors int
	totalCalls        int64
}

// ProviderStats is a point-in-time snapshot of one provider's state.
type ProviderStats struct {
	Name              string
	TotalCalls        int64
	ConsecutiveErrors int
	LastCall          time.Time
}

// Pool spreads address lookups over several providers with per-provider
// rate limiting and failover.
type Pool struct {
	states    []*providerState
	client    *http.Client
	threshold int
	backoff   time.Duration
	timeout   time.Duration
	logger    *logger.Logger
	metrics   *observability.Metrics

	cursorMu sync.Mutex
	cursor   int
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) PoolOption {
	return func(p *Pool) {
		p.client = client
	}
}

// WithErrorThreshold sets the consecutive error count at which a provider
// is skipped.
func WithErrorThreshold(n int) PoolOption {
	return func(p *Pool) {
		p.threshold = n
	}
}

// WithRateLimitBackoff sets the cooldown applied after an HTTP 429.
func WithRateLimitBackoff(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.backoff = d
	}
}

// WithRequestTimeout sets the timeout of each individual HTTP call.
func WithRequestTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.timeout = d
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *logger.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = l
	}
}

// WithMetrics records provider calls on m.
func WithMetrics(m *observability.Metrics) PoolOption {
	return func(p *Pool) {
		p.metrics = m
	}
}

// NewPool creates a pool over providers, tried in the given order.
func NewPool(providers []Provider, opts ...PoolOption) (*Pool, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	p := &Pool{
		client:    &http.Client{},
		threshold: DefaultErrorThreshold,
		backoff:   DefaultRateLimitBackoff,
		timeout:   DefaultRequestTimeout,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.threshold <= 0 {
		p.threshold = DefaultErrorThreshold
	}

	for _, prov := range providers {
		limit := rate.Inf
		if iv := prov.MinInterval(); iv > 0 {
			limit = rate.Every(iv)
		}
		p.states = append(p.states, &providerState{
			provider: prov,
			limiter:  rate.NewLimiter(limit, 1),
		})
	}
	return p, nil
}

// Len returns the number of providers in the pool.
func (p *Pool) Len() int {
	return len(p.states)
}

// CheckAddress looks up address on the next eligible provider, failing over
// to the others on error. It never returns an error: when every attempt
// fails the result carries Err and zero counts.
func (p *Pool) CheckAddress(ctx context.Context, address string) types.ProviderResult {
	tried := make([]bool, len(p.states))
	var errs []error

	for attempt := 0; attempt < len(p.states); attempt++ {
		idx := p.selectProvider(tried)
		if idx < 0 {
			break
		}
		tried[idx] = true
		st := p.states[idx]

		bal, err := p.call(ctx, st, address)
		if err == nil {
			return types.ProviderResult{
				Address:          address,
				TxCount:          bal.TxCount,
				ReceivedSatoshis: bal.ReceivedSatoshis,
				BalanceSatoshis:  bal.BalanceSatoshis,
				ProviderName:     st.provider.Name(),
			}
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	err := fmt.Errorf("%w for %s", ErrAllProvidersFailed, address)
	if len(errs) > 0 {
		err = fmt.Errorf("%w for %s: %w", ErrAllProvidersFailed, address, errors.Join(errs...))
	}
	return types.ProviderResult{Address: address, Err: err}
}

// Stats returns a snapshot of every provider's counters, in pool order.
func (p *Pool) Stats() []ProviderStats {
	out := make([]ProviderStats, len(p.states))
	for i, st := range p.states {
		st.mu.Lock()
		out[i] = ProviderStats{
			Name:              st.provider.Name(),
			TotalCalls:        st.totalCalls,
			ConsecutiveErrors: st.consecutiveErrors,
			LastCall:          st.lastCall,
		}
		st.mu.Unlock()
	}
	return out
}

// selectProvider returns the next untried provider below the error
// threshold in round-robin order, or -1. When every provider is at or above
// the threshold all counters are reset first.
func (p *Pool) selectProvider(tried []bool) int {
	p.cursorMu.Lock()
	defer p.cursorMu.Unlock()

	if p.allExhausted() {
		for _, st := range p.states {
			st.mu.Lock()
			st.consecutiveErrors = 0
			st.mu.Unlock()
		}
		p.metrics.ObservePoolReset()
		p.logger.Warnf("all %d providers exhausted, resetting error counts", len(p.states))
	}

	n := len(p.states)
	for i := 0; i < n; i++ {
		idx := p.cursor
		p.cursor = (p.cursor + 1) % n
		if tried[idx] || p.states[idx].errorCount() >= p.threshold {
			continue
		}
		return idx
	}
	return -1
}

func (p *Pool) allExhausted() bool {
	for _, st := range p.states {
		if st.errorCount() < p.threshold {
			return false
		}
	}
	return true
}

// call performs one rate-limited HTTP lookup against a single provider.
func (p *Pool) call(ctx context.Context, st *providerState, address string) (Balance, error) {
	name := st.provider.Name()
	if err := st.waitTurn(ctx); err != nil {
		return Balance{}, fmt.Errorf("%s: wait: %w", name, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, st.provider.AddressURL(address), nil)
	if err != nil {
		return Balance{}, p.fail(st, fmt.Errorf("%s: create request: %w", name, err), time.Now(), false)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Balance{}, p.fail(st, fmt.Errorf("%s: http request: %w", name, err), start, false)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	resp.Body.Close()
	if err != nil {
		return Balance{}, p.fail(st, fmt.Errorf("%s: read response: %w", name, err), start, false)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Balance{}, p.fail(st, &HTTPError{Provider: name, StatusCode: resp.StatusCode}, start, true)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Balance{}, p.fail(st, &HTTPError{Provider: name, StatusCode: resp.StatusCode}, start, false)
	}

	bal, err := st.provider.ParseBalance(body)
	if err != nil {
		return Balance{}, p.fail(st, err, start, false)
	}

	st.mu.Lock()
	st.consecutiveErrors = 0
	st.mu.Unlock()
	p.metrics.ObserveProviderCall(name, observability.OutcomeOK, time.Since(start), 0)
	return bal, nil
}

// fail records a failed call and returns err unchanged.
func (p *Pool) fail(st *providerState, err error, start time.Time, rateLimited bool) error {
	st.mu.Lock()
	st.consecutiveErrors++
	streak := st.consecutiveErrors
	if rateLimited {
		st.cooldownUntil = time.Now().Add(p.backoff)
	}
	st.mu.Unlock()

	outcome := observability.OutcomeError
	if rateLimited {
		outcome = observability.OutcomeRateLimited
		p.logger.Warnf("provider %s rate limited, backing off %s", st.provider.Name(), p.backoff)
	}
	p.metrics.ObserveProviderCall(st.provider.Name(), outcome, time.Since(start), streak)
	p.logger.Debugf("provider %s failed (%d consecutive): %v", st.provider.Name(), streak, err)
	return err
}

// waitTurn blocks until the provider's cooldown has passed and its limiter
// grants a slot.
func (s *providerState) waitTurn(ctx context.Context) error {
	s.mu.Lock()
	wait := time.Until(s.cooldownUntil)
	s.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastCall = time.Now()
	s.totalCalls++
	s.mu.Unlock()
	return nil
}

func (s *providerState) errorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors
}
