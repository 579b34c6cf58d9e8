// Package provider looks up address history through a pool of independent
// blockchain-data HTTP APIs.
package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddrPlaceholder is replaced by the address in endpoint templates.
const AddrPlaceholder = "{addr}"

var (
	// ErrUnknownProvider is returned by Lookup for names outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoProviders is returned when a pool is built without providers.
	ErrNoProviders = errors.New("no providers configured")

	// ErrAllProvidersFailed is the soft failure reported when no provider answered.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Balance is the canonical view every backend normalizes its response to.
type Balance struct {
	TxCount          int64
	ReceivedSatoshis int64
	BalanceSatoshis  int64
}

// Provider is one balance-lookup backend. Implementations only describe the
// endpoint and parse responses; the Pool owns HTTP, rate limiting and failover.
type Provider interface {
	// Name identifies the provider in logs, metrics and hits.
	Name() string

	// AddressURL returns the lookup URL for address.
	AddressURL(address string) string

	// MinInterval is the minimum spacing between two calls to this provider.
	MinInterval() time.Duration

	// ParseBalance maps the provider specific JSON body to a Balance.
	ParseBalance(raw []byte) (Balance, error)
}

// Endpoint is the HTTP contract shared by all backends.
type Endpoint struct {
	Name        string
	BaseURL     string
	Template    string
	MinInterval time.Duration
}

// URL expands the template for address.
func (e Endpoint) URL(address string) string {
	return strings.TrimRight(e.BaseURL, "/") + strings.ReplaceAll(e.Template, AddrPlaceholder, address)
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Provider   string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// ParseError wraps a body that could not be mapped to a Balance.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
