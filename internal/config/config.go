package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/screa/brainwallet-scanner/pkg/mutate"
	"github.com/screa/brainwallet-scanner/pkg/provider"
)

// Errors
var (
	ErrNoPhraseFile      = errors.New("must specify --phrases")
	ErrNoProviders       = errors.New("must specify at least one provider or --offline with --address-file")
	ErrInvalidWorkers    = errors.New("--workers must be at least 1")
	ErrInvalidMutations  = errors.New("--max-mutations must be at least 1")
	ErrInvalidThreshold  = errors.New("--error-threshold must be at least 1")
	ErrInvalidTimeout    = errors.New("--timeout must be positive")
	ErrInvalidBackoff    = errors.New("--backoff must not be negative")
	ErrOfflineNeedsIndex = errors.New("--offline requires --address-file")
)

// Data file names inside the data directory.
const (
	CheckpointFile = "checkpoint.json"
	HitsFile       = "hits.json"
	LogFile        = "scan.log"
)

// Config holds the application configuration
type Config struct {
	PhraseFile     string
	Workers        int
	Reset          bool
	Status         bool
	Providers      []string
	MaxMutations   int
	ErrorThreshold int
	Backoff        time.Duration
	Timeout        time.Duration
	AddressFile    string
	Offline        bool
	DataDir        string
	Verbose        bool
	LogFile        string
	LogInterval    int // Logging interval in seconds
	MetricsAddr    string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:        3,
		Providers:      append([]string(nil), provider.DefaultNames...),
		MaxMutations:   mutate.DefaultMaxMutations,
		ErrorThreshold: provider.DefaultErrorThreshold,
		Backoff:        provider.DefaultRateLimitBackoff,
		Timeout:        provider.DefaultRequestTimeout,
		DataDir:        ".",
		LogInterval:    5, // Default 5 seconds
	}
}

// Validate validates the configuration. --status and --reset only need the
// data directory.
func (c *Config) Validate() error {
	if c.Status || (c.Reset && c.PhraseFile == "") {
		return nil
	}
	if c.PhraseFile == "" {
		return ErrNoPhraseFile
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.MaxMutations < 1 {
		return ErrInvalidMutations
	}
	if c.ErrorThreshold < 1 {
		return ErrInvalidThreshold
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Backoff < 0 {
		return ErrInvalidBackoff
	}
	if c.Offline {
		if c.AddressFile == "" {
			return ErrOfflineNeedsIndex
		}
		return nil
	}
	if len(c.Providers) == 0 {
		return ErrNoProviders
	}
	for _, name := range c.Providers {
		if _, err := provider.Lookup(name, ""); err != nil {
			return err
		}
	}
	return nil
}

// ParseProviders splits a comma separated provider list, dropping blanks.
func ParseProviders(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// BuildProviders resolves the configured provider names.
func (c *Config) BuildProviders() ([]provider.Provider, error) {
	if c.Offline {
		return nil, nil
	}
	out := make([]provider.Provider, 0, len(c.Providers))
	for _, name := range c.Providers {
		p, err := provider.Lookup(name, "")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrNoProviders
	}
	return out, nil
}

// CheckpointPath returns the checkpoint file location
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.DataDir, CheckpointFile)
}

// HitsPath returns the hits file location
func (c *Config) HitsPath() string {
	return filepath.Join(c.DataDir, HitsFile)
}

// LogPath returns the log file location. An explicit --log-file wins.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, LogFile)
}

// GetSourceDescription returns a human-readable description of where
// lookups are answered
func (c *Config) GetSourceDescription() string {
	switch {
	case c.Offline:
		return "offline index: " + c.AddressFile
	case c.AddressFile != "":
		return fmt.Sprintf("index %s + providers %s", c.AddressFile, strings.Join(c.Providers, ","))
	default:
		return "providers " + strings.Join(c.Providers, ",")
	}
}
