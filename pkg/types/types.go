package types

import (
	"encoding/json"
	"sort"
	"time"
)

// AddressType identifies which public key serialization produced an address
type AddressType string

const (
	AddressCompressed   AddressType = "compressed"
	AddressUncompressed AddressType = "uncompressed"
)

// DerivedAddressPair holds the brainwallet key material for one candidate
type DerivedAddressPair struct {
	Candidate           string
	PrivateKeyHex       string
	AddressCompressed   string
	AddressUncompressed string
}

// Address returns the address of the given type
func (p DerivedAddressPair) Address(t AddressType) string {
	if t == AddressUncompressed {
		return p.AddressUncompressed
	}
	return p.AddressCompressed
}

// ProviderResult is the normalized answer of a balance lookup
type ProviderResult struct {
	Address          string
	TxCount          int64
	ReceivedSatoshis int64
	BalanceSatoshis  int64
	ProviderName     string
	Err              error
}

// IsHit reports whether the address has on-chain history
func (r ProviderResult) IsHit() bool {
	return r.Err == nil && r.TxCount > 0
}

// Unknown reports whether every lookup attempt failed
func (r ProviderResult) Unknown() bool {
	return r.Err != nil
}

// Hit is a persisted record of an address with on-chain history
type Hit struct {
	BasePhrase       string      `json:"base_phrase"`
	Candidate        string      `json:"candidate"`
	PrivateKeyHex    string      `json:"private_key_hex"`
	Address          string      `json:"address"`
	AddressType      AddressType `json:"address_type"`
	TxCount          int64       `json:"tx_count"`
	ReceivedSatoshis int64       `json:"received_satoshis"`
	BalanceSatoshis  int64       `json:"balance_satoshis"`
	Provider         string      `json:"provider"`
	FoundAt          time.Time   `json:"found_at"`
}

// PhraseSet is a set of base phrases, serialized as a sorted JSON array
type PhraseSet map[string]struct{}

// Has reports whether phrase is in the set
func (s PhraseSet) Has(phrase string) bool {
	_, ok := s[phrase]
	return ok
}

// Sorted returns the members in ascending order
func (s PhraseSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s PhraseSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *PhraseSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	set := make(PhraseSet, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}
	*s = set
	return nil
}

// Checkpoint is the persisted scan progress
type Checkpoint struct {
	CompletedBasePhrases PhraseSet `json:"completed_base_phrases"`
	CurrentIndex         int       `json:"current_index"`
	TotalChecked         int64     `json:"total_checked"`
	TotalHits            int64     `json:"total_hits"`
	StartedAt            time.Time `json:"started_at"`
	LastUpdate           time.Time `json:"last_update"`
}

// NewCheckpoint returns an empty checkpoint for a fresh scan
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{CompletedBasePhrases: make(PhraseSet)}
}

// MarkCompleted records a fully processed phrase. The index never moves backwards.
func (c *Checkpoint) MarkCompleted(phrase string, index int, checked, hits int64, now time.Time) {
	if c.CompletedBasePhrases == nil {
		c.CompletedBasePhrases = make(PhraseSet)
	}
	c.CompletedBasePhrases[phrase] = struct{}{}
	if index+1 > c.CurrentIndex {
		c.CurrentIndex = index + 1
	}
	c.TotalChecked += checked
	c.TotalHits += hits
	c.LastUpdate = now
}

// Task is a single address lookup dispatched to a worker
type Task struct {
	BasePhrase  string
	Pair        DerivedAddressPair
	AddressType AddressType
	Address     string
}

// WorkerResult pairs a task with the lookup outcome
type WorkerResult struct {
	Task   Task
	Result ProviderResult
}

// Hit converts a positive result into a persisted hit record
func (r WorkerResult) Hit(foundAt time.Time) Hit {
	return Hit{
		BasePhrase:       r.Task.BasePhrase,
		Candidate:        r.Task.Pair.Candidate,
		PrivateKeyHex:    r.Task.Pair.PrivateKeyHex,
		Address:          r.Task.Address,
		AddressType:      r.Task.AddressType,
		TxCount:          r.Result.TxCount,
		ReceivedSatoshis: r.Result.ReceivedSatoshis,
		BalanceSatoshis:  r.Result.BalanceSatoshis,
		Provider:         r.Result.ProviderName,
		FoundAt:          foundAt,
	}
}

// Summary describes a single scanner run
type Summary struct {
	PhrasesScanned    int
	PhrasesSkipped    int
	CandidatesChecked int64
	AddressesChecked  int64
	Unknown           int64
	DerivationErrors  int64
	Hits              []Hit
	Interrupted       bool
	Duration          time.Duration
}
