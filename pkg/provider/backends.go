package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Supported provider names.
const (
	Blockstream    = "blockstream"
	Mempool        = "mempool"
	BlockchainInfo = "blockchain.info"
	BlockCypher    = "blockcypher"
)

// DefaultNames is the default provider rotation, in order.
var DefaultNames = []string{Blockstream, Mempool, BlockchainInfo, BlockCypher}

var defaultEndpoints = map[string]Endpoint{
	Blockstream: {
		Name:        Blockstream,
		BaseURL:     "https://blockstream.info",
		Template:    "/api/address/{addr}",
		MinInterval: 500 * time.Millisecond,
	},
	Mempool: {
		Name:        Mempool,
		BaseURL:     "https://mempool.space",
		Template:    "/api/address/{addr}",
		MinInterval: 500 * time.Millisecond,
	},
	BlockchainInfo: {
		Name:        BlockchainInfo,
		BaseURL:     "https://blockchain.info",
		Template:    "/rawaddr/{addr}?limit=0",
		MinInterval: 10 * time.Second,
	},
	BlockCypher: {
		Name:        BlockCypher,
		BaseURL:     "https://api.blockcypher.com",
		Template:    "/v1/btc/main/addrs/{addr}/balance",
		MinInterval: 20 * time.Second,
	},
}

// Lookup returns the provider registered under name. A non-empty baseURL
// overrides the public endpoint, e.g. for a self-hosted Esplora.
func Lookup(name, baseURL string) (Provider, error) {
	ep, ok := defaultEndpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownProvider, name, Names())
	}
	if baseURL != "" {
		ep.BaseURL = baseURL
	}

	switch name {
	case Blockstream, Mempool:
		return &Esplora{endpoint: ep}, nil
	case BlockchainInfo:
		return &BlockchainInfoAPI{endpoint: ep}, nil
	default:
		return &BlockCypherAPI{endpoint: ep}, nil
	}
}

// Names returns all supported provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(defaultEndpoints))
	for n := range defaultEndpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Esplora parses the Esplora address schema served by blockstream.info and mempool.space.
type Esplora struct {
	endpoint Endpoint
}

type esploraStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int64 `json:"tx_count"`
}

type esploraAddress struct {
	Address      string        `json:"address"`
	ChainStats   *esploraStats `json:"chain_stats"`
	MempoolStats *esploraStats `json:"mempool_stats"`
}

func (p *Esplora) Name() string                  { return p.endpoint.Name }
func (p *Esplora) AddressURL(addr string) string { return p.endpoint.URL(addr) }
func (p *Esplora) MinInterval() time.Duration    { return p.endpoint.MinInterval }

// ParseBalance sums confirmed and mempool statistics.
func (p *Esplora) ParseBalance(raw []byte) (Balance, error) {
	var resp esploraAddress
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: err}
	}
	if resp.ChainStats == nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: fmt.Errorf("missing chain_stats")}
	}

	var b Balance
	for _, s := range []*esploraStats{resp.ChainStats, resp.MempoolStats} {
		if s == nil {
			continue
		}
		b.TxCount += s.TxCount
		b.ReceivedSatoshis += s.FundedTxoSum
		b.BalanceSatoshis += s.FundedTxoSum - s.SpentTxoSum
	}
	return b, nil
}

// BlockchainInfoAPI parses blockchain.info rawaddr responses.
type BlockchainInfoAPI struct {
	endpoint Endpoint
}

type blockchainInfoAddress struct {
	NTx           *int64 `json:"n_tx"`
	TotalReceived int64  `json:"total_received"`
	FinalBalance  int64  `json:"final_balance"`
}

func (p *BlockchainInfoAPI) Name() string                  { return p.endpoint.Name }
func (p *BlockchainInfoAPI) AddressURL(addr string) string { return p.endpoint.URL(addr) }
func (p *BlockchainInfoAPI) MinInterval() time.Duration    { return p.endpoint.MinInterval }

func (p *BlockchainInfoAPI) ParseBalance(raw []byte) (Balance, error) {
	var resp blockchainInfoAddress
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: err}
	}
	if resp.NTx == nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: fmt.Errorf("missing n_tx")}
	}
	return Balance{
		TxCount:          *resp.NTx,
		ReceivedSatoshis: resp.TotalReceived,
		BalanceSatoshis:  resp.FinalBalance,
	}, nil
}

// BlockCypherAPI parses BlockCypher address balance responses.
type BlockCypherAPI struct {
	endpoint Endpoint
}

type blockCypherBalance struct {
	NTx           *int64 `json:"n_tx"`
	FinalNTx      int64  `json:"final_n_tx"`
	TotalReceived int64  `json:"total_received"`
	FinalBalance  int64  `json:"final_balance"`
	Error         string `json:"error"`
}

func (p *BlockCypherAPI) Name() string                  { return p.endpoint.Name }
func (p *BlockCypherAPI) AddressURL(addr string) string { return p.endpoint.URL(addr) }
func (p *BlockCypherAPI) MinInterval() time.Duration    { return p.endpoint.MinInterval }

// ParseBalance uses final_n_tx so unconfirmed activity also counts.
func (p *BlockCypherAPI) ParseBalance(raw []byte) (Balance, error) {
	var resp blockCypherBalance
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: err}
	}
	if resp.Error != "" {
		return Balance{}, &ParseError{Provider: p.Name(), Err: fmt.Errorf("api error: %s", resp.Error)}
	}
	if resp.NTx == nil {
		return Balance{}, &ParseError{Provider: p.Name(), Err: fmt.Errorf("missing n_tx")}
	}

	txs := resp.FinalNTx
	if *resp.NTx > txs {
		txs = *resp.NTx
	}
	return Balance{
		TxCount:          txs,
		ReceivedSatoshis: resp.TotalReceived,
		BalanceSatoshis:  resp.FinalBalance,
	}, nil
}
