package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAndURLs(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{Blockstream, "", "https://blockstream.info/api/address/1abc"},
		{Mempool, "", "https://mempool.space/api/address/1abc"},
		{BlockchainInfo, "", "https://blockchain.info/rawaddr/1abc?limit=0"},
		{BlockCypher, "", "https://api.blockcypher.com/v1/btc/main/addrs/1abc/balance"},
		{Blockstream, "http://127.0.0.1:3002/", "http://127.0.0.1:3002/api/address/1abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Lookup(tt.name, tt.baseURL)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.want, p.AddressURL("1abc"))
			assert.Greater(t, p.MinInterval(), time.Duration(0))
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("etherscan", "")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestNamesCoversDefaults(t *testing.T) {
	assert.ElementsMatch(t, DefaultNames, Names())
}

func TestEsploraParseBalance(t *testing.T) {
	p, err := Lookup(Blockstream, "")
	require.NoError(t, err)

	body := `{
		"address": "1abc",
		"chain_stats": {"funded_txo_count": 2, "funded_txo_sum": 150000, "spent_txo_count": 1, "spent_txo_sum": 100000, "tx_count": 3},
		"mempool_stats": {"funded_txo_count": 1, "funded_txo_sum": 5000, "spent_txo_count": 0, "spent_txo_sum": 0, "tx_count": 1}
	}`
	bal, err := p.ParseBalance([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, Balance{TxCount: 4, ReceivedSatoshis: 155000, BalanceSatoshis: 55000}, bal)

	_, err = p.ParseBalance([]byte(`{"address": "1abc"}`))
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = p.ParseBalance([]byte(`Invalid bitcoin address`))
	assert.Error(t, err)
}

func TestBlockchainInfoParseBalance(t *testing.T) {
	p, err := Lookup(BlockchainInfo, "")
	require.NoError(t, err)

	bal, err := p.ParseBalance([]byte(`{"hash160":"00","address":"1abc","n_tx":7,"total_received":900,"total_sent":400,"final_balance":500,"txs":[]}`))
	require.NoError(t, err)
	assert.Equal(t, Balance{TxCount: 7, ReceivedSatoshis: 900, BalanceSatoshis: 500}, bal)

	bal, err = p.ParseBalance([]byte(`{"n_tx":0,"total_received":0,"final_balance":0}`))
	require.NoError(t, err)
	assert.Equal(t, Balance{}, bal)

	_, err = p.ParseBalance([]byte(`{"error":"not found"}`))
	assert.Error(t, err)
}

func TestBlockCypherParseBalance(t *testing.T) {
	p, err := Lookup(BlockCypher, "")
	require.NoError(t, err)

	bal, err := p.ParseBalance([]byte(`{"address":"1abc","total_received":1000,"total_sent":0,"balance":1000,"unconfirmed_balance":0,"final_balance":1000,"n_tx":1,"unconfirmed_n_tx":1,"final_n_tx":2}`))
	require.NoError(t, err)
	assert.Equal(t, Balance{TxCount: 2, ReceivedSatoshis: 1000, BalanceSatoshis: 1000}, bal)

	_, err = p.ParseBalance([]byte(`{"error":"Limits reached."}`))
	assert.Error(t, err)
}
