package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/brainwallet-scanner/pkg/types"
)

func TestStatusWithoutHits(t *testing.T) {
	cp := types.NewCheckpoint()
	cp.MarkCompleted("password", 0, 38, 0, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, Status(&buf, cp, nil, 4))

	out := buf.String()
	assert.Contains(t, out, "Scan progress")
	assert.Contains(t, out, "1/4 (25.0%)")
	assert.Contains(t, out, "38")
	assert.Contains(t, out, "2024-05-01 10:00:00 UTC")
	assert.Contains(t, out, "No hits recorded.")
}

func TestStatusWithHits(t *testing.T) {
	cp := types.NewCheckpoint()
	cp.MarkCompleted("password", 0, 38, 1, time.Now())
	hits := []types.Hit{{
		BasePhrase:  "password",
		Candidate:   "password",
		Address:     "16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue",
		AddressType: types.AddressCompressed,
		TxCount:     12,
		Provider:    "blockstream",
	}}

	var buf bytes.Buffer
	require.NoError(t, Status(&buf, cp, hits, 0))

	out := buf.String()
	assert.Contains(t, out, "Hits")
	assert.Contains(t, out, "16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue")
	assert.Contains(t, out, "compressed")
	assert.Contains(t, out, "blockstream")
	assert.NotContains(t, out, "No hits recorded.")
	assert.NotContains(t, out, "%")
}

func TestCompletion(t *testing.T) {
	assert.Equal(t, "3", completion(3, 0))
	assert.Equal(t, "0/8 (0.0%)", completion(0, 8))
	assert.Equal(t, "8/8 (100.0%)", completion(8, 8))
}
