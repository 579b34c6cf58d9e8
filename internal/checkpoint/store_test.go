package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/brainwallet-scanner/pkg/types"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "checkpoint.json"), filepath.Join(dir, "hits.json")), dir
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	cp, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cp.CompletedBasePhrases)
	assert.NotNil(t, cp.CompletedBasePhrases)
	assert.Zero(t, cp.CurrentIndex)
	assert.Zero(t, cp.TotalChecked)

	hits, err := s.LoadHits()
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cp := types.NewCheckpoint()
	cp.StartedAt = now
	cp.MarkCompleted("password", 0, 38, 0, now)
	cp.MarkCompleted("hello", 1, 40, 1, now.Add(time.Minute))

	require.NoError(t, s.Save(cp))
	got, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "password"}, got.CompletedBasePhrases.Sorted())
	assert.Equal(t, 2, got.CurrentIndex)
	assert.Equal(t, int64(78), got.TotalChecked)
	assert.Equal(t, int64(1), got.TotalHits)
	assert.True(t, now.Equal(got.StartedAt))
	assert.True(t, now.Add(time.Minute).Equal(got.LastUpdate))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkpoint.json", entries[0].Name())
}

func TestSaveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	cp := types.NewCheckpoint()
	cp.MarkCompleted("b", 1, 10, 0, time.Unix(100, 0).UTC())
	cp.MarkCompleted("a", 0, 10, 0, time.Unix(100, 0).UTC())

	require.NoError(t, s.Save(cp))
	first, err := os.ReadFile(s.CheckpointPath())
	require.NoError(t, err)

	require.NoError(t, s.Save(cp))
	second, err := os.ReadFile(s.CheckpointPath())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `"completed_base_phrases": [`)
	assert.Contains(t, string(first), `"current_index": 2`)
}

func TestLoadCorruptCheckpoint(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, os.WriteFile(s.CheckpointPath(), []byte("{not json"), 0o644))

	_, err := s.Load()
	assert.Error(t, err)
}

func TestAppendHitsPreservesExisting(t *testing.T) {
	s, _ := newTestStore(t)

	first := types.Hit{BasePhrase: "a", Candidate: "a", Address: "1A", AddressType: types.AddressCompressed, TxCount: 1, Provider: "p"}
	second := types.Hit{BasePhrase: "b", Candidate: "B", Address: "1B", AddressType: types.AddressUncompressed, TxCount: 5, Provider: "q"}

	require.NoError(t, s.AppendHits([]types.Hit{first}))
	require.NoError(t, s.AppendHits(nil))
	require.NoError(t, s.AppendHits([]types.Hit{second}))

	hits, err := s.LoadHits()
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1A", hits[0].Address)
	assert.Equal(t, "1B", hits[1].Address)
	assert.Equal(t, types.AddressUncompressed, hits[1].AddressType)
}

func TestAppendEmptyBatchCreatesNothing(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AppendHits(nil))
	_, err := os.Stat(s.HitsPath())
	assert.True(t, os.IsNotExist(err))
}

func TestSaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewStore(filepath.Join(dir, "checkpoint.json"), filepath.Join(dir, "hits.json"))

	require.NoError(t, s.Save(types.NewCheckpoint()))
	_, err := os.Stat(s.CheckpointPath())
	assert.NoError(t, err)
}

func TestReset(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Save(types.NewCheckpoint()))
	require.NoError(t, s.AppendHits([]types.Hit{{Address: "1A"}}))

	require.NoError(t, s.Reset())
	require.NoError(t, s.Reset())

	cp, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cp.CompletedBasePhrases)
	hits, err := s.LoadHits()
	require.NoError(t, err)
	assert.Empty(t, hits)
}
