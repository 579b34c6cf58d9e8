// Package checkpoint persists scan progress and hits as JSON files that are
// always replaced atomically.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/screa/brainwallet-scanner/pkg/types"
)

// Store owns the checkpoint and hits files.
type Store struct {
	checkpointPath string
	hitsPath       string
}

// NewStore returns a store writing to the given paths.
func NewStore(checkpointPath, hitsPath string) *Store {
	return &Store{checkpointPath: checkpointPath, hitsPath: hitsPath}
}

// CheckpointPath returns the canonical checkpoint file path.
func (s *Store) CheckpointPath() string {
	return s.checkpointPath
}

// HitsPath returns the canonical hits file path.
func (s *Store) HitsPath() string {
	return s.hitsPath
}

// Load reads the checkpoint. A missing file yields an empty checkpoint.
func (s *Store) Load() (*types.Checkpoint, error) {
	data, err := os.ReadFile(s.checkpointPath)
	if errors.Is(err, fs.ErrNotExist) {
		return types.NewCheckpoint(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	cp := types.NewCheckpoint()
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", s.checkpointPath, err)
	}
	if cp.CompletedBasePhrases == nil {
		cp.CompletedBasePhrases = make(types.PhraseSet)
	}
	return cp, nil
}

// Save atomically replaces the checkpoint file.
func (s *Store) Save(cp *types.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := writeFileAtomic(s.checkpointPath, data); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadHits returns every recorded hit. A missing file yields no hits.
func (s *Store) LoadHits() ([]types.Hit, error) {
	data, err := os.ReadFile(s.hitsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hits: %w", err)
	}

	var hits []types.Hit
	if err := json.Unmarshal(data, &hits); err != nil {
		return nil, fmt.Errorf("decode hits %s: %w", s.hitsPath, err)
	}
	return hits, nil
}

// AppendHits adds batch to the hits file, keeping existing records.
func (s *Store) AppendHits(batch []types.Hit) error {
	if len(batch) == 0 {
		return nil
	}

	hits, err := s.LoadHits()
	if err != nil {
		return err
	}
	hits = append(hits, batch...)

	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("encode hits: %w", err)
	}
	if err := writeFileAtomic(s.hitsPath, data); err != nil {
		return fmt.Errorf("save hits: %w", err)
	}
	return nil
}

// Reset removes the checkpoint and hits files.
func (s *Store) Reset() error {
	for _, path := range []string{s.checkpointPath, s.hitsPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reset %s: %w", path, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
