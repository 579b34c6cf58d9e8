package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	idx := New([]string{"16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue", " 1HKqKTMpBTZZ8H5zcqYEWYBaaWELrDEXeE ", "", "16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue"})

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue"))
	assert.True(t, idx.Contains("1HKqKTMpBTZZ8H5zcqYEWYBaaWELrDEXeE"))
	assert.False(t, idx.Contains("19eA3hUfKRt7aZymavdQFXg5EZ6KCVKxr8"))
	assert.False(t, idx.Contains(""))
}

func TestEmptyAndNilIndex(t *testing.T) {
	idx := New(nil)
	assert.Zero(t, idx.Len())
	assert.False(t, idx.Contains("1abc"))

	var none *Index
	assert.Zero(t, none.Len())
	assert.False(t, none.Contains("1abc"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funded.txt")
	content := "# funded addresses\n16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue,5000\n\n1HKqKTMpBTZZ8H5zcqYEWYBaaWELrDEXeE\t12\n1LtEeYVmMcNjWuEu3SoFRnLj3vo8pEyMBr\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.True(t, idx.Contains("16qVRutZ7rZuPx7NMtapvZorWYjyaME2Ue"))
	assert.True(t, idx.Contains("1HKqKTMpBTZZ8H5zcqYEWYBaaWELrDEXeE"))
	assert.True(t, idx.Contains("1LtEeYVmMcNjWuEu3SoFRnLj3vo8pEyMBr"))
	assert.False(t, idx.Contains("# funded addresses"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
