package phrases

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "password", []string{"password"}},
		{"order kept", "b\na\nc\n", []string{"b", "a", "c"}},
		{"trimmed", "  hello world  \r\n\tfoo\n", []string{"hello world", "foo"}},
		{"blank and comments", "# list\n\n   \nsatoshi\n  # indented comment\nbitcoin\n", []string{"satoshi", "bitcoin"}},
		{"hash inside phrase", "c#sharp\n", []string{"c#sharp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.txt")
	require.NoError(t, os.WriteFile(path, []byte("correct horse battery staple\n# skip\npassword\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"correct horse battery staple", "password"}, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
