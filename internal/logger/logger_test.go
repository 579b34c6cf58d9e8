package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugfRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	assert.True(t, l.Verbose())
	l.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "[debug] shown 2")
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)
	l.Warnf("slow %s", "provider")
	l.Errorf("broken %s", "disk")
	assert.Contains(t, buf.String(), "[warn] slow provider")
	assert.Contains(t, buf.String(), "[error] broken disk")
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0644))

	l, closer, err := OpenFile(path)
	require.NoError(t, err)
	l.SetOutput(mustOpenAppend(t, path))
	l.Printf("appended")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "existing\n")
	assert.Contains(t, string(data), "appended")
}

func mustOpenAppend(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
