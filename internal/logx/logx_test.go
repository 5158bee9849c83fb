package logx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := New(dir)
	require.NoError(t, err)

	logger.Print("hello from the installer")
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".log", filepath.Ext(entries[0].Name()))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the installer")
}

func TestNewEmptyDirDiscards(t *testing.T) {
	logger, closer, err := New("")
	require.NoError(t, err)
	logger.Print("dropped")
	assert.NoError(t, closer.Close())
}
