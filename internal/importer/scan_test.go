package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_FindsStatements(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zkb.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ubs.XLSX"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "ubs.XLSX", files[0].Name)
	assert.Equal(t, "zkb.csv", files[1].Name)
	assert.Equal(t, int64(4), files[1].Size)
	assert.Equal(t, filepath.Join(dir, "zkb.csv"), files[1].Path)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processedDir := filepath.Join(dir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "import"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(dir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(filepath.Join(dir, "processed", "bank.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestMarkProcessed_Missing(t *testing.T) {
	assert.Error(t, MarkProcessed(t.TempDir(), "nope.csv"))
}
