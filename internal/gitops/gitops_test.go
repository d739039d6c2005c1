package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var author = Author{Name: "Test Author", Email: "test@example.com"}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	err := Init(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommitAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drafts.csv"), []byte("import_id\n"), 0o644))

	hash, err := CommitAll(dir, "import: zkb.csv", author)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "import: zkb.csv|Test Author <test@example.com>\n", string(out))
}

func TestHasChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	changed, err := HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = CommitAll(dir, "add a", author)
	require.NoError(t, err)
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHasChanges_NotARepo(t *testing.T) {
	_, err := HasChanges(t.TempDir())
	assert.Error(t, err)
}
