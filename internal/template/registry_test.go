package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	tpl := Example()
	require.NoError(t, r.Register(tpl))

	assert.Same(t, tpl, r.Get("example-bank"))
	assert.Same(t, tpl, r.Get("EXAMPLE-BANK"))
	assert.Nil(t, r.Get("other"))
}

func TestRegistry_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Example()))
	assert.Error(t, r.Register(Example()))
}

func TestRegistry_NoName(t *testing.T) {
	r := NewRegistry()
	tpl := Example()
	tpl.Name = ""
	assert.ErrorIs(t, r.Register(tpl), ErrInvalidTemplate)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "a.yaml"), Example()))

	unnamed := Example()
	unnamed.Name = ""
	require.NoError(t, Save(filepath.Join(dir, "postfinance.yml"), unnamed))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	r, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"example-bank", "postfinance"}, r.Names())
}

func TestLoadDir_Missing(t *testing.T) {
	r, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, r.Names())
}

func TestLoadDir_BadTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("input: {kind: pdf}\nmapping: {date_column: {header: d}}\n"), 0o644))

	_, err := LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
