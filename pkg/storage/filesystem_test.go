package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "cronograma.xlsx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.XLSX"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$base.xlsx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	return s
}

func TestLocalStorageResolve(t *testing.T) {
	s := newTestStorage(t)

	path, err := s.Resolve("2024/cronograma.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.BaseDir(), "2024", "cronograma.xlsx"), path)

	path, err = s.Resolve("2024/../base.XLSX")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.BaseDir(), "base.XLSX"), path)
}

func TestLocalStorageResolveRejectsEscapes(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"../secret.xlsx", "2024/../../x.xlsx", "/etc/passwd", "", "  "} {
		_, err := s.Resolve(name)
		assert.True(t, errors.Is(err, ErrOutsideBaseDir), "name %q", name)
	}
}

func TestLocalStorageResolveMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Resolve("missing.xlsx")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Resolve("2024")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorageList(t *testing.T) {
	s := newTestStorage(t)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024/cronograma.xlsx", "base.XLSX"}, names)
}

func TestLocalStorageOpen(t *testing.T) {
	s := newTestStorage(t)

	f, err := s.Open("base.XLSX")
	require.NoError(t, err)
	defer f.Close()

	_, err = s.Open("../base.XLSX")
	assert.Error(t, err)
}
