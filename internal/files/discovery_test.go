package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestCollectWorkbooksFromDirectory(t *testing.T) {
	dir := t.TempDir()
	b := touch(t, dir, "gastos 02-2023.xlsx")
	a := touch(t, dir, "gastos 01-2023.xlsx")
	touch(t, dir, "~$gastos 01-2023.xlsx")
	touch(t, dir, "notas.txt")

	got, err := CollectWorkbooks([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got, "lexicographic order, lock files and non-xlsx excluded")
}

func TestCollectWorkbooksGlob(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "enero.xlsx")
	touch(t, dir, "enero.csv")

	got, err := CollectWorkbooks([]string{filepath.Join(dir, "*.xlsx")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestCollectWorkbooksDeduplicates(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "enero.xlsx")

	got, err := CollectWorkbooks([]string{dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestCollectWorkbooksPlainFileKept(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "febrero.xlsx")

	got, err := CollectWorkbooks([]string{a, filepath.Join(dir, "no-existe.xlsx")})
	require.NoError(t, err)
	// Nonexistent plain paths survive discovery and fail later at open time.
	assert.Equal(t, []string{a, filepath.Join(dir, "no-existe.xlsx")}, got)
}
