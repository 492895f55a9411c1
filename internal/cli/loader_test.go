package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalogCUE = `package catalog

collection: users: indexes: {
	idx_a: {
		fields: ["a"]
		unique: true
	}
	idx_city: fields: ["address.city"]
}

collection: orders: {}
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.cue"), []byte(content), 0o644))
	return dir
}

func TestLoadCatalog(t *testing.T) {
	dir := writeCatalog(t, validCatalogCUE)

	cat, errs := LoadCatalog(dir, LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, cat)

	assert.Equal(t, []string{"orders", "users"}, cat.Collections())

	indexes := cat.UsableIndexes("users", []string{"a"})
	require.Len(t, indexes, 1)
	assert.Equal(t, "idx_a", indexes[0].Name)
	assert.True(t, indexes[0].Unique)

	indexes = cat.UsableIndexes("users", []string{"address.city"})
	require.Len(t, indexes, 1)
	assert.Equal(t, "idx_city", indexes[0].Name)
}

func TestLoadCatalogMissingDirectory(t *testing.T) {
	_, errs := LoadCatalog("/nonexistent/directory/path", LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNotFound)
}

func TestLoadCatalogEmptyDirectory(t *testing.T) {
	_, errs := LoadCatalog(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNoFiles)
}

func TestLoadCatalogIndexWithoutFields(t *testing.T) {
	dir := writeCatalog(t, `package catalog

collection: users: indexes: idx_bad: {
	unique: true
}
`)

	_, errs := LoadCatalog(dir, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeIndexNoFields)
}

func TestLoadCatalogNoCollections(t *testing.T) {
	dir := writeCatalog(t, "package catalog\n\nunrelated: true\n")

	_, errs := LoadCatalog(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no collections found")
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("package x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("not cue"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.cue"), []byte("package x\n"), 0o644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
