package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
id: disambiguate_before_answer
applies_to: [general_qa]
locales: [en]
precondition: query_is_ambiguous
`)
	writeFile(t, dir, "sub/b.yml", `
id: citations_minimum_and_precision
applies_to: [general_qa]
locales: [en]
metrics:
  pass_criteria: precision_and_coverage
`)
	writeFile(t, dir, "notes.txt", "not a contract")

	store, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	c, ok := store.Get("disambiguate_before_answer")
	require.True(t, ok)
	assert.Equal(t, "disambiguate_before_answer", c.ID)
	_, ok = store.Get("citations_minimum_and_precision")
	assert.True(t, ok)
	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestLoadDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: one\napplies_to: [a]\nlocales: [en]\n")
	writeFile(t, dir, "b.yaml", "id: two\napplies_to: [a]\nlocales: [en]\n")

	store, err := LoadDir(dir)
	require.NoError(t, err)
	for _, c := range store.All() {
		got, ok := store.Get(c.ID)
		require.True(t, ok)
		assert.Equal(t, c.ID, got.ID, "Get must return the contract keyed by its own id")
	}
}

func TestLoadDirSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "{{{ not yaml")
	writeFile(t, dir, "empty.yaml", "")
	writeFile(t, dir, "list.yaml", "- just\n- a\n- list\n")
	writeFile(t, dir, "good.yaml", "id: good\napplies_to: [a]\nlocales: [en]\n")

	store, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("good")
	assert.True(t, ok)
}

func TestLoadDirSchemaErrorPropagates(t *testing.T) {
	// A file that parses as YAML but violates the schema must abort the
	// whole load, unlike an unparseable one.
	dir := t.TempDir()
	writeFile(t, dir, "invalid.yaml", "id: broken\napplies_to: [a]\n")

	_, err := LoadDir(dir)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "locales", schemaErr.Field)
}

func TestLoadDirDuplicateIDLastWins(t *testing.T) {
	// Files are visited in lexicographic path order, so z.yaml overrides
	// a.yaml for the shared id.
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: dup\nversion: 1.0.0\napplies_to: [a]\nlocales: [en]\n")
	writeFile(t, dir, "z.yaml", "id: dup\nversion: 2.0.0\napplies_to: [a]\nlocales: [en]\n")

	store, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	c, ok := store.Get("dup")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", c.Version)
}

func TestLoadDirMissingRoot(t *testing.T) {
	store, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, store.Len())
}
