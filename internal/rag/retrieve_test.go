package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testCorpus(t *testing.T) string {
	t.Helper()
	return writeCorpus(t,
		`{"id": "doc_jordan_country", "text": "Jordan is a country in the Middle East with a rich history."}`,
		`{"id": "doc_jordan_player", "text": "Michael Jordan is widely regarded as the greatest basketball player."}`,
		`{"id": "doc_apple_company", "text": "Apple is a technology company founded in 1976."}`,
		`{"id": "doc_mercury_planet", "text": "Mercury is the smallest planet in the solar system."}`,
	)
}

func TestRetrieverRanksRelevantDocs(t *testing.T) {
	r, err := NewRetriever(testCorpus(t), 3)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "basketball player Jordan")
	require.NoError(t, err)
	require.NotEmpty(t, snippets)
	assert.Equal(t, "doc_jordan_player", snippets[0].ID)
	assert.Greater(t, snippets[0].Score, 0.0)
	assert.LessOrEqual(t, len(snippets), 3)

	// Scores are descending.
	for i := 1; i < len(snippets); i++ {
		assert.GreaterOrEqual(t, snippets[i-1].Score, snippets[i].Score)
	}
}

func TestRetrieverEmptyQuery(t *testing.T) {
	r, err := NewRetriever(testCorpus(t), 3)
	require.NoError(t, err)

	for _, q := range []string{"", "   "} {
		snippets, err := r.Retrieve(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, snippets)
	}
}

func TestRetrieverNoMatches(t *testing.T) {
	r, err := NewRetriever(testCorpus(t), 3)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "zzzz qqqq xxxx")
	require.NoError(t, err)
	assert.Empty(t, snippets, "zero-score documents are dropped")
}

func TestRetrieverMaxDocs(t *testing.T) {
	r, err := NewRetriever(testCorpus(t), 1)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "Jordan")
	require.NoError(t, err)
	assert.Len(t, snippets, 1)
}

func TestNewRetrieverErrors(t *testing.T) {
	_, err := NewRetriever(filepath.Join(t.TempDir(), "missing.jsonl"), 3)
	assert.Error(t, err)

	// A corpus with only bad lines has no documents.
	path := writeCorpus(t, "not json", `{"id": "", "text": "no id"}`)
	_, err = NewRetriever(path, 3)
	assert.Error(t, err)
}

func TestRetrieverSkipsBadLines(t *testing.T) {
	path := writeCorpus(t,
		"garbage line",
		`{"id": "ok", "text": "The only valid document about gardening."}`,
		"",
	)
	r, err := NewRetriever(path, 3)
	require.NoError(t, err)

	snippets, err := r.Retrieve(context.Background(), "gardening")
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "ok", snippets[0].ID)
}
