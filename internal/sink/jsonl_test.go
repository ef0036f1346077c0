package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

func sampleRecord(seed string) *model.RunRecord {
	return &model.RunRecord{
		RunID:         "run-1",
		ModelVersion:  "local",
		PromptVersion: "v1",
		Locale:        "en",
		Topic:         "general_qa",
		SeedID:        seed,
		InputQuery:    "Tell me about Jordan",
		Answer:        "Do you mean the country or the athlete?",
		Citations:     []string{"doc1", "doc2"},
		Status:        model.StatusOK,
		ContractResults: []model.Verdict{
			{ID: "disambiguate_before_answer", Passed: true, Message: "ok"},
		},
	}
}

func TestJSONLSinkOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLWriterSink(&buf)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, sampleRecord("q1")))
	require.NoError(t, s.Write(ctx, sampleRecord("q2")))
	require.NoError(t, s.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var rec model.RunRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "q1", rec.SeedID)
	assert.Equal(t, []string{"doc1", "doc2"}, rec.Citations)
	require.Len(t, rec.ContractResults, 1)
	assert.True(t, rec.ContractResults[0].Passed)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "q2", rec.SeedID)
}

func TestJSONLSinkCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "out.jsonl")
	s, err := NewJSONLSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), sampleRecord("q1")))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"seed_id":"q1"`)
	assert.False(t, scanner.Scan(), "exactly one line")
}

type recordingSink struct {
	seeds  []string
	closed bool
}

func (r *recordingSink) Write(_ context.Context, rec *model.RunRecord) error {
	r.seeds = append(r.seeds, rec.SeedID)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.Write(context.Background(), sampleRecord("q1")))
	require.NoError(t, m.Close())

	assert.Equal(t, []string{"q1"}, a.seeds)
	assert.Equal(t, []string{"q1"}, b.seeds)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
