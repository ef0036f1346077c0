package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdibrahimai/HELMSMAN/internal/contract"
	"github.com/mohdibrahimai/HELMSMAN/internal/detector"
	"github.com/mohdibrahimai/HELMSMAN/internal/evaluate"
)

const disambiguateContract = `
id: disambiguate_before_answer
applies_to: [general_qa]
locales: [en]
precondition: query_is_ambiguous
obligation:
  must: [ask_clarifying_question]
metrics:
  pass_criteria: asked_then_answered
messages:
  on_fail_answered_directly: "Answered without clarifying an ambiguous query"
`

const financeContract = `
id: finance_only
applies_to: [finance]
locales: [en]
precondition: contains_factual_claims
metrics:
  pass_criteria: precision_and_coverage
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "disambiguate.yaml"), []byte(disambiguateContract), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "finance.yaml"), []byte(financeContract), 0o644))
	store, err := contract.LoadDir(dir)
	require.NoError(t, err)

	srv := New(store, evaluate.New(detector.NewRegistry()))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postEvaluate(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/evaluate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(2), body["contracts"])
}

func TestEvaluateScopesToTopicAndLocale(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postEvaluate(t, ts, `{
		"query": "Tell me about Jordan",
		"answer": "Jordan won six NBA championships.",
		"topic": "general_qa",
		"locale": "en"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	results, ok := body["contract_results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1, "only the general_qa contract is in scope")

	verdict := results[0].(map[string]any)
	assert.Equal(t, "disambiguate_before_answer", verdict["id"])
	assert.Equal(t, false, verdict["passed"])
	assert.Equal(t, "Answered without clarifying an ambiguous query", verdict["message"])
}

func TestEvaluateDefaults(t *testing.T) {
	ts := newTestServer(t)

	// No topic/locale: defaults to general_qa/en. Unambiguous query, so
	// the precondition does not fire and the contract passes trivially.
	resp, body := postEvaluate(t, ts, `{
		"query": "What is the capital of France?",
		"answer": "Paris."
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "general_qa", body["topic"])
	assert.Equal(t, "en", body["locale"])

	results := body["contract_results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0].(map[string]any)["passed"])
}

func TestEvaluateConversationOverride(t *testing.T) {
	ts := newTestServer(t)

	// An explicit conversation whose second turn is a clarifying question
	// satisfies asked_then_answered even though the final answer does not.
	_, body := postEvaluate(t, ts, `{
		"query": "Tell me about Jordan",
		"answer": "Jordan is a country in the Middle East.",
		"conversation": ["Tell me about Jordan", "Do you mean the country or the athlete?"]
	}`)
	results := body["contract_results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0].(map[string]any)["passed"])
}

func TestEvaluateInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postEvaluate(t, ts, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid JSON body", body["error"])
}

func TestEvaluateNoContractsInScope(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postEvaluate(t, ts, `{
		"query": "anything",
		"answer": "anything",
		"topic": "medical",
		"locale": "en"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results, ok := body["contract_results"].([]any)
	require.True(t, ok, "empty result set still serializes as a list")
	assert.Empty(t, results)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
