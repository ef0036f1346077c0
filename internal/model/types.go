// Package model holds the wire types shared across the harness:
// pack records, retrieved snippets, verdicts and run records.
package model

// PackItem is one input record from a JSONL test pack.
type PackItem struct {
	ID     string `json:"id"`
	Query  string `json:"query,omitempty"`
	// InputQuery is an accepted alias for Query in hand-written packs.
	InputQuery string `json:"input_query,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Topic      string `json:"topic,omitempty"`
}

// QueryText returns the query, preferring the input_query alias when set.
func (p PackItem) QueryText() string {
	if p.InputQuery != "" {
		return p.InputQuery
	}
	return p.Query
}

// Snippet is one retrieved document fragment.
type Snippet struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Verdict is the evaluator's output for one (contract, context) pair.
type Verdict struct {
	ID      string `json:"id"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Run record status markers.
const (
	StatusOK            = "ok"
	StatusAnswerTimeout = "answer_timeout"
)

// RunRecord is the full per-input-record output. It is written once and
// never mutated after emission.
type RunRecord struct {
	RunID             string         `json:"run_id"`
	ModelVersion      string         `json:"model_version"`
	PromptVersion     string         `json:"prompt_version"`
	Locale            string         `json:"locale"`
	Topic             string         `json:"topic"`
	SeedID            string         `json:"seed_id"`
	InputQuery        string         `json:"input_query"`
	RetrievedSnippets []Snippet      `json:"retrieved_snippets"`
	Answer            string         `json:"answer"`
	Citations         []string       `json:"citations"`
	ClaimLabels       map[int]string `json:"claim_labels,omitempty"`
	Status            string         `json:"status,omitempty"`
	ContractResults   []Verdict      `json:"contract_results"`
}

// PromptConfig is the prompt/config source passed through to the answerer
// and recorded on run records.
type PromptConfig struct {
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	Version      string `json:"version" yaml:"version"`
}
