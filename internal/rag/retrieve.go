// Package rag provides the retrieval and answering collaborators the
// evaluation session drives: a TF-IDF retriever over a local JSONL
// corpus, a naive first-sentence answerer, and an optional Redis-backed
// snippet cache. The retriever and answerer are deliberately minimal
// stand-ins for a production index and a real model; the session only
// depends on their interfaces.
package rag

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Source retrieves snippets for a query. Implemented by Retriever and
// CachedRetriever.
type Source interface {
	Retrieve(ctx context.Context, query string) ([]model.Snippet, error)
}

type corpusDoc struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Retriever scores a small local corpus with TF-IDF cosine similarity.
// The corpus path is an explicit constructor argument; there is no
// implicit process-wide default.
type Retriever struct {
	docs    []corpusDoc
	idf     map[string]float64
	vectors []map[string]float64
	maxDocs int
}

// NewRetriever loads a JSONL corpus (one {"id","text"} object per line)
// and builds the term-frequency index. maxDocs bounds the snippets
// returned per query; values <= 0 default to 3. Lines that are not valid
// JSON or lack id/text are skipped.
func NewRetriever(corpusPath string, maxDocs int) (*Retriever, error) {
	if maxDocs <= 0 {
		maxDocs = 3
	}
	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", corpusPath, err)
	}
	defer f.Close()

	r := &Retriever{maxDocs: maxDocs, idf: make(map[string]float64)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc corpusDoc
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			continue
		}
		if doc.ID == "" || doc.Text == "" {
			continue
		}
		r.docs = append(r.docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", corpusPath, err)
	}
	if len(r.docs) == 0 {
		return nil, fmt.Errorf("corpus %s contains no documents", corpusPath)
	}
	r.buildIndex()
	return r, nil
}

func (r *Retriever) buildIndex() {
	counts := make([]map[string]float64, len(r.docs))
	df := make(map[string]int)
	for i, doc := range r.docs {
		tf := make(map[string]float64)
		for _, tok := range tokenize(doc.Text) {
			tf[tok]++
		}
		counts[i] = tf
		for tok := range tf {
			df[tok]++
		}
	}

	n := float64(len(r.docs))
	for tok, d := range df {
		// Smoothed IDF, same shape scikit-learn uses.
		r.idf[tok] = math.Log((1+n)/float64(1+d)) + 1
	}

	r.vectors = make([]map[string]float64, len(r.docs))
	for i, tf := range counts {
		vec := make(map[string]float64, len(tf))
		for tok, count := range tf {
			vec[tok] = count * r.idf[tok]
		}
		normalize(vec)
		r.vectors[i] = vec
	}
}

// Retrieve returns up to maxDocs snippets ranked by cosine similarity,
// dropping zero-score documents. An empty or blank query yields an empty
// result, never an error.
func (r *Retriever) Retrieve(_ context.Context, query string) ([]model.Snippet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	qvec := make(map[string]float64)
	for _, tok := range tokenize(query) {
		if idf, ok := r.idf[tok]; ok {
			qvec[tok] += idf
		}
	}
	normalize(qvec)

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i, vec := range r.vectors {
		s := dot(qvec, vec)
		if s > 0 {
			hits = append(hits, scored{idx: i, score: s})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})
	if len(hits) > r.maxDocs {
		hits = hits[:r.maxDocs]
	}

	snippets := make([]model.Snippet, 0, len(hits))
	for _, h := range hits {
		doc := r.docs[h.idx]
		snippets = append(snippets, model.Snippet{ID: doc.ID, Text: doc.Text, Score: h.score})
	}
	return snippets, nil
}

// A compact English stopword set; enough to keep function words from
// dominating similarity on a toy corpus.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; !stop {
			out = append(out, f)
		}
	}
	return out
}

func normalize(vec map[string]float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for k, v := range vec {
		vec[k] = v / norm
	}
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for k, v := range a {
		sum += v * b[k]
	}
	return sum
}
