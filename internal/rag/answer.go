package rag

import (
	"context"
	"regexp"
	"strings"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// NoInformationAnswer is returned when retrieval produced nothing.
const NoInformationAnswer = "I'm sorry, I couldn't find any relevant information."

// Matches a sentence terminator followed by whitespace.
var sentenceEnd = regexp.MustCompile(`[.?!]\s`)

// Answerer is a placeholder for a real language model: it answers with
// the first sentence of the top-ranked snippet and cites every retrieved
// document id in order.
type Answerer struct {
	systemPrompt string
}

// NewAnswerer builds an answerer. The system prompt is carried for
// interface parity with a real model and recorded by callers; this naive
// implementation does not consume it.
func NewAnswerer(systemPrompt string) *Answerer {
	return &Answerer{systemPrompt: systemPrompt}
}

// Answer produces the answer text and the ordered citation ids for a
// query. With no snippets it returns a fixed apology and no citations.
func (a *Answerer) Answer(_ context.Context, _ string, snippets []model.Snippet) (string, []string, error) {
	if len(snippets) == 0 {
		return NoInformationAnswer, nil, nil
	}
	answer := firstSentence(snippets[0].Text)
	citations := make([]string, len(snippets))
	for i, s := range snippets {
		citations[i] = s.ID
	}
	return answer, citations, nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		return text[:loc[0]+1]
	}
	return text
}
