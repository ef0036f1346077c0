package truth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyseSplitsSentences(t *testing.T) {
	l := NewLens()

	claims := l.Analyse("Jordan is a country. It borders Israel! Does it border Iraq? Yes.")
	assert.Equal(t, []string{
		"Jordan is a country.",
		"It borders Israel!",
		"Does it border Iraq?",
		"Yes.",
	}, claims)

	assert.Nil(t, l.Analyse(""))
	assert.Nil(t, l.Analyse("   "))
	assert.Equal(t, []string{"One sentence only."}, l.Analyse("One sentence only."))
}

func TestEvaluateLabels(t *testing.T) {
	l := NewLens()

	supported := l.Evaluate("First claim. Second claim.", []string{"doc1"})
	assert.Equal(t, map[int]string{0: "supported", 1: "supported"}, supported)

	unverifiable := l.Evaluate("First claim. Second claim.", nil)
	assert.Equal(t, map[int]string{0: "unverifiable", 1: "unverifiable"}, unverifiable)

	assert.Empty(t, l.Evaluate("", []string{"doc1"}))
}
