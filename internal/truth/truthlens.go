// Package truth is a naive stand-in for a claim verification service. It
// splits an answer into sentence-level claims and labels every claim
// "supported" when at least one citation is present, otherwise
// "unverifiable". A real verifier would check each claim against the
// cited sources.
package truth

import (
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`([.?!])\s+`)

// Lens assesses claims in generated answers.
type Lens struct{}

// NewLens builds a Lens.
func NewLens() *Lens { return &Lens{} }

// Analyse splits an answer into naive claims on sentence boundaries.
func (l *Lens) Analyse(answer string) []string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	parts := sentenceBoundary.Split(answer, -1)
	boundaries := sentenceBoundary.FindAllStringSubmatch(answer, -1)
	claims := make([]string, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		// Re-attach the terminator the split consumed.
		if i < len(boundaries) {
			p += boundaries[i][1]
		}
		claims = append(claims, p)
	}
	return claims
}

// Evaluate labels each claim index: "supported" when any citation exists,
// "unverifiable" otherwise.
func (l *Lens) Evaluate(answer string, citations []string) map[int]string {
	claims := l.Analyse(answer)
	label := "unverifiable"
	if len(citations) > 0 {
		label = "supported"
	}
	out := make(map[int]string, len(claims))
	for i := range claims {
		out[i] = label
	}
	return out
}
