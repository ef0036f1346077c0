package detector

import "strings"

// Entity terms with multiple common senses (country vs person, fruit vs
// company, ...). These are placeholder heuristics; the dispatch protocol
// around them is what matters.
var defaultAmbiguousEntities = []string{
	"jordan",
	"apple",
	"mercury",
	"amazon",
	"washington",
}

// Relative date terms that make a time reference ambiguous.
var defaultRelativeDateTerms = []string{"last", "next", "this", "recent", "ago"}

// DetectAmbiguity reports whether the query contains an ambiguous entity
// term or a relative date term. The match is a case-insensitive substring
// search, not word-boundary aware.
func (r *Registry) DetectAmbiguity(query string) bool {
	lower := strings.ToLower(query)
	if lower == "" {
		return false
	}
	for _, term := range r.ambiguousEntities {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, term := range r.relativeDateTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// CheckAskedThenAnswered reports whether the assistant asked a clarifying
// question before answering. Only the first assistant turn (index 1) is
// examined: it must contain a question mark or one of the configured
// interrogative phrases. Conversations with fewer than two turns fail.
func CheckAskedThenAnswered(conversation []string, args ClarifyArgs) bool {
	if len(conversation) < 2 {
		return false
	}
	response := strings.ToLower(conversation[1])
	if strings.Contains(response, "?") {
		return true
	}
	for _, phrase := range args.Interrogatives {
		if strings.Contains(response, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
