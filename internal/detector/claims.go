package detector

import (
	"regexp"
	"strings"
	"unicode"
)

// Heuristic proper-noun detector: a capitalized token of length > 3.
var properNounPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]{3,}\b`)

// DetectClaims reports whether an answer appears to contain factual
// claims: any digit, a capitalized token longer than three letters, or a
// character length over 30. Blank answers never contain claims.
func DetectClaims(answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	for _, ch := range answer {
		if unicode.IsDigit(ch) {
			return true
		}
	}
	for _, loc := range properNounPattern.FindAllStringIndex(answer, -1) {
		// A capital at the very start is sentence case, not a
		// proper-noun signal ("Hello world." carries no claim).
		if loc[0] > 0 {
			return true
		}
	}
	return len(answer) > 30
}

// CheckCitationQuality reports whether the citation list meets the
// minimum count and, when independence is required, contains no duplicate
// identifiers. Duplicate ids stand in for same-domain citations here.
func CheckCitationQuality(citations []string, args CitationArgs) bool {
	if len(citations) < args.MinCitations {
		return false
	}
	if args.RequireIndependentDomains {
		seen := make(map[string]struct{}, len(citations))
		for _, id := range citations {
			if _, dup := seen[id]; dup {
				return false
			}
			seen[id] = struct{}{}
		}
	}
	return true
}
