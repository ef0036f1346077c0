// Package detector implements the built-in detectors the evaluator
// resolves from contract definitions: precondition predicates over the
// query/answer and pass-criteria checks over the conversation/citations.
//
// Contract files name detectors as strings. Those names are parsed once
// into closed kind enumerations; an unrecognized name maps to the Unknown
// kind, which the evaluator treats permissively (precondition unknown ⇒
// applies, criteria unknown ⇒ passes) so that contracts referencing
// not-yet-implemented logic degrade to "always satisfied" instead of
// crashing a run.
package detector

import "github.com/mohdibrahimai/HELMSMAN/internal/contract"

// PreconditionKind identifies a built-in precondition predicate.
type PreconditionKind int

const (
	PreconditionUnknown PreconditionKind = iota
	QueryIsAmbiguous
	ContainsFactualClaims
)

// ParsePrecondition maps a contract-declared name to its kind. Unknown
// names are valid and yield PreconditionUnknown, never an error.
func ParsePrecondition(name string) PreconditionKind {
	switch name {
	case "query_is_ambiguous":
		return QueryIsAmbiguous
	case "contains_factual_claims":
		return ContainsFactualClaims
	default:
		return PreconditionUnknown
	}
}

func (k PreconditionKind) String() string {
	switch k {
	case QueryIsAmbiguous:
		return "query_is_ambiguous"
	case ContainsFactualClaims:
		return "contains_factual_claims"
	default:
		return "unknown"
	}
}

// CriteriaKind identifies a built-in pass-criteria check.
type CriteriaKind int

const (
	CriteriaUnknown CriteriaKind = iota
	AskedThenAnswered
	PrecisionAndCoverage
)

// ParseCriteria maps a contract-declared pass_criteria name to its kind.
func ParseCriteria(name string) CriteriaKind {
	switch name {
	case "asked_then_answered":
		return AskedThenAnswered
	case "precision_and_coverage":
		return PrecisionAndCoverage
	default:
		return CriteriaUnknown
	}
}

func (k CriteriaKind) String() string {
	switch k {
	case AskedThenAnswered:
		return "asked_then_answered"
	case PrecisionAndCoverage:
		return "precision_and_coverage"
	default:
		return "unknown"
	}
}

// Category names the contract family a criteria belongs to, used in
// generic failure messages when a contract declares no specific template.
func (k CriteriaKind) Category() string {
	switch k {
	case AskedThenAnswered:
		return "disambiguation"
	case PrecisionAndCoverage:
		return "citations"
	default:
		return "generic"
	}
}

// ClarifyArgs is the typed argument payload of asked_then_answered.
type ClarifyArgs struct {
	Interrogatives []string
}

// ClarifyArgsFrom decodes ClarifyArgs from a contract's generic args.
// A missing or empty map yields the documented default (no phrases).
func ClarifyArgsFrom(p contract.Params) ClarifyArgs {
	return ClarifyArgs{Interrogatives: p.StringSlice("clarify_interrogatives")}
}

// CitationArgs is the typed argument payload of precision_and_coverage.
type CitationArgs struct {
	MinCitations              int
	RequireIndependentDomains bool
}

// CitationArgsFrom decodes CitationArgs from a contract's generic args,
// defaulting min_citations to 2.
func CitationArgsFrom(p contract.Params) CitationArgs {
	return CitationArgs{
		MinCitations:              p.Int("min_citations", 2),
		RequireIndependentDomains: p.Bool("require_independent_domains", false),
	}
}

// Config customizes the term sets used by the ambiguity precondition.
// Zero-value fields fall back to the built-in defaults.
type Config struct {
	AmbiguousEntities []string
	RelativeDateTerms []string
}

// Registry holds the built-in detectors and their configuration. It is
// read-only after construction and safe for concurrent use.
type Registry struct {
	ambiguousEntities []string
	relativeDateTerms []string
}

// NewRegistry builds a Registry with the default term sets.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(Config{})
}

// NewRegistryWithConfig builds a Registry, overriding term sets where the
// config supplies them.
func NewRegistryWithConfig(cfg Config) *Registry {
	r := &Registry{
		ambiguousEntities: defaultAmbiguousEntities,
		relativeDateTerms: defaultRelativeDateTerms,
	}
	if len(cfg.AmbiguousEntities) > 0 {
		r.ambiguousEntities = cfg.AmbiguousEntities
	}
	if len(cfg.RelativeDateTerms) > 0 {
		r.relativeDateTerms = cfg.RelativeDateTerms
	}
	return r
}

// Precondition dispatches a precondition kind against the query/answer.
// Unknown kinds apply unconditionally.
func (r *Registry) Precondition(kind PreconditionKind, query, answer string) bool {
	switch kind {
	case QueryIsAmbiguous:
		return r.DetectAmbiguity(query)
	case ContainsFactualClaims:
		return DetectClaims(answer)
	default:
		return true
	}
}

// Criteria dispatches a pass-criteria kind against the conversation and
// citations, decoding the typed args for the kind. Unknown kinds pass.
func (r *Registry) Criteria(kind CriteriaKind, conversation, citations []string, args contract.Params) bool {
	switch kind {
	case AskedThenAnswered:
		return CheckAskedThenAnswered(conversation, ClarifyArgsFrom(args))
	case PrecisionAndCoverage:
		return CheckCitationQuality(citations, CitationArgsFrom(args))
	default:
		return true
	}
}
