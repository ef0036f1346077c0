// Package evaluate implements the contract evaluator: a pure function
// from one (contract, evaluation context) pair to a verdict.
package evaluate

import (
	"github.com/mohdibrahimai/HELMSMAN/internal/contract"
	"github.com/mohdibrahimai/HELMSMAN/internal/detector"
	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Context is the per-record input to the evaluator. Conversation index 0
// is the user query and index 1 the first assistant turn; citations keep
// their original order and may contain duplicates, which is meaningful to
// the independence check.
type Context struct {
	Query        string   `json:"query"`
	Answer       string   `json:"answer"`
	Conversation []string `json:"conversation"`
	Citations    []string `json:"citations"`
}

// Evaluator resolves contract-declared detector names through the
// registry and produces verdicts. It holds no per-evaluation state:
// calling Evaluate twice with the same inputs yields identical verdicts.
type Evaluator struct {
	detectors *detector.Registry
}

// New builds an evaluator over the given detector registry.
func New(reg *detector.Registry) *Evaluator {
	return &Evaluator{detectors: reg}
}

// Evaluate runs the precondition gate and the pass-criteria check for one
// contract against one context. Scope filtering by topic/locale happens in
// the session, before this is called.
//
// A contract whose precondition does not hold is trivially satisfied: the
// verdict passes with the on_pass message. Unknown precondition or
// criteria names also resolve permissively, so a contract referencing
// future logic never fails or aborts a run.
func (e *Evaluator) Evaluate(c *contract.Contract, ctx Context) model.Verdict {
	if c.Precondition != "" {
		kind := detector.ParsePrecondition(c.Precondition)
		if !e.detectors.Precondition(kind, ctx.Query, ctx.Answer) {
			return model.Verdict{ID: c.ID, Passed: true, Message: c.OnPassMessage()}
		}
	}

	criteria := detector.CriteriaUnknown
	if c.Metrics != nil {
		criteria = detector.ParseCriteria(c.Metrics.PassCriteria)
	}
	args := c.DetectorArgs(criteria.String())
	passed := e.detectors.Criteria(criteria, ctx.Conversation, ctx.Citations, args)

	return model.Verdict{
		ID:      c.ID,
		Passed:  passed,
		Message: verdictMessage(c, criteria, passed),
	}
}

// verdictMessage selects the message template for the outcome. Failures
// use the criteria-specific field, falling back to a generic string when
// the contract declares none.
func verdictMessage(c *contract.Contract, criteria detector.CriteriaKind, passed bool) string {
	if passed {
		return c.OnPassMessage()
	}
	var specific string
	if c.Messages != nil {
		switch criteria {
		case detector.AskedThenAnswered:
			specific = c.Messages.OnFailAnsweredDirectly
		case detector.PrecisionAndCoverage:
			specific = c.Messages.OnFailPrecision
		}
	}
	if specific != "" {
		return specific
	}
	return "Failed " + criteria.Category() + " contract"
}
