// Package contract defines the behavioural-contract model: the schema for
// a single contract, normalization of loosely-typed YAML sources into that
// schema, and the in-memory store the evaluation session reads from.
//
// Contracts are declarative: they name the precondition gating whether they
// apply and the pass-criteria function that decides the verdict. The
// contract layer does not interpret obligation/forbidden/scoring contents;
// it preserves them opaquely for the evaluator and future extensions.
package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SchemaError reports a contract record that parsed as structured data but
// violates the required-field constraints. It is the only error class that
// escapes contract loading; see Store.Load.
type SchemaError struct {
	Origin string // file path or other source label
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("contract schema: field %q %s", e.Field, e.Reason)
	if e.Origin != "" {
		msg += " (" + e.Origin + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StringList decodes a YAML scalar or sequence into a list of strings.
// Hand-written contract files often supply a single scalar where a list is
// expected; wrapping it is tolerated rather than rejected.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence, got %v", node.Kind)
	}
}

// Contains reports whether the list contains s.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Metrics is the scoring configuration of a contract.
type Metrics struct {
	Weight       float64 `yaml:"weight"`
	PassCriteria string  `yaml:"pass_criteria"`
	Scoring      Params  `yaml:"scoring"`
}

// DetectorDef binds a registered function name to per-contract arguments.
type DetectorDef struct {
	Fn   string `yaml:"fn"`
	Args Params `yaml:"args"`
}

// Messages holds the per-outcome message templates of a contract.
type Messages struct {
	OnPass                 string   `yaml:"on_pass"`
	OnFailCount            string   `yaml:"on_fail_count"`
	OnFailIndependence     string   `yaml:"on_fail_independence"`
	OnFailPrecision        string   `yaml:"on_fail_precision"`
	OnFailCoverage         string   `yaml:"on_fail_coverage"`
	OnFailAnsweredDirectly string   `yaml:"on_fail_answered_directly"`
	OnFailNoWait           string   `yaml:"on_fail_no_wait"`
	Guidance               []string `yaml:"guidance"`
}

// Contract is one behavioural rule. Instances are immutable after loading.
type Contract struct {
	ID           string                 `yaml:"id"`
	Version      string                 `yaml:"version"`
	Description  string                 `yaml:"description"`
	AppliesTo    StringList             `yaml:"applies_to"`
	Locales      StringList             `yaml:"locales"`
	Precondition string                 `yaml:"precondition"`
	Obligation   Params                 `yaml:"obligation"`
	Forbidden    Params                 `yaml:"forbidden"`
	Metrics      *Metrics               `yaml:"metrics"`
	Detectors    map[string]DetectorDef `yaml:"detectors"`
	Messages     *Messages              `yaml:"messages"`
	Examples     []map[string]any       `yaml:"examples"`
}

// InScope reports whether the contract applies to a record's topic and
// locale. Out-of-scope contracts produce no verdict at all.
func (c *Contract) InScope(topic, locale string) bool {
	return c.AppliesTo.Contains(topic) && c.Locales.Contains(locale)
}

// DetectorArgs returns the args declared for the named detector, or zero
// Params when the contract declares none. Args are always optional and
// carry documented defaults, so a missing entry is never an error.
func (c *Contract) DetectorArgs(name string) Params {
	if c.Detectors == nil {
		return Params{}
	}
	return c.Detectors[name].Args
}

// OnPassMessage returns the on_pass template, or "" when absent.
func (c *Contract) OnPassMessage() string {
	if c.Messages == nil {
		return ""
	}
	return c.Messages.OnPass
}

// Decode builds a Contract from a parsed YAML mapping and normalizes it.
// origin labels the source (typically a file path) for error reporting.
// All failures here are *SchemaError: the document already parsed, so any
// shape problem is a schema violation, not a parse failure.
func Decode(node *yaml.Node, origin string) (*Contract, error) {
	var c Contract
	if err := node.Decode(&c); err != nil {
		return nil, &SchemaError{Origin: origin, Field: "(document)", Reason: "does not match contract shape", Err: err}
	}
	if err := c.normalize(origin); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Contract) normalize(origin string) error {
	if c.ID == "" {
		return &SchemaError{Origin: origin, Field: "id", Reason: "is required"}
	}
	if len(c.AppliesTo) == 0 {
		return &SchemaError{Origin: origin, Field: "applies_to", Reason: "must be a non-empty list"}
	}
	if len(c.Locales) == 0 {
		return &SchemaError{Origin: origin, Field: "locales", Reason: "must be a non-empty list"}
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Metrics != nil && c.Metrics.Weight == 0 {
		c.Metrics.Weight = 1.0
	}
	return nil
}
