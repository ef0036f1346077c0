package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Params is an insertion-ordered key/value container for the free-form
// contract fields (obligation, forbidden, scoring, detector args). The
// core never interprets these generically; named detectors reach into the
// specific keys they know about, so values stay opaque.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams builds Params from alternating key/value pairs, mainly for
// tests and in-process construction.
func NewParams(pairs ...any) Params {
	if len(pairs)%2 != 0 {
		panic("contract.NewParams: odd number of arguments")
	}
	var p Params
	for i := 0; i < len(pairs); i += 2 {
		p.Set(pairs[i].(string), pairs[i+1])
	}
	return p
}

// Set inserts or replaces a key. Insertion order is preserved; replacing
// an existing key keeps its original position.
func (p *Params) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of keys.
func (p Params) Len() int { return len(p.keys) }

// IsZero reports whether no keys are set. yaml.v3 uses this to omit empty
// Params when marshalling.
func (p Params) IsZero() bool { return len(p.keys) == 0 }

// StringSlice coerces the value at key into a []string. YAML sequences
// decode as []any, so each element is stringified if it is a string;
// non-string elements and non-sequence values yield nil.
func (p Params) StringSlice(key string) []string {
	v, ok := p.values[key]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// Int coerces the value at key into an int, returning def when the key is
// absent or not numeric. YAML decodes integers as int and JSON as float64.
func (p Params) Int(key string, def int) int {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Bool coerces the value at key into a bool, returning def when absent or
// not a bool.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// UnmarshalYAML decodes a YAML mapping, preserving key order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping, got %v", node.Kind)
	}
	*p = Params{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		p.Set(key, value)
	}
	return nil
}

// MarshalYAML emits the mapping in insertion order.
func (p Params) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range p.keys {
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		if err := valNode.Encode(p.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return node, nil
}
