package contract

// Source yields raw contract documents in a deterministic order. A record
// that cannot even be parsed as structured data is a skip event handled
// inside the source; only parseable documents reach the callback.
type Source interface {
	// Each calls fn once per parseable document. A non-nil error from fn
	// aborts iteration and is returned unchanged.
	Each(fn func(origin string, doc RawDoc) error) error
}

// RawDoc is one parsed-but-unvalidated contract document.
type RawDoc interface {
	// Contract decodes and normalizes the document. Failures are
	// *SchemaError.
	Contract(origin string) (*Contract, error)
}

// Store owns all loaded contracts for the duration of a session and
// supports lookup by id. It is read-only after Load, so concurrent reads
// need no locking.
type Store struct {
	contracts map[string]*Contract
	order     []string
}

// Load consumes a Source and builds a Store. Schema validation failures
// propagate to the caller; loading is all-or-nothing for malformed
// individual records. Duplicate ids are allowed: the last record wins,
// keeping the position of the first occurrence so All stays stable.
func Load(src Source) (*Store, error) {
	s := &Store{contracts: make(map[string]*Contract)}
	err := src.Each(func(origin string, doc RawDoc) error {
		c, err := doc.Contract(origin)
		if err != nil {
			return err
		}
		if _, seen := s.contracts[c.ID]; !seen {
			s.order = append(s.order, c.ID)
		}
		s.contracts[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the contract with the given id.
func (s *Store) Get(id string) (*Contract, bool) {
	c, ok := s.contracts[id]
	return c, ok
}

// All returns the contracts in first-load order.
func (s *Store) All() []*Contract {
	out := make([]*Contract, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.contracts[id])
	}
	return out
}

// Len returns the number of loaded contracts.
func (s *Store) Len() int { return len(s.order) }
