// Package sink provides the output sinks run records stream into: a
// line-delimited JSON writer, a Postgres table, and a fan-out combinator.
package sink

import (
	"context"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Sink receives run records one at a time, in input order. Each Write is
// one atomic emission; records are never mutated after being written.
type Sink interface {
	Write(ctx context.Context, rec *model.RunRecord) error
	Close() error
}

// MultiSink fans every record out to several sinks in order. The first
// write error aborts the fan-out; Close closes all sinks and returns the
// first error seen.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Write(ctx context.Context, rec *model.RunRecord) error {
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
