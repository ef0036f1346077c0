// Package session drives one full evaluation pass: retrieve, answer,
// evaluate every in-scope contract, and stream one run record per input
// record to the output sink.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mohdibrahimai/HELMSMAN/internal/contract"
	"github.com/mohdibrahimai/HELMSMAN/internal/evaluate"
	"github.com/mohdibrahimai/HELMSMAN/internal/metrics"
	"github.com/mohdibrahimai/HELMSMAN/internal/model"
	"github.com/mohdibrahimai/HELMSMAN/internal/rag"
	"github.com/mohdibrahimai/HELMSMAN/internal/sink"
)

// Answerer generates an answer and citations from a query and retrieved
// snippets. It is the only collaborator permitted to be slow, so the
// session wraps it in a per-record timeout.
type Answerer interface {
	Answer(ctx context.Context, query string, snippets []model.Snippet) (string, []string, error)
}

// ClaimChecker labels claims in an answer; see the truth package.
type ClaimChecker interface {
	Evaluate(answer string, citations []string) map[int]string
}

// ErrNoContracts is returned when a session would run with an empty
// contract store. An empty set almost always means a misconfigured
// contracts directory, so it fails loudly before any record is written.
var ErrNoContracts = errors.New("no contracts loaded")

// DefaultAnswerTimeout bounds one answering call.
const DefaultAnswerTimeout = 30 * time.Second

// Config assembles a session.
type Config struct {
	Store     *contract.Store
	Evaluator *evaluate.Evaluator
	Retriever rag.Source
	Answerer  Answerer
	Sink      sink.Sink

	// Claims is optional; when set, claim labels are recorded on every
	// answered record.
	Claims ClaimChecker

	ModelVersion  string
	PromptVersion string
	AnswerTimeout time.Duration
}

// Session evaluates pack records sequentially. Record i+1 is not started
// before record i has been fully emitted; the contract store and detector
// registry are the only shared state and both are read-only.
type Session struct {
	cfg      Config
	recorder *metrics.Recorder
}

// New validates the configuration and builds a session.
func New(cfg Config) (*Session, error) {
	if cfg.Store == nil || cfg.Store.Len() == 0 {
		return nil, ErrNoContracts
	}
	if cfg.Evaluator == nil {
		return nil, errors.New("session: evaluator is required")
	}
	if cfg.Retriever == nil || cfg.Answerer == nil {
		return nil, errors.New("session: retriever and answerer are required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("session: sink is required")
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = DefaultAnswerTimeout
	}
	return &Session{cfg: cfg, recorder: metrics.NewRecorder()}, nil
}

// Run evaluates every pack item and streams run records to the sink in
// input order. It returns the number of records emitted.
func (s *Session) Run(ctx context.Context, items []model.PackItem) (int, error) {
	runID := uuid.NewString()
	log.Printf("session %s: %d contracts, %d records", runID, s.cfg.Store.Len(), len(items))

	emitted := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return emitted, err
		}
		rec := s.evaluateItem(ctx, runID, item)
		if err := s.cfg.Sink.Write(ctx, rec); err != nil {
			return emitted, fmt.Errorf("write run record %s: %w", rec.SeedID, err)
		}
		s.recorder.ObserveRecord(rec)
		emitted++
	}
	log.Printf("session %s: emitted %d records", runID, emitted)
	return emitted, nil
}

func (s *Session) evaluateItem(ctx context.Context, runID string, item model.PackItem) *model.RunRecord {
	query := item.QueryText()
	rec := &model.RunRecord{
		RunID:           runID,
		ModelVersion:    s.cfg.ModelVersion,
		PromptVersion:   s.cfg.PromptVersion,
		Locale:          item.Locale,
		Topic:           item.Topic,
		SeedID:          item.ID,
		InputQuery:      query,
		Status:          model.StatusOK,
		ContractResults: []model.Verdict{},
	}

	snippets, err := s.cfg.Retriever.Retrieve(ctx, query)
	if err != nil {
		// Degrade to an empty retrieval; the contracts still run
		// against whatever answer comes back.
		log.Printf("retrieve %q: %v", query, err)
		snippets = nil
	}
	rec.RetrievedSnippets = snippets

	answerCtx, cancel := context.WithTimeout(ctx, s.cfg.AnswerTimeout)
	answer, citations, err := s.cfg.Answerer.Answer(answerCtx, query, snippets)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("answer %q: timed out after %s", query, s.cfg.AnswerTimeout)
			rec.Status = model.StatusAnswerTimeout
			return rec
		}
		log.Printf("answer %q: %v", query, err)
		answer, citations = "", nil
	}
	rec.Answer = answer
	rec.Citations = citations

	if s.cfg.Claims != nil {
		rec.ClaimLabels = s.cfg.Claims.Evaluate(answer, citations)
	}

	evalCtx := evaluate.Context{
		Query:        query,
		Answer:       answer,
		Conversation: []string{query, answer},
		Citations:    citations,
	}
	for _, c := range s.cfg.Store.All() {
		if !c.InScope(item.Topic, item.Locale) {
			continue
		}
		rec.ContractResults = append(rec.ContractResults, s.cfg.Evaluator.Evaluate(c, evalCtx))
	}
	return rec
}
