// Package server exposes the contract evaluator over HTTP for ad-hoc
// checks against an already-loaded contract set.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mohdibrahimai/HELMSMAN/internal/contract"
	"github.com/mohdibrahimai/HELMSMAN/internal/evaluate"
	"github.com/mohdibrahimai/HELMSMAN/internal/metrics"
	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// Server evaluates caller-supplied contexts against the loaded store.
type Server struct {
	store     *contract.Store
	evaluator *evaluate.Evaluator
}

// New builds a server over a loaded store and evaluator.
func New(store *contract.Store, evaluator *evaluate.Evaluator) *Server {
	return &Server{store: store, evaluator: evaluator}
}

// Router wires the HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/v1/evaluate", s.handleEvaluate)
	return r
}

type evaluateRequest struct {
	Query        string   `json:"query"`
	Answer       string   `json:"answer"`
	Conversation []string `json:"conversation,omitempty"`
	Citations    []string `json:"citations,omitempty"`
	Topic        string   `json:"topic,omitempty"`
	Locale       string   `json:"locale,omitempty"`
}

type evaluateResponse struct {
	Topic           string          `json:"topic"`
	Locale          string          `json:"locale"`
	ContractResults []model.Verdict `json:"contract_results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleEvaluate runs every in-scope contract against the supplied
// context. Conversation defaults to [query, answer] when omitted, the
// same shape the batch session builds.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Topic == "" {
		req.Topic = "general_qa"
	}
	if req.Locale == "" {
		req.Locale = "en"
	}
	if len(req.Conversation) == 0 {
		req.Conversation = []string{req.Query, req.Answer}
	}

	evalCtx := evaluate.Context{
		Query:        req.Query,
		Answer:       req.Answer,
		Conversation: req.Conversation,
		Citations:    req.Citations,
	}
	results := []model.Verdict{}
	for _, c := range s.store.All() {
		if !c.InScope(req.Topic, req.Locale) {
			continue
		}
		results = append(results, s.evaluator.Evaluate(c, evalCtx))
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Topic:           req.Topic,
		Locale:          req.Locale,
		ContractResults: results,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"contracts": s.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
