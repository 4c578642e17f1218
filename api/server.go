// Package api exposes the HTTP surface over the orchestrator and its
// component stores (SPEC_FULL.md §6). It is a thin adapter — not the focus
// of design or test effort — grounded on the teacher's api/server.go
// net/http.ServeMux structure and JSON helper conventions, generalized
// from a single /v1/chat+/v1/ingest+/v1/clear surface to the fuller
// chat/knowledge/tools/appointments/diagnostics routes this domain needs.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/frontdesk/rag-orchestrator/config"
	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/logging"
	"github.com/frontdesk/rag-orchestrator/memory"
	"github.com/frontdesk/rag-orchestrator/orchestrator"
	"github.com/frontdesk/rag-orchestrator/schedule"
	"github.com/frontdesk/rag-orchestrator/vectorindex"
)

// Server wires the orchestrator and its backing stores to the HTTP surface
// described in SPEC_FULL.md §6.
type Server struct {
	cfg     config.Config
	logger  *logging.Logger
	orch    *orchestrator.Orchestrator
	dao     *knowledge.DAO
	sched   *schedule.Store
	mem     *memory.Store
	store   kv.Store
	vectors vectorindex.Index
	handler http.Handler
}

// New constructs a Server over the already-wired components (see
// main.go). logger defaults to logging.New() if nil.
func New(
	cfg config.Config,
	logger *logging.Logger,
	orch *orchestrator.Orchestrator,
	dao *knowledge.DAO,
	sched *schedule.Store,
	mem *memory.Store,
	store kv.Store,
	vectors vectorindex.Index,
) *Server {
	if logger == nil {
		logger = logging.New()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		orch:    orch,
		dao:     dao,
		sched:   sched,
		mem:     mem,
		store:   store,
		vectors: vectors,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /knowledge", s.handleKnowledgeUpsert)
	mux.HandleFunc("POST /tools/schedule_appointment", s.handleScheduleAppointment)
	mux.HandleFunc("POST /tools/reschedule_appointment", s.handleRescheduleAppointment)

	mux.HandleFunc("GET /appointments", s.handleListAppointments)
	mux.HandleFunc("GET /appointments/{id}", s.handleGetAppointment)
	mux.HandleFunc("DELETE /appointments/{id}", s.handleDeleteAppointment)
	mux.HandleFunc("DELETE /appointments", s.handleDeleteAllAppointments)

	mux.HandleFunc("DELETE /cache/clear", s.handleCacheClear)
	mux.HandleFunc("DELETE /knowledge/reset", s.handleKnowledgeReset)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /debug/sessions", s.handleDebugSessions)

	return mux
}

// mintSessionID returns req's session id, or a fresh opaque one if it was
// omitted (SPEC_FULL.md §6: "session_id omitted on /chat -> server mints a
// fresh opaque id (uuid.New())").
func mintSessionID(sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	return uuid.New().String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response: %v", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("api error (%d): %v", status, err)
	resp := errorResponse{Error: err.Error()}
	if status >= http.StatusInternalServerError {
		resp = errorResponse{Error: "internal error", Details: err.Error()}
	}
	s.writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
