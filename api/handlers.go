package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/memory"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// handleChat runs one orchestrator turn (SPEC_FULL.md §6, §4.5).
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	sessionID := mintSessionID(req.SessionID)
	resp := s.orch.Handle(r.Context(), sessionID, req.Message)
	s.writeJSON(w, http.StatusOK, resp)
}

type knowledgeUpsertRequest struct {
	Documents []knowledge.Document `json:"documents"`
}

type knowledgeUpsertResponse struct {
	OK            bool `json:"ok"`
	DocumentCount int  `json:"document_count"`
	ChunkCount    int  `json:"chunk_count"`
}

// handleKnowledgeUpsert ingests documents via the Knowledge DAO write path
// (SPEC_FULL.md §4.7).
func (s *Server) handleKnowledgeUpsert(w http.ResponseWriter, r *http.Request) {
	var req knowledgeUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Documents) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("documents is required"))
		return
	}
	for i, doc := range req.Documents {
		if strings.TrimSpace(doc.ID) == "" || strings.TrimSpace(doc.Text) == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("documents[%d]: id and text are required", i))
			return
		}
	}

	chunkCount, err := s.dao.Upsert(r.Context(), req.Documents)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("upsert documents: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, knowledgeUpsertResponse{
		OK:            true,
		DocumentCount: len(req.Documents),
		ChunkCount:    chunkCount,
	})
}

type scheduleAppointmentRequest struct {
	Patient          string `json:"patient"`
	PreferredSlotISO string `json:"preferred_slot_iso"`
	Location         string `json:"location"`
}

// handleScheduleAppointment is the direct tool endpoint for booking, bypassing
// intent classification and entity extraction (SPEC_FULL.md §6).
func (s *Server) handleScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req scheduleAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.Patient = strings.TrimSpace(req.Patient)
	req.PreferredSlotISO = strings.TrimSpace(req.PreferredSlotISO)
	if req.Patient == "" || req.PreferredSlotISO == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("patient and preferred_slot_iso are required"))
		return
	}
	if req.Location == "" {
		req.Location = "Midtown"
	}

	appt, err := s.sched.Create(r.Context(), req.Patient, req.PreferredSlotISO, req.Location)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("schedule appointment: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, appt)
}

type rescheduleAppointmentRequest struct {
	ApptID     string `json:"appt_id"`
	NewSlotISO string `json:"new_slot_iso"`
}

// handleRescheduleAppointment is the direct tool endpoint for rescheduling
// (SPEC_FULL.md §6).
func (s *Server) handleRescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req rescheduleAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.ApptID = strings.TrimSpace(req.ApptID)
	req.NewSlotISO = strings.TrimSpace(req.NewSlotISO)
	if req.ApptID == "" || req.NewSlotISO == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("appt_id and new_slot_iso are required"))
		return
	}

	appt, err := s.sched.Reschedule(r.Context(), req.ApptID, req.NewSlotISO)
	if err != nil {
		if err == kv.ErrNotFound {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("appointment %s not found", req.ApptID))
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("reschedule appointment: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := s.sched.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list appointments: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, appts)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	appt, err := s.sched.Get(r.Context(), id)
	if err != nil {
		if err == kv.ErrNotFound {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("appointment %s not found", id))
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("get appointment: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, appt)
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.sched.Get(r.Context(), id); err != nil {
		if err == kv.ErrNotFound {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("appointment %s not found", id))
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("get appointment: %w", err))
		return
	}

	if err := s.sched.Delete(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("delete appointment: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleDeleteAllAppointments(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.DeleteAll(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("delete all appointments: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// cacheNamespaces lists every KV namespace /cache/clear is responsible for
// (SPEC_FULL.md §4.6) — everything except the durable memory: and appt:
// namespaces, which are not caches.
var cacheNamespaces = []string{"emb:", "query:", "knowledge:"}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	for _, ns := range cacheNamespaces {
		if err := s.store.FlushNamespace(r.Context(), ns); err != nil {
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("flush namespace %s: %w", ns, err))
			return
		}
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleKnowledgeReset(w http.ResponseWriter, r *http.Request) {
	if err := s.dao.Reset(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("reset knowledge base: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth probes the KV store and vector backend and reports 503 if
// either is unreachable (SPEC_FULL.md §6).
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{}
	healthy := true

	if err := s.store.Ping(ctx); err != nil {
		checks["kv_store"] = err.Error()
		healthy = false
	} else {
		checks["kv_store"] = "ok"
	}

	if err := s.vectors.EnsureCollection(ctx); err != nil {
		checks["vector_index"] = err.Error()
		healthy = false
	} else {
		checks["vector_index"] = "ok"
	}

	resp := healthResponse{Checks: checks}
	if healthy {
		resp.Status = "ok"
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "degraded"
	s.writeJSON(w, http.StatusServiceUnavailable, resp)
}

type statsResponse struct {
	AppointmentCount int    `json:"appointment_count"`
	SessionCount     int    `json:"session_count"`
	VectorBackend    string `json:"vector_backend"`
	EmbeddingModel   string `json:"embedding_model"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appts, err := s.sched.List(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list appointments: %w", err))
		return
	}

	sessionKeys, err := s.store.Keys(ctx, memory.Prefix)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list sessions: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		AppointmentCount: len(appts),
		SessionCount:     len(sessionKeys),
		VectorBackend:    s.cfg.VectorBackend,
		EmbeddingModel:   s.cfg.EmbeddingModel,
	})
}

type debugSession struct {
	SessionID string                  `json:"session_id"`
	LastAppt  *memory.LastAppointment `json:"last_appt,omitempty"`
}

// handleDebugSessions lists every currently-tracked session and its last
// known appointment context (SPEC_FULL.md §6 diagnostic endpoints).
func (s *Server) handleDebugSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := s.store.Keys(ctx, memory.Prefix)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list sessions: %w", err))
		return
	}

	sessions := make([]debugSession, 0, len(keys))
	for _, key := range keys {
		sessionID := strings.TrimPrefix(key, memory.Prefix)
		sc, err := s.mem.Get(ctx, sessionID)
		if err != nil {
			s.logger.Warn("debug/sessions: read session %s failed: %v", sessionID, err)
			continue
		}
		sessions = append(sessions, debugSession{SessionID: sessionID, LastAppt: sc.LastAppt})
	}

	s.writeJSON(w, http.StatusOK, sessions)
}
