package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/frontdesk/rag-orchestrator/config"
	"github.com/frontdesk/rag-orchestrator/extractor"
	"github.com/frontdesk/rag-orchestrator/intent"
	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/lexical"
	"github.com/frontdesk/rag-orchestrator/logging"
	"github.com/frontdesk/rag-orchestrator/memory"
	"github.com/frontdesk/rag-orchestrator/orchestrator"
	"github.com/frontdesk/rag-orchestrator/schedule"
	"github.com/frontdesk/rag-orchestrator/vectorindex"
)

// stubEmbedder mirrors orchestrator's test embedder
// (orchestrator/orchestrator_test.go); stubVectorIndex is simpler than
// orchestrator's and scores every point 0.5. Neither wires a real provider.
type stubEmbedder struct{ dim int }

func (f *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, f.dim)
		for j, r := range t {
			vec[j%f.dim] += float32(r)
		}
		out[i] = vec
	}
	return out, nil
}

type stubVectorIndex struct {
	points []vectorindex.Point
}

func (f *stubVectorIndex) EnsureCollection(ctx context.Context) error { return nil }
func (f *stubVectorIndex) Reset(ctx context.Context) error            { f.points = nil; return nil }
func (f *stubVectorIndex) Close() error { return nil }

func (f *stubVectorIndex) Upsert(ctx context.Context, points []vectorindex.Point) error {
	f.points = append(f.points, points...)
	return nil
}

func (f *stubVectorIndex) Search(ctx context.Context, embedding []float32, limit int) ([]vectorindex.ScoredPoint, error) {
	out := make([]vectorindex.ScoredPoint, 0, len(f.points))
	for _, p := range f.points {
		out = append(out, vectorindex.ScoredPoint{Point: p, Score: 0.5})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := kv.New(kv.Options{Addr: mr.Addr()})
	embedder := &stubEmbedder{dim: 16}
	vectors := &stubVectorIndex{}
	dao := knowledge.New(vectors, lexical.New(), embedder, store, logging.New())
	ext := extractor.New(embedder)
	classifier, err := intent.NewNgramModel("")
	if err != nil {
		t.Fatalf("load intent model: %v", err)
	}
	mem := memory.New(store)
	sched := schedule.New(store)
	sched.Clock = func() time.Time { return time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC) }

	orch := orchestrator.New(dao, ext, classifier, mem, sched, logging.New())
	orch.Clock = sched.Clock

	return New(config.Config{VectorBackend: "qdrant", EmbeddingModel: "text-embedding-3-small"}, logging.New(), orch, dao, sched, mem, store, vectors)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestChatMintsSessionIDWhenOmitted(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", chatRequest{Message: "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orchestrator.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a minted session_id")
	}
}

func TestChatMissingMessageReturns400(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", chatRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestKnowledgeUpsertThenChatFindsCitation(t *testing.T) {
	srv := newTestServer(t)

	upsertRec := doJSON(t, srv, http.MethodPost, "/knowledge", knowledgeUpsertRequest{
		Documents: []knowledge.Document{{ID: "pol-1", Text: "Our late policy: patients arriving more than 15 minutes late are rescheduled."}},
	})
	if upsertRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", upsertRec.Code, upsertRec.Body.String())
	}

	chatRec := doJSON(t, srv, http.MethodPost, "/chat", chatRequest{Message: "what is the late policy?", SessionID: "s1"})
	if chatRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", chatRec.Code, chatRec.Body.String())
	}

	var resp orchestrator.Response
	if err := json.Unmarshal(chatRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].DocID != "pol-1" {
		t.Fatalf("expected a pol-1 citation, got %+v", resp.Citations)
	}
}

func TestScheduleAppointmentThenGetAndDelete(t *testing.T) {
	srv := newTestServer(t)

	createRec := doJSON(t, srv, http.MethodPost, "/tools/schedule_appointment", scheduleAppointmentRequest{
		Patient:          "Chen",
		PreferredSlotISO: "2026-08-07T10:30:00Z",
		Location:         "Midtown",
	})
	if createRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", createRec.Code, createRec.Body.String())
	}

	var appt schedule.Appointment
	if err := json.Unmarshal(createRec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode appointment: %v", err)
	}
	if appt.ApptID == "" {
		t.Fatal("expected a non-empty appt_id")
	}

	getRec := doJSON(t, srv, http.MethodGet, "/appointments/"+appt.ApptID, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getRec.Code)
	}

	deleteRec := doJSON(t, srv, http.MethodDelete, "/appointments/"+appt.ApptID, nil)
	if deleteRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", deleteRec.Code)
	}

	missingRec := doJSON(t, srv, http.MethodGet, "/appointments/"+appt.ApptID, nil)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingRec.Code)
	}
}

func TestRescheduleUnknownApptReturns404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/tools/reschedule_appointment", rescheduleAppointmentRequest{
		ApptID:     "does-not-exist",
		NewSlotISO: "2026-08-07T11:00:00Z",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthReportsOK(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStatsReflectsAppointmentAndSessionCounts(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/chat", chatRequest{Message: "Book Chen for tomorrow at 10:30", SessionID: "s2"})

	rec := doJSON(t, srv, http.MethodGet, "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.AppointmentCount != 1 {
		t.Fatalf("expected 1 appointment, got %d", stats.AppointmentCount)
	}
	if stats.SessionCount != 1 {
		t.Fatalf("expected 1 session, got %d", stats.SessionCount)
	}
}

func TestDebugSessionsListsLastAppt(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/chat", chatRequest{Message: "Book Chen for tomorrow at 10:30", SessionID: "s3"})

	rec := doJSON(t, srv, http.MethodGet, "/debug/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var sessions []debugSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "s3" || sessions[0].LastAppt == nil {
		t.Fatalf("expected one session s3 with a last_appt, got %+v", sessions)
	}
}

func TestCacheClearAndKnowledgeReset(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/knowledge", knowledgeUpsertRequest{
		Documents: []knowledge.Document{{ID: "doc-1", Text: "some indexed text"}},
	})

	if rec := doJSON(t, srv, http.MethodDelete, "/cache/clear", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from cache/clear, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodDelete, "/knowledge/reset", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from knowledge/reset, got %d", rec.Code)
	}
}
