package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEnqueuer scripts the enqueue outcomes and counts calls.
type stubEnqueuer struct {
	err      error
	cleanups int
	expiries int
}

func (s *stubEnqueuer) EnqueueSessionCleanup(context.Context) (*asynq.TaskInfo, error) {
	s.cleanups++
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-cleanup-1", Queue: QueueDefault}, nil
}

func (s *stubEnqueuer) EnqueueTrialExpire(context.Context) (*asynq.TaskInfo, error) {
	s.expiries++
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-trial-1", Queue: QueueDefault}, nil
}

func newJobsRouter(enq Enqueuer) chi.Router {
	h := NewHandler(nil, enq, nil)
	r := chi.NewRouter()
	r.Route("/api/jobs", h.MountRoutes)
	return r
}

func post(router chi.Router, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestTriggerEndpointsEnqueue(t *testing.T) {
	enq := &stubEnqueuer{}
	router := newJobsRouter(enq)

	rec := post(router, "/api/jobs/session-cleanup")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TaskSessionCleanup, body["task"])
	assert.Equal(t, "task-cleanup-1", body["id"])
	assert.Equal(t, 1, enq.cleanups)

	rec = post(router, "/api/jobs/trial-expire")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TaskTrialExpire, body["task"])
	assert.Equal(t, 1, enq.expiries)
}

func TestTriggerWithoutEnqueuerUnavailable(t *testing.T) {
	router := newJobsRouter(nil)

	rec := post(router, "/api/jobs/session-cleanup")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTriggerEnqueueFailureUnavailable(t *testing.T) {
	enq := &stubEnqueuer{err: errors.New("redis down")}
	router := newJobsRouter(enq)

	rec := post(router, "/api/jobs/trial-expire")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, enq.expiries)
}

func TestHealthWithoutInspector(t *testing.T) {
	router := newJobsRouter(&stubEnqueuer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
