package timeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// mockRepository keeps events in memory and returns case listings in
// event-date order, matching the SQL ORDER BY.
type mockRepository struct {
	mu         sync.Mutex
	caseOwners map[string]string
	events     map[string]Event
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		caseOwners: make(map[string]string),
		events:     make(map[string]Event),
	}
}

func (m *mockRepository) addCase(ownerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.caseOwners[id] = ownerID
	return id
}

func (m *mockRepository) ListByCase(_ context.Context, caseID, userID string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.caseOwners[caseID] != userID {
		return nil, nil
	}
	var out []Event
	for _, ev := range m.events {
		if ev.CaseID == caseID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id, userID string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok || m.caseOwners[ev.CaseID] != userID {
		return nil, shared.ErrNotFound
	}
	return &ev, nil
}

func (m *mockRepository) Create(_ context.Context, userID string, params CreateParams) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.caseOwners[params.CaseID] != userID {
		return nil, shared.ErrNotFound
	}
	ev := Event{
		ID:          uuid.NewString(),
		CaseID:      params.CaseID,
		Title:       params.Title,
		Description: params.Description,
		EventDate:   params.EventDate,
		CreatedAt:   time.Now().UTC(),
	}
	m.events[ev.ID] = ev
	return &ev, nil
}

func (m *mockRepository) Update(_ context.Context, id, userID string, params UpdateParams) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok || m.caseOwners[ev.CaseID] != userID {
		return nil, shared.ErrNotFound
	}
	ev.Title = params.Title
	ev.Description = params.Description
	ev.EventDate = params.EventDate
	m.events[id] = ev
	return &ev, nil
}

func (m *mockRepository) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok || m.caseOwners[ev.CaseID] != userID {
		return shared.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

var _ RepositoryPort = (*mockRepository)(nil)

func newTestRouter(repo RepositoryPort) http.Handler {
	handler := NewHandler(nil, NewService(repo, nil, nil), validator.New())
	r := chi.NewRouter()
	r.Route("/api/cases/{caseID}/timeline", handler.MountCaseRoutes)
	r.Route("/api/timeline", handler.MountItemRoutes)
	return r
}

func doAs(router http.Handler, userID, method, path string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	ctx := shared.ContextWithIdentity(req.Context(), &shared.Identity{ID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func createEvent(t *testing.T, router http.Handler, userID, caseID, title string, date time.Time) Event {
	t.Helper()
	rec := doAs(router, userID, http.MethodPost, "/api/cases/"+caseID+"/timeline/", map[string]any{
		"title":     title,
		"eventDate": date,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ev Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	return ev
}

func TestListEventsChronologicalAndWrapped(t *testing.T) {
	repo := newMockRepository()
	caseID := repo.addCase("user-1")
	router := newTestRouter(repo)

	later := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	createEvent(t, router, "user-1", caseID, "Hearing", later)
	createEvent(t, router, "user-1", caseID, "Complaint filed", earlier)

	rec := doAs(router, "user-1", http.MethodGet, "/api/cases/"+caseID+"/timeline/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	assert.Equal(t, "Complaint filed", body.Events[0].Title)
	assert.Equal(t, "Hearing", body.Events[1].Title)
}

func TestListEventsEmptyCase(t *testing.T) {
	repo := newMockRepository()
	caseID := repo.addCase("user-1")
	router := newTestRouter(repo)

	rec := doAs(router, "user-1", http.MethodGet, "/api/cases/"+caseID+"/timeline/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"events":[]`)
}

func TestCreateEventRequiresTitleAndDate(t *testing.T) {
	repo := newMockRepository()
	caseID := repo.addCase("user-1")
	router := newTestRouter(repo)

	rec := doAs(router, "user-1", http.MethodPost, "/api/cases/"+caseID+"/timeline/", map[string]any{
		"description": "missing title and date",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Details["title"])
	assert.NotEmpty(t, body.Details["eventDate"])
}

func TestUpdateForeignEventReads404(t *testing.T) {
	repo := newMockRepository()
	caseID := repo.addCase("user-1")
	router := newTestRouter(repo)
	ev := createEvent(t, router, "user-1", caseID, "Hearing", time.Now().UTC())

	rec := doAs(router, "user-2", http.MethodPut, "/api/timeline/"+ev.ID, map[string]any{
		"title":     "Hijacked",
		"eventDate": time.Now().UTC(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEvent(t *testing.T) {
	repo := newMockRepository()
	caseID := repo.addCase("user-1")
	router := newTestRouter(repo)
	ev := createEvent(t, router, "user-1", caseID, "Hearing", time.Now().UTC())

	rec := doAs(router, "user-1", http.MethodDelete, "/api/timeline/"+ev.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doAs(router, "user-1", http.MethodGet, "/api/timeline/"+ev.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
