package cases

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebuddy/casebuddy/internal/shared"
)

// mockRepository keeps cases in memory with the same user scoping the
// SQL layer enforces.
type mockRepository struct {
	mu    sync.Mutex
	cases map[string]Case
}

func newMockRepository() *mockRepository {
	return &mockRepository{cases: make(map[string]Case)}
}

func (m *mockRepository) List(_ context.Context, userID string) ([]Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Case
	for _, c := range m.cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id, userID string) (*Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok || c.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (m *mockRepository) Create(_ context.Context, params CreateParams) (*Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	c := Case{
		ID:          uuid.NewString(),
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.cases[c.ID] = c
	return &c, nil
}

func (m *mockRepository) Update(_ context.Context, id, userID string, params UpdateParams) (*Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok || c.UserID != userID {
		return nil, shared.ErrNotFound
	}
	c.Title = params.Title
	c.Description = params.Description
	c.Status = params.Status
	c.UpdatedAt = time.Now().UTC()
	m.cases[id] = c
	return &c, nil
}

func (m *mockRepository) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok || c.UserID != userID {
		return shared.ErrNotFound
	}
	delete(m.cases, id)
	return nil
}

var _ RepositoryPort = (*mockRepository)(nil)

func newTestRouter(repo RepositoryPort) http.Handler {
	handler := NewHandler(nil, NewService(repo, nil, nil))
	r := chi.NewRouter()
	r.Route("/api/cases", handler.MountRoutes)
	return r
}

func doAs(router http.Handler, userID, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := shared.ContextWithIdentity(req.Context(), &shared.Identity{ID: userID, Username: "u-" + userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func createCase(t *testing.T, router http.Handler, userID, title string) Case {
	t.Helper()
	rec := doAs(router, userID, http.MethodPost, "/api/cases/", map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCreateCaseDefaultsToOpen(t *testing.T) {
	router := newTestRouter(newMockRepository())
	c := createCase(t, router, "user-1", "Wrongful termination")
	assert.Equal(t, StatusOpen, c.Status)
	assert.Equal(t, "Wrongful termination", c.Title)
	assert.NotEmpty(t, c.ID)
}

func TestCreateCaseRequiresTitle(t *testing.T) {
	router := newTestRouter(newMockRepository())
	rec := doAs(router, "user-1", http.MethodPost, "/api/cases/", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Error)
	assert.NotEmpty(t, body.Details["title"])
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	router := newTestRouter(newMockRepository())
	rec := doAs(router, "user-1", http.MethodGet, "/api/cases/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestListScopedToOwner(t *testing.T) {
	router := newTestRouter(newMockRepository())
	createCase(t, router, "user-1", "Mine")
	createCase(t, router, "user-2", "Theirs")

	rec := doAs(router, "user-1", http.MethodGet, "/api/cases/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Mine", listed[0].Title)
}

func TestGetForeignCaseReads404(t *testing.T) {
	router := newTestRouter(newMockRepository())
	c := createCase(t, router, "user-1", "Mine")

	rec := doAs(router, "user-2", http.MethodGet, "/api/cases/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}

func TestGetMalformedIDReads404(t *testing.T) {
	router := newTestRouter(newMockRepository())
	rec := doAs(router, "user-1", http.MethodGet, "/api/cases/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCaseRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(newMockRepository())
	c := createCase(t, router, "user-1", "Mine")

	rec := doAs(router, "user-1", http.MethodPut, "/api/cases/"+c.ID, map[string]string{
		"title":  "Mine",
		"status": "reopened",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestUpdateCaseEmptyStatusDefaultsOpen(t *testing.T) {
	router := newTestRouter(newMockRepository())
	c := createCase(t, router, "user-1", "Mine")

	rec := doAs(router, "user-1", http.MethodPut, "/api/cases/"+c.ID, map[string]string{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, StatusOpen, updated.Status)
}

func TestDeleteCase(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)
	c := createCase(t, router, "user-1", "Mine")

	rec := doAs(router, "user-1", http.MethodDelete, "/api/cases/"+c.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doAs(router, "user-1", http.MethodGet, "/api/cases/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteForeignCaseReads404(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)
	c := createCase(t, router, "user-1", "Mine")

	rec := doAs(router, "user-2", http.MethodDelete, "/api/cases/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, repo.cases, 1)
}

// recordingAudit captures audit entries for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	entries []shared.AuditLog
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, log)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

func TestCaseMutationsAreAudited(t *testing.T) {
	repo := newMockRepository()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, nil)

	c, err := svc.Create(context.Background(), CreateParams{UserID: "user-1", Title: "Mine"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), c.ID, "user-1", UpdateParams{Title: "Renamed", Status: StatusOpen})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), c.ID, "user-1"))

	assert.Equal(t, []string{"case.create", "case.update", "case.delete"}, audit.actions())
}

func TestFailedCaseUpdateNotAudited(t *testing.T) {
	repo := newMockRepository()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, nil)

	_, err := svc.Update(context.Background(), uuid.NewString(), "user-1", UpdateParams{Title: "Ghost"})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, audit.actions())
}
