package foia

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebuddy/casebuddy/internal/shared"
)

func newFOIARouter(t *testing.T) chi.Router {
	t.Helper()
	svc := NewService(&recordingRepo{}, nil, nil)
	h := NewHandler(nil, svc, validator.New())
	r := chi.NewRouter()
	r.Route("/api/foia", h.MountItemRoutes)
	return r
}

func getAs(router chi.Router, userID, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{ID: userID}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTemplateEndpoint(t *testing.T) {
	router := newFOIARouter(t)

	rec := getAs(router, "user-1", "/api/foia/templates/legal")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Template Template `json:"template"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Legal", body.Template.Category)
	assert.Contains(t, body.Template.SubjectTemplate, "from Legal")
	assert.NotEmpty(t, body.Template.Tips)
}

// The static templates segment must not shadow lookups by request id.
func TestTemplateRouteCoexistsWithItemRoutes(t *testing.T) {
	router := newFOIARouter(t)

	rec := getAs(router, "user-1", "/api/foia/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = getAs(router, "user-1", "/api/foia/templates/court%20records")
	assert.Equal(t, http.StatusOK, rec.Code)
}
