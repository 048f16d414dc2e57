package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebuddy/casebuddy/internal/shared"
)

func identityEcho(t *testing.T, got **shared.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookieRequest(sessionID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	return r
}

func TestRequireUserMissingCookie(t *testing.T) {
	repo := newMemoryRepo()
	mw := Middleware{Service: newTestService(repo)}

	var ident *shared.Identity
	rec := httptest.NewRecorder()
	mw.RequireUser(identityEcho(t, &ident)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")
	assert.Nil(t, ident)
}

func TestRequireUserStaleSessionClearsCookie(t *testing.T) {
	repo := newMemoryRepo()
	mw := Middleware{Service: newTestService(repo)}

	var ident *shared.Identity
	rec := httptest.NewRecorder()
	mw.RequireUser(identityEcho(t, &ident)).ServeHTTP(rec, sessionCookieRequest("deadbeef"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired session")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireUserStoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.sessionLookupErr = fmt.Errorf("storage down")
	mw := Middleware{Service: newTestService(repo)}

	var ident *shared.Identity
	rec := httptest.NewRecorder()
	mw.RequireUser(identityEcho(t, &ident)).ServeHTTP(rec, sessionCookieRequest("deadbeef"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, ident)
}

func TestRequireUserAttachesIdentity(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	svc := newTestService(repo)
	sessionID, err := svc.Sessions().Create(t.Context(), user.ID)
	require.NoError(t, err)
	mw := Middleware{Service: svc}

	var ident *shared.Identity
	rec := httptest.NewRecorder()
	mw.RequireUser(identityEcho(t, &ident)).ServeHTTP(rec, sessionCookieRequest(sessionID))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ident)
	assert.Equal(t, user.ID, ident.ID)
	assert.Equal(t, user.Username, ident.Username)
}

func TestOptionalUserNeverRejects(t *testing.T) {
	repo := newMemoryRepo()
	repo.sessionLookupErr = fmt.Errorf("storage down")
	mw := Middleware{Service: newTestService(repo)}

	cases := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/status", nil), // no cookie
		sessionCookieRequest("deadbeef"),                    // lookup error
	}
	for _, req := range cases {
		var ident *shared.Identity
		rec := httptest.NewRecorder()
		mw.OptionalUser(identityEcho(t, &ident)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, ident)
	}
}

func TestOptionalUserAttachesIdentityWhenPresent(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	svc := newTestService(repo)
	sessionID, err := svc.Sessions().Create(t.Context(), user.ID)
	require.NoError(t, err)
	mw := Middleware{Service: svc}

	var ident *shared.Identity
	rec := httptest.NewRecorder()
	mw.OptionalUser(identityEcho(t, &ident)).ServeHTTP(rec, sessionCookieRequest(sessionID))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ident)
	assert.Equal(t, user.ID, ident.ID)
}
