package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casebuddy/casebuddy/internal/auth"
	"github.com/casebuddy/casebuddy/internal/shared"
	_ "github.com/casebuddy/casebuddy/testing"
)

type stubRepo struct {
	mu       sync.Mutex
	users    []*auth.User
	sessions map[string]auth.Session
}

func newStubRepo() *stubRepo {
	return &stubRepo{sessions: make(map[string]auth.Session)}
}

func (s *stubRepo) CreateUser(ctx context.Context, params auth.CreateUserParams) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trialEnds := params.TrialEndsAt
	user := &auth.User{
		ID:                 "u1",
		Username:           params.Username,
		Email:              params.Email,
		PasswordHash:       params.PasswordHash,
		SubscriptionStatus: params.SubscriptionStatus,
		TrialEndsAt:        &trialEnds,
		IsActive:           true,
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *stubRepo) FindByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindConflict(ctx context.Context, username, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (s *stubRepo) InsertSession(ctx context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubRepo) SessionWithUser(ctx context.Context, id string) (*auth.Session, *auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil, shared.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID == sess.UserID {
			return &sess, u, nil
		}
	}
	return nil, nil, shared.ErrNotFound
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *stubRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newAuthRouter(t *testing.T, repo auth.Repository) http.Handler {
	t.Helper()
	service := auth.NewService(repo, auth.NewSessionStore(repo, time.Hour), nil, nil)
	middleware := auth.Middleware{Service: service}
	handler := auth.NewHandler(nil, service, middleware, false)
	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, payload map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestRegisterSetsCookieAndReturnsUser(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())

	res := postJSON(t, router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "Str0ngpass",
		"confirmPassword": "Str0ngpass",
	})

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "Registration successful") {
		t.Fatalf("expected success message, got %s", res.Body.String())
	}
	if strings.Contains(res.Body.String(), "Str0ngpass") {
		t.Fatalf("response leaks the plaintext password")
	}
	cookie := sessionCookie(t, res)
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("session cookie must be SameSite=Strict")
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())

	res := postJSON(t, router, "/api/auth/register", map[string]string{
		"username":        "al", // too short
		"email":           "not-an-email",
		"password":        "weak",
		"confirmPassword": "other",
	})

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Validation failed" {
		t.Fatalf("expected validation error, got %q", body.Error)
	}
	for _, field := range []string{"username", "email", "password"} {
		if body.Details[field] == "" {
			t.Fatalf("expected detail for %s, got %v", field, body.Details)
		}
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())
	payload := map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "Str0ngpass",
		"confirmPassword": "Str0ngpass",
	}

	if res := postJSON(t, router, "/api/auth/register", payload); res.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", res.Code)
	}
	res := postJSON(t, router, "/api/auth/register", payload)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Username already exists") {
		t.Fatalf("expected username conflict, got %s", res.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())
	postJSON(t, router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "Str0ngpass",
		"confirmPassword": "Str0ngpass",
	})

	res := postJSON(t, router, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrongpass1A",
	})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid credentials") {
		t.Fatalf("expected invalid credentials, got %s", res.Body.String())
	}
}

func TestLoginThenMe(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())
	postJSON(t, router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "Str0ngpass",
		"confirmPassword": "Str0ngpass",
	})

	res := postJSON(t, router, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "Str0ngpass",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	cookie := sessionCookie(t, res)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	meRes := httptest.NewRecorder()
	router.ServeHTTP(meRes, req)
	if meRes.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", meRes.Code)
	}
	if !strings.Contains(meRes.Body.String(), "alice@example.com") {
		t.Fatalf("expected user in body, got %s", meRes.Body.String())
	}
}

func TestStatusAnonymousAndAuthenticated(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("anonymous status: expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"authenticated":false`) {
		t.Fatalf("expected unauthenticated status, got %s", res.Body.String())
	}

	reg := postJSON(t, router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "Str0ngpass",
		"confirmPassword": "Str0ngpass",
	})
	cookie := sessionCookie(t, reg)

	authReq := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	authReq.AddCookie(cookie)
	authRes := httptest.NewRecorder()
	router.ServeHTTP(authRes, authReq)
	if !strings.Contains(authRes.Body.String(), `"authenticated":true`) {
		t.Fatalf("expected authenticated status, got %s", authRes.Body.String())
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	router := newAuthRouter(t, newStubRepo())

	// No cookie at all.
	res := postJSON(t, router, "/api/auth/logout", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	// Unknown session id.
	res = postJSON(t, router, "/api/auth/logout", nil, &http.Cookie{Name: auth.SessionCookieName, Value: "deadbeef"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Logout successful") {
		t.Fatalf("expected logout message, got %s", res.Body.String())
	}
}
