package auth

import (
	"log/slog"
	"net/http"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Middleware resolves the session cookie to an identity. RequireUser
// fails closed; OptionalUser never rejects a request.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	Secure  bool
}

// RequireUser gates a route behind authentication. A missing cookie is
// a 401, an unresolvable session clears the cookie and 401s, and a
// store failure is a 500 because the client cannot proceed safely
// either way.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := m.Service.SessionUser(r.Context(), cookie.Value)
		if err != nil {
			m.log().Error("resolve session", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Authentication error")
			return
		}
		if user == nil {
			ClearSessionCookie(w, m.Secure)
			httpx.Error(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), &shared.Identity{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalUser attaches an identity when the session resolves and
// proceeds anonymously otherwise. Lookup failures are logged and
// swallowed.
func (m Middleware) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.Service.SessionUser(r.Context(), cookie.Value)
		if err != nil {
			m.log().Warn("optional session resolve", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := shared.ContextWithIdentity(r.Context(), &shared.Identity{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
