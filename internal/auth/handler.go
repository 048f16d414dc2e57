package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// Handler wires the /api/auth endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware Middleware
	validate   *validator.Validate
	secure     bool
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, middleware Middleware, secure bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		middleware: middleware,
		validate:   validator.New(),
		secure:     secure,
	}
}

// MountRoutes registers auth routes on the provided router. Login is
// rate limited per IP; there is deliberately no account lockout.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
		Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.With(h.middleware.RequireUser).Get("/me", h.handleMe)
	r.With(h.middleware.OptionalUser).Get("/status", h.handleStatus)
}

type registerRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := h.validateRegistration(req); len(details) > 0 {
		httpx.RespondError(w, &httpx.ValidationError{Details: details})
		return
	}

	user, sessionID, err := h.service.Register(r.Context(), RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	SetSessionCookie(w, sessionID, h.service.Sessions().TTL(), h.secure)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    user,
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, &httpx.ValidationError{Details: validationDetails(err)})
		return
	}

	user, sessionID, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	SetSessionCookie(w, sessionID, h.service.Sessions().TTL(), h.secure)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout", slog.Any("error", err))
		}
	}
	ClearSessionCookie(w, h.secure)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	if ident == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.service.UserByID(r.Context(), ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// handleStatus reports authentication state. Anonymous callers get a
// 200 with authenticated=false, never a 401.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	if ident == nil {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"user":          nil,
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":       ident.ID,
			"username": ident.Username,
			"email":    ident.Email,
		},
	})
}

func (h *Handler) validateRegistration(req registerRequest) map[string]string {
	details := make(map[string]string)
	if err := h.validate.Struct(req); err != nil {
		for field, msg := range validationDetails(err) {
			details[field] = msg
		}
	}
	if req.Username != "" && !usernamePattern.MatchString(req.Username) {
		details["username"] = "Username must be 3-64 characters, alphanumeric, underscore or hyphen"
	}
	if req.Password != "" && !validPassword(req.Password) {
		details["password"] = "Password must be at least 8 characters and contain at least one lowercase letter, one uppercase letter, and one number"
	}
	if req.Password != "" && req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		details["confirmPassword"] = "Passwords don't match"
	}
	return details
}

// validPassword enforces the registration policy: at least 8 chars with
// one lowercase, one uppercase and one digit.
func validPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		details["body"] = "Invalid request"
		return details
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			details[jsonField(fe)] = "This field is required"
		case "email":
			details[jsonField(fe)] = "Invalid email format"
		default:
			details[jsonField(fe)] = "Invalid value"
		}
	}
	return details
}

func jsonField(fe validator.FieldError) string {
	name := fe.Field()
	if len(name) > 0 {
		return string(name[0]|0x20) + name[1:]
	}
	return name
}
