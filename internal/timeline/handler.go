package timeline

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler serves the timeline endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a timeline Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountCaseRoutes mounts the collection routes nested under a case.
func (h *Handler) MountCaseRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
}

// MountItemRoutes mounts the flat per-event routes.
func (h *Handler) MountItemRoutes(r chi.Router) {
	r.Get("/{eventID}", h.handleGet)
	r.Put("/{eventID}", h.handleUpdate)
	r.Delete("/{eventID}", h.handleDelete)
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"eventDate" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	events, err := h.service.ListByCase(r.Context(), caseID, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if events == nil {
		events = []Event{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	ev, err := h.service.Create(r.Context(), ident.ID, CreateParams{
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ev)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	ev, err := h.service.Get(r.Context(), id, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	ev, err := h.service.Update(r.Context(), id, ident.ID, UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, ident.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
