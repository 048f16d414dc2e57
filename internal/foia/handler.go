package foia

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler serves the FOIA request endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a FOIA Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountCaseRoutes mounts the collection routes nested under a case.
func (h *Handler) MountCaseRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
}

// MountItemRoutes mounts the flat per-request routes. The static
// templates segment takes precedence over the id parameter.
func (h *Handler) MountItemRoutes(r chi.Router) {
	r.Get("/templates/{category}", h.handleTemplate)
	r.Get("/{foiaID}", h.handleGet)
	r.Put("/{foiaID}", h.handleUpdate)
	r.Delete("/{foiaID}", h.handleDelete)
}

type createRequest struct {
	Agency  string `json:"agency" validate:"required,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=500"`
	Body    string `json:"body"`
}

type updateRequest struct {
	Agency  string `json:"agency" validate:"required,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=500"`
	Body    string `json:"body"`
	Status  string `json:"status" validate:"omitempty,oneof=draft submitted fulfilled denied"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	reqs, err := h.service.ListByCase(r.Context(), caseID, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if reqs == nil {
		reqs = []Request{}
	}
	httpx.JSON(w, http.StatusOK, reqs)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	out, err := h.service.Create(r.Context(), ident.ID, CreateParams{
		CaseID:  caseID,
		Agency:  req.Agency,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "foiaID")
	if !ok {
		return
	}
	out, err := h.service.Get(r.Context(), id, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "foiaID")
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	out, err := h.service.Update(r.Context(), id, ident.ID, UpdateParams{
		Agency:  req.Agency,
		Subject: req.Subject,
		Body:    req.Body,
		Status:  req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		httpx.Error(w, http.StatusNotFound, "Not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"template": TemplateForCategory(category)})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "foiaID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, ident.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
