package evidence

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler serves the evidence endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds an evidence Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountCaseRoutes mounts the collection routes nested under a case.
func (h *Handler) MountCaseRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
}

// MountItemRoutes mounts the flat per-item routes.
func (h *Handler) MountItemRoutes(r chi.Router) {
	r.Get("/{evidenceID}", h.handleGet)
	r.Put("/{evidenceID}", h.handleUpdate)
	r.Delete("/{evidenceID}", h.handleDelete)
}

type itemRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	FileType    string `json:"fileType" validate:"omitempty,max=100"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	items, err := h.service.ListByCase(r.Context(), caseID, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	it, err := h.service.Create(r.Context(), ident.ID, CreateParams{
		CaseID:      caseID,
		Name:        req.Name,
		Description: req.Description,
		FileType:    req.FileType,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, it)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "evidenceID")
	if !ok {
		return
	}
	it, err := h.service.Get(r.Context(), id, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "evidenceID")
	if !ok {
		return
	}
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	it, err := h.service.Update(r.Context(), id, ident.ID, UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		FileType:    req.FileType,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "evidenceID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, ident.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
