package documents

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler serves the document endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a document Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountCaseRoutes mounts the collection routes nested under a case.
func (h *Handler) MountCaseRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
}

// MountItemRoutes mounts the flat per-document routes.
func (h *Handler) MountItemRoutes(r chi.Router) {
	r.Get("/{documentID}", h.handleGet)
	r.Put("/{documentID}", h.handleUpdate)
	r.Delete("/{documentID}", h.handleDelete)
}

type documentRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Content  string `json:"content"`
	MimeType string `json:"mimeType" validate:"omitempty,max=255"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	docs, err := h.service.ListByCase(r.Context(), caseID, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	httpx.JSON(w, http.StatusOK, docs)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	caseID, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	doc, err := h.service.Create(r.Context(), ident.ID, CreateParams{
		CaseID:   caseID,
		Name:     req.Name,
		Content:  req.Content,
		MimeType: req.MimeType,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "documentID")
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), id, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "documentID")
	if !ok {
		return
	}
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	doc, err := h.service.Update(r.Context(), id, ident.ID, UpdateParams{
		Name:     req.Name,
		Content:  req.Content,
		MimeType: req.MimeType,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "documentID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, ident.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
