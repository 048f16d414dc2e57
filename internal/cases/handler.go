package cases

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler wires the /api/cases endpoints. Mounted behind RequireUser.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers case routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{caseID}", h.get)
	r.Put("/{caseID}", h.update)
	r.Delete("/{caseID}", h.delete)
}

type caseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=open archived closed"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	result, err := h.service.List(r.Context(), ident.ID)
	if err != nil {
		h.logger.Error("list cases", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Case{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), id, ident.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	var req caseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}

	c, err := h.service.Create(r.Context(), CreateParams{
		UserID:      ident.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("create case", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req caseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}

	c, err := h.service.Update(r.Context(), id, ident.ID, UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, ident.ID); err != nil {
		h.logger.Error("delete case", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
