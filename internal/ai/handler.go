package ai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casebuddy/casebuddy/internal/platform/httpx"
	"github.com/casebuddy/casebuddy/internal/shared"
)

// Handler serves the completion-backed endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the AI Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountDocumentRoutes mounts analysis routes under /api/documents.
func (h *Handler) MountDocumentRoutes(r chi.Router) {
	r.Post("/{documentID}/analyze", h.handleAnalyzeDocument)
	r.Get("/{documentID}/analysis", h.handleDocumentAnalysis)
}

// MountEvidenceRoutes mounts classification under /api/evidence.
func (h *Handler) MountEvidenceRoutes(r chi.Router) {
	r.Post("/{evidenceID}/classify", h.handleClassifyEvidence)
}

// MountCaseRoutes mounts case-level AI routes under /api/cases.
func (h *Handler) MountCaseRoutes(r chi.Router) {
	r.Post("/{caseID}/research", h.handleResearch)
	r.Post("/{caseID}/similar", h.handleSimilarCases)
}

// MountTimelineRoutes mounts the prediction route inside a case's
// timeline subrouter; the caseID parameter comes from the parent route.
func (h *Handler) MountTimelineRoutes(r chi.Router) {
	r.Post("/predict", h.handlePredictTimeline)
}

// MountFOIARoutes mounts the optimizer under /api/foia.
func (h *Handler) MountFOIARoutes(r chi.Router) {
	r.Post("/{foiaID}/optimize", h.handleOptimizeFOIA)
}

func (h *Handler) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "documentID")
	if !ok {
		return
	}
	analysis, err := h.service.AnalyzeDocument(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleDocumentAnalysis(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "documentID")
	if !ok {
		return
	}
	analysis, err := h.service.DocumentAnalysis(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleClassifyEvidence(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "evidenceID")
	if !ok {
		return
	}
	cls, err := h.service.ClassifyEvidence(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cls)
}

func (h *Handler) handlePredictTimeline(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	analysis, err := h.service.PredictTimeline(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

type researchRequest struct {
	Issue string `json:"issue" validate:"required,max=2000"`
}

func (h *Handler) handleResearch(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	var req researchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.NewValidationError(err))
		return
	}
	res, err := h.service.Research(r.Context(), id, ident.ID, req.Issue)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleSimilarCases(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "caseID")
	if !ok {
		return
	}
	similar, err := h.service.SimilarCases(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"similarCases": similar})
}

func (h *Handler) handleOptimizeFOIA(w http.ResponseWriter, r *http.Request) {
	ident := shared.IdentityFromContext(r.Context())
	id, ok := httpx.PathUUID(w, r, "foiaID")
	if !ok {
		return
	}
	opt, err := h.service.OptimizeFOIA(r.Context(), id, ident.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opt)
}

// respondErr maps malformed completions to 502 before the shared
// taxonomy applies.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMalformedCompletion) {
		if h.logger != nil {
			h.logger.Warn("completion payload rejected", "error", err)
		}
		httpx.Error(w, http.StatusBadGateway, "AI service returned an unusable response")
		return
	}
	httpx.RespondError(w, err)
}
