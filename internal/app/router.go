package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/casebuddy/casebuddy/internal/ai"
	"github.com/casebuddy/casebuddy/internal/auth"
	"github.com/casebuddy/casebuddy/internal/cases"
	"github.com/casebuddy/casebuddy/internal/documents"
	"github.com/casebuddy/casebuddy/internal/evidence"
	"github.com/casebuddy/casebuddy/internal/foia"
	"github.com/casebuddy/casebuddy/internal/observability"
	"github.com/casebuddy/casebuddy/internal/timeline"
	"github.com/casebuddy/casebuddy/internal/users"
	"github.com/casebuddy/casebuddy/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	CasesHandler     *cases.Handler
	DocumentsHandler *documents.Handler
	EvidenceHandler  *evidence.Handler
	TimelineHandler  *timeline.Handler
	FOIAHandler      *foia.Handler
	UsersHandler     *users.Handler
	AIHandler        *ai.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a valid session cookie.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireUser)

		r.Route("/api/cases", func(r chi.Router) {
			params.CasesHandler.MountRoutes(r)
			if params.AIHandler != nil {
				params.AIHandler.MountCaseRoutes(r)
			}
			r.Route("/{caseID}/documents", params.DocumentsHandler.MountCaseRoutes)
			r.Route("/{caseID}/evidence", params.EvidenceHandler.MountCaseRoutes)
			r.Route("/{caseID}/timeline", func(r chi.Router) {
				params.TimelineHandler.MountCaseRoutes(r)
				if params.AIHandler != nil {
					params.AIHandler.MountTimelineRoutes(r)
				}
			})
			r.Route("/{caseID}/foia", params.FOIAHandler.MountCaseRoutes)
		})

		r.Route("/api/documents", func(r chi.Router) {
			params.DocumentsHandler.MountItemRoutes(r)
			if params.AIHandler != nil {
				params.AIHandler.MountDocumentRoutes(r)
			}
		})
		r.Route("/api/evidence", func(r chi.Router) {
			params.EvidenceHandler.MountItemRoutes(r)
			if params.AIHandler != nil {
				params.AIHandler.MountEvidenceRoutes(r)
			}
		})
		r.Route("/api/timeline", params.TimelineHandler.MountItemRoutes)
		r.Route("/api/foia", func(r chi.Router) {
			params.FOIAHandler.MountItemRoutes(r)
			if params.AIHandler != nil {
				params.AIHandler.MountFOIARoutes(r)
			}
		})
		r.Route("/api/users", params.UsersHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/api/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
