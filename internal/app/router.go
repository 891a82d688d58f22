package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/talentdesk-hq/talentdesk/internal/applications"
	"github.com/talentdesk-hq/talentdesk/internal/audit"
	"github.com/talentdesk-hq/talentdesk/internal/auth"
	"github.com/talentdesk-hq/talentdesk/internal/companies"
	"github.com/talentdesk-hq/talentdesk/internal/notifications"
	"github.com/talentdesk-hq/talentdesk/internal/observability"
	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	"github.com/talentdesk-hq/talentdesk/internal/reports"
	"github.com/talentdesk-hq/talentdesk/internal/seekers"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
	"github.com/talentdesk-hq/talentdesk/internal/vacancies"
	"github.com/talentdesk-hq/talentdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler          *auth.Handler
	ApplicationsHandler  *applications.Handler
	CompaniesHandler     *companies.Handler
	VacanciesHandler     *vacancies.Handler
	SeekersHandler       *seekers.Handler
	NotificationsHandler *notifications.Handler
	AuditHandler         *audit.Handler
	ReportsHandler       *reports.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the console API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// The browser fetches a token here before its first mutating call.
		r.Get("/csrf", func(w http.ResponseWriter, req *http.Request) {
			sess := shared.SessionFromContext(req.Context())
			token, err := params.CSRFManager.EnsureToken(req.Context(), sess)
			if err != nil {
				params.Logger.Error("issue csrf token", slog.Any("error", err))
				httpx.Problem(w, http.StatusInternalServerError, "token unavailable", "could not issue a CSRF token")
				return
			}
			httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
		})

		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.ApplicationsHandler != nil {
			r.Route("/applications", params.ApplicationsHandler.MountRoutes)
		}
		if params.CompaniesHandler != nil {
			r.Route("/companies", params.CompaniesHandler.MountRoutes)
		}
		if params.VacanciesHandler != nil {
			r.Route("/vacancies", params.VacanciesHandler.MountRoutes)
		}
		if params.SeekersHandler != nil {
			r.Route("/seekers", params.SeekersHandler.MountRoutes)
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
