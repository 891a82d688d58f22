package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Handler exposes the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMiddleware rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMiddleware}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("reports.view", "VIEW_REPORTS"))
		r.Get("/funnel", h.funnel)
		r.Get("/funnel.csv", h.funnelCSV)
		r.Post("/refresh", h.refresh)
	})
}

func (h *Handler) funnel(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	report, err := h.service.Funnel(r.Context(), sess.AccessToken())
	if err != nil {
		h.logger.Error("funnel report", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "report failed", "could not build the funnel report")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) funnelCSV(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	report, err := h.service.Funnel(r.Context(), sess.AccessToken())
	if err != nil {
		h.logger.Error("funnel export", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "export failed", "could not build the funnel report")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="funnel.csv"`)
	if err := WriteFunnelCSV(w, report); err != nil {
		h.logger.Error("funnel export write", slog.Any("error", err))
	}
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.Error("report refresh", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "refresh failed", "could not invalidate cached reports")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
