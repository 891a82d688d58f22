package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
)

// Handler exposes the console audit trail.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMiddleware rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMiddleware}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("audit.view", "VIEW_AUDIT_LOG"))
		r.Get("/", h.timeline)
		r.Get("/export.csv", h.export)
	})
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "timeline failed", "could not load the audit trail")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Export(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "export failed", "could not export the audit trail")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
	if err := WriteCSV(w, entries); err != nil {
		h.logger.Error("audit export write", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request) TimelineFilters {
	query := r.URL.Query()
	filters := TimelineFilters{
		Actor:  query.Get("actor"),
		Entity: query.Get("entity"),
		Action: query.Get("action"),
	}
	if raw := query.Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = t
		}
	}
	if raw := query.Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = t
		}
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filters.Page = page
	}
	if size, err := strconv.Atoi(query.Get("page_size")); err == nil {
		filters.PageSize = size
	}
	return filters
}
