package applications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Handler exposes the application review endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMiddleware rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMiddleware}
}

// MountRoutes registers application routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("applications.view", "VIEW_APPLICATIONS"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		// Both the current and the historical permission spelling grant
		// status updates; either may be present server-side.
		r.Use(h.rbac.RequireAny("UPDATE_APPLICATION_STATUS", "APPLICATIONS_UPDATE_STATUS", "applications.update_status"))
		r.Put("/{applicationID}/stage", h.transition)
	})
}

type listResponse struct {
	Data   []View        `json:"data"`
	Counts map[Stage]int `json:"counts"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	views, err := h.service.List(r.Context(), sess.AccessToken(), sess.ID)
	if err != nil {
		h.logger.Error("list applications", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "listing failed", "could not load applications")
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: views, Counts: Counts(views)})
}

type transitionRequest struct {
	Stage string `json:"stage"`
}

type transitionResponse struct {
	ApplicationID int64 `json:"application_id"`
	Stage         Stage `json:"stage"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	applicationID, err := strconv.ParseInt(chi.URLParam(r, "applicationID"), 10, 64)
	if err != nil || applicationID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "application id must be a positive integer")
		return
	}

	var body transitionRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	target, err := ParseStage(body.Stage)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "stage must be one of the six pipeline stages")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	stage, err := h.service.Transition(r.Context(), sess.AccessToken(), sess.ID, applicationID, target)
	if err != nil {
		h.logger.Error("transition application", slog.Int64("application_id", applicationID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "transition failed", "the platform rejected the status update")
		return
	}
	httpx.JSON(w, http.StatusOK, transitionResponse{ApplicationID: applicationID, Stage: stage})
}
