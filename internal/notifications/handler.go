package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Handler exposes the notification feed endpoints. The feed belongs to the
// signed-in user, so no extra permission gate applies beyond authentication.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/{notificationID}/read", h.markRead)
	r.Post("/read-all", h.markAllRead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "unauthenticated", "sign in to read notifications")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.service.List(r.Context(), sess.AccessToken(), unreadOnly)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "listing failed", "could not load notifications")
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListResponse{Data: items, Meta: httpx.Meta{Total: len(items)}})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "unauthenticated", "sign in to manage notifications")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "notification ID must be a positive integer")
		return
	}
	if err := h.service.MarkRead(r.Context(), sess.AccessToken(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", "notification does not exist")
			return
		}
		h.logger.Error("mark notification read", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "upstream error", "the platform API rejected the request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "unauthenticated", "sign in to manage notifications")
		return
	}
	if err := h.service.MarkAllRead(r.Context(), sess.AccessToken()); err != nil {
		h.logger.Error("mark all notifications read", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "upstream error", "the platform API rejected the request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
