package seekers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talentdesk-hq/talentdesk/internal/audit"
	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Handler exposes the seeker administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	audit     audit.Recorder
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMiddleware rbac.Middleware, recorder audit.Recorder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbacMiddleware,
		audit:     recorder,
		validator: validator.New(),
	}
}

// MountRoutes registers seeker routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("seekers.view", "VIEW_SEEKERS"))
		r.Get("/", h.list)
		r.Get("/{seekerID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("seekers.manage", "MANAGE_SEEKERS"))
		r.Put("/{seekerID}/profile", h.updateProfile)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	items, err := h.service.List(r.Context(), sess.AccessToken(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("list seekers", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "listing failed", "could not load seekers")
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListResponse{Data: items, Meta: httpx.Meta{Total: len(items)}})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := seekerID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	seeker, err := h.service.Get(r.Context(), sess.AccessToken(), id)
	if err != nil {
		h.respondServiceError(w, "get seeker", err)
		return
	}
	httpx.JSON(w, http.StatusOK, seeker)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := seekerID(w, r)
	if !ok {
		return
	}
	var input ProfileInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	sess := shared.SessionFromContext(r.Context())
	seeker, err := h.service.UpdateProfile(r.Context(), sess.AccessToken(), id, input)
	if err != nil {
		h.respondServiceError(w, "update seeker profile", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "seeker.update_profile", "seeker", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, seeker)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "not found", "seeker does not exist")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusBadGateway, "upstream error", "the platform API rejected the request")
}

func seekerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "seekerID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "seeker ID must be a positive integer")
		return 0, false
	}
	return id, true
}
