package vacancies

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

// Handler exposes the vacancy administration endpoints.
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

// MountRoutes registers vacancy routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("vacancies.view", "VIEW_VACANCIES"))
		r.Get("/", h.list)
		r.Get("/{vacancyID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("vacancies.manage", "MANAGE_VACANCIES"))
		r.Post("/", h.create)
		r.Put("/{vacancyID}", h.update)
		r.Post("/{vacancyID}/close", h.close)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := Filters{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "invalid filter", "company_id must be a positive integer")
			return
		}
		filters.CompanyID = id
	}
	sess := shared.SessionFromContext(r.Context())
	items, err := h.service.List(r.Context(), sess.AccessToken(), filters)
	if err != nil {
		h.logger.Error("list vacancies", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "listing failed", "could not load vacancies")
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListResponse{Data: items, Meta: httpx.Meta{Total: len(items)}})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := vacancyID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	vacancy, err := h.service.Get(r.Context(), sess.AccessToken(), id)
	if err != nil {
		h.respondServiceError(w, "get vacancy", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vacancy)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	sess := shared.SessionFromContext(r.Context())
	vacancy, err := h.service.Create(r.Context(), sess.AccessToken(), input)
	if err != nil {
		h.respondServiceError(w, "create vacancy", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "vacancy.create", "vacancy", strconv.FormatInt(vacancy.ID, 10))
	httpx.JSON(w, http.StatusCreated, vacancy)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := vacancyID(w, r)
	if !ok {
		return
	}
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	sess := shared.SessionFromContext(r.Context())
	vacancy, err := h.service.Update(r.Context(), sess.AccessToken(), id, input)
	if err != nil {
		h.respondServiceError(w, "update vacancy", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "vacancy.update", "vacancy", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, vacancy)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := vacancyID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	vacancy, err := h.service.Close(r.Context(), sess.AccessToken(), id)
	if err != nil {
		h.respondServiceError(w, "close vacancy", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "vacancy.close", "vacancy", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, vacancy)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "not found", "vacancy does not exist")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusBadGateway, "upstream error", "the platform API rejected the request")
}

func vacancyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "vacancyID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "vacancy ID must be a positive integer")
		return 0, false
	}
	return id, true
}
