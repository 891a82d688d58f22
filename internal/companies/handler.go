package companies

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

// Handler exposes the company administration endpoints.
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

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("companies.view", "VIEW_COMPANIES"))
		r.Get("/", h.list)
		r.Get("/{companyID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("companies.manage", "MANAGE_COMPANIES"))
		r.Post("/", h.create)
		r.Put("/{companyID}", h.update)
		r.Delete("/{companyID}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	items, err := h.service.List(r.Context(), sess.AccessToken())
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "listing failed", "could not load companies")
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListResponse{Data: items, Meta: httpx.Meta{Total: len(items)}})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	company, err := h.service.Get(r.Context(), sess.AccessToken(), id)
	if err != nil {
		h.respondServiceError(w, "get company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
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
	company, err := h.service.Create(r.Context(), sess.AccessToken(), input)
	if err != nil {
		h.respondServiceError(w, "create company", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "company.create", "company", strconv.FormatInt(company.ID, 10))
	httpx.JSON(w, http.StatusCreated, company)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
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
	company, err := h.service.Update(r.Context(), sess.AccessToken(), id, input)
	if err != nil {
		h.respondServiceError(w, "update company", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "company.update", "company", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err := h.service.Delete(r.Context(), sess.AccessToken(), id); err != nil {
		h.respondServiceError(w, "delete company", err)
		return
	}
	h.audit.Record(r.Context(), sess.UserEmail(), "company.delete", "company", strconv.FormatInt(id, 10))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "not found", "company does not exist")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusBadGateway, "upstream error", "the platform API rejected the request")
}

func companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid identifier", "company ID must be a positive integer")
		return 0, false
	}
	return id, true
}
