package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// PermissionsHandler exposes the resolved permission set to the UI.
type PermissionsHandler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, resolver *Resolver) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, resolver: resolver}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
}

type permissionsResponse struct {
	Permissions []string `json:"permissions"`
	LoadError   string   `json:"load_error,omitempty"`
}

// listPermissions resolves and returns the caller's normalized permission
// tokens. A lookup failure is not fatal here: the UI renders with an empty
// set plus the error flag, the same fail-closed state the resolver records.
func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token := ""
	if sess != nil {
		token = sess.AccessToken()
	}
	set, err := h.resolver.Load(r.Context(), token)
	res := permissionsResponse{Permissions: set.Names()}
	if err != nil {
		h.logger.Warn("load permissions", slog.Any("error", err))
		res.LoadError = "permission lookup failed"
	}
	httpx.JSON(w, http.StatusOK, res)
}
