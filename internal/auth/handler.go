package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"

	"github.com/talentdesk-hq/talentdesk/internal/platform/httpx"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Enqueuer dispatches background tasks. Satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// VerificationMailFunc builds the task that delivers a verification code.
type VerificationMailFunc func(email, code string) (*asynq.Task, error)

// Handler wires HTTP endpoints for the console login flow.
type Handler struct {
	logger           *slog.Logger
	service          *Service
	sessionManager   *shared.SessionManager
	enqueuer         Enqueuer
	verificationMail VerificationMailFunc
	validator        *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, enqueuer Enqueuer, mail VerificationMailFunc) *Handler {
	return &Handler{
		logger:           logger,
		service:          service,
		sessionManager:   sessions,
		enqueuer:         enqueuer,
		verificationMail: mail,
		validator:        validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/verify", h.handleVerify)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

type loginRequestBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type registerRequestBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type verifyRequestBody struct {
	DraftID string `json:"draft_id" validate:"required"`
	Code    string `json:"code" validate:"required,len=6"`
}

type draftResponse struct {
	DraftID string `json:"draft_id"`
}

type sessionResponse struct {
	Authenticated  bool       `json:"authenticated"`
	Email          string     `json:"email,omitempty"`
	Name           string     `json:"name,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequestBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	draft, code, err := h.service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "login failed", "email or password is not valid")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "login failed", "authentication service unavailable")
		return
	}

	h.dispatchVerificationCode(draft.Email, code)
	httpx.JSON(w, http.StatusAccepted, draftResponse{DraftID: draft.ID})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequestBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	draft, code, err := h.service.Register(r.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "registration failed", "authentication service rejected the request")
		return
	}

	h.dispatchVerificationCode(draft.Email, code)
	httpx.JSON(w, http.StatusAccepted, draftResponse{DraftID: draft.ID})
}

// handleVerify finishes a pending login. This is the only place an identity
// is committed into the session store, and the commit covers all three
// values at once.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body verifyRequestBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	identity, err := h.service.Verify(r.Context(), body.DraftID, body.Code)
	if err != nil {
		if errors.Is(err, shared.ErrVerificationFailed) {
			httpx.Problem(w, http.StatusForbidden, "verification failed", "the code is wrong or the login expired")
			return
		}
		h.logger.Error("verify", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "verification failed", "could not verify the login")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during verify")
		httpx.Problem(w, http.StatusInternalServerError, "verification failed", "session unavailable")
		return
	}
	sess.SetIdentity(identity.AccessToken, identity.Email, identity.Name)

	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated:  true,
		Email:          identity.Email,
		Name:           identity.Name,
		TokenExpiresAt: tokenExpiry(identity.AccessToken),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.JSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated:  true,
		Email:          sess.UserEmail(),
		Name:           sess.UserName(),
		TokenExpiresAt: tokenExpiry(sess.AccessToken()),
	})
}

func (h *Handler) dispatchVerificationCode(email, code string) {
	if h.enqueuer == nil || h.verificationMail == nil {
		return
	}
	task, err := h.verificationMail(email, code)
	if err != nil {
		h.logger.Warn("build verification mail", slog.Any("error", err))
		return
	}
	if _, err := h.enqueuer.Enqueue(task); err != nil {
		h.logger.Warn("enqueue verification mail", slog.Any("error", err))
	}
}

// tokenExpiry peeks at the bearer token's exp claim without verifying the
// signature. The console never trusts the claim for authorization, it only
// shows the user when their upstream session will lapse.
func tokenExpiry(accessToken string) *time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
