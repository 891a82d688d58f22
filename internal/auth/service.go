package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Service wraps the login/registration flow against the upstream Auth API.
type Service struct {
	client *upstream.Client
	drafts DraftStore
}

// NewService constructs a new Service.
func NewService(client *upstream.Client, drafts DraftStore) *Service {
	return &Service{client: client, drafts: drafts}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authEnvelope struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// Authenticate exchanges credentials with the upstream Auth API and parks the
// issued token in a draft. The returned code must be presented to Verify
// before anything reaches the session store; a failed exchange leaves every
// session untouched. The code itself is only stored as a bcrypt hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Draft, string, error) {
	var envelope authEnvelope
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   credentialsRequest{Email: email, Password: password},
		Out:    &envelope,
	})
	if err != nil {
		if status := upstream.StatusOf(err); status == http.StatusUnauthorized || status == http.StatusBadRequest {
			return Draft{}, "", shared.ErrInvalidCredentials
		}
		return Draft{}, "", fmt.Errorf("auth: login: %w", err)
	}
	if envelope.AccessToken == "" {
		return Draft{}, "", shared.ErrInvalidCredentials
	}

	code, err := generateCode()
	if err != nil {
		return Draft{}, "", fmt.Errorf("auth: generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return Draft{}, "", fmt.Errorf("auth: hash code: %w", err)
	}

	draft := Draft{
		ID:          uuid.NewString(),
		AccessToken: envelope.AccessToken,
		Email:       envelope.User.Email,
		Name:        envelope.User.Name,
		CodeHash:    string(hash),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return Draft{}, "", fmt.Errorf("auth: save draft: %w", err)
	}
	return draft, code, nil
}

// Verify checks the secondary code against the draft. Success consumes the
// draft and hands back the identity for the caller to commit.
func (s *Service) Verify(ctx context.Context, draftID, code string) (Identity, error) {
	draft, err := s.drafts.Take(ctx, draftID)
	if err != nil {
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(draft.CodeHash), []byte(code)); err != nil {
		return Identity{}, shared.ErrVerificationFailed
	}
	return Identity{AccessToken: draft.AccessToken, Email: draft.Email, Name: draft.Name}, nil
}

// Register proxies account creation to the upstream Auth API and returns the
// issued identity, which goes through the same draft flow as a login.
func (s *Service) Register(ctx context.Context, email, password, name string) (Draft, string, error) {
	var envelope authEnvelope
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/register",
		Body:   registerRequest{Email: email, Password: password, Name: name},
		Out:    &envelope,
	})
	if err != nil {
		return Draft{}, "", fmt.Errorf("auth: register: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return Draft{}, "", fmt.Errorf("auth: generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return Draft{}, "", fmt.Errorf("auth: hash code: %w", err)
	}

	draft := Draft{
		ID:          uuid.NewString(),
		AccessToken: envelope.AccessToken,
		Email:       envelope.User.Email,
		Name:        envelope.User.Name,
		CodeHash:    string(hash),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return Draft{}, "", fmt.Errorf("auth: save draft: %w", err)
	}
	return draft, code, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
