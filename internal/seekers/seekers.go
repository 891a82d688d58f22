// Package seekers proxies job-seeker profile administration to the
// upstream platform API.
package seekers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Seeker is a candidate profile on the platform.
type Seeker struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Headline  string    `json:"headline"`
	Location  string    `json:"location"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name     string   `json:"name" validate:"required"`
	Headline string   `json:"headline"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
}

// Service proxies seeker administration to the upstream API.
type Service struct {
	client *upstream.Client
}

// NewService constructs a Service.
func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// List returns seekers across all upstream pages, optionally filtered by a
// free-text search term.
func (s *Service) List(ctx context.Context, accessToken, search string) ([]Seeker, error) {
	query := url.Values{}
	if search != "" {
		query.Set("q", search)
	}
	items, err := upstream.CollectPages[Seeker](ctx, s.client, accessToken, "/seekers", query)
	if err != nil {
		return nil, fmt.Errorf("seekers: list: %w", err)
	}
	return items, nil
}

// Get fetches a single seeker profile.
func (s *Service) Get(ctx context.Context, accessToken string, id int64) (Seeker, error) {
	if id <= 0 {
		return Seeker{}, errors.New("seekers: invalid seeker ID")
	}
	var seeker Seeker
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/seekers/%d", id),
		Token:  accessToken,
		Out:    &seeker,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Seeker{}, shared.ErrNotFound
		}
		return Seeker{}, fmt.Errorf("seekers: get: %w", err)
	}
	return seeker, nil
}

// UpdateProfile edits a seeker profile on the candidate's behalf.
func (s *Service) UpdateProfile(ctx context.Context, accessToken string, id int64, input ProfileInput) (Seeker, error) {
	if id <= 0 {
		return Seeker{}, errors.New("seekers: invalid seeker ID")
	}
	var seeker Seeker
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/seekers/%d/profile", id),
		Token:  accessToken,
		Body:   input,
		Out:    &seeker,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Seeker{}, shared.ErrNotFound
		}
		return Seeker{}, fmt.Errorf("seekers: update profile: %w", err)
	}
	return seeker, nil
}
