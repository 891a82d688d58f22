package companies

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Input carries the editable company fields.
type Input struct {
	Name     string `json:"name" validate:"required"`
	Industry string `json:"industry"`
	Website  string `json:"website" validate:"omitempty,url"`
	Location string `json:"location"`
}

// Service proxies company administration to the upstream API.
type Service struct {
	client *upstream.Client
}

// NewService constructs a Service.
func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// List returns every company across upstream pages.
func (s *Service) List(ctx context.Context, accessToken string) ([]Company, error) {
	items, err := upstream.CollectPages[Company](ctx, s.client, accessToken, "/companies", nil)
	if err != nil {
		return nil, fmt.Errorf("companies: list: %w", err)
	}
	return items, nil
}

// Get fetches a single company.
func (s *Service) Get(ctx context.Context, accessToken string, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, errors.New("companies: invalid company ID")
	}
	var company Company
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/companies/%d", id),
		Token:  accessToken,
		Out:    &company,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, fmt.Errorf("companies: get: %w", err)
	}
	return company, nil
}

// Create registers a new company.
func (s *Service) Create(ctx context.Context, accessToken string, input Input) (Company, error) {
	var company Company
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/companies",
		Token:  accessToken,
		Body:   input,
		Out:    &company,
	})
	if err != nil {
		return Company{}, fmt.Errorf("companies: create: %w", err)
	}
	return company, nil
}

// Update edits an existing company.
func (s *Service) Update(ctx context.Context, accessToken string, id int64, input Input) (Company, error) {
	if id <= 0 {
		return Company{}, errors.New("companies: invalid company ID")
	}
	var company Company
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/companies/%d", id),
		Token:  accessToken,
		Body:   input,
		Out:    &company,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, fmt.Errorf("companies: update: %w", err)
	}
	return company, nil
}

// Delete removes a company.
func (s *Service) Delete(ctx context.Context, accessToken string, id int64) error {
	if id <= 0 {
		return errors.New("companies: invalid company ID")
	}
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/companies/%d", id),
		Token:  accessToken,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return shared.ErrNotFound
		}
		return fmt.Errorf("companies: delete: %w", err)
	}
	return nil
}
