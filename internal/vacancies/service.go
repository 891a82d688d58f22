package vacancies

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// Input carries the editable vacancy fields.
type Input struct {
	CompanyID   int64  `json:"company_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Filters narrows a vacancy listing.
type Filters struct {
	CompanyID int64
	Status    string
}

// Service proxies vacancy administration to the upstream API.
type Service struct {
	client *upstream.Client
}

// NewService constructs a Service.
func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// List returns vacancies across all upstream pages, optionally filtered.
func (s *Service) List(ctx context.Context, accessToken string, filters Filters) ([]Vacancy, error) {
	query := url.Values{}
	if filters.CompanyID > 0 {
		query.Set("company_id", fmt.Sprintf("%d", filters.CompanyID))
	}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	items, err := upstream.CollectPages[Vacancy](ctx, s.client, accessToken, "/vacancies", query)
	if err != nil {
		return nil, fmt.Errorf("vacancies: list: %w", err)
	}
	return items, nil
}

// Get fetches a single vacancy.
func (s *Service) Get(ctx context.Context, accessToken string, id int64) (Vacancy, error) {
	if id <= 0 {
		return Vacancy{}, errors.New("vacancies: invalid vacancy ID")
	}
	var vacancy Vacancy
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/vacancies/%d", id),
		Token:  accessToken,
		Out:    &vacancy,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Vacancy{}, shared.ErrNotFound
		}
		return Vacancy{}, fmt.Errorf("vacancies: get: %w", err)
	}
	return vacancy, nil
}

// Create publishes a new vacancy.
func (s *Service) Create(ctx context.Context, accessToken string, input Input) (Vacancy, error) {
	var vacancy Vacancy
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/vacancies",
		Token:  accessToken,
		Body:   input,
		Out:    &vacancy,
	})
	if err != nil {
		return Vacancy{}, fmt.Errorf("vacancies: create: %w", err)
	}
	return vacancy, nil
}

// Update edits an existing vacancy.
func (s *Service) Update(ctx context.Context, accessToken string, id int64, input Input) (Vacancy, error) {
	if id <= 0 {
		return Vacancy{}, errors.New("vacancies: invalid vacancy ID")
	}
	var vacancy Vacancy
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/vacancies/%d", id),
		Token:  accessToken,
		Body:   input,
		Out:    &vacancy,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Vacancy{}, shared.ErrNotFound
		}
		return Vacancy{}, fmt.Errorf("vacancies: update: %w", err)
	}
	return vacancy, nil
}

// Close flags a vacancy as no longer accepting applications.
func (s *Service) Close(ctx context.Context, accessToken string, id int64) (Vacancy, error) {
	if id <= 0 {
		return Vacancy{}, errors.New("vacancies: invalid vacancy ID")
	}
	var vacancy Vacancy
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/vacancies/%d/close", id),
		Token:  accessToken,
		Out:    &vacancy,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return Vacancy{}, shared.ErrNotFound
		}
		return Vacancy{}, fmt.Errorf("vacancies: close: %w", err)
	}
	return vacancy, nil
}
