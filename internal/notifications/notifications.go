// Package notifications proxies the signed-in user's notification feed.
package notifications

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

// Notification is one entry in the user's feed.
type Notification struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Service proxies the notification feed to the upstream API.
type Service struct {
	client *upstream.Client
}

// NewService constructs a Service.
func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// List returns the user's notifications, newest first. When unreadOnly is
// set, read entries are filtered upstream.
func (s *Service) List(ctx context.Context, accessToken string, unreadOnly bool) ([]Notification, error) {
	query := url.Values{}
	if unreadOnly {
		query.Set("unread", "true")
	}
	items, err := upstream.CollectPages[Notification](ctx, s.client, accessToken, "/notifications", query)
	if err != nil {
		return nil, fmt.Errorf("notifications: list: %w", err)
	}
	return items, nil
}

// MarkRead flags a single notification as read.
func (s *Service) MarkRead(ctx context.Context, accessToken string, id int64) error {
	if id <= 0 {
		return errors.New("notifications: invalid notification ID")
	}
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/notifications/%d/read", id),
		Token:  accessToken,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusNotFound {
			return shared.ErrNotFound
		}
		return fmt.Errorf("notifications: mark read: %w", err)
	}
	return nil
}

// MarkAllRead flags the whole feed as read.
func (s *Service) MarkAllRead(ctx context.Context, accessToken string) error {
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/notifications/read-all",
		Token:  accessToken,
	})
	if err != nil {
		return fmt.Errorf("notifications: mark all read: %w", err)
	}
	return nil
}
