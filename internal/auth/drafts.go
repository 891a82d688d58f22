package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

// DraftStore persists pending logins between the password step and the
// verification step.
type DraftStore interface {
	Save(ctx context.Context, draft Draft) error
	Take(ctx context.Context, id string) (Draft, error)
}

// RedisDraftStore keeps drafts in Redis with a short TTL.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore constructs a RedisDraftStore.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

// Save stores the draft under its ID.
func (s *RedisDraftStore) Save(ctx context.Context, draft Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.ID), data, s.ttl).Err()
}

// Take loads and removes the draft, so a verification code can be tried at
// most once per password exchange.
func (s *RedisDraftStore) Take(ctx context.Context, id string) (Draft, error) {
	data, err := s.client.GetDel(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Draft{}, shared.ErrVerificationFailed
		}
		return Draft{}, err
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func draftKey(id string) string {
	return "authdraft:" + id
}

var _ DraftStore = (*RedisDraftStore)(nil)
