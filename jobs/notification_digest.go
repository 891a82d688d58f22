package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/talentdesk-hq/talentdesk/internal/notifications"
)

// TaskTypeNotificationDigest summarises unread notifications into one
// periodic mail instead of pushing each entry individually.
const TaskTypeNotificationDigest = "digest:notifications"

// DigestPayload identifies the digest recipient.
type DigestPayload struct {
	Recipient string `json:"recipient"`
}

// NewNotificationDigestTask constructs a digest task for one recipient.
func NewNotificationDigestTask(recipient string) (*asynq.Task, error) {
	data, err := json.Marshal(DigestPayload{Recipient: recipient})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotificationDigest, data), nil
}

// NotificationDigest builds unread-notification digests using the console's
// service credential.
type NotificationDigest struct {
	Notifications *notifications.Service
	ServiceToken  string
	Logger        *slog.Logger
}

// Handle processes TaskTypeNotificationDigest tasks.
func (j *NotificationDigest) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if j.Notifications == nil || j.ServiceToken == "" {
		if j.Logger != nil {
			j.Logger.Warn("notification digest skipped: not configured")
		}
		return nil
	}
	unread, err := j.Notifications.List(ctx, j.ServiceToken, true)
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}
	// Placeholder: SMTP delivery lands with the transactional-mail rollout.
	fmt.Printf("[jobs] digest for %s: %d unread notifications\n", payload.Recipient, len(unread))
	return nil
}
