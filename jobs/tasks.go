package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeVerificationMail delivers a login verification code.
	TaskTypeVerificationMail = "mail:verification"
)

// VerificationMailPayload carries a verification code to its recipient.
type VerificationMailPayload struct {
	To   string `json:"to"`
	Code string `json:"code"`
}

// NewVerificationMailTask constructs an Asynq task for a verification code.
func NewVerificationMailTask(email, code string) (*asynq.Task, error) {
	data, err := json.Marshal(VerificationMailPayload{To: email, Code: code})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeVerificationMail, data), nil
}

// HandleVerificationMailTask processes TaskTypeVerificationMail tasks.
func HandleVerificationMailTask(ctx context.Context, t *asynq.Task) error {
	var payload VerificationMailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: SMTP delivery lands with the transactional-mail rollout.
	fmt.Printf("[jobs] verification code for %s\n", payload.To)
	return nil
}
