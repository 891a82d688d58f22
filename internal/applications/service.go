package applications

import (
	"context"
	"fmt"
	"net/http"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
)

// legacyStatus is the fallback vocabulary parts of the upstream API still
// enforce. The map is exhaustive over the six stages so a new stage cannot
// be added without deciding its legacy form.
var legacyStatus = map[Stage]string{
	StageLonglisted:  "reviewed",
	StageShortlisted: "reviewed",
	StageInterview:   "reviewed",
	StageAssessment:  "reviewed",
	StageRejected:    "rejected",
	StageHired:       "accepted",
}

// View is a record with its inferred stage attached for the review screen.
type View struct {
	Record
	Stage Stage `json:"stage"`
}

// Service aggregates upstream applications and carries stage transitions.
type Service struct {
	client    *upstream.Client
	overrides *OverrideStore
}

// NewService constructs a Service.
func NewService(client *upstream.Client, overrides *OverrideStore) *Service {
	return &Service{client: client, overrides: overrides}
}

// List fetches every application across upstream pages and classifies each
// against the session's overrides.
func (s *Service) List(ctx context.Context, accessToken, sessionID string) ([]View, error) {
	records, err := upstream.CollectPages[Record](ctx, s.client, accessToken, "/applications", nil)
	if err != nil {
		return nil, fmt.Errorf("applications: list: %w", err)
	}
	overrides := s.overrides.Snapshot(sessionID)
	views := make([]View, len(records))
	for i, record := range records {
		views[i] = View{Record: record, Stage: Classify(record, overrides)}
	}
	return views, nil
}

// Counts groups a classified listing into per-stage totals.
func Counts(views []View) map[Stage]int {
	counts := make(map[Stage]int, len(Stages))
	for _, stage := range Stages {
		counts[stage] = 0
	}
	for _, view := range views {
		counts[view.Stage]++
	}
	return counts
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// Transition persists the target stage as the application's new status. The
// upstream enum may predate the six-stage vocabulary; when it rejects the
// value the call is retried exactly once with the legacy status for the
// stage. Only a successful write records an override, so a failed transition
// leaves both the server and the review screen exactly as they were.
func (s *Service) Transition(ctx context.Context, accessToken, sessionID string, applicationID int64, target Stage) (Stage, error) {
	legacy, ok := legacyStatus[target]
	if !ok {
		return "", fmt.Errorf("applications: unknown stage %q", target)
	}

	err := s.updateStatus(ctx, accessToken, applicationID, string(target))
	if err != nil {
		if upstream.StatusOf(err) == 0 {
			// Transport failure, not a vocabulary rejection.
			return "", fmt.Errorf("applications: transition: %w", err)
		}
		if retryErr := s.updateStatus(ctx, accessToken, applicationID, legacy); retryErr != nil {
			return "", fmt.Errorf("applications: transition retry: %w", retryErr)
		}
	}

	s.overrides.Set(sessionID, applicationID, target)
	return target, nil
}

func (s *Service) updateStatus(ctx context.Context, accessToken string, applicationID int64, status string) error {
	var updated Record
	return s.client.Do(ctx, upstream.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/applications/%d/status", applicationID),
		Token:  accessToken,
		Body:   statusUpdateRequest{Status: status},
		Out:    &updated,
	})
}
