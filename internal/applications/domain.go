package applications

import (
	"fmt"
	"time"
)

// Stage is one of the six canonical pipeline states used for grouping in the
// review screen. It is display-side inference, never a stored field.
type Stage string

const (
	StageLonglisted  Stage = "longlisted"
	StageShortlisted Stage = "shortlisted"
	StageRejected    Stage = "rejected"
	StageInterview   Stage = "interview"
	StageAssessment  Stage = "assessment"
	StageHired       Stage = "hired"
)

// Stages lists every canonical stage in pipeline order.
var Stages = []Stage{StageLonglisted, StageShortlisted, StageInterview, StageAssessment, StageHired, StageRejected}

// ParseStage validates a stage string from the UI.
func ParseStage(raw string) (Stage, error) {
	stage := Stage(raw)
	for _, known := range Stages {
		if stage == known {
			return stage, nil
		}
	}
	return "", fmt.Errorf("applications: unknown stage %q", raw)
}

// Record is an application row as the upstream Applications API returns it.
// The two status fields are free text; the platform never migrated old rows
// to a fixed vocabulary.
type Record struct {
	ID             int64     `json:"id"`
	VacancyID      int64     `json:"vacancy_id"`
	VacancyTitle   string    `json:"vacancy_title"`
	SeekerID       int64     `json:"seeker_id"`
	SeekerName     string    `json:"seeker_name"`
	WorkflowStatus string    `json:"workflow_status"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"applied_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
