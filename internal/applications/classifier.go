package applications

import "strings"

// stageKeywords is tested in fixed priority order; the first matching group
// wins when a status text mentions several stages at once.
var stageKeywords = []struct {
	stage    Stage
	keywords []string
}{
	{StageShortlisted, []string{"shortlist"}},
	{StageInterview, []string{"interview"}},
	{StageAssessment, []string{"assessment"}},
	{StageHired, []string{"hire", "accepted"}},
	{StageRejected, []string{"reject"}},
	{StageLonglisted, []string{"longlist"}},
}

// Classify maps a record plus the session's override table to exactly one
// stage. An override from an explicit user action wins unconditionally.
// Otherwise both free-text status fields are matched by substring; the
// pre-six-stage status "reviewed" maps to shortlisted for backward
// compatibility, and anything unrecognizable counts as newly received.
func Classify(record Record, overrides Overrides) Stage {
	if overrides != nil {
		if stage, ok := overrides[record.ID]; ok {
			return stage
		}
	}

	text := strings.ToLower(record.WorkflowStatus + " " + record.Status)
	for _, group := range stageKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(text, keyword) {
				return group.stage
			}
		}
	}
	if strings.Contains(text, "reviewed") {
		return StageShortlisted
	}
	return StageLonglisted
}
