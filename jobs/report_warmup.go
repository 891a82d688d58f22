package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/talentdesk-hq/talentdesk/internal/reports"
)

// TaskTypeReportWarmup rebuilds cached reports off-peak so the first
// dashboard visit of the day does not pay the aggregation cost.
const TaskTypeReportWarmup = "reports:warmup"

// NewReportWarmupTask constructs the warmup task.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReportWarmup, nil)
}

// ReportWarmup recomputes the funnel report using the console's service
// credential.
type ReportWarmup struct {
	Reports      *reports.Service
	ServiceToken string
	Logger       *slog.Logger
}

// Handle processes TaskTypeReportWarmup tasks.
func (j *ReportWarmup) Handle(ctx context.Context, _ *asynq.Task) error {
	if j.Reports == nil || j.ServiceToken == "" {
		if j.Logger != nil {
			j.Logger.Warn("report warmup skipped: not configured")
		}
		return nil
	}
	if err := j.Reports.Refresh(ctx); err != nil {
		return err
	}
	report, err := j.Reports.Funnel(ctx, j.ServiceToken)
	if err != nil {
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("report warmup complete", slog.Int("applications", report.Total))
	}
	return nil
}
