package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talentdesk-hq/talentdesk/internal/applications"
	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
)

// fetchConcurrency bounds parallel upstream page fetches.
const fetchConcurrency = 4

// StageCount is one funnel row.
type StageCount struct {
	Stage applications.Stage `json:"stage"`
	Count int                `json:"count"`
}

// FunnelReport aggregates every application on the platform into pipeline
// stages. Manual per-session stage overrides are deliberately ignored: the
// report describes the platform's recorded state, not one reviewer's view.
type FunnelReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Total       int          `json:"total"`
	Stages      []StageCount `json:"stages"`
}

// Service builds recruitment reports from upstream data.
type Service struct {
	client *upstream.Client
	cache  *Cache
	logger *slog.Logger
	clock  func() time.Time
}

// NewService constructs a Service.
func NewService(client *upstream.Client, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Funnel returns the cached funnel report, computing it on a miss.
func (s *Service) Funnel(ctx context.Context, accessToken string) (FunnelReport, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "funnel")
	if err != nil {
		return FunnelReport{}, fmt.Errorf("reports: cache key: %w", err)
	}
	var report FunnelReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		return s.buildFunnel(ctx, accessToken)
	})
	if err != nil {
		return FunnelReport{}, err
	}
	return report, nil
}

// Refresh invalidates every cached report.
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) buildFunnel(ctx context.Context, accessToken string) (FunnelReport, error) {
	first, err := upstream.FetchPage[applications.Record](ctx, s.client, accessToken, "/applications", nil, 1)
	if err != nil {
		return FunnelReport{}, fmt.Errorf("reports: funnel page 1: %w", err)
	}

	records := first.Data
	if first.Meta.TotalPages > 1 {
		// Page 1 told us how many pages exist, so the rest can be
		// fetched in parallel.
		pages := make([][]applications.Record, first.Meta.TotalPages+1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(fetchConcurrency)
		for page := 2; page <= first.Meta.TotalPages; page++ {
			g.Go(func() error {
				env, err := upstream.FetchPage[applications.Record](gctx, s.client, accessToken, "/applications", nil, page)
				if err != nil {
					return fmt.Errorf("reports: funnel page %d: %w", page, err)
				}
				pages[page] = env.Data
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return FunnelReport{}, err
		}
		for _, data := range pages {
			records = append(records, data...)
		}
	}

	counts := make(map[applications.Stage]int, len(applications.Stages))
	for _, record := range records {
		counts[applications.Classify(record, nil)]++
	}
	stages := make([]StageCount, 0, len(applications.Stages))
	for _, stage := range applications.Stages {
		stages = append(stages, StageCount{Stage: stage, Count: counts[stage]})
	}
	return FunnelReport{GeneratedAt: s.clock(), Total: len(records), Stages: stages}, nil
}
