package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder captures console actions. Record is best effort: the admin
// operation itself must not fail because its trail could not be written.
type Recorder interface {
	Record(ctx context.Context, actor, action, entity, entityID string)
}

// Service coordinates the console audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
	clock  func() time.Time
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Record persists one console action.
func (s *Service) Record(ctx context.Context, actor, action, entity, entityID string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := Entry{
		ID:       uuid.New(),
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		At:       s.clock(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

// Timeline returns a windowed slice of the trail. It asks the repository
// for one extra row to learn whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Window(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the full matching trail without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.All(ctx, filters)
}

var _ Recorder = (*Service)(nil)
