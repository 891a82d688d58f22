package audit_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talentdesk-hq/talentdesk/internal/audit"
)

type stubRepo struct {
	entries  []audit.Entry
	insertFn func(audit.Entry) error
	window   struct {
		offset int
		limit  int
	}
}

func (s *stubRepo) Insert(_ context.Context, entry audit.Entry) error {
	if s.insertFn != nil {
		if err := s.insertFn(entry); err != nil {
			return err
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubRepo) Window(_ context.Context, _ audit.TimelineFilters, offset, limit int) ([]audit.Entry, error) {
	s.window.offset = offset
	s.window.limit = limit
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func (s *stubRepo) All(_ context.Context, _ audit.TimelineFilters) ([]audit.Entry, error) {
	return s.entries, nil
}

func seed(repo *stubRepo, n int) {
	for i := 0; i < n; i++ {
		repo.entries = append(repo.entries, audit.Entry{
			Actor:    "admin@example.com",
			Action:   fmt.Sprintf("action-%d", i),
			Entity:   "company",
			EntityID: fmt.Sprintf("%d", i),
			At:       time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		})
	}
}

func TestRecordPersistsEntry(t *testing.T) {
	repo := &stubRepo{}
	service := audit.NewService(repo, slog.Default())

	service.Record(context.Background(), "admin@example.com", "company.create", "company", "7")

	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Actor != "admin@example.com" || entry.Action != "company.create" || entry.EntityID != "7" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.At.IsZero() || entry.ID == uuid.Nil {
		t.Fatalf("entry missing timestamp or ID: %+v", entry)
	}
}

func TestRecordSwallowsRepositoryFailure(t *testing.T) {
	repo := &stubRepo{insertFn: func(audit.Entry) error { return fmt.Errorf("pg down") }}
	service := audit.NewService(repo, slog.Default())

	// Must not panic or surface the error: the admin action already happened.
	service.Record(context.Background(), "admin@example.com", "company.delete", "company", "7")
}

func TestTimelineProbesForNextPage(t *testing.T) {
	repo := &stubRepo{}
	seed(repo, 25)
	service := audit.NewService(repo, slog.Default())

	result, err := service.Timeline(context.Background(), audit.TimelineFilters{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.window.limit != 21 {
		t.Fatalf("expected probe of pageSize+1, asked for %d", repo.window.limit)
	}
	if len(result.Rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected next page, got %+v", result.Paging)
	}

	result, err = service.Timeline(context.Background(), audit.TimelineFilters{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline page 2: %v", err)
	}
	if len(result.Rows) != 5 || result.Paging.HasNext {
		t.Fatalf("expected final partial page, got %d rows %+v", len(result.Rows), result.Paging)
	}
	if result.Paging.PrevPage != 1 {
		t.Fatalf("expected prev page 1, got %+v", result.Paging)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	seed(repo, 5)
	service := audit.NewService(repo, slog.Default())

	if _, err := service.Timeline(context.Background(), audit.TimelineFilters{PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.window.limit != 51 {
		t.Fatalf("expected page size clamped to 50, asked for %d", repo.window.limit)
	}
}

func TestWriteCSV(t *testing.T) {
	repo := &stubRepo{}
	seed(repo, 2)

	var buf strings.Builder
	if err := audit.WriteCSV(&buf, repo.entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "At,Actor,Action,Entity,EntityID" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "admin@example.com") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}
