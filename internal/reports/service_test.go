package reports_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/talentdesk-hq/talentdesk/internal/applications"
	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/reports"
)

func funnelFixture(t *testing.T, requests *atomic.Int64) *reports.Service {
	t.Helper()
	// Three pages: one interview, one rejected, the rest longlisted.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		envelope := upstream.ListEnvelope[applications.Record]{
			Meta: upstream.PageMeta{Page: page, PerPage: 2, Total: 5, TotalPages: 3},
		}
		switch page {
		case 1:
			envelope.Data = []applications.Record{
				{ID: 1, WorkflowStatus: "Interview Scheduled"},
				{ID: 2, Status: "rejected by employer"},
			}
		case 2:
			envelope.Data = []applications.Record{{ID: 3}, {ID: 4}}
		case 3:
			envelope.Data = []applications.Record{{ID: 5}}
		default:
			t.Fatalf("unexpected page %d", page)
		}
		_ = json.NewEncoder(w).Encode(envelope)
	}))
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	cache := reports.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	return reports.NewService(upstream.New(server.URL, 5*time.Second), cache, slog.Default())
}

func TestFunnelAggregatesAllPages(t *testing.T) {
	var requests atomic.Int64
	service := funnelFixture(t, &requests)

	report, err := service.Funnel(context.Background(), "token")
	if err != nil {
		t.Fatalf("funnel: %v", err)
	}
	if report.Total != 5 {
		t.Fatalf("expected 5 applications, got %d", report.Total)
	}
	counts := make(map[applications.Stage]int)
	for _, row := range report.Stages {
		counts[row.Stage] = row.Count
	}
	if counts[applications.StageInterview] != 1 || counts[applications.StageRejected] != 1 || counts[applications.StageLonglisted] != 3 {
		t.Fatalf("unexpected stage counts %v", counts)
	}
	if requests.Load() != 3 {
		t.Fatalf("expected 3 upstream pages fetched, got %d", requests.Load())
	}
}

func TestFunnelServesSecondCallFromCache(t *testing.T) {
	var requests atomic.Int64
	service := funnelFixture(t, &requests)

	if _, err := service.Funnel(context.Background(), "token"); err != nil {
		t.Fatalf("funnel: %v", err)
	}
	fetched := requests.Load()
	if _, err := service.Funnel(context.Background(), "token"); err != nil {
		t.Fatalf("funnel cached: %v", err)
	}
	if requests.Load() != fetched {
		t.Fatalf("expected cache hit, upstream called %d extra times", requests.Load()-fetched)
	}
}

func TestRefreshInvalidatesCache(t *testing.T) {
	var requests atomic.Int64
	service := funnelFixture(t, &requests)

	if _, err := service.Funnel(context.Background(), "token"); err != nil {
		t.Fatalf("funnel: %v", err)
	}
	if err := service.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fetched := requests.Load()
	if _, err := service.Funnel(context.Background(), "token"); err != nil {
		t.Fatalf("funnel after refresh: %v", err)
	}
	if requests.Load() == fetched {
		t.Fatal("expected recompute after refresh")
	}
}

func TestWriteFunnelCSV(t *testing.T) {
	report := reports.FunnelReport{
		GeneratedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Total:       4,
		Stages: []reports.StageCount{
			{Stage: applications.StageLonglisted, Count: 3},
			{Stage: applications.StageHired, Count: 1},
		},
	}

	var buf strings.Builder
	if err := reports.WriteFunnelCSV(&buf, report); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "longlisted") || !strings.Contains(lines[1], "75.0%") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}
