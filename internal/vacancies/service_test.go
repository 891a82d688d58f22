package vacancies_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
	"github.com/talentdesk-hq/talentdesk/internal/vacancies"
)

func newService(t *testing.T, handler http.HandlerFunc) *vacancies.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return vacancies.NewService(upstream.New(server.URL, 5*time.Second))
}

func TestListForwardsFilters(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("company_id") != "3" || query.Get("status") != vacancies.StatusOpen {
			t.Fatalf("filters not forwarded: %v", query)
		}
		_ = json.NewEncoder(w).Encode(upstream.ListEnvelope[vacancies.Vacancy]{
			Data: []vacancies.Vacancy{{ID: 11, CompanyID: 3, Status: vacancies.StatusOpen}},
			Meta: upstream.PageMeta{Page: 1, TotalPages: 1, Total: 1},
		})
	})

	items, err := service.List(context.Background(), "token", vacancies.Filters{CompanyID: 3, Status: vacancies.StatusOpen})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != 11 {
		t.Fatalf("unexpected vacancies %+v", items)
	}
}

func TestCloseHitsCloseEndpoint(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/vacancies/11/close" {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(vacancies.Vacancy{ID: 11, Status: vacancies.StatusClosed})
	})

	vacancy, err := service.Close(context.Background(), "token", 11)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if vacancy.Status != vacancies.StatusClosed {
		t.Fatalf("expected closed vacancy, got %+v", vacancy)
	}
}

func TestGetMapsMissingVacancy(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"no such vacancy"}}`))
	})

	_, err := service.Get(context.Background(), "token", 99)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
