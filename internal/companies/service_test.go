package companies_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talentdesk-hq/talentdesk/internal/companies"
	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

func newService(t *testing.T, handler http.HandlerFunc) *companies.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return companies.NewService(upstream.New(server.URL, 5*time.Second))
}

func TestListWalksEveryPage(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/companies" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		page := r.URL.Query().Get("page")
		envelope := upstream.ListEnvelope[companies.Company]{
			Meta: upstream.PageMeta{Page: 1, PerPage: 2, Total: 3, TotalPages: 2},
		}
		switch page {
		case "", "1":
			envelope.Data = []companies.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}
		case "2":
			envelope.Meta.Page = 2
			envelope.Data = []companies.Company{{ID: 3, Name: "Initech"}}
		default:
			t.Fatalf("unexpected page %q", page)
		}
		_ = json.NewEncoder(w).Encode(envelope)
	})

	items, err := service.List(context.Background(), "token")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 companies, got %d", len(items))
	}
	if items[2].Name != "Initech" {
		t.Fatalf("expected last page merged, got %+v", items)
	}
}

func TestGetMapsMissingCompany(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"no such company"}}`))
	})

	_, err := service.Get(context.Background(), "token", 42)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSendsBearerToken(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var input companies.Input
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(companies.Company{ID: 7, Name: input.Name})
	})

	company, err := service.Create(context.Background(), "token", companies.Input{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if company.ID != 7 || company.Name != "Acme" {
		t.Fatalf("unexpected company %+v", company)
	}
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called for an invalid ID")
	})

	if err := service.Delete(context.Background(), "token", 0); err == nil {
		t.Fatal("expected error for zero ID")
	}
}
