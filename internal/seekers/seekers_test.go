package seekers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/seekers"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
)

func newService(t *testing.T, handler http.HandlerFunc) *seekers.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return seekers.NewService(upstream.New(server.URL, 5*time.Second))
}

func TestListForwardsSearchTerm(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Fatalf("search term not forwarded, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(upstream.ListEnvelope[seekers.Seeker]{
			Data: []seekers.Seeker{{ID: 4, Name: "Dana"}},
			Meta: upstream.PageMeta{Page: 1, TotalPages: 1, Total: 1},
		})
	})

	items, err := service.List(context.Background(), "token", "golang")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Dana" {
		t.Fatalf("unexpected seekers %+v", items)
	}
}

func TestUpdateProfileRoundTrip(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/seekers/4/profile" {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var input seekers.ProfileInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(seekers.Seeker{ID: 4, Name: input.Name, Headline: input.Headline})
	})

	seeker, err := service.UpdateProfile(context.Background(), "token", 4, seekers.ProfileInput{
		Name:     "Dana",
		Headline: "Backend engineer",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if seeker.Headline != "Backend engineer" {
		t.Fatalf("unexpected seeker %+v", seeker)
	}
}

func TestGetMapsMissingSeeker(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"no such seeker"}}`))
	})

	_, err := service.Get(context.Background(), "token", 123)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
