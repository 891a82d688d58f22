package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoReportsOutcomeToObserver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1}`))
		case "/rejected":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"gone"}}`))
		}
	}))
	defer server.Close()

	var outcomes []string
	client := New(server.URL, time.Second, WithObserver(func(outcome string) {
		outcomes = append(outcomes, outcome)
	}))

	var out struct {
		ID int `json:"id"`
	}
	if err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ok", Out: &out}); err != nil {
		t.Fatalf("ok request: %v", err)
	}
	if out.ID != 1 {
		t.Fatalf("decoded id = %d, want 1", out.ID)
	}

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/rejected"})
	if StatusOf(err) != http.StatusNotFound {
		t.Fatalf("rejected status = %d, want 404", StatusOf(err))
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	broken := New(dead.URL, time.Second, WithObserver(func(outcome string) {
		outcomes = append(outcomes, outcome)
	}))
	if err := broken.Do(context.Background(), Request{Method: http.MethodGet, Path: "/anything"}); err == nil {
		t.Fatal("expected transport error")
	}

	want := []string{"ok", "rejected", "error"}
	if len(outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Fatalf("outcomes = %v, want %v", outcomes, want)
		}
	}
}

func TestDoWithoutObserver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	if err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/things/1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
