package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	_ "github.com/talentdesk-hq/talentdesk/testing"
)

type stubFetcher struct {
	perms []string
	err   error
	calls int
}

func (s *stubFetcher) FetchPermissions(ctx context.Context, token string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.perms, nil
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Manage-Users":               "MANAGEUSERS",
		"MANAGE_USERS":               "MANAGEUSERS",
		"manage.users":               "MANAGEUSERS",
		"applications.update_status": "APPLICATIONSUPDATESTATUS",
		"":                           "",
		"  spaced out  ":             "SPACEDOUT",
	}
	for raw, want := range cases {
		if got := rbac.Normalize(raw); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Manage-Users", "UPDATE_APPLICATION_STATUS", "a1.b2-C3"}
	for _, raw := range inputs {
		once := rbac.Normalize(raw)
		if twice := rbac.Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestSetHasAnyOf(t *testing.T) {
	set := rbac.NewSet([]string{"UPDATE_APPLICATION_STATUS", "companies.view"})

	if !set.Has("applications.update_status", "UPDATE_APPLICATION_STATUS") {
		t.Fatalf("expected any-of probe to match the granted spelling")
	}
	if !set.Has("Companies-View") {
		t.Fatalf("expected punctuation-insensitive match")
	}
	if set.Has("users.delete", "DELETE_USER") {
		t.Fatalf("expected no match when neither spelling is granted")
	}
	if set.Has() {
		t.Fatalf("empty candidate list must not match")
	}
}

func TestLoadAnonymous(t *testing.T) {
	fetcher := &stubFetcher{perms: []string{"should.not.be.fetched"}}
	resolver := rbac.NewResolver(fetcher)

	set, err := resolver.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("anonymous load must not fail: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("anonymous load must yield empty set, got %v", set.Names())
	}
	if fetcher.calls != 0 {
		t.Fatalf("anonymous load must not hit the identity API")
	}
}

func TestLoadFailureFailsClosed(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("identity api down")}
	resolver := rbac.NewResolver(fetcher)

	set, err := resolver.Load(context.Background(), "token-1")
	if err == nil {
		t.Fatalf("expected load error")
	}
	if len(set) != 0 {
		t.Fatalf("failed load must yield empty set, got %v", set.Names())
	}

	current, loadErr := resolver.Current()
	if loadErr == nil {
		t.Fatalf("expected recorded load error")
	}
	if len(current) != 0 {
		t.Fatalf("recorded state after failure must be empty")
	}
}

func TestLoadNormalizesAndLastWriteWins(t *testing.T) {
	fetcher := &stubFetcher{perms: []string{"Manage-Users", "manage.users", "reports.view"}}
	resolver := rbac.NewResolver(fetcher)

	set, err := resolver.Load(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected case and punctuation variants to collapse, got %v", set.Names())
	}
	if !set.Has("MANAGE_USERS") || !set.Has("REPORTS.VIEW") {
		t.Fatalf("normalized set missing expected tokens: %v", set.Names())
	}

	fetcher.perms = []string{"audit.view"}
	if _, err := resolver.Load(context.Background(), "token-2"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	current, _ := resolver.Current()
	if !current.Has("AUDIT_VIEW") || current.Has("MANAGE_USERS") {
		t.Fatalf("latest load must replace the recorded set, got %v", current.Names())
	}
}
