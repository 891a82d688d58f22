package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/talentdesk-hq/talentdesk/internal/shared"
	_ "github.com/talentdesk-hq/talentdesk/testing"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestLoadWithoutCookieIsEmptySession(t *testing.T) {
	manager, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("fresh session must not be authenticated")
	}
	if sess.AccessToken() != "" || sess.UserEmail() != "" || sess.UserName() != "" {
		t.Fatalf("fresh session must carry no identity values")
	}
}

func TestCommitPersistsIdentityAtomically(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetIdentity("tok-123", "admin@example.com", "Admin One")

	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Exactly one session record exists and it holds the three values.
	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one persisted session, got %v", keys)
	}

	reload := httptest.NewRequest(http.MethodGet, "/", nil)
	reload.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, reload)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.AccessToken() != "tok-123" || loaded.UserEmail() != "admin@example.com" || loaded.UserName() != "Admin One" {
		t.Fatalf("identity did not survive reload: %q %q %q", loaded.AccessToken(), loaded.UserEmail(), loaded.UserName())
	}
	if !loaded.Authenticated() {
		t.Fatalf("reloaded session must be authenticated")
	}
}

func TestDestroyClearsEverything(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := manager.Load(ctx, req)
	sess.SetIdentity("tok-123", "admin@example.com", "Admin One")
	res := httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	manager.Destroy(sess)
	res = httptest.NewRecorder()
	if err := manager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected session record removed, got %v", keys)
	}

	reload := httptest.NewRequest(http.MethodGet, "/", nil)
	reload.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	loaded, err := manager.Load(ctx, reload)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Authenticated() || loaded.AccessToken() != "" || loaded.UserEmail() != "" || loaded.UserName() != "" {
		t.Fatalf("destroyed session must reload empty")
	}
}

func TestClearIdentityRemovesOnlyIdentityKeys(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := manager.Load(ctx, req)
	sess.Set("csrf_token", "keep-me")
	sess.SetIdentity("tok", "a@b.c", "A B")
	sess.ClearIdentity()

	if sess.Authenticated() {
		t.Fatalf("identity must be gone")
	}
	if sess.Get("csrf_token") != "keep-me" {
		t.Fatalf("non-identity values must survive ClearIdentity")
	}
}

func TestStorageFailureFailsOpenToLoggedOut(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "some-session-id"})

	mr.Close()

	sess, err := manager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load with dead store must not fail: %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("a storage failure can never produce a signed-in session")
	}
}
