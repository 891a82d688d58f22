package rbac

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
)

// Set is a resolved permission set keyed by normalized token.
type Set map[string]struct{}

// Has reports whether the set contains any of the candidate permissions.
// Callers probe several historical spellings of the same permission because
// the platform's naming convention changed over time and either form may be
// granted server-side.
func (s Set) Has(candidates ...string) bool {
	for _, candidate := range candidates {
		if _, ok := s[Normalize(candidate)]; ok {
			return true
		}
	}
	return false
}

// Names returns the set's tokens in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize maps a raw permission string to its canonical comparison form:
// uppercase with everything outside [A-Z0-9] removed. Idempotent, so
// "Manage-Users", "MANAGE_USERS" and "manage.users" all collapse to
// "MANAGEUSERS".
func Normalize(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.ToUpper(token) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewSet normalizes raw permission strings into a Set.
func NewSet(raw []string) Set {
	set := make(Set, len(raw))
	for _, token := range raw {
		if normalized := Normalize(token); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// IdentityUser is the upstream GET /me payload.
type IdentityUser struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type identityEnvelope struct {
	User IdentityUser `json:"user"`
}

// PermissionFetcher retrieves raw permission strings for a bearer token.
type PermissionFetcher interface {
	FetchPermissions(ctx context.Context, accessToken string) ([]string, error)
}

// IdentityClient fetches the current identity from the upstream Identity API.
type IdentityClient struct {
	client *upstream.Client
}

// NewIdentityClient constructs an IdentityClient.
func NewIdentityClient(client *upstream.Client) *IdentityClient {
	return &IdentityClient{client: client}
}

// Me returns the identity behind the bearer token.
func (c *IdentityClient) Me(ctx context.Context, accessToken string) (IdentityUser, error) {
	var envelope identityEnvelope
	err := c.client.Do(ctx, upstream.Request{
		Method: http.MethodGet,
		Path:   "/me",
		Token:  accessToken,
		Out:    &envelope,
	})
	if err != nil {
		return IdentityUser{}, err
	}
	return envelope.User, nil
}

// FetchPermissions implements PermissionFetcher.
func (c *IdentityClient) FetchPermissions(ctx context.Context, accessToken string) ([]string, error) {
	user, err := c.Me(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user.Permissions, nil
}

var _ PermissionFetcher = (*IdentityClient)(nil)

// Resolver answers "does the current identity hold permission X". Permission
// sets are refetched from the identity lookup per load, never persisted; the
// cached copy exists only as last-loaded observable state.
type Resolver struct {
	fetcher PermissionFetcher

	mu      sync.Mutex
	token   string
	set     Set
	loadErr error
}

// NewResolver constructs a Resolver backed by the given fetcher.
func NewResolver(fetcher PermissionFetcher) *Resolver {
	return &Resolver{fetcher: fetcher, set: Set{}}
}

// Load resolves the permission set for the given bearer token. An empty
// token is a valid anonymous state and yields an empty set with no error.
// Any lookup failure yields an empty set as well, with the error recorded:
// fail closed, never stale or partial. Overlapping loads are not coalesced;
// the last to finish owns the recorded state.
func (r *Resolver) Load(ctx context.Context, accessToken string) (Set, error) {
	if accessToken == "" {
		r.record(accessToken, Set{}, nil)
		return Set{}, nil
	}

	raw, err := r.fetcher.FetchPermissions(ctx, accessToken)
	if err != nil {
		r.record(accessToken, Set{}, err)
		return Set{}, err
	}

	set := NewSet(raw)
	r.record(accessToken, set, nil)
	return set, nil
}

// Current returns the last loaded set together with any recorded load error.
func (r *Resolver) Current() (Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set, r.loadErr
}

func (r *Resolver) record(token string, set Set, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
	r.set = set
	r.loadErr = err
}
