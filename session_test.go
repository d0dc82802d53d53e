package driftline

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/driftline/driftline-go/internal/types"
	"github.com/stretchr/testify/require"
)

// authBackend is a minimal fake of the auth surface: one account, tokens it
// has issued, and a protected /auth/me.
type authBackend struct {
	mu     sync.Mutex
	email  string
	pass   string
	issued map[string]bool
}

func newAuthBackend(email, pass string) *authBackend {
	return &authBackend{email: email, pass: pass, issued: map[string]bool{}}
}

func (b *authBackend) issue() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := "tok-" + string(rune('a'+len(b.issued)))
	b.issued[tok] = true
	return tok
}

func (b *authBackend) valid(authz string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(authz) > 7 && b.issued[authz[7:]]
}

func (b *authBackend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued = map[string]bool{}
}

func (b *authBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/login", "/auth/register":
		var creds types.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != b.email || creds.Password != b.pass {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(types.TokenResponse{AccessToken: b.issue()})
	case "/auth/me":
		if !b.valid(r.Header.Get("Authorization")) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(types.Identity{ID: 1, Email: b.email})
	default:
		if !b.valid(r.Header.Get("Authorization")) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}
}

func TestSessionInitWithoutCredential(t *testing.T) {
	c, _, _ := newTestClient(t, newAuthBackend("a@b.co", "secret"))
	sc := NewSessionController(c)

	require.Equal(t, SessionPending, sc.Snapshot().Status)
	sc.Init(context.Background())

	snap := sc.Snapshot()
	require.Equal(t, SessionReady, snap.Status)
	require.False(t, snap.Authenticated())
}

func TestSessionInitRestoresPersistedCredential(t *testing.T) {
	backend := newAuthBackend("a@b.co", "secret")
	c, store, _ := newTestClient(t, backend)
	require.NoError(t, store.Save(backend.issue()))

	sc := NewSessionController(c)
	sc.Init(context.Background())

	snap := sc.Snapshot()
	require.True(t, snap.Authenticated())
	require.Equal(t, "a@b.co", snap.Identity.Email)
}

func TestSessionInitClearsRejectedCredential(t *testing.T) {
	c, store, _ := newTestClient(t, newAuthBackend("a@b.co", "secret"))
	require.NoError(t, store.Save("never-issued"))

	sc := NewSessionController(c)
	sc.Init(context.Background())

	require.False(t, sc.Snapshot().Authenticated())
	_, ok := store.Token()
	require.False(t, ok, "rejected credential must be cleared")
}

func TestLoginConfirmsIdentityBeforeReady(t *testing.T) {
	c, store, _ := newTestClient(t, newAuthBackend("a@b.co", "secret"))
	sc := NewSessionController(c)
	sc.Init(context.Background())

	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))
	require.True(t, sc.Snapshot().Authenticated(), "Authenticated must hold the moment Login returns")
	_, ok := store.Token()
	require.True(t, ok)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	c, store, _ := newTestClient(t, newAuthBackend("a@b.co", "secret"))
	sc := NewSessionController(c)
	sc.Init(context.Background())

	err := sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "wrongpw"})
	require.True(t, IsAuthError(err))
	require.False(t, sc.Snapshot().Authenticated())
	_, ok := store.Token()
	require.False(t, ok)
}

func TestLoginLogoutLoginNoStaleIdentity(t *testing.T) {
	backend := newAuthBackend("a@b.co", "secret")
	c, _, _ := newTestClient(t, backend)
	sc := NewSessionController(c)
	sc.Init(context.Background())

	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))
	first := sc.Snapshot().Identity

	sc.Logout()
	require.False(t, sc.Snapshot().Authenticated())
	require.Nil(t, sc.Snapshot().Identity)

	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))
	snap := sc.Snapshot()
	require.True(t, snap.Authenticated())
	require.NotSame(t, first, snap.Identity, "final session must carry the last login's identity, not a cached one")
}

func TestSubscribersObserveTransitionsInOrder(t *testing.T) {
	backend := newAuthBackend("a@b.co", "secret")
	c, _, _ := newTestClient(t, backend)
	sc := NewSessionController(c)

	var mu sync.Mutex
	var a, b []bool // authenticated-flags per subscriber
	unsubA := sc.Subscribe(func(s Session) { mu.Lock(); a = append(a, s.Authenticated()); mu.Unlock() })
	defer unsubA()
	unsubB := sc.Subscribe(func(s Session) { mu.Lock(); b = append(b, s.Authenticated()); mu.Unlock() })

	sc.Init(context.Background())
	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))
	sc.Logout()

	mu.Lock()
	require.Equal(t, []bool{false, true, false}, a)
	require.Equal(t, a, b, "all subscribers see the same transitions in the same order")
	mu.Unlock()

	// A dropped subscriber observes nothing further.
	unsubB()
	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))
	mu.Lock()
	require.Equal(t, []bool{false, true, false, true}, a)
	require.Equal(t, []bool{false, true, false}, b)
	mu.Unlock()
}

func TestGatewayAuthorizationLossForcesAnonymousSession(t *testing.T) {
	backend := newAuthBackend("a@b.co", "secret")
	c, store, nav := newTestClient(t, backend)
	sc := NewSessionController(c)
	sc.Init(context.Background())
	require.NoError(t, sc.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret"}))

	// Backend revokes the token; the next request from any feature 401s.
	backend.revokeAll()
	_, err := c.ListNotes(context.Background(), ListNotesQuery{})
	require.True(t, IsAuthorizationLost(err))

	require.False(t, sc.Snapshot().Authenticated(), "session forced anonymous")
	_, ok := store.Token()
	require.False(t, ok, "token store cleared")
	require.Equal(t, 1, nav.logins(), "one navigation to login")
}
