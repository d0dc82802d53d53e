package driftline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionStatus tracks whether the controller has finished resolving the
// initial credential.
type SessionStatus int

const (
	// SessionPending: startup restoration has not completed yet.
	SessionPending SessionStatus = iota
	// SessionReady: the session is resolved; Identity says to what.
	SessionReady
)

// Session is a read-only snapshot of the authentication state. Snapshots
// are passed by value to subscribers; Identity is nil when anonymous.
type Session struct {
	Identity *Identity
	Status   SessionStatus
}

// Authenticated reports a resolved session with a confirmed identity.
func (s Session) Authenticated() bool {
	return s.Status == SessionReady && s.Identity != nil
}

// SessionController owns the authenticated-user identity and is the only
// writer of session state. UI surfaces subscribe for snapshots; every
// subscriber observes the same transitions in the same order.
//
// Contract:
//   - Init: restore a persisted credential, confirm it against the backend.
//   - Login / Register: issue a token, persist it, confirm identity before
//     reporting Ready, so isAuthenticated is accurate once they return.
//   - Logout: synchronous, always succeeds, no network round-trip.
//   - A gateway-detected authorization loss forces Ready(anonymous) without
//     any orchestrator involvement.
type SessionController struct {
	client *Client
	logger zerolog.Logger

	// pubMu serializes state transitions and their fan-out so no subscriber
	// can observe snapshots out of order. stateMu alone guards the current
	// snapshot, so callbacks may read Snapshot without deadlocking.
	pubMu   sync.Mutex
	stateMu sync.Mutex
	current Session

	subMu   sync.Mutex
	subs    []sessionSub
	nextSub int
}

type sessionSub struct {
	id int
	fn func(Session)
}

// NewSessionController binds a controller to the gateway client and hooks
// it into the gateway's authorization-loss cascade.
func NewSessionController(c *Client) *SessionController {
	sc := &SessionController{
		client:  c,
		logger:  log.With().Str("component", "session").Logger(),
		current: Session{Status: SessionPending},
	}
	c.OnAuthorizationLost(sc.forceAnonymous)
	return sc
}

// Snapshot returns the current session by value.
func (sc *SessionController) Snapshot() Session {
	sc.stateMu.Lock()
	defer sc.stateMu.Unlock()
	return sc.current
}

// Subscribe registers fn for every subsequent transition and returns an
// unsubscribe func. Call it on view teardown; after it returns fn is never
// invoked again. Callbacks run synchronously on the publishing goroutine
// and must not block.
func (sc *SessionController) Subscribe(fn func(Session)) (unsubscribe func()) {
	sc.subMu.Lock()
	id := sc.nextSub
	sc.nextSub++
	sc.subs = append(sc.subs, sessionSub{id: id, fn: fn})
	sc.subMu.Unlock()

	return func() {
		sc.subMu.Lock()
		defer sc.subMu.Unlock()
		for i, s := range sc.subs {
			if s.id == id {
				sc.subs = append(sc.subs[:i], sc.subs[i+1:]...)
				return
			}
		}
	}
}

// publish installs next as the current snapshot and fans it out in
// registration order.
func (sc *SessionController) publish(next Session) {
	sc.pubMu.Lock()
	defer sc.pubMu.Unlock()

	sc.stateMu.Lock()
	sc.current = next
	sc.stateMu.Unlock()

	sc.subMu.Lock()
	subs := make([]sessionSub, len(sc.subs))
	copy(subs, sc.subs)
	sc.subMu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Init restores the session once per process start: a persisted credential
// is confirmed via the identity endpoint; any failure clears it and the
// session resolves anonymous. Init never returns an error to the caller —
// an unusable stored token is not the user's problem.
func (sc *SessionController) Init(ctx context.Context) {
	if _, ok := sc.client.Token(); !ok {
		sc.publish(Session{Status: SessionReady})
		return
	}

	id, err := sc.client.Me(ctx)
	if err != nil {
		sc.logger.Debug().Err(err).Msg("stored credential rejected, starting anonymous")
		sc.client.clearToken()
		sc.publish(Session{Status: SessionReady})
		return
	}
	sc.publish(Session{Status: SessionReady, Identity: id})
}

// Login authenticates with the backend. On success the credential is
// persisted and the identity confirmed before the session transitions, so
// callers can rely on Authenticated immediately afterwards. On failure the
// stored credential is left untouched.
func (sc *SessionController) Login(ctx context.Context, creds Credentials) error {
	tok, err := sc.client.Login(ctx, creds)
	if err != nil {
		return err
	}
	return sc.adoptToken(ctx, tok)
}

// Register creates an account; contract identical to Login.
func (sc *SessionController) Register(ctx context.Context, creds Credentials) error {
	tok, err := sc.client.Register(ctx, creds)
	if err != nil {
		return err
	}
	return sc.adoptToken(ctx, tok)
}

// adoptToken persists a freshly issued credential and confirms the identity
// behind it. If confirmation fails the credential is discarded so the store
// never holds a token the session does not reflect.
func (sc *SessionController) adoptToken(ctx context.Context, tok string) error {
	if err := sc.client.saveToken(tok); err != nil {
		sc.logger.Warn().Err(err).Msg("credential not persisted; session will not survive restart")
	}
	id, err := sc.client.Me(ctx)
	if err != nil {
		sc.client.clearToken()
		return err
	}
	sc.publish(Session{Status: SessionReady, Identity: id})
	sc.logger.Info().Str("email", id.Email).Msg("session established")
	return nil
}

// Logout clears the credential and identity immediately. No network
// round-trip: the backend holds no revocable session state.
func (sc *SessionController) Logout() {
	sc.client.clearToken()
	sc.publish(Session{Status: SessionReady})
	sc.logger.Info().Msg("logged out")
}

// forceAnonymous is the gateway's authorization-loss callback. The store is
// already cleared by the time it runs.
func (sc *SessionController) forceAnonymous() {
	sc.publish(Session{Status: SessionReady})
	sc.logger.Warn().Msg("authorization lost, session forced anonymous")
}
