// Package driftline is the Go client for the Driftline journaling service.
//
// The package owns the bearer credential, decorates every outbound request,
// reacts uniformly to authorization failures, and provides the
// fetch/mutate orchestration shared by every UI surface (library, moments,
// insights, demo bootstrap).
package driftline

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftline/driftline-go/internal/api"
	"github.com/driftline/driftline-go/internal/tokenstore"
	"github.com/driftline/driftline-go/internal/types"
)

// Re-exported domain types so SDK users import a single package.
type (
	Identity          = types.Identity
	Note              = types.Note
	Moment            = types.Moment
	InsightsStats     = types.InsightsStats
	Credentials       = types.Credentials
	CreateNoteRequest = types.CreateNoteRequest
	ListNotesQuery    = types.ListNotesQuery
	AnalyzeRequest    = types.AnalyzeRequest
	AnalyzeResponse   = types.AnalyzeResponse
)

// Navigator receives the navigation side effects the SDK is required to
// trigger: the forced move to the login view on authorization loss, and the
// demo bootstrap's hand-off to the moments view. UI layers supply their own;
// the default does nothing.
type Navigator interface {
	NavigateToLogin()
	NavigateToMoments()
}

// NopNavigator ignores all navigation.
type NopNavigator struct{}

func (NopNavigator) NavigateToLogin()   {}
func (NopNavigator) NavigateToMoments() {}

// Client is the single gateway through which every feature talks to the
// backend. It is long-lived: construct one per process so the
// attach/intercept behavior is uniform and in-flight requests carry the
// credential snapshot taken at send time.
type Client struct {
	baseURL   string
	http      *http.Client
	store     tokenstore.Store
	navigator Navigator
	debug     bool

	extraDecorators []RequestDecorator
	extraHooks      []ResponseHook

	// authLost flips once per stored credential so concurrent 401s collapse
	// to a single handler cascade. Saving a new credential re-arms it.
	authLost atomic.Bool

	mu           sync.Mutex
	lostHandlers []func()
}

// New constructs a Client for the given base URL. Additional behavior is
// supplied via functional options.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		store:     tokenstore.Open(""),
		navigator: NopNavigator{},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	c.installPipeline()
	return c
}

// NewFromEnv constructs a Client from DRIFTLINE_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithHTTPTimeout(cfg.HTTPTimeout),
		WithDebugLogging(cfg.Debug),
	}
	if cfg.StateDir != "" {
		base = append(base, WithStateDir(cfg.StateDir))
	}
	return New(cfg.APIURL, append(base, opts...)...), nil
}

// installPipeline wires the middleware pipeline around the transport:
// decorators (bearer attach, request ID, user extras) on the way out,
// hooks (401 interceptor, metrics, user extras) on the way back.
func (c *Client) installPipeline() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.debug {
		base = &debugTransport{base: base}
	}
	c.http.Transport = &pipelineTransport{
		base:       base,
		decorators: append([]RequestDecorator{c.bearerDecorator(), requestIDDecorator}, c.extraDecorators...),
		hooks:      append([]ResponseHook{c.unauthorizedHook(), metricsHook}, c.extraHooks...),
	}
}

// Token reports the currently stored credential.
func (c *Client) Token() (string, bool) { return c.store.Token() }

// saveToken persists a freshly issued credential and re-arms the
// authorization-lost latch.
func (c *Client) saveToken(tok string) error {
	if err := c.store.Save(tok); err != nil {
		return err
	}
	c.authLost.Store(false)
	return nil
}

// clearToken removes the stored credential.
func (c *Client) clearToken() { _ = c.store.Clear() }

// OnAuthorizationLost registers fn to run when the gateway invalidates the
// session. The session controller registers itself here; handlers run in
// registration order, once per lost credential.
func (c *Client) OnAuthorizationLost(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lostHandlers = append(c.lostHandlers, fn)
}

// handleAuthorizationLost clears the store unconditionally, then fires the
// handler cascade and navigation at most once per credential. A duplicate
// concurrent 401 finds the latch already set and only repeats the
// (idempotent) store clear.
func (c *Client) handleAuthorizationLost() {
	c.clearToken()
	if !c.authLost.CompareAndSwap(false, true) {
		return
	}
	authorizationLostTotal.Inc()
	c.mu.Lock()
	handlers := make([]func(), len(c.lostHandlers))
	copy(handlers, c.lostHandlers)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
	c.navigator.NavigateToLogin()
}

// --------------------------------------------------------------------
// Auth operations - delegated to internal/api
// --------------------------------------------------------------------

// Login exchanges credentials for a bearer token. The token is returned,
// not stored; credential ownership lives in the SessionController.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	tr, err := api.Login(ctx, c.http, c.baseURL, creds)
	if err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// Register creates an account and returns its first bearer token.
func (c *Client) Register(ctx context.Context, creds Credentials) (string, error) {
	tr, err := api.Register(ctx, c.http, c.baseURL, creds)
	if err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// DemoLogin obtains a token for the pre-seeded demo account.
func (c *Client) DemoLogin(ctx context.Context) (string, error) {
	tr, err := api.DemoLogin(ctx, c.http, c.baseURL)
	if err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// Me fetches the authenticated user's identity.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	return api.Me(ctx, c.http, c.baseURL)
}

// --------------------------------------------------------------------
// Notes operations
// --------------------------------------------------------------------

// ListNotes retrieves notes, newest first, with optional server-side
// search/mood/limit constraints.
func (c *Client) ListNotes(ctx context.Context, q ListNotesQuery) ([]Note, error) {
	return api.ListNotes(ctx, c.http, c.baseURL, q)
}

// CreateNote captures a new note.
func (c *Client) CreateNote(ctx context.Context, req CreateNoteRequest) (*Note, error) {
	return api.CreateNote(ctx, c.http, c.baseURL, req)
}

// DeleteNote removes a note by ID.
func (c *Client) DeleteNote(ctx context.Context, noteID int) error {
	return api.DeleteNote(ctx, c.http, c.baseURL, noteID)
}

// --------------------------------------------------------------------
// Moments / insights operations
// --------------------------------------------------------------------

// ListMoments retrieves previously computed moments.
func (c *Client) ListMoments(ctx context.Context) ([]Moment, error) {
	return api.ListMoments(ctx, c.http, c.baseURL)
}

// Analyze triggers a server-side clustering run.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	return api.Analyze(ctx, c.http, c.baseURL, req)
}

// Insights retrieves the aggregate statistics view.
func (c *Client) Insights(ctx context.Context) (*InsightsStats, error) {
	return api.InsightsStats(ctx, c.http, c.baseURL)
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) error {
	return api.Health(ctx, c.http, c.baseURL)
}
