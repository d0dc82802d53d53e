package driftline

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// The gateway is a middleware pipeline over http.RoundTripper: an ordered
// list of request decorators runs before the wire, an ordered list of
// response hooks runs after. Each stage is a pure function over the
// request/response value so stages compose and test independently.

// RequestDecorator mutates an outbound request before it is sent. The
// request passed in is already a clone; decorators may modify it freely.
type RequestDecorator func(*http.Request)

// ResponseHook observes an inbound response. Hooks must not consume the
// body.
type ResponseHook func(*http.Response)

type pipelineTransport struct {
	base       http.RoundTripper
	decorators []RequestDecorator
	hooks      []ResponseHook
}

func (t *pipelineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	for _, d := range t.decorators {
		d(cloned)
	}
	resp, err := t.base.RoundTrip(cloned)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "error").Inc()
		return nil, err
	}
	for _, h := range t.hooks {
		h(resp)
	}
	return resp, nil
}

// bearerDecorator attaches the stored credential, consulting the store at
// send time. A request issued while no credential exists goes out
// unauthenticated; the header value is a snapshot, unaffected by later
// store mutations.
func (c *Client) bearerDecorator() RequestDecorator {
	return func(req *http.Request) {
		if tok, ok := c.store.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// requestIDDecorator tags every request so backend logs can be correlated
// with client-side failures.
func requestIDDecorator(req *http.Request) {
	req.Header.Set("X-Request-Id", uuid.NewString())
}

// metricsHook counts responses by outcome class.
func metricsHook(resp *http.Response) {
	requestsTotal.WithLabelValues(resp.Request.Method, outcomeLabel(resp.StatusCode)).Inc()
}

// unauthorizedHook is the single place a stale credential is detected. Any
// 401 outside the token-issuing endpoints clears the store and fires the
// authorization-lost handlers exactly once per credential; the triggering
// orchestrator plays no part.
func (c *Client) unauthorizedHook() ResponseHook {
	return func(resp *http.Response) {
		if resp.StatusCode != http.StatusUnauthorized {
			return
		}
		if isTokenIssuingPath(resp.Request.URL.Path) {
			return // a rejected login is the caller's problem, not a lost session
		}
		c.handleAuthorizationLost()
	}
}

// isTokenIssuingPath reports whether a 401 from this path means "bad
// credentials presented" rather than "session token went stale".
func isTokenIssuingPath(path string) bool {
	return strings.HasSuffix(path, "/auth/login") ||
		strings.HasSuffix(path, "/auth/register") ||
		strings.HasSuffix(path, "/demo/login")
}
