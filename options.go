package driftline

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/driftline/driftline-go/internal/tokenstore"
)

// Option configures a Client during construction in New.
//
// Options are applied before the middleware pipeline is installed, so
// transport-related options (like debug logging) sit beneath the pipeline.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net bounding a single HTTP request end to end. The value
// must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithTokenStore replaces the default file-backed credential store. Tests
// and ephemeral runs pass a *tokenstore.Memory.
func WithTokenStore(s tokenstore.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("token store must not be nil")
		}
		c.store = s
		return nil
	}
}

// WithStateDir roots the file-backed credential store at dir instead of the
// per-user config directory.
func WithStateDir(dir string) Option {
	return func(c *Client) error {
		c.store = tokenstore.Open(dir)
		return nil
	}
}

// WithNavigator installs the navigation side-effect target. The gateway
// calls NavigateToLogin on authorization loss; the demo sequencer calls
// NavigateToMoments on completion.
func WithNavigator(n Navigator) Option {
	return func(c *Client) error {
		if n == nil {
			return fmt.Errorf("navigator must not be nil")
		}
		c.navigator = n
		return nil
	}
}

// WithRequestDecorator appends a decorator to the gateway's request
// pipeline, after the built-in bearer and request-ID decorators.
func WithRequestDecorator(d RequestDecorator) Option {
	return func(c *Client) error {
		c.extraDecorators = append(c.extraDecorators, d)
		return nil
	}
}

// WithResponseHook appends a hook to the gateway's response pipeline, after
// the built-in unauthorized and metrics hooks.
func WithResponseHook(h ResponseHook) Option {
	return func(c *Client) error {
		c.extraHooks = append(c.extraHooks, h)
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is dumped
// when enabled is true. The debug transport sits beneath the pipeline, so
// dumps show exactly what went on the wire.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}
