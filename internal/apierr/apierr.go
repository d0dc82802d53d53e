// Package apierr classifies every failure the SDK can surface so callers and
// retry policies can branch on a small, closed set of kinds instead of
// inspecting status codes or error strings.
package apierr

import (
	"errors"
	"fmt"
)

// Kind buckets an error by how the caller should react to it.
type Kind int

const (
	// KindAuth: the backend rejected the presented email/password.
	// Recoverable by the user re-entering credentials.
	KindAuth Kind = iota

	// KindAuthorizationLost: a previously working bearer token was rejected.
	// Not user-recoverable; handled once, globally, at the gateway.
	KindAuthorizationLost

	// KindValidation: client-side input validation failed. No request was
	// sent.
	KindValidation

	// KindNotFound: the addressed resource does not exist (404).
	KindNotFound

	// KindNetwork: transport-level failure (DNS, connect, timeout). May be
	// transient.
	KindNetwork

	// KindServer: the backend failed (5xx) or answered with an unexpected
	// status.
	KindServer
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "Auth"
	case KindAuthorizationLost:
		return "AuthorizationLost"
	case KindValidation:
		return "Validation"
	case KindNotFound:
		return "NotFound"
	case KindNetwork:
		return "Network"
	case KindServer:
		return "Server"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Error carries a Kind alongside the HTTP status (0 for non-HTTP failures)
// and the underlying cause.
type Error struct {
	Kind       Kind
	StatusCode int
	Op         string // operation that failed, e.g. "list notes"
	Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: [%s] HTTP %d: %v", e.Op, e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("%s: [%s] %v", e.Op, e.Kind, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Underlying }

// New constructs an Error of the given kind with a formatted cause.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Underlying: fmt.Errorf(format, args...)}
}

// Validation constructs a KindValidation error for the named field.
func Validation(field, reason string) *Error {
	return &Error{Kind: KindValidation, Op: "validate", Underlying: fmt.Errorf("%s %s", field, reason)}
}

// FromStatus maps an HTTP status code to a classified Error.
//
//   - 401 on a credential-presenting operation is KindAuth; everywhere else a
//     401 means a previously accepted token went stale (KindAuthorizationLost).
//     The gateway makes that call, so FromStatus takes the kind for 401 as an
//     argument via Auth401.
//   - 404 is KindNotFound, remaining 4xx are KindValidation-adjacent but are
//     reported as KindServer because the request was built by this SDK.
//   - 5xx and anything unexpected is KindServer.
func FromStatus(op string, status int, auth401 bool) *Error {
	var kind Kind
	switch {
	case status == 401 && auth401:
		kind = KindAuth
	case status == 401:
		kind = KindAuthorizationLost
	case status == 404:
		kind = KindNotFound
	default:
		kind = KindServer
	}
	return &Error{
		Kind:       kind,
		StatusCode: status,
		Op:         op,
		Underlying: fmt.Errorf("unexpected status %d", status),
	}
}

// Network wraps a transport-level failure.
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Underlying: err}
}

// KindOf extracts the Kind from err, or KindServer if err is not classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindServer
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// Retryable reports whether a retry with backoff could plausibly succeed.
// Network and server failures are retryable; everything the user or the
// session layer must resolve first is not.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindServer:
		return true
	default:
		return false
	}
}
