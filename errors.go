package driftline

import (
	"errors"

	"github.com/driftline/driftline-go/internal/apierr"
)

// ErrAnalysisInFlight is returned when an analysis run is requested while a
// previous one is still outstanding.
var ErrAnalysisInFlight = errors.New("analysis already in flight")

// ErrDemoInProgress is returned when a demo bootstrap sequence is started
// while one is already running.
var ErrDemoInProgress = errors.New("demo bootstrap already in progress")

// ErrOrchestratorClosed is returned when a load or mutation is issued
// against an orchestrator whose owning view has been torn down.
var ErrOrchestratorClosed = errors.New("orchestrator closed")

// ErrNoData is returned by optimistic mutations when no snapshot has been
// loaded yet.
var ErrNoData = errors.New("no loaded data to mutate")

// Callers compare failures by kind rather than by status code. These
// helpers unwrap error chains.

// IsAuthError reports a rejected email/password; the user can retry.
func IsAuthError(err error) bool { return apierr.Is(err, apierr.KindAuth) }

// IsAuthorizationLost reports a stale bearer token; the gateway has already
// forced a global logout by the time callers see this.
func IsAuthorizationLost(err error) bool { return apierr.Is(err, apierr.KindAuthorizationLost) }

// IsValidationError reports client-side input rejection; no request was
// sent.
func IsValidationError(err error) bool { return apierr.Is(err, apierr.KindValidation) }

// IsNetworkError reports a transport-level failure.
func IsNetworkError(err error) bool { return apierr.Is(err, apierr.KindNetwork) }

// IsNotFound reports a 404 on the addressed resource.
func IsNotFound(err error) bool { return apierr.Is(err, apierr.KindNotFound) }
