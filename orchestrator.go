package driftline

import (
	"context"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/driftline/driftline-go/internal/apierr"
)

// Phase is the lifecycle position of an orchestrated resource.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// FetchState is the transient value owned by one orchestrator instance.
// Data stays valid across a failed refresh (HasData true, Err set) so views
// are not forced blank by a transient failure.
type FetchState[T any] struct {
	Phase   Phase
	Data    T
	HasData bool
	Err     error
}

// Orchestrator wraps backend calls behind an Idle/Loading/Loaded/Failed
// state machine with last-trigger-wins supersession: when a newer load is
// triggered while an older one is outstanding, the older result is
// discarded no matter which resolves first. Close stops all state
// application, so a torn-down view never receives a late update.
type Orchestrator[T any] struct {
	retry orchSettings

	pubMu   sync.Mutex
	stateMu sync.Mutex
	state   FetchState[T]
	gen     uint64
	closed  bool

	subMu   sync.Mutex
	subs    []orchSub[T]
	nextSub int
}

type orchSub[T any] struct {
	id int
	fn func(FetchState[T])
}

// OrchestratorOption tunes an orchestrator at construction.
type OrchestratorOption func(*orchSettings)

type orchSettings struct {
	retryInitial time.Duration
	retryMax     time.Duration
}

// WithRetry enables backoff retry of recoverable failures (5xx, transport
// errors) inside Load. Irrecoverable kinds fail immediately. The gateway
// itself never retries; this is the orchestrator-level policy.
func WithRetry(initial, maxElapsed time.Duration) OrchestratorOption {
	return func(s *orchSettings) {
		s.retryInitial = initial
		s.retryMax = maxElapsed
	}
}

// NewOrchestrator constructs an orchestrator in the Idle phase.
func NewOrchestrator[T any](opts ...OrchestratorOption) *Orchestrator[T] {
	var s orchSettings
	for _, opt := range opts {
		opt(&s)
	}
	return &Orchestrator[T]{retry: s}
}

// State returns the current snapshot by value.
func (o *Orchestrator[T]) State() FetchState[T] {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

// Subscribe registers fn for every transition; the returned func removes it.
func (o *Orchestrator[T]) Subscribe(fn func(FetchState[T])) (unsubscribe func()) {
	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs = append(o.subs, orchSub[T]{id: id, fn: fn})
	o.subMu.Unlock()

	return func() {
		o.subMu.Lock()
		defer o.subMu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Close detaches the orchestrator from its view: no further transitions are
// published and in-flight results are dropped on arrival. Idempotent.
func (o *Orchestrator[T]) Close() {
	o.stateMu.Lock()
	o.closed = true
	o.stateMu.Unlock()
}

func (o *Orchestrator[T]) publish(next FetchState[T]) {
	o.pubMu.Lock()
	defer o.pubMu.Unlock()

	o.subMu.Lock()
	subs := make([]orchSub[T], len(o.subs))
	copy(subs, o.subs)
	o.subMu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Load runs fetch and applies the result unless a newer trigger superseded
// this one or the orchestrator closed in the meantime. A refresh failure
// preserves previously loaded data.
//
// Load blocks until the fetch resolves; run it on a goroutine when the
// caller must not wait. Concurrent Loads are safe — the generation counter
// decides whose result survives.
func (o *Orchestrator[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	o.stateMu.Lock()
	if o.closed {
		o.stateMu.Unlock()
		return ErrOrchestratorClosed
	}
	o.gen++
	myGen := o.gen
	o.state.Phase = Loading
	o.state.Err = nil
	snapshot := o.state
	o.stateMu.Unlock()
	o.publish(snapshot)

	data, err := o.runFetch(ctx, fetch)

	o.stateMu.Lock()
	if o.closed || o.gen != myGen {
		o.stateMu.Unlock()
		return nil // superseded or torn down: discard silently
	}
	if err != nil {
		o.state.Phase = Failed
		o.state.Err = err
		// Data/HasData intentionally untouched: a failed refresh keeps
		// showing the last good snapshot.
	} else {
		o.state = FetchState[T]{Phase: Loaded, Data: data, HasData: true}
	}
	snapshot = o.state
	o.stateMu.Unlock()
	o.publish(snapshot)
	return err
}

// runFetch applies the configured retry policy, if any. Each fetch gets its
// own backoff instance; concurrent loads must not share retry state.
func (o *Orchestrator[T]) runFetch(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	if o.retry.retryMax <= 0 {
		return fetch(ctx)
	}
	b := backoff.NewExponentialBackOff()
	if o.retry.retryInitial > 0 {
		b.InitialInterval = o.retry.retryInitial
	}
	b.MaxElapsedTime = o.retry.retryMax
	var data T
	err := backoff.Retry(func() error {
		var err error
		data, err = fetch(ctx)
		if err == nil {
			return nil
		}
		if !apierr.Retryable(err) {
			return backoff.Permanent(err)
		}
		fetchRetriesTotal.Inc()
		return err
	}, backoff.WithContext(b, ctx))
	return data, err
}

// Mutate applies an optimistic local mutation, then issues the remote call.
// On failure the snapshot reverts to its exact pre-mutation value and the
// error is returned; on success local state stays authoritative with no
// re-fetch.
func (o *Orchestrator[T]) Mutate(ctx context.Context, apply func(T) T, call func(context.Context) error) error {
	o.stateMu.Lock()
	if o.closed {
		o.stateMu.Unlock()
		return ErrOrchestratorClosed
	}
	if !o.state.HasData {
		o.stateMu.Unlock()
		return ErrNoData
	}
	myGen := o.gen
	prev := o.state.Data
	o.state.Data = apply(prev)
	snapshot := o.state
	o.stateMu.Unlock()
	o.publish(snapshot)

	err := call(ctx)
	if err == nil {
		return nil
	}

	o.stateMu.Lock()
	// Only roll back if no newer load replaced the snapshot meanwhile.
	if !o.closed && o.gen == myGen {
		o.state.Data = prev
		snapshot = o.state
		o.stateMu.Unlock()
		o.publish(snapshot)
	} else {
		o.stateMu.Unlock()
	}
	return err
}
