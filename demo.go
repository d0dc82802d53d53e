package driftline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DemoPhase is the lifecycle position of the demo bootstrap sequence.
type DemoPhase int

const (
	DemoIdle DemoPhase = iota
	DemoRunning
	DemoDone
	DemoFailed
)

// DemoState is the snapshot published to subscribers as the sequence
// advances.
type DemoState struct {
	Phase     DemoPhase
	StepIndex int
	Step      string
	Err       error
}

// demoSteps is the scripted presentation shown while the real demo login
// runs in the background.
var demoSteps = []string{
	"Loading demo account...",
	"Generating life moments...",
	"Analyzing emotional patterns...",
	"Preparing insights...",
	"Complete!",
}

// defaultStepHold is the minimum time each presentation step stays visible.
const defaultStepHold = 600 * time.Millisecond

// DemoSequencer runs the time-boxed demo bootstrap: a fixed sequence of
// named steps, each held for a minimum duration, concurrent with one real
// demo-login call. Navigation away happens no earlier than both the
// presentation finishing and the login succeeding; a failed login ends the
// sequence in DemoFailed with a retry affordance (call Run again).
type DemoSequencer struct {
	client   *Client
	session  *SessionController
	steps    []string
	stepHold time.Duration
	logger   zerolog.Logger

	running atomic.Bool

	pubMu   sync.Mutex
	stateMu sync.Mutex
	state   DemoState

	subMu   sync.Mutex
	subs    []demoSub
	nextSub int
}

type demoSub struct {
	id int
	fn func(DemoState)
}

// DemoOption tunes a sequencer at construction.
type DemoOption func(*DemoSequencer)

// WithStepHold overrides the per-step minimum duration. Tests use small
// values; the product default is 600ms.
func WithStepHold(d time.Duration) DemoOption {
	return func(s *DemoSequencer) {
		if d > 0 {
			s.stepHold = d
		}
	}
}

// WithSession lets the sequencer hand the demo identity to a session
// controller after login, so the rest of the app sees an authenticated
// session without a reload.
func WithSession(sc *SessionController) DemoOption {
	return func(s *DemoSequencer) { s.session = sc }
}

// NewDemoSequencer constructs a sequencer in the DemoIdle phase.
func NewDemoSequencer(c *Client, opts ...DemoOption) *DemoSequencer {
	s := &DemoSequencer{
		client:   c,
		steps:    demoSteps,
		stepHold: defaultStepHold,
		logger:   log.With().Str("component", "demo").Logger(),
		state:    DemoState{Phase: DemoIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot by value.
func (s *DemoSequencer) State() DemoState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Subscribe registers fn for every transition; the returned func removes it.
func (s *DemoSequencer) Subscribe(fn func(DemoState)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, demoSub{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *DemoSequencer) publish(next DemoState) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	s.subMu.Lock()
	subs := make([]demoSub, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

// Run executes the bootstrap and blocks until it ends in DemoDone or
// DemoFailed. The demo login is issued immediately and races the
// presentation; whichever finishes later gates the navigation. A login
// failure terminates the sequence early in DemoFailed no matter how far the
// presentation had progressed. Run may be called again after a failure.
func (s *DemoSequencer) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrDemoInProgress
	}
	defer s.running.Store(false)

	type loginResult struct {
		token string
		err   error
	}
	loginCh := make(chan loginResult, 1)
	go func() {
		tok, err := s.client.DemoLogin(ctx)
		loginCh <- loginResult{token: tok, err: err}
	}()

	var login *loginResult
	timer := time.NewTimer(s.stepHold)
	defer timer.Stop()

	for i, step := range s.steps {
		s.publish(DemoState{Phase: DemoRunning, StepIndex: i, Step: step})

		if i > 0 {
			timer.Reset(s.stepHold)
		}
	hold:
		for {
			select {
			case <-ctx.Done():
				return s.fail(ctx.Err())
			case res := <-loginCh:
				if res.err != nil {
					return s.fail(res.err)
				}
				login = &res
				// Success arrived early: keep holding the step.
			case <-timer.C:
				break hold
			}
		}
	}

	// Presentation done; wait for the network if it has not resolved yet.
	if login == nil {
		select {
		case <-ctx.Done():
			return s.fail(ctx.Err())
		case res := <-loginCh:
			if res.err != nil {
				return s.fail(res.err)
			}
			login = &res
		}
	}

	if err := s.complete(ctx, login.token); err != nil {
		return s.fail(err)
	}
	s.publish(DemoState{Phase: DemoDone, StepIndex: len(s.steps) - 1, Step: s.steps[len(s.steps)-1]})
	s.client.navigator.NavigateToMoments()
	s.logger.Info().Msg("demo bootstrap complete")
	return nil
}

// complete persists the demo credential and, when a session controller is
// attached, confirms the demo identity through it.
func (s *DemoSequencer) complete(ctx context.Context, token string) error {
	if s.session != nil {
		return s.session.adoptToken(ctx, token)
	}
	return s.client.saveToken(token)
}

func (s *DemoSequencer) fail(err error) error {
	s.logger.Warn().Err(err).Msg("demo bootstrap failed")
	st := s.State()
	s.publish(DemoState{Phase: DemoFailed, StepIndex: st.StepIndex, Step: st.Step, Err: err})
	return err
}
