package driftline

import (
	"context"
	"sync"
	"sync/atomic"
)

// AnalysisSummary reports what a completed clustering run covered.
type AnalysisSummary struct {
	TotalNotesAnalyzed int
	AnalysisTime       float64
}

// Moments orchestrates the moments view: listing previously computed
// moments and triggering new analysis runs. A single in-flight guard keeps
// a second analysis from being issued while one is outstanding, and a
// successful run replaces the displayed collection atomically.
type Moments struct {
	client *Client
	orch   *Orchestrator[[]Moment]

	analyzing atomic.Bool

	mu      sync.Mutex
	lastRun *AnalysisSummary
}

// NewMoments constructs the moments orchestrator in the Idle phase.
func NewMoments(c *Client, opts ...OrchestratorOption) *Moments {
	return &Moments{client: c, orch: NewOrchestrator[[]Moment](opts...)}
}

// Refresh loads the stored moment collection.
func (m *Moments) Refresh(ctx context.Context) error {
	return m.orch.Load(ctx, func(ctx context.Context) ([]Moment, error) {
		return m.client.ListMoments(ctx)
	})
}

// Analyze triggers a clustering run. Returns ErrAnalysisInFlight when one
// is already outstanding. On success the entire displayed collection is
// replaced in one transition — partial replacement cannot be observed.
func (m *Moments) Analyze(ctx context.Context, req AnalyzeRequest) error {
	if !m.analyzing.CompareAndSwap(false, true) {
		return ErrAnalysisInFlight
	}
	defer m.analyzing.Store(false)

	return m.orch.Load(ctx, func(ctx context.Context) ([]Moment, error) {
		resp, err := m.client.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.lastRun = &AnalysisSummary{
			TotalNotesAnalyzed: resp.TotalNotesAnalyzed,
			AnalysisTime:       resp.AnalysisTime,
		}
		m.mu.Unlock()
		return resp.Moments, nil
	})
}

// Analyzing reports whether an analysis request is outstanding; views use
// it to disable the trigger affordance.
func (m *Moments) Analyzing() bool { return m.analyzing.Load() }

// LastRun returns the summary of the most recent successful analysis, or
// nil if none completed this session.
func (m *Moments) LastRun() *AnalysisSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRun == nil {
		return nil
	}
	cp := *m.lastRun
	return &cp
}

// State returns the orchestrator snapshot.
func (m *Moments) State() FetchState[[]Moment] { return m.orch.State() }

// Subscribe registers fn for state transitions.
func (m *Moments) Subscribe(fn func(FetchState[[]Moment])) (unsubscribe func()) {
	return m.orch.Subscribe(fn)
}

// Close tears the view down; late results are discarded.
func (m *Moments) Close() { m.orch.Close() }
