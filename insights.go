package driftline

import "context"

// Insights orchestrates the aggregate statistics view. The computation
// behind the numbers is server-side and opaque; this is contract only.
type Insights struct {
	client *Client
	orch   *Orchestrator[InsightsStats]
}

// NewInsights constructs the insights orchestrator in the Idle phase.
func NewInsights(c *Client, opts ...OrchestratorOption) *Insights {
	return &Insights{client: c, orch: NewOrchestrator[InsightsStats](opts...)}
}

// Refresh loads the stats. A failed refresh keeps the previous numbers on
// screen with the error alongside.
func (i *Insights) Refresh(ctx context.Context) error {
	return i.orch.Load(ctx, func(ctx context.Context) (InsightsStats, error) {
		stats, err := i.client.Insights(ctx)
		if err != nil {
			return InsightsStats{}, err
		}
		return *stats, nil
	})
}

// State returns the orchestrator snapshot.
func (i *Insights) State() FetchState[InsightsStats] { return i.orch.State() }

// Subscribe registers fn for state transitions.
func (i *Insights) Subscribe(fn func(FetchState[InsightsStats])) (unsubscribe func()) {
	return i.orch.Subscribe(fn)
}

// Close tears the view down; late results are discarded.
func (i *Insights) Close() { i.orch.Close() }
