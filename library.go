package driftline

import (
	"context"
	"strings"
	"sync"
)

// defaultNotesLimit matches the slice the library view requests.
const defaultNotesLimit = 50

// Library orchestrates the notes view: a server-fetched snapshot, a pure
// client-side search/mood filter over it, and optimistic deletion.
//
// The local filter never issues a network call; a re-fetch happens only on
// an explicit Refresh or Query. The two are deliberately distinct so typing
// in the search box stays instant.
type Library struct {
	client *Client
	orch   *Orchestrator[[]Note]

	mu     sync.Mutex
	search string
	mood   string
}

// NewLibrary constructs the library orchestrator in the Idle phase.
func NewLibrary(c *Client, opts ...OrchestratorOption) *Library {
	return &Library{client: c, orch: NewOrchestrator[[]Note](opts...)}
}

// Refresh loads the default notes slice from the backend.
func (l *Library) Refresh(ctx context.Context) error {
	return l.Query(ctx, ListNotesQuery{Limit: defaultNotesLimit})
}

// Query re-issues a server-side search. Last-trigger-wins: a stale response
// never overwrites a newer one.
func (l *Library) Query(ctx context.Context, q ListNotesQuery) error {
	return l.orch.Load(ctx, func(ctx context.Context) ([]Note, error) {
		return l.client.ListNotes(ctx, q)
	})
}

// SetFilter updates the local free-text and mood predicate.
func (l *Library) SetFilter(search, mood string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.search = search
	l.mood = mood
}

// Filtered returns the loaded notes that match the current local filter.
// Filtering is a pure predicate over the last-loaded snapshot; application
// order of the two conditions cannot change the result.
func (l *Library) Filtered() []Note {
	st := l.orch.State()
	if !st.HasData {
		return nil
	}
	l.mu.Lock()
	search, mood := l.search, l.mood
	l.mu.Unlock()

	term := strings.ToLower(search)
	out := make([]Note, 0, len(st.Data))
	for _, n := range st.Data {
		if term != "" &&
			!strings.Contains(strings.ToLower(n.Title), term) &&
			!strings.Contains(strings.ToLower(n.Content), term) {
			continue
		}
		if mood != "" && n.Mood != mood {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Moods returns the distinct moods present in the loaded snapshot, in first
// appearance order, for building the filter chips.
func (l *Library) Moods() []string {
	st := l.orch.State()
	if !st.HasData {
		return nil
	}
	seen := make(map[string]struct{})
	var moods []string
	for _, n := range st.Data {
		if n.Mood == "" {
			continue
		}
		if _, ok := seen[n.Mood]; ok {
			continue
		}
		seen[n.Mood] = struct{}{}
		moods = append(moods, n.Mood)
	}
	return moods
}

// Delete removes a note optimistically: the local snapshot drops the note
// immediately; if the remote call fails the snapshot reverts, order intact,
// and the error is surfaced.
func (l *Library) Delete(ctx context.Context, noteID int) error {
	return l.orch.Mutate(ctx,
		func(notes []Note) []Note {
			out := make([]Note, 0, len(notes))
			for _, n := range notes {
				if n.ID != noteID {
					out = append(out, n)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return l.client.DeleteNote(ctx, noteID)
		},
	)
}

// State returns the orchestrator snapshot (unfiltered data).
func (l *Library) State() FetchState[[]Note] { return l.orch.State() }

// Subscribe registers fn for state transitions.
func (l *Library) Subscribe(fn func(FetchState[[]Note])) (unsubscribe func()) {
	return l.orch.Subscribe(fn)
}

// Close tears the view down; late results are discarded.
func (l *Library) Close() { l.orch.Close() }
