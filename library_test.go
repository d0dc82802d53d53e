package driftline

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/driftline/driftline-go/internal/types"
	"github.com/stretchr/testify/require"
)

func libraryNotes() []types.Note {
	return []types.Note{
		{ID: 1, Title: "Morning walk", Content: "Cold but clear by the river", Mood: "calm"},
		{ID: 2, Title: "Deadline stress", Content: "Shipping day tomorrow", Mood: "anxious"},
		{ID: 3, Title: "River picnic", Content: "Calm afternoon with friends", Mood: "calm"},
		{ID: 4, Title: "Quiet evening", Content: "Reading and tea", Mood: "calm"},
		{ID: 5, Title: "Long commute", Content: "Train delays again", Mood: "tired"},
	}
}

// notesBackend serves a fixed list and records deletes.
type notesBackend struct {
	mu         sync.Mutex
	notes      []types.Note
	failDelete bool
}

func (b *notesBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(b.notes)
	case r.Method == http.MethodDelete:
		if b.failDelete {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestLibraryFilterIntersection(t *testing.T) {
	backend := &notesBackend{notes: libraryNotes()}
	c, _, _ := newTestClient(t, backend)
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Refresh(context.Background()))

	// Mood "calm" matches 3 notes; term "river" matches 2 of those 3.
	lib.SetFilter("river", "calm")
	byBoth := lib.Filtered()
	require.Len(t, byBoth, 2)
	require.Equal(t, []int{1, 3}, []int{byBoth[0].ID, byBoth[1].ID})

	// Same result regardless of which condition is set first.
	lib.SetFilter("", "")
	lib.SetFilter("river", "")
	require.Len(t, lib.Filtered(), 2) // note 1, 3 mention the river
	lib.SetFilter("river", "calm")
	require.Equal(t, byBoth, lib.Filtered())
}

func TestLibraryFilterIsCaseInsensitiveAndLocal(t *testing.T) {
	backend := &notesBackend{notes: libraryNotes()}
	c, _, _ := newTestClient(t, backend)
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Refresh(context.Background()))

	// Filtering must not hit the network: break the backend afterwards.
	backend.mu.Lock()
	backend.notes = nil
	backend.mu.Unlock()

	lib.SetFilter("RIVER", "")
	require.Len(t, lib.Filtered(), 2, "filter is a pure predicate over the loaded snapshot")

	lib.SetFilter("", "tired")
	got := lib.Filtered()
	require.Len(t, got, 1)
	require.Equal(t, 5, got[0].ID)
}

func TestLibraryMoods(t *testing.T) {
	backend := &notesBackend{notes: libraryNotes()}
	c, _, _ := newTestClient(t, backend)
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Refresh(context.Background()))
	require.Equal(t, []string{"calm", "anxious", "tired"}, lib.Moods())
}

func TestLibraryOptimisticDelete(t *testing.T) {
	backend := &notesBackend{notes: libraryNotes()}
	c, _, _ := newTestClient(t, backend)
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Refresh(context.Background()))
	require.Len(t, lib.State().Data, 5)

	require.NoError(t, lib.Delete(context.Background(), 2))
	after := lib.State().Data
	require.Len(t, after, 4, "N-1 items immediately after delete")
	for _, n := range after {
		require.NotEqual(t, 2, n.ID)
	}
}

func TestLibraryDeleteRollbackOnFailure(t *testing.T) {
	backend := &notesBackend{notes: libraryNotes(), failDelete: true}
	c, _, _ := newTestClient(t, backend)
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Refresh(context.Background()))
	before := lib.State().Data

	var seenLens []int
	var mu sync.Mutex
	unsub := lib.Subscribe(func(s FetchState[[]Note]) {
		mu.Lock()
		seenLens = append(seenLens, len(s.Data))
		mu.Unlock()
	})
	defer unsub()

	err := lib.Delete(context.Background(), 3)
	require.Error(t, err)

	mu.Lock()
	require.Equal(t, []int{4, 5}, seenLens, "optimistic removal then revert")
	mu.Unlock()

	require.Equal(t, before, lib.State().Data, "snapshot reverts unchanged, order intact")
}

func TestLibraryServerQueryPassesConstraints(t *testing.T) {
	var mu sync.Mutex
	var gotQuery string
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = r.URL.RawQuery
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	lib := NewLibrary(c)
	defer lib.Close()

	require.NoError(t, lib.Query(context.Background(), ListNotesQuery{Search: "walk", Limit: 10}))
	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, gotQuery, "search=walk")
	require.Contains(t, gotQuery, "limit=10")
}
