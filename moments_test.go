package driftline

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/driftline/driftline-go/internal/types"
	"github.com/stretchr/testify/require"
)

func TestMomentsRefresh(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/moments", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]types.Moment{{ID: 1, Title: "Settling In"}})
	}))
	m := NewMoments(c)
	defer m.Close()

	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, m.State().Data, 1)
}

func TestAnalyzeReplacesCollectionAtomically(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moments":
			_ = json.NewEncoder(w).Encode([]types.Moment{{ID: 1, Title: "Old"}, {ID: 2, Title: "Older"}})
		case "/analyze":
			_ = json.NewEncoder(w).Encode(types.AnalyzeResponse{
				Moments:            []types.Moment{{ID: 3, Title: "A Period of Transition"}},
				TotalNotesAnalyzed: 12,
				AnalysisTime:       0.8,
			})
		}
	}))
	m := NewMoments(c)
	defer m.Close()

	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, m.State().Data, 2)

	// Every published snapshot holds either the full old or the full new
	// collection, never a mix.
	var mu sync.Mutex
	var partial bool
	unsub := m.Subscribe(func(s FetchState[[]Moment]) {
		mu.Lock()
		defer mu.Unlock()
		if !s.HasData {
			return
		}
		ids := map[int]bool{}
		for _, mo := range s.Data {
			ids[mo.ID] = true
		}
		oldSet := ids[1] && ids[2] && len(ids) == 2
		newSet := ids[3] && len(ids) == 1
		if !oldSet && !newSet {
			partial = true
		}
	})
	defer unsub()

	require.NoError(t, m.Analyze(context.Background(), AnalyzeRequest{MinClusterSize: 2}))

	mu.Lock()
	require.False(t, partial, "partial replacement must not be observable")
	mu.Unlock()

	require.Equal(t, []int{3}, []int{m.State().Data[0].ID})
	run := m.LastRun()
	require.NotNil(t, run)
	require.Equal(t, 12, run.TotalNotesAnalyzed)
}

func TestAnalyzeInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(types.AnalyzeResponse{})
	}))
	m := NewMoments(c)
	defer m.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Analyze(context.Background(), AnalyzeRequest{})
	}()

	require.Eventually(t, m.Analyzing, time.Second, time.Millisecond)

	err := m.Analyze(context.Background(), AnalyzeRequest{})
	require.ErrorIs(t, err, ErrAnalysisInFlight, "second analysis while one is outstanding must be refused")

	close(release)
	wg.Wait()
	require.False(t, m.Analyzing())

	// After the first run resolves, a new trigger is accepted again.
	require.NoError(t, m.Analyze(context.Background(), AnalyzeRequest{}))
}

func TestAnalyzeFailureKeepsExistingMoments(t *testing.T) {
	fail := false
	var mu sync.Mutex
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f := fail
		mu.Unlock()
		switch r.URL.Path {
		case "/moments":
			_ = json.NewEncoder(w).Encode([]types.Moment{{ID: 1, Title: "Kept"}})
		case "/analyze":
			if f {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(types.AnalyzeResponse{})
		}
	}))
	m := NewMoments(c)
	defer m.Close()

	require.NoError(t, m.Refresh(context.Background()))
	mu.Lock()
	fail = true
	mu.Unlock()

	err := m.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)

	st := m.State()
	require.Equal(t, Failed, st.Phase)
	require.True(t, st.HasData)
	require.Equal(t, "Kept", st.Data[0].Title, "failed analysis keeps the previous collection on screen")
}
