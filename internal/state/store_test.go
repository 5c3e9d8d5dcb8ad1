package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

type recordingPersister struct {
	mu      sync.Mutex
	saved   []models.AppState
	release chan struct{}
}

func (p *recordingPersister) Save(ctx context.Context, snapshot models.AppState) {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, snapshot)
}

func (p *recordingPersister) revisions() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, 0, len(p.saved))
	for _, s := range p.saved {
		out = append(out, s.Revision)
	}
	return out
}

func TestStoreDispatchDoesNotWaitForPersistence(t *testing.T) {
	r := newTestReducer()
	persister := &recordingPersister{release: make(chan struct{})}
	store := NewStore(r.Initial(), r, persister, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx)

	ana := store.State().Students[0].ID
	done := make(chan struct{})
	go func() {
		store.Dispatch(ctx, AssignPod(ana, 1, 1))
		store.Dispatch(ctx, UpdatePodStage("1_1", models.PodStageInProgress))
		store.Dispatch(ctx, UpdatePodStage("1_1", models.PodStageCompleted))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a hung persister")
	}
	require.Equal(t, int64(3), store.State().Revision)
	require.Equal(t, models.PodStageCompleted, store.State().Pods["1_1"].Stage)

	close(persister.release)
	require.Eventually(t, func() bool {
		revs := persister.revisions()
		return len(revs) > 0 && revs[len(revs)-1] == 3
	}, time.Second, 10*time.Millisecond)
	require.LessOrEqual(t, len(persister.revisions()), 2)
}

func TestStoreSkipsPersistenceForNoops(t *testing.T) {
	r := newTestReducer()
	persister := &recordingPersister{}
	store := NewStore(r.Initial(), r, persister, zerolog.Nop())

	next := store.Dispatch(context.Background(), RemoveFromPod("missing"))
	require.Equal(t, int64(0), next.Revision)
	require.Zero(t, next.LastUpdated)

	store.Flush(context.Background())
	require.Empty(t, persister.revisions())
}

func TestStoreApplyReportsChange(t *testing.T) {
	r := newTestReducer()
	store := NewStore(r.Initial(), r, nil, zerolog.Nop())
	ctx := context.Background()
	ana := store.State().Students[0].ID

	next, changed := store.Apply(ctx, RemoveFromPod(ana))
	require.False(t, changed)
	require.Equal(t, int64(0), next.Revision)

	next, changed = store.Apply(ctx, AddAssessment(models.AssessmentInput{AssessorID: ana, AssesseeID: ana, PodID: "1_1"}))
	require.True(t, changed)
	require.Len(t, next.Assessments, 1)
	require.Equal(t, next, store.State())
}

func TestStoreFlushSavesLatest(t *testing.T) {
	r := newTestReducer()
	persister := &recordingPersister{}
	store := NewStore(r.Initial(), r, persister, zerolog.Nop())
	ctx := context.Background()

	store.Dispatch(ctx, SetCurrentPeriod(3))
	store.Dispatch(ctx, SetCurrentPeriod(4))
	store.Flush(ctx)

	require.Equal(t, []int64{2}, persister.revisions())
	require.NotZero(t, persister.saved[0].LastUpdated)
}

func TestStoreWatchAndReplace(t *testing.T) {
	r := newTestReducer()
	store := NewStore(r.Initial(), r, nil, zerolog.Nop())

	updates, cancel := store.Watch()
	defer cancel()

	store.Dispatch(context.Background(), SetCurrentPeriod(8))
	select {
	case snapshot := <-updates:
		require.Equal(t, 8, snapshot.CurrentPeriod)
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive snapshot")
	}

	remote := store.State()
	remote.Revision = 42
	remote.CurrentPeriod = 9
	remote.LastUpdated = 99
	require.True(t, store.Replace(remote))
	require.False(t, store.Replace(remote))
	require.Equal(t, 9, store.State().CurrentPeriod)

	snapshot := <-updates
	require.Equal(t, int64(42), snapshot.Revision)

	cancel()
	cancel()
	_, open := <-updates
	require.False(t, open)
}

func TestStoreHooksSeeChangedActions(t *testing.T) {
	r := newTestReducer()
	store := NewStore(r.Initial(), r, nil, zerolog.Nop())

	var seen []ActionType
	store.OnDispatch(func(ctx context.Context, action Action, prev, next models.AppState) {
		require.Equal(t, prev.Revision+1, next.Revision)
		seen = append(seen, action.Type)
	})

	ctx := context.Background()
	store.Dispatch(ctx, SetCurrentPeriod(3))
	store.Dispatch(ctx, Action{Type: "UNKNOWN"})
	store.Dispatch(ctx, ResetAssessments())

	require.Equal(t, []ActionType{ActionSetCurrentPeriod, ActionResetAssessments}, seen)
}

func TestSelectors(t *testing.T) {
	r := newTestReducer()
	s := r.Initial()
	ana, ben, dev := s.Students[0].ID, s.Students[1].ID, s.Students[3].ID

	s = r.Reduce(s, AssignPod(ben, 1, 2))
	s = r.Reduce(s, AssignPod(ana, 1, 2))
	s = r.Reduce(s, AssignPod(dev, 8, 1))
	s = r.Reduce(s, UpdatePodStage("1_1", models.PodStageInProgress))
	s = r.Reduce(s, AddAssessment(models.AssessmentInput{AssessorID: ana, AssesseeID: ben, PodID: "1_2"}))

	require.Len(t, StudentsByPeriod(s, 1), 3)
	pods := PodsByPeriod(s, 1)
	require.Len(t, pods, 2)
	require.Equal(t, 1, pods[0].PodNumber)

	members := PodMembers(s, "1_2")
	require.Len(t, members, 2)
	require.Equal(t, ben, members[0].ID)
	require.Empty(t, PodMembers(s, "7_7"))

	require.Len(t, AssessmentsReceived(s, ben), 1)
	require.Len(t, AssessmentsGiven(s, ana), 1)
	require.Empty(t, AssessmentsGiven(s, ben))

	_, err := RequireStudent(s, "missing")
	require.ErrorIs(t, err, ErrUnknownStudent)
}
