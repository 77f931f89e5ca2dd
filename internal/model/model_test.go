package model

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

var testFeatures = []string{"a", "b"}

type lineGen struct {
	calls atomic.Int32
}

func (g *lineGen) Generate(n int) TrainingSet {
	g.calls.Add(1)
	ts := NewTrainingSet(testFeatures, n)
	for i := range n {
		a := float64(i%20) / 20
		b := float64((i*7)%13) / 13
		ts.Add([]float64{a, b}, 0.7*a+0.3*b)
	}
	return ts
}

type memStore struct {
	mu    sync.Mutex
	snaps map[domain.Hazard]Snapshot
	saves int
}

func newMemStore() *memStore { return &memStore{snaps: map[domain.Hazard]Snapshot{}} }

func (s *memStore) Load(_ context.Context, h domain.Hazard) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[h]
	return snap, ok, nil
}

func (s *memStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Hazard] = snap
	s.saves++
	return nil
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestModel(kind Kind, gen Generator, opts ...Option) *RiskModel {
	cfg := Config{Hazard: domain.HazardFlood, Features: testFeatures, Kind: kind, Samples: 200}
	return New(cfg, gen, testLogger(), observability.NewMetricsForTesting(), opts...)
}

func TestPredict_TrainsLazily(t *testing.T) {
	gen := &lineGen{}
	m := newTestModel(GradientBoosting, gen)
	require.False(t, m.Trained())

	_, err := m.Current()
	require.ErrorIs(t, err, ErrNotTrained)

	got, err := m.Predict([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.True(t, m.Trained())
	assert.InDelta(t, 0.5, got, 0.05)
	assert.Equal(t, int32(1), gen.calls.Load())

	info := m.Info()
	assert.True(t, info.Trained)
	assert.Equal(t, 200, info.Samples)
	assert.NotNil(t, info.TrainedAt)
}

func TestPredict_Idempotent(t *testing.T) {
	m := newTestModel(RandomForest, &lineGen{})
	require.NoError(t, m.EnsureTrained(context.Background()))

	x := []float64{0.3, 0.9}
	first, err := m.Predict(x)
	require.NoError(t, err)
	second, err := m.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureTrained_NoOpWhenTrained(t *testing.T) {
	gen := &lineGen{}
	m := newTestModel(GradientBoosting, gen)
	ctx := context.Background()

	require.NoError(t, m.EnsureTrained(ctx))
	before, err := m.Current()
	require.NoError(t, err)
	require.NoError(t, m.EnsureTrained(ctx))
	after, err := m.Current()
	require.NoError(t, err)

	assert.Same(t, before, after)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestEnsureTrained_ConcurrentCallersTrainOnce(t *testing.T) {
	gen := &lineGen{}
	m := newTestModel(GradientBoosting, gen)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.EnsureTrained(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestTrain_ReplacesFit(t *testing.T) {
	m := newTestModel(GradientBoosting, &lineGen{})
	ctx := context.Background()
	require.NoError(t, m.Train(ctx, nil))
	first, _ := m.Current()

	ts := NewTrainingSet(testFeatures, 4)
	ts.Add([]float64{0, 0}, 1)
	ts.Add([]float64{1, 0}, 1)
	ts.Add([]float64{0, 1}, 1)
	ts.Add([]float64{1, 1}, 1)
	require.NoError(t, m.Train(ctx, &ts))

	second, _ := m.Current()
	assert.NotSame(t, first, second)
	got, err := second.Predict([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 1, got, 1e-9)
	assert.Equal(t, 4, m.Info().Samples)
}

func TestTrain_RejectsBadSets(t *testing.T) {
	m := newTestModel(GradientBoosting, &lineGen{})
	ctx := context.Background()

	wrong := NewTrainingSet([]string{"x", "y"}, 1)
	wrong.Add([]float64{1, 2}, 0.5)
	assert.ErrorIs(t, m.Train(ctx, &wrong), ErrSchemaMismatch)

	empty := NewTrainingSet(testFeatures, 0)
	assert.Error(t, m.Train(ctx, &empty))

	badLabel := NewTrainingSet(testFeatures, 1)
	badLabel.Add([]float64{1, 2}, 1.5)
	assert.Error(t, m.Train(ctx, &badLabel))

	assert.False(t, m.Trained())
}

func TestPredict_SchemaMismatch(t *testing.T) {
	m := newTestModel(GradientBoosting, &lineGen{})
	_, err := m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestPredict_DoesNotClampInputs(t *testing.T) {
	m := newTestModel(GradientBoosting, &lineGen{})
	_, err := m.Predict([]float64{1e6, -1e6})
	assert.NoError(t, err)
}

func TestUnknownKind(t *testing.T) {
	m := newTestModel(Kind("svm"), &lineGen{})
	assert.Error(t, m.EnsureTrained(context.Background()))
}

func TestSnapshotRestore(t *testing.T) {
	for _, kind := range []Kind{GradientBoosting, RandomForest} {
		t.Run(string(kind), func(t *testing.T) {
			src := newTestModel(kind, &lineGen{})
			require.NoError(t, src.EnsureTrained(context.Background()))
			snap, err := src.Snapshot()
			require.NoError(t, err)

			dst := newTestModel(kind, &lineGen{})
			require.NoError(t, dst.Restore(snap))

			for _, x := range [][]float64{{0, 0}, {0.25, 0.8}, {2, -1}} {
				want, err := src.Predict(x)
				require.NoError(t, err)
				got, err := dst.Predict(x)
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-12)
			}
		})
	}
}

func TestRestore_RejectsMismatch(t *testing.T) {
	src := newTestModel(GradientBoosting, &lineGen{})
	require.NoError(t, src.EnsureTrained(context.Background()))
	snap, err := src.Snapshot()
	require.NoError(t, err)

	other := newTestModel(RandomForest, &lineGen{})
	assert.Error(t, other.Restore(snap))

	wrongHazard := snap
	wrongHazard.Hazard = domain.HazardTsunami
	assert.Error(t, src.Restore(wrongHazard))

	wrongSchema := snap
	wrongSchema.Features = []string{"a"}
	assert.ErrorIs(t, src.Restore(wrongSchema), ErrSchemaMismatch)

	_, err = newTestModel(GradientBoosting, &lineGen{}).Snapshot()
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestStore_SavesAndRestores(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := newTestModel(GradientBoosting, &lineGen{}, WithStore(store))
	require.NoError(t, first.EnsureTrained(ctx))
	assert.Equal(t, 1, store.saves)

	gen := &lineGen{}
	second := newTestModel(GradientBoosting, gen, WithStore(store))
	require.NoError(t, second.EnsureTrained(ctx))
	assert.Zero(t, gen.calls.Load(), "restored model must not regenerate samples")

	x := []float64{0.4, 0.6}
	want, _ := first.Predict(x)
	got, _ := second.Predict(x)
	assert.InDelta(t, want, got, 1e-12)
}
