package bolt

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/hazard"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, found, err := s.Load(context.Background(), domain.HazardFlood)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_RestoresTrainedModel(t *testing.T) {
	s := openTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	first := hazard.NewFloodModel(60, 3, logger, metrics, model.WithStore(s))
	require.NoError(t, first.EnsureTrained(context.Background()))

	snap, found, err := s.Load(context.Background(), domain.HazardFlood)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.FloodFeatureNames, snap.Features)
	assert.Equal(t, 60, snap.Samples)

	// A different seed would train a different fit; equal output proves a restore.
	second := hazard.NewFloodModel(60, 99, logger, metrics, model.WithStore(s))
	require.NoError(t, second.EnsureTrained(context.Background()))

	x := domain.FloodGridFeatures(120, 300, 0.7)
	want, err := first.Predict(x)
	require.NoError(t, err)
	got, err := second.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
	assert.True(t, first.Info().TrainedAt.Equal(*second.Info().TrainedAt))
}

func TestStore_HistoryKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	s.history = 2
	ctx := context.Background()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := range 4 {
		snap := model.Snapshot{Hazard: domain.HazardTsunami, Kind: model.RandomForest, TrainedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Save(ctx, snap))
	}
	require.NoError(t, s.Save(ctx, model.Snapshot{Hazard: domain.HazardFlood, TrainedAt: base}))

	latest, found, err := s.Load(ctx, domain.HazardTsunami)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, latest.TrainedAt.Equal(base.Add(3*time.Hour)))

	history, err := s.History(ctx, domain.HazardTsunami)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Equal(base.Add(time.Hour)))
	assert.True(t, history[1].Equal(base.Add(2*time.Hour)))

	history, err = s.History(ctx, domain.HazardFlood)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_SaveRequiresHazard(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Save(context.Background(), model.Snapshot{}))
}
