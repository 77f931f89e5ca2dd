package model

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/learn"
)

// Snapshot is the serialized form of a published fit.
type Snapshot struct {
	Hazard    domain.Hazard   `json:"hazard"`
	Kind      Kind            `json:"kind"`
	Features  []string        `json:"features"`
	Scaler    *learn.Scaler   `json:"scaler"`
	Regressor json.RawMessage `json:"regressor"`
	Samples   int             `json:"samples"`
	TrainedAt time.Time       `json:"trained_at"`
}

// SnapshotStore persists snapshots by hazard.
type SnapshotStore interface {
	// Load returns the latest snapshot for a hazard. found is false when
	// none has been saved.
	Load(ctx context.Context, hazard domain.Hazard) (snap Snapshot, found bool, err error)
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot serializes the published fit.
func (m *RiskModel) Snapshot() (Snapshot, error) {
	f := m.current.Load()
	if f == nil {
		return Snapshot{}, ErrNotTrained
	}
	return m.snapshotOf(f)
}

func (m *RiskModel) snapshotOf(f *Fit) (Snapshot, error) {
	reg, err := json.Marshal(f.reg)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode %s regressor: %w", m.cfg.Kind, err)
	}
	return Snapshot{
		Hazard:    m.cfg.Hazard,
		Kind:      m.cfg.Kind,
		Features:  slices.Clone(f.features),
		Scaler:    f.scaler,
		Regressor: reg,
		Samples:   f.samples,
		TrainedAt: f.trainedAt,
	}, nil
}

// Restore publishes a fit decoded from a snapshot. The snapshot must match
// the model's hazard, regressor kind and feature schema.
func (m *RiskModel) Restore(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restoreLocked(s)
}

func (m *RiskModel) restoreLocked(s Snapshot) error {
	if s.Hazard != m.cfg.Hazard {
		return fmt.Errorf("restore: snapshot is for %s, model is %s", s.Hazard, m.cfg.Hazard)
	}
	if s.Kind != m.cfg.Kind {
		return fmt.Errorf("restore: snapshot regressor %s, model uses %s", s.Kind, m.cfg.Kind)
	}
	if !slices.Equal(s.Features, m.cfg.Features) {
		return fmt.Errorf("restore: %w", ErrSchemaMismatch)
	}
	if s.Scaler == nil || s.Scaler.Width() != len(m.cfg.Features) {
		return fmt.Errorf("restore: scaler: %w", ErrSchemaMismatch)
	}
	reg, err := m.newRegressor()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(s.Regressor, reg); err != nil {
		return fmt.Errorf("restore: decode regressor: %w", err)
	}
	m.publish(&Fit{
		features:  slices.Clone(m.cfg.Features),
		scaler:    s.Scaler,
		reg:       reg,
		samples:   s.Samples,
		trainedAt: s.TrainedAt,
	})
	m.logger.Info("model restored from snapshot", "samples", s.Samples, "trained_at", s.TrainedAt)
	return nil
}

// restoreFromStore reports whether a stored snapshot was published. Store
// failures are logged and fall back to training.
func (m *RiskModel) restoreFromStore(ctx context.Context) bool {
	if m.store == nil {
		return false
	}
	s, found, err := m.store.Load(ctx, m.cfg.Hazard)
	if err != nil {
		m.logger.Warn("load model snapshot failed, training instead", "error", err)
		return false
	}
	if !found {
		return false
	}
	if err := m.restoreLocked(s); err != nil {
		m.logger.Warn("stored snapshot rejected, training instead", "error", err)
		return false
	}
	return true
}

func (m *RiskModel) saveToStore(ctx context.Context, f *Fit) {
	if m.store == nil {
		return
	}
	s, err := m.snapshotOf(f)
	if err == nil {
		err = m.store.Save(ctx, s)
	}
	if err != nil {
		m.logger.Warn("save model snapshot failed", "error", err)
	}
}
