// Package model wraps a standardization transform and a regressor into a
// per-hazard risk model with an explicit train, ensure-trained and predict
// lifecycle.
//
// A fit is built completely off to the side and then published with a single
// atomic pointer swap, so predictions never observe a half-updated
// scaler/regressor pair and never take a lock. Training is serialized by a
// mutex: at most one training pass runs per model at a time.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/learn"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// DefaultSamples is the synthetic training set size used when no training
// set is supplied.
const DefaultSamples = 500

// DefaultForestSeed seeds the random forest when the caller leaves Seed unset.
const DefaultForestSeed = 42

var (
	// ErrNotTrained is returned by operations that need a published fit.
	ErrNotTrained = errors.New("model not trained")
	// ErrSchemaMismatch is returned when a feature vector or snapshot does
	// not match the model's feature schema.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)

// Kind selects the regressor family.
type Kind string

const (
	GradientBoosting Kind = "gradient_boosting"
	RandomForest     Kind = "random_forest"
)

// Config describes one hazard model.
type Config struct {
	Hazard   domain.Hazard
	Features []string
	Kind     Kind
	// Samples is the synthetic set size for default training.
	Samples int
	// Seed fixes the random forest bootstrap; 0 uses DefaultForestSeed.
	Seed uint64
}

// Generator produces labeled synthetic samples.
type Generator interface {
	Generate(n int) TrainingSet
}

// Option customizes a RiskModel.
type Option func(*RiskModel)

// WithStore persists every fit and restores the latest snapshot instead of
// training when EnsureTrained finds no published fit.
func WithStore(s SnapshotStore) Option {
	return func(m *RiskModel) { m.store = s }
}

// RiskModel owns the published fit for one hazard.
type RiskModel struct {
	cfg     Config
	gen     Generator
	store   SnapshotStore
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	current atomic.Pointer[Fit]
}

// New creates an untrained model.
func New(cfg Config, gen Generator, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *RiskModel {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultForestSeed
	}
	m := &RiskModel{
		cfg:     cfg,
		gen:     gen,
		logger:  logger.With("hazard", string(cfg.Hazard)),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(m)
	}
	metrics.ModelTrained.WithLabelValues(string(cfg.Hazard)).Set(0)
	return m
}

// Hazard returns the hazard this model scores.
func (m *RiskModel) Hazard() domain.Hazard { return m.cfg.Hazard }

// Features returns a copy of the feature schema.
func (m *RiskModel) Features() []string { return slices.Clone(m.cfg.Features) }

// Trained reports whether a fit has been published.
func (m *RiskModel) Trained() bool { return m.current.Load() != nil }

// Current returns the published fit. Callers that evaluate many points, such
// as grid sweeps, hold on to it so every point sees the same fit.
func (m *RiskModel) Current() (*Fit, error) {
	f := m.current.Load()
	if f == nil {
		return nil, ErrNotTrained
	}
	return f, nil
}

// Train fits a new scaler and regressor and publishes them together. A nil
// training set trains on Config.Samples fresh synthetic samples. Training
// replaces any previous fit.
func (m *RiskModel) Train(ctx context.Context, ts *TrainingSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainLocked(ctx, ts)
}

// EnsureTrained publishes a fit if none exists yet, restoring the stored
// snapshot when one is available and training otherwise. It is a no-op on a
// trained model.
func (m *RiskModel) EnsureTrained(ctx context.Context) error {
	if m.Trained() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Trained() {
		return nil
	}
	if m.restoreFromStore(ctx) {
		return nil
	}
	return m.trainLocked(ctx, nil)
}

// Predict evaluates the raw regressor output for one feature vector. An
// untrained model trains itself first on default synthetic data.
func (m *RiskModel) Predict(x []float64) (float64, error) {
	if err := m.EnsureTrained(context.Background()); err != nil {
		return 0, err
	}
	f, err := m.Current()
	if err != nil {
		return 0, err
	}
	return f.Predict(x)
}

// Info summarizes the model for operational endpoints.
func (m *RiskModel) Info() Info {
	info := Info{
		Hazard:   m.cfg.Hazard,
		Kind:     m.cfg.Kind,
		Features: m.Features(),
	}
	if f := m.current.Load(); f != nil {
		info.Trained = true
		info.Samples = f.samples
		trainedAt := f.trainedAt
		info.TrainedAt = &trainedAt
	}
	return info
}

// Info describes a model's schema and training state.
type Info struct {
	Hazard    domain.Hazard `json:"hazard"`
	Kind      Kind          `json:"kind"`
	Features  []string      `json:"features"`
	Trained   bool          `json:"trained"`
	Samples   int           `json:"samples,omitempty"`
	TrainedAt *time.Time    `json:"trained_at,omitempty"`
}

func (m *RiskModel) trainLocked(ctx context.Context, ts *TrainingSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if ts == nil {
		generated := m.gen.Generate(m.cfg.Samples)
		ts = &generated
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("train %s model: %w", m.cfg.Hazard, err)
	}
	if !slices.Equal(ts.Features, m.cfg.Features) {
		return fmt.Errorf("train %s model: %w", m.cfg.Hazard, ErrSchemaMismatch)
	}

	m.logger.Info("training model", "kind", string(m.cfg.Kind), "samples", ts.Len())

	scaler, err := learn.FitScaler(ts.X)
	if err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(ts.X)
	if err != nil {
		return fmt.Errorf("standardize features: %w", err)
	}
	reg, err := m.newRegressor()
	if err != nil {
		return err
	}
	if err := reg.Fit(scaled, ts.Y); err != nil {
		return fmt.Errorf("fit %s regressor: %w", m.cfg.Kind, err)
	}

	f := &Fit{
		features:  slices.Clone(m.cfg.Features),
		scaler:    scaler,
		reg:       reg,
		samples:   ts.Len(),
		trainedAt: domain.Now(),
	}
	m.publish(f)

	elapsed := time.Since(start)
	m.metrics.ModelTrainingDuration.WithLabelValues(string(m.cfg.Hazard)).Observe(elapsed.Seconds())
	m.logger.Info("model trained", "samples", f.samples, "duration", elapsed)

	m.saveToStore(ctx, f)
	return nil
}

func (m *RiskModel) publish(f *Fit) {
	m.current.Store(f)
	m.metrics.ModelTrained.WithLabelValues(string(m.cfg.Hazard)).Set(1)
}

func (m *RiskModel) newRegressor() (learn.Regressor, error) {
	switch m.cfg.Kind {
	case GradientBoosting:
		return learn.NewGradientBoosting(100, 0.1), nil
	case RandomForest:
		return learn.NewRandomForest(100, m.cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown regressor kind %q", m.cfg.Kind)
	}
}

// Fit is an immutable, published scaler/regressor pair.
type Fit struct {
	features  []string
	scaler    *learn.Scaler
	reg       learn.Regressor
	samples   int
	trainedAt time.Time
}

// Predict standardizes x with the fitted scaler, without clamping, and
// evaluates the regressor.
func (f *Fit) Predict(x []float64) (float64, error) {
	if len(x) != len(f.features) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(x), len(f.features))
	}
	z, err := f.scaler.Transform(x)
	if err != nil {
		return 0, err
	}
	return f.reg.Predict(z), nil
}

// TrainedAt is when the fit was published.
func (f *Fit) TrainedAt() time.Time { return f.trainedAt }
