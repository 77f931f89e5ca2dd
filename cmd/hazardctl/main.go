// Command hazardctl runs the hazard engine from the command line. Every
// subcommand prints JSON on stdout; logs go to stderr.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-risk-service/internal/adapter/bolt"
	"github.com/couchcryptid/hazard-risk-service/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-risk-service/internal/config"
	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/engine"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

var (
	cfg    *config.Config
	eng    *engine.Engine
	store  *bolt.Store
	logger *slog.Logger

	logLevel  string
	storePath string
	samples   int
	seed      uint64
	workers   int
)

var rootCmd = &cobra.Command{
	Use:           "hazardctl",
	Short:         "Multi-hazard risk assessment from the command line",
	Long:          "Scores earthquake, flood and tsunami risk, evaluates alerts and sweeps regional grids. Settings default to the service environment variables.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = observability.NewCLILogger(logLevel)
		return setupEngine(cmd)
	},
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&storePath, "store", "", "model snapshot file (default MODEL_STORE_PATH)")
	pf.IntVar(&samples, "samples", 0, "training samples per model (default TRAINING_SAMPLES)")
	pf.Uint64Var(&seed, "seed", 0, "training seed (default TRAINING_SEED)")
	pf.IntVar(&workers, "workers", 0, "grid sweep workers (default GRID_WORKERS)")
}

// setupEngine builds the engine from config with flag overrides.
func setupEngine(cmd *cobra.Command) error {
	ec := engine.Config{
		Samples:    cfg.TrainingSamples,
		Seed:       cfg.TrainingSeed,
		Workers:    cfg.GridWorkers,
		Resolution: cfg.HeatmapResolution,
	}
	flags := cmd.Flags()
	if flags.Changed("samples") {
		ec.Samples = samples
	}
	if flags.Changed("seed") {
		ec.Seed = seed
	}
	if flags.Changed("workers") {
		ec.Workers = workers
	}

	path := cfg.ModelStorePath
	if storePath != "" {
		path = storePath
	}
	if path != "" {
		s, err := bolt.Open(path)
		if err != nil {
			return err
		}
		store = s
		ec.Store = s
	}

	var geocoder domain.Geocoder
	metrics := observability.NewMetricsForTesting()
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewCachedGeocoder(mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics), cfg.MapboxCacheSize, metrics)
	}
	eng = engine.New(ec, engine.SyntheticFields{Seed: ec.Seed}, geocoder, logger, metrics)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodes a file, or stdin when path is "-".
func readJSON(path string, stdin io.Reader, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
