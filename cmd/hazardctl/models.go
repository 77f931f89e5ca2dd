package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
)

var trainHazards []string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Train or restore the models and describe them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := eng.EnsureTrained(cmd.Context()); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), eng.Models())
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Retrain models on fresh synthetic samples, replacing stored snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		targets, err := parseHazards(trainHazards)
		if err != nil {
			return err
		}
		out := make([]model.Info, 0, len(targets))
		for _, h := range targets {
			m, err := eng.Model(h)
			if err != nil {
				return err
			}
			if err := m.Train(cmd.Context(), nil); err != nil {
				return fmt.Errorf("train %s: %w", h, err)
			}
			out = append(out, m.Info())
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

type snapshotStatus struct {
	Hazard    domain.Hazard `json:"hazard"`
	Stored    bool          `json:"stored"`
	Kind      model.Kind    `json:"kind,omitempty"`
	Samples   int           `json:"samples,omitempty"`
	TrainedAt *time.Time    `json:"trained_at,omitempty"`
	History   []time.Time   `json:"history"`
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored model snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if store == nil {
			return errors.New("no snapshot store: set --store or MODEL_STORE_PATH")
		}
		ctx := cmd.Context()
		out := make([]snapshotStatus, 0, len(domain.Hazards))
		for _, h := range domain.Hazards {
			snap, found, err := store.Load(ctx, h)
			if err != nil {
				return err
			}
			history, err := store.History(ctx, h)
			if err != nil {
				return err
			}
			st := snapshotStatus{Hazard: h, Stored: found, History: history}
			if found {
				st.Kind = snap.Kind
				st.Samples = snap.Samples
				st.TrainedAt = &snap.TrainedAt
			}
			out = append(out, st)
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func parseHazards(names []string) ([]domain.Hazard, error) {
	if len(names) == 0 {
		return domain.Hazards, nil
	}
	out := make([]domain.Hazard, 0, len(names))
	for _, n := range names {
		h, err := domain.ParseHazard(n)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func init() {
	trainCmd.Flags().StringSliceVar(&trainHazards, "hazard", nil, "hazards to retrain (default all)")
	rootCmd.AddCommand(modelsCmd, trainCmd, snapshotsCmd)
}
