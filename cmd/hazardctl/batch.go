package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

var (
	inputFile string
	rainfall  []float64
	moisture  []float64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score earthquake risk for a JSON array of locations",
	Long:  "Reads [{\"latitude\":..,\"longitude\":..,\"depth_km\":..}, ...]. Results keep input order.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var queries []domain.EarthquakeQuery
		if err := readJSON(inputFile, cmd.InOrStdin(), &queries); err != nil {
			return err
		}
		res, err := eng.Earthquake().PredictBatch(queries)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Score flood risk for a rainfall time series",
	Long:  "Each step uses the matching soil moisture value; steps past the end of --moisture use the default moisture.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := eng.Flood().PredictTemporalSeries(rainfall, moisture)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var coastalCmd = &cobra.Command{
	Use:   "coastal",
	Short: "Score tsunami impact for a JSON array of coast parameters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var coasts []domain.TsunamiQuery
		if err := readJSON(inputFile, cmd.InOrStdin(), &coasts); err != nil {
			return err
		}
		res, err := eng.Tsunami().PredictCoastalImpact(coasts)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	for _, c := range []*cobra.Command{batchCmd, coastalCmd} {
		c.Flags().StringVarP(&inputFile, "file", "f", "-", "JSON input file, - for stdin")
	}
	seriesCmd.Flags().Float64SliceVar(&rainfall, "rainfall", nil, "rainfall per step in mm")
	seriesCmd.Flags().Float64SliceVar(&moisture, "moisture", nil, "soil moisture per step")
	_ = seriesCmd.MarkFlagRequired("rainfall")

	rootCmd.AddCommand(batchCmd, seriesCmd, coastalCmd)
}
