package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

var (
	lat, lon        float64
	depthKm, strain float64
	floodRainMm     float64
	soil            float64
	tsunamiMag      float64
	tsunamiDepthKm  float64

	// Shared by all and alert, which take the same defaults.
	rainfallMm float64
	magnitude  float64
	reportFile string
)

var earthquakeCmd = &cobra.Command{
	Use:   "earthquake",
	Short: "Score earthquake risk at a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := eng.PredictEarthquake(lat, lon, depthKm, strain)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var floodCmd = &cobra.Command{
	Use:   "flood",
	Short: "Score flood risk at a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := eng.PredictFlood(lat, lon, floodRainMm, soil)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var tsunamiCmd = &cobra.Command{
	Use:   "tsunami",
	Short: "Score tsunami risk for an offshore event",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := eng.PredictTsunami(lat, lon, tsunamiMag, tsunamiDepthKm)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Build a multi-hazard report with its alerts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := eng.Assess(cmd.Context(), domain.AssessmentRequest{
			Latitude:            &lat,
			Longitude:           &lon,
			RainfallMm:          &rainfallMm,
			EarthquakeMagnitude: &magnitude,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), a.Report)
	},
}

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Evaluate alert rules for a report file, or for a fresh report at a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var report domain.MultiHazardReport
		if reportFile != "" {
			if err := readJSON(reportFile, cmd.InOrStdin(), &report); err != nil {
				return err
			}
		} else {
			r, err := eng.PredictAllHazards(cmd.Context(), domain.AssessmentParams{
				Latitude: lat, Longitude: lon, RainfallMm: rainfallMm, EarthquakeMagnitude: magnitude,
			})
			if err != nil {
				return err
			}
			report = r
		}
		return printJSON(cmd.OutOrStdout(), eng.RunEmergencyAlert(report))
	},
}

func locationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
}

func init() {
	for _, c := range []*cobra.Command{earthquakeCmd, floodCmd, tsunamiCmd, allCmd, alertCmd} {
		locationFlags(c)
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{earthquakeCmd, floodCmd, tsunamiCmd, allCmd} {
		_ = c.MarkFlagRequired("lat")
		_ = c.MarkFlagRequired("lon")
	}

	earthquakeCmd.Flags().Float64Var(&depthKm, "depth", domain.DefaultQuakeDepthKm, "focal depth in km")
	earthquakeCmd.Flags().Float64Var(&strain, "strain", domain.DefaultCrustalStrain, "crustal strain in [0,1]")

	floodCmd.Flags().Float64Var(&floodRainMm, "rainfall", domain.DefaultRainfallMm, "rainfall in mm")
	floodCmd.Flags().Float64Var(&soil, "soil-moisture", domain.DefaultSoilMoisture, "soil moisture in [0,1]")

	tsunamiCmd.Flags().Float64Var(&tsunamiMag, "magnitude", domain.DefaultTsunamiMagnitude, "earthquake magnitude")
	tsunamiCmd.Flags().Float64Var(&tsunamiDepthKm, "depth", domain.DefaultEpicenterDepthKm, "epicenter depth in km")

	for _, c := range []*cobra.Command{allCmd, alertCmd} {
		c.Flags().Float64Var(&rainfallMm, "rainfall", domain.DefaultRainfallMm, "rainfall in mm")
		c.Flags().Float64Var(&magnitude, "magnitude", domain.DefaultAssessmentMagnitude, "earthquake magnitude")
	}
	alertCmd.Flags().StringVar(&reportFile, "report", "", "report JSON file, - for stdin")
}
