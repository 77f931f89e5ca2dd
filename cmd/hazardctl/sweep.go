package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/engine"
)

var (
	region     engine.Region
	resolution int

	epiLat, epiLon float64
	mapMagnitude   float64
	mapDepthKm     float64
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Sweep all three hazards over a regional grid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := eng.GenerateRegionalHeatmaps(cmd.Context(), region, resolution)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), h)
	},
}

var hazardMapCmd = &cobra.Command{
	Use:   "hazard-map",
	Short: "Map tsunami wave height around an epicenter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := eng.Tsunami().HazardMap(cmd.Context(), epiLat, epiLon, mapMagnitude, mapDepthKm)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), m)
	},
}

func init() {
	f := heatmapCmd.Flags()
	f.Float64Var(&region.LatMin, "lat-min", 0, "southern edge")
	f.Float64Var(&region.LatMax, "lat-max", 0, "northern edge")
	f.Float64Var(&region.LonMin, "lon-min", 0, "western edge")
	f.Float64Var(&region.LonMax, "lon-max", 0, "eastern edge")
	f.IntVar(&resolution, "resolution", 0, "grid size per axis (default HEATMAP_RESOLUTION)")
	for _, name := range []string{"lat-min", "lat-max", "lon-min", "lon-max"} {
		_ = heatmapCmd.MarkFlagRequired(name)
	}

	f = hazardMapCmd.Flags()
	f.Float64Var(&epiLat, "lat", 0, "epicenter latitude")
	f.Float64Var(&epiLon, "lon", 0, "epicenter longitude")
	f.Float64Var(&mapMagnitude, "magnitude", domain.DefaultTsunamiMagnitude, "earthquake magnitude")
	f.Float64Var(&mapDepthKm, "depth", domain.DefaultEpicenterDepthKm, "epicenter depth in km")
	_ = hazardMapCmd.MarkFlagRequired("lat")
	_ = hazardMapCmd.MarkFlagRequired("lon")

	rootCmd.AddCommand(heatmapCmd, hazardMapCmd)
}
