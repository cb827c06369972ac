// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/election-engine/internal/geofetch"
	"github.com/pdiddy/election-engine/pkg/types"
)

var fetchGeoCmd = &cobra.Command{
	Use:   "fetch-geo",
	Short: "Download commune contour GeoJSON for the metropolitan area",
	Long: `Fetch-geo downloads the commune boundary contours for an EPCI from
geo.api.gouv.fr and saves them as GeoJSON. Map rendering happens outside
this pipeline; the contours are fetched here so every consumer joins
winners onto the same boundary file.`,
	RunE: runFetchGeo,
}

func runFetchGeo(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	cfg := types.GeoConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "election-engine/" + version,
		},
		EPCI:    stringSetting(cmd, "epci", "geo.epci"),
		OutPath: stringSetting(cmd, "out", "geo.out_path"),
	}

	client := &http.Client{Timeout: cfg.Timeout}
	_, err := geofetch.Fetch(context.Background(), client, cfg, os.Stdout)
	return err
}

func init() {
	fetchGeoCmd.Flags().String("epci", geofetch.DefaultEPCI, "EPCI code whose commune contours are fetched")
	fetchGeoCmd.Flags().String("out", "data/geo/communes_metropole.geojson", "output GeoJSON path")
	fetchGeoCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(fetchGeoCmd)
}
