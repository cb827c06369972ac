// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geofetch downloads commune contour GeoJSON for an EPCI from
// geo.api.gouv.fr. Rendering stays out of this repository; the pipeline
// only acquires and validates the boundary data the map consumers need.
package geofetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/election-engine/internal/httputil"
	"github.com/pdiddy/election-engine/pkg/types"
)

// BaseURL is the geo.api.gouv.fr endpoint root. Tests point it at a local
// server.
var BaseURL = "https://geo.api.gouv.fr"

// DefaultEPCI is Nantes Métropole.
const DefaultEPCI = "244400404"

// FeatureCollection is the subset of GeoJSON the pipeline inspects.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature carries the commune code used to join contours onto winners.
type Feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// CommuneCodes returns the INSEE codes of all features, in order.
func (fc *FeatureCollection) CommuneCodes() []string {
	codes := make([]string, 0, len(fc.Features))
	for _, ft := range fc.Features {
		if code, ok := ft.Properties["code"].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// endpoints returns the two geo.api.gouv.fr URL shapes that serve EPCI
// commune contours; the second is a fallback for API versions where the
// first 404s.
func endpoints(epci string) []string {
	return []string{
		fmt.Sprintf("%s/epcis/%s/communes?format=geojson&geometry=contour", BaseURL, epci),
		fmt.Sprintf("%s/communes?codeEpci=%s&format=geojson&geometry=contour", BaseURL, epci),
	}
}

// Fetch downloads the commune contours for cfg.EPCI, trying each endpoint
// in turn, and writes the GeoJSON to cfg.OutPath atomically. It returns
// the parsed collection so callers can report feature counts.
func Fetch(ctx context.Context, client *http.Client, cfg types.GeoConfig, w io.Writer) (*FeatureCollection, error) {
	epci := cfg.EPCI
	if epci == "" {
		epci = DefaultEPCI
	}

	var lastErr error
	for _, url := range endpoints(epci) {
		fc, err := fetchOne(ctx, client, url, cfg)
		if err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
			lastErr = err
			continue
		}

		if err := writeGeoJSON(fc, cfg.OutPath); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "saved %d features to %s\n", len(fc.Features), cfg.OutPath)
		return fc, nil
	}
	return nil, fmt.Errorf("fetching GeoJSON for EPCI %s: %w", epci, lastErr)
}

func fetchOne(ctx context.Context, client *http.Client, url string, cfg types.GeoConfig) (*FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var fc FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON from %s: %w", url, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("empty feature collection from %s", url)
	}
	return &fc, nil
}

// writeGeoJSON writes the collection via a temp file so a failed download
// never truncates an existing boundary file.
func writeGeoJSON(fc *FeatureCollection, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".geo-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing GeoJSON: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
