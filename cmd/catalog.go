package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"EchoFM/model"
)

// demoCatalog is a small fixed library for offline runs of the tooling.
func demoCatalog() []*model.Track {
	return []*model.Track{
		{ID: 1, Title: "Ocean Drift", Artist: "Nila", Category: "ambient", Tags: []string{"chill", "waves"}, Duration: 12, AudioURL: "mem://ocean-drift", PlayCount: 240},
		{ID: 2, Title: "Night Runner", Artist: "Kato", Category: "electronic", Tags: []string{"upbeat", "synth"}, Duration: 10, AudioURL: "mem://night-runner", PlayCount: 890},
		{ID: 3, Title: "Golden Hour", Artist: "Nila", Category: "ambient", Tags: []string{"warm", "sunset"}, Duration: 11, AudioURL: "mem://golden-hour", PlayCount: 455},
		{ID: 4, Title: "Static Bloom", Artist: "Vexa", Category: "electronic", Tags: []string{"energy", "dance"}, Duration: 9, AudioURL: "mem://static-bloom", PlayCount: 1200},
		{ID: 5, Title: "Rainy Window", Artist: "Mori", Category: "lofi", Tags: []string{"sad", "rain", "chill"}, Duration: 13, AudioURL: "mem://rainy-window", PlayCount: 640},
	}
}

// loadCatalog reads a JSON track array, falling back to the demo catalog
// when no path is given.
func loadCatalog(path string) ([]*model.Track, error) {
	if path == "" {
		return demoCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var tracks []*model.Track
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return tracks, nil
}
