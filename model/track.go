package model

import "strings"

// Track represents an audio track in the music library.
// Tracks are owned by the catalog; the engine consumes them read-only.
type Track struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Duration      float64  `json:"duration"` // Duration in seconds
	AudioURL      string   `json:"audioUrl"`
	CoverURL      string   `json:"coverUrl"`
	PlayCount     int64    `json:"playCount"`
	DownloadCount int64    `json:"downloadCount"`
}

// HasTag reports whether the track carries the given tag (case-insensitive).
func (t *Track) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if strings.EqualFold(have, tag) {
			return true
		}
	}
	return false
}

// SortKey selects the ordering of catalog listings.
type SortKey string

const (
	SortLatest    SortKey = "latest"
	SortPopular   SortKey = "popular"
	SortDownloads SortKey = "downloads"
)

// TrackFilter narrows catalog listings. Zero values mean "no constraint".
type TrackFilter struct {
	Category string
	Tags     []string
	Search   string
	Sort     SortKey
	Limit    int
	Offset   int
}
