package model

import "time"

// HistoryEntry records one listen of a track. Entries are appended when a
// track starts and updated in place as playback progresses.
type HistoryEntry struct {
	TrackID   int64     `json:"trackId"`
	SessionID string    `json:"sessionId"`
	PlayedAt  time.Time `json:"playedAt"`
	Progress  float64   `json:"progress"` // Seconds listened
	Completed bool      `json:"completed"`
}

// RepeatMode selects how the session advances at track boundaries.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// PlaybackSnapshot is the persisted slice of session state restored at the
// next session start. Playback position is best-effort, not sample-accurate.
type PlaybackSnapshot struct {
	TrackID    int64      `json:"trackId"`
	Position   float64    `json:"position"`
	RepeatMode RepeatMode `json:"repeatMode"`
	Shuffle    bool       `json:"shuffle"`
	Volume     float64    `json:"volume"`
}
