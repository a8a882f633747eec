package model

// Mood is a coarse emotional label attached to tracks by the classifier.
type Mood string

const (
	MoodCalm        Mood = "calm"
	MoodEnergetic   Mood = "energetic"
	MoodHappy       Mood = "happy"
	MoodMelancholic Mood = "melancholic"
	MoodFocused     Mood = "focused"
	MoodRomantic    Mood = "romantic"
)

// Moods lists every known mood in a stable order.
var Moods = []Mood{
	MoodCalm,
	MoodEnergetic,
	MoodHappy,
	MoodMelancholic,
	MoodFocused,
	MoodRomantic,
}

// MoodScore pairs a mood with the classifier's confidence in [0, 1].
type MoodScore struct {
	Mood       Mood    `json:"mood"`
	Confidence float64 `json:"confidence"`
}
