package model

import "fmt"

// NumEQBands is the fixed number of equalizer stages in the signal chain.
const NumEQBands = 10

// Equalizer gain bounds in dB.
const (
	EQGainMin = -12.0
	EQGainMax = 12.0
)

// Reverb impulse types understood by the signal graph.
const (
	ReverbSmall     = "small"
	ReverbHall      = "hall"
	ReverbCathedral = "cathedral"
)

// EQSettings holds the ten per-band gains in dB plus the enable flag.
type EQSettings struct {
	Enabled bool      `json:"enabled"`
	Preset  string    `json:"preset"`
	Gains   []float64 `json:"gains"`
}

// ReverbSettings controls the convolution reverb stage.
type ReverbSettings struct {
	Enabled bool    `json:"enabled"`
	Type    string  `json:"type"`
	Wet     float64 `json:"wet"`
}

// DelaySettings controls the feedback delay stage.
type DelaySettings struct {
	Enabled  bool    `json:"enabled"`
	Time     float64 `json:"time"` // Delay time in seconds
	Feedback float64 `json:"feedback"`
}

// EffectsSettings groups the two effect stages.
type EffectsSettings struct {
	Reverb ReverbSettings `json:"reverb"`
	Delay  DelaySettings  `json:"delay"`
}

// AudioSettings is the persisted value object shared between the settings
// surface and the active signal graph. It is reapplied wholesale on every
// change.
type AudioSettings struct {
	EQ        EQSettings      `json:"eq"`
	Effects   EffectsSettings `json:"effects"`
	Crossfade float64         `json:"crossfade"`
}

// EQPresets maps preset names to their ten band gains.
var EQPresets = map[string][]float64{
	"flat":       {0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	"bassBoost":  {8, 7, 5, 3, 0, 0, 0, 0, 0, 0},
	"vocal":      {-2, -1, 0, 2, 4, 4, 3, 1, 0, -1},
	"rock":       {5, 4, 2, 0, -1, 0, 2, 3, 4, 4},
	"electronic": {6, 5, 2, 0, -2, 0, 1, 3, 5, 6},
	"treble":     {0, 0, 0, 0, 0, 2, 4, 5, 7, 8},
}

// DefaultAudioSettings returns the settings applied before any user change.
func DefaultAudioSettings() *AudioSettings {
	return &AudioSettings{
		EQ: EQSettings{
			Enabled: false,
			Preset:  "flat",
			Gains:   append([]float64(nil), EQPresets["flat"]...),
		},
		Effects: EffectsSettings{
			Reverb: ReverbSettings{Enabled: false, Type: ReverbHall, Wet: 0.3},
			Delay:  DelaySettings{Enabled: false, Time: 0.3, Feedback: 0.3},
		},
		Crossfade: 0,
	}
}

// Validate checks the structural invariants: exactly ten gains, each within
// [-12, +12] dB, and effect parameters inside their working ranges.
func (s *AudioSettings) Validate() error {
	if len(s.EQ.Gains) != NumEQBands {
		return fmt.Errorf("eq gains must have exactly %d entries, got %d", NumEQBands, len(s.EQ.Gains))
	}
	for i, g := range s.EQ.Gains {
		if g < EQGainMin || g > EQGainMax {
			return fmt.Errorf("eq gain %d out of range [%g, %g]: %g", i, EQGainMin, EQGainMax, g)
		}
	}
	switch s.Effects.Reverb.Type {
	case ReverbSmall, ReverbHall, ReverbCathedral:
	default:
		return fmt.Errorf("unknown reverb type: %q", s.Effects.Reverb.Type)
	}
	if w := s.Effects.Reverb.Wet; w < 0 || w > 1 {
		return fmt.Errorf("reverb wet out of range [0, 1]: %g", w)
	}
	if f := s.Effects.Delay.Feedback; f < 0 || f >= 1 {
		return fmt.Errorf("delay feedback out of range [0, 1): %g", f)
	}
	if t := s.Effects.Delay.Time; t < 0 {
		return fmt.Errorf("delay time must be non-negative: %g", t)
	}
	return nil
}

// Clone returns a deep copy so the caller can mutate freely.
func (s *AudioSettings) Clone() *AudioSettings {
	out := *s
	out.EQ.Gains = append([]float64(nil), s.EQ.Gains...)
	return &out
}
