package audio

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"EchoFM/logger"
	"EchoFM/model"
)

// EQFrequencies lists the fixed center frequencies of the ten equalizer
// stages, low to high.
var EQFrequencies = [model.NumEQBands]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// eqQ is the quality factor shared by all peaking stages.
const eqQ = 1.0

// maxDelaySeconds bounds the delay line length.
const maxDelaySeconds = 2.0

var (
	// ErrSourceConnected is returned when ConnectSource is called twice on
	// the same graph. Reconnecting requires a fresh graph.
	ErrSourceConnected = errors.New("audio: source already connected")

	// ErrGraphClosed is returned when operating on a disconnected graph.
	ErrGraphClosed = errors.New("audio: signal graph disconnected")
)

// Source supplies planar audio frames to a signal graph.
type Source interface {
	// Read fills dst (one slice per channel, equal lengths) and returns the
	// number of frames written. Short reads signal the end of the stream.
	Read(dst [][]float64) int
}

// SignalGraph owns the fixed processing chain
//
//	source → EQ stages (10, in frequency order) → delay → reverb → sink
//
// Both effects run as dry/wet splits recombined by gain, so enabling or
// disabling an effect never changes the topology. Callers push coefficient
// updates; only a reverb type change rebuilds anything (its impulse).
type SignalGraph struct {
	mu         sync.Mutex
	sampleRate int

	eq        [model.NumEQBands]*biquadNode
	eqEnabled bool
	eqGains   [model.NumEQBands]float64

	delay        *delayNode
	delayEnabled bool
	delayDry     float64
	delayWet     float64

	reverb        *convolverNode
	reverbType    string
	reverbEnabled bool
	reverbDry     float64
	reverbWet     float64

	rng *rand.Rand

	source Source
	closed bool
}

// NewSignalGraph builds the chain at the given sample rate with every stage
// bypassed: EQ gains zero, delay and reverb fully dry.
func NewSignalGraph(sampleRate int) *SignalGraph {
	g := &SignalGraph{
		sampleRate: sampleRate,
		delay:      newDelayNode(maxDelaySeconds, sampleRate),
		reverb:     newConvolverNode(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		delayDry:   1,
		reverbDry:  1,
	}
	for i, freq := range EQFrequencies {
		g.eq[i] = newBiquadNode(freq, eqQ, sampleRate)
	}
	return g
}

// ApplyEqualizer sets the ten stage gains. Disabling forces every stage to
// 0 dB rather than removing nodes, while remembering the requested gains so
// re-enabling restores them.
func (g *SignalGraph) ApplyEqualizer(gains []float64, enabled bool) error {
	if len(gains) != model.NumEQBands {
		return fmt.Errorf("equalizer needs exactly %d gains, got %d", model.NumEQBands, len(gains))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}

	g.eqEnabled = enabled
	for i, db := range gains {
		g.eqGains[i] = clamp(db, model.EQGainMin, model.EQGainMax)
		if enabled {
			g.eq[i].SetGain(g.eqGains[i])
		} else {
			g.eq[i].SetGain(0)
		}
	}
	return nil
}

// ApplyDelay sets the delay-line length and feedback gain. The wet/dry split
// is fixed at 0.5/0.5 when enabled and 0/1 (full dry) when disabled.
func (g *SignalGraph) ApplyDelay(seconds, feedback float64, enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}

	g.delay.SetTime(seconds)
	g.delay.SetFeedback(feedback)
	g.delayEnabled = enabled
	if enabled {
		g.delayDry, g.delayWet = 0.5, 0.5
	} else {
		g.delayDry, g.delayWet = 1, 0
	}
	return nil
}

// ApplyReverb sets the reverb mix and regenerates the impulse response when
// the type changes. Wet/dry gains become (wet, 1−wet) when enabled, (0, 1)
// when disabled.
func (g *SignalGraph) ApplyReverb(kind string, wet float64, enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}

	if kind != g.reverbType || !g.reverb.HasImpulse() {
		impulse, err := GenerateImpulse(kind, g.sampleRate, g.rng)
		if err != nil {
			return err
		}
		g.reverb.SetImpulse(impulse)
		g.reverbType = kind
	}

	wet = clamp(wet, 0, 1)
	g.reverbEnabled = enabled
	if enabled {
		g.reverbDry, g.reverbWet = 1-wet, wet
	} else {
		g.reverbDry, g.reverbWet = 1, 0
	}
	return nil
}

// ApplySettings applies equalizer, delay, and reverb in sequence. Idempotent;
// safe to call on every settings change.
func (g *SignalGraph) ApplySettings(s *model.AudioSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid audio settings: %w", err)
	}
	if err := g.ApplyEqualizer(s.EQ.Gains, s.EQ.Enabled); err != nil {
		return err
	}
	if err := g.ApplyDelay(s.Effects.Delay.Time, s.Effects.Delay.Feedback, s.Effects.Delay.Enabled); err != nil {
		return err
	}
	return g.ApplyReverb(s.Effects.Reverb.Type, s.Effects.Reverb.Wet, s.Effects.Reverb.Enabled)
}

// ConnectSource wires the source into the chain. Must be called exactly once
// per graph; a new source requires a fresh graph.
func (g *SignalGraph) ConnectSource(src Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}
	if g.source != nil {
		return ErrSourceConnected
	}
	g.source = src
	return nil
}

// Render pulls frames from the connected source through the chain into dst
// and returns the number of frames produced.
func (g *SignalGraph) Render(dst [][]float64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return 0, ErrGraphClosed
	}
	if g.source == nil {
		return 0, errors.New("audio: no source connected")
	}
	n := g.source.Read(dst)
	g.processLocked(dst, n)
	return n, nil
}

// ProcessBlock runs dst in place through the chain. Used by transports that
// push decoded frames instead of having the graph pull.
func (g *SignalGraph) ProcessBlock(dst [][]float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGraphClosed
	}
	frames := 0
	if len(dst) > 0 {
		frames = len(dst[0])
	}
	g.processLocked(dst, frames)
	return nil
}

func (g *SignalGraph) processLocked(dst [][]float64, frames int) {
	channels := len(dst)
	if channels > numChannels {
		channels = numChannels
	}
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			x := dst[ch][i]
			for _, stage := range g.eq {
				x = stage.process(x, ch)
			}
			d := g.delay.process(x, ch)
			x = g.delayDry*x + g.delayWet*d
			r := g.reverb.process(x, ch)
			x = g.reverbDry*x + g.reverbWet*r
			dst[ch][i] = x
		}
	}
}

// Disconnect tears the chain down. Idempotent; every call after the first is
// a no-op. The graph cannot be reused afterwards.
func (g *SignalGraph) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.source = nil
	for _, stage := range g.eq {
		stage.reset()
	}
	g.delay.reset()
	g.reverb.reset()
	logger.Debug("signal graph disconnected", logger.Int("sampleRate", g.sampleRate))
}

// StageGain returns the active gain in dB of EQ stage i. This is the
// coefficient actually shaping the signal: 0 when the equalizer is disabled
// regardless of the stored per-band setting.
func (g *SignalGraph) StageGain(i int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= model.NumEQBands {
		return 0
	}
	return g.eq[i].Gain()
}

// DelayMix returns the delay dry and wet gains.
func (g *SignalGraph) DelayMix() (dry, wet float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delayDry, g.delayWet
}

// ReverbMix returns the reverb dry and wet gains.
func (g *SignalGraph) ReverbMix() (dry, wet float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reverbDry, g.reverbWet
}

// ReverbType returns the type whose impulse is currently installed.
func (g *SignalGraph) ReverbType() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reverbType
}

// DelayParams returns the active delay time and feedback.
func (g *SignalGraph) DelayParams() (seconds, feedback float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delay.Time(), g.delay.Feedback()
}
