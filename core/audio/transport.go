package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/storage"
)

// State is the transport lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

var (
	// ErrNotReady is returned by Play before a track has loaded.
	ErrNotReady = errors.New("audio: no track ready")

	// ErrNotPlaying is returned by Pause outside the Playing state.
	ErrNotPlaying = errors.New("audio: transport not playing")

	// ErrLoadTimeout is returned when fetch+decode exceeds the configured bound.
	ErrLoadTimeout = errors.New("audio: load timed out")

	// ErrLoadSuperseded is returned when a newer Load started while this one
	// was in flight; the stale result is discarded.
	ErrLoadSuperseded = errors.New("audio: load superseded by a newer request")

	// ErrDestroyed is returned after Destroy.
	ErrDestroyed = errors.New("audio: transport destroyed")
)

// TransportConfig configures a Transport. Zero values get sensible defaults.
type TransportConfig struct {
	SampleRate  int
	LoadTimeout time.Duration // 0 disables the bound
	Fetcher     storage.MediaFetcher
	Decoder     Decoder
	Clock       Clock
}

// Transport owns decode-once-then-replay-many playback of a single track:
// Idle → Loading → Ready ⇄ Playing ⇄ Paused, back to Idle on Stop or
// Destroy. Elapsed time is always reconstructed from the clock and the
// (startTime, pauseTime) pair.
//
// Each transport owns exactly one SignalGraph; the graph is torn down and
// rebuilt whenever a new track loads.
type Transport struct {
	mu  sync.Mutex
	cfg TransportConfig

	clock Clock
	graph *SignalGraph

	state     State
	buffer    *Buffer
	duration  float64
	startTime float64
	pauseTime float64
	volume    float64
	settings  *model.AudioSettings

	loadGen   uint64
	analyzer  *FrequencyAnalyzer
	destroyed bool
}

// NewTransport creates an idle transport.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Decoder == nil {
		cfg.Decoder = NewPCMDecoder()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = storage.NewFileFetcher("")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock()
	}
	return &Transport{
		cfg:      cfg,
		clock:    cfg.Clock,
		graph:    NewSignalGraph(cfg.SampleRate),
		volume:   1,
		settings: model.DefaultAudioSettings(),
	}
}

// Load fetches and fully decodes the track at url before returning. On
// failure the transport is left Idle. A Load that is overtaken by a newer
// Load resolves with ErrLoadSuperseded and leaves no trace.
func (t *Transport) Load(ctx context.Context, url string) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return ErrDestroyed
	}
	t.loadGen++
	gen := t.loadGen
	t.state = StateLoading
	fetcher := t.cfg.Fetcher
	decoder := t.cfg.Decoder
	timeout := t.cfg.LoadTimeout
	t.mu.Unlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	buf, err := fetchAndDecode(ctx, fetcher, decoder, url)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrDestroyed
	}
	if gen != t.loadGen {
		return ErrLoadSuperseded
	}
	if err != nil {
		t.state = StateIdle
		t.buffer = nil
		t.duration = 0
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLoadTimeout, url)
		}
		return fmt.Errorf("load %s: %w", url, err)
	}

	// New track: rebuild the signal chain at the track's sample rate and
	// reapply the current settings.
	t.graph.Disconnect()
	t.graph = NewSignalGraph(buf.SampleRate)
	if aerr := t.graph.ApplySettings(t.settings); aerr != nil {
		logger.Warn("failed to reapply audio settings after load",
			logger.String("url", url), logger.ErrorField(aerr))
	}

	t.buffer = buf
	t.duration = buf.Duration()
	t.pauseTime = 0
	t.state = StateReady
	logger.Info("track loaded",
		logger.String("url", url),
		logger.Float64("duration", t.duration),
		logger.Int("sampleRate", buf.SampleRate))
	return nil
}

func fetchAndDecode(ctx context.Context, fetcher storage.MediaFetcher, decoder Decoder, url string) (*Buffer, error) {
	rc, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer rc.Close()

	buf, err := decoder.Decode(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return buf, nil
}

// Play starts or resumes playback from the stored pause offset. Calling Play
// while already Playing is a deliberate no-op; it never creates a second
// overlapping source.
func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StatePlaying:
		return nil
	case StateReady, StatePaused:
		t.startTime = t.clock.Now() - t.pauseTime
		t.state = StatePlaying
		return nil
	case StateIdle, StateLoading:
		if t.destroyed {
			return ErrDestroyed
		}
		return ErrNotReady
	default:
		return ErrNotReady
	}
}

// Pause freezes playback, recording pauseTime = clock − startTime so the
// position survives the pause without a running counter.
func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePlaying {
		return ErrNotPlaying
	}
	t.pauseTime = t.clock.Now() - t.startTime
	t.state = StatePaused
	return nil
}

// Stop unloads the track and returns the transport to Idle.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Transport) stopLocked() {
	t.buffer = nil
	t.duration = 0
	t.startTime = 0
	t.pauseTime = 0
	if !t.destroyed {
		t.state = StateIdle
	}
}

// Seek moves the playhead to the given offset, clamped to [0, duration]. If
// playing, playback restarts from the new offset; if paused or ready, only
// the stored offset moves.
func (t *Transport) Seek(seconds float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateReady, StatePlaying, StatePaused:
	default:
		return ErrNotReady
	}
	seconds = clamp(seconds, 0, t.duration)
	t.pauseTime = seconds
	if t.state == StatePlaying {
		t.startTime = t.clock.Now() - seconds
	}
	return nil
}

// CurrentTime returns clock − startTime while Playing, otherwise the stored
// pause offset. Clamped to the track duration.
func (t *Transport) CurrentTime() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentTimeLocked()
}

func (t *Transport) currentTimeLocked() float64 {
	var pos float64
	if t.state == StatePlaying {
		pos = t.clock.Now() - t.startTime
	} else {
		pos = t.pauseTime
	}
	return clamp(pos, 0, t.duration)
}

// Duration returns the loaded track length in seconds, 0 when idle.
func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// State returns the current lifecycle state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Ended reports whether a playing track has run past its duration.
func (t *Transport) Ended() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePlaying || t.duration <= 0 {
		return false
	}
	return t.clock.Now()-t.startTime >= t.duration
}

// SetVolume sets the output volume, clamped to [0, 1]. Volume is applied at
// the gain stage ahead of the signal graph.
func (t *Transport) SetVolume(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = clamp(v, 0, 1)
}

// Volume returns the current volume.
func (t *Transport) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// ApplySettings forwards the settings to the owned signal graph and keeps a
// copy for the next graph rebuild.
func (t *Transport) ApplySettings(s *model.AudioSettings) error {
	t.mu.Lock()
	graph := t.graph
	t.settings = s.Clone()
	t.mu.Unlock()
	return graph.ApplySettings(s)
}

// Graph returns the active signal graph. The graph is replaced on every
// successful Load.
func (t *Transport) Graph() *SignalGraph {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.graph
}

// Render produces up to len(dst[0]) frames of processed audio at the current
// playhead into dst and feeds the attached analyzer. It returns the number
// of frames produced; zero unless Playing.
func (t *Transport) Render(dst [][]float64) int {
	t.mu.Lock()
	if t.state != StatePlaying || t.buffer == nil || len(dst) == 0 {
		t.mu.Unlock()
		return 0
	}
	buf := t.buffer
	graph := t.graph
	analyzer := t.analyzer
	volume := t.volume
	pos := int(t.currentTimeLocked() * float64(buf.SampleRate))
	t.mu.Unlock()

	frames := len(dst[0])
	avail := buf.Frames() - pos
	if avail < 0 {
		avail = 0
	}
	if frames > avail {
		frames = avail
	}

	for ch := range dst {
		src := buf.Samples[0]
		if ch < buf.Channels() {
			src = buf.Samples[ch]
		}
		for i := 0; i < frames; i++ {
			dst[ch][i] = src[pos+i] * volume
		}
		for i := frames; i < len(dst[ch]); i++ {
			dst[ch][i] = 0
		}
	}

	if err := graph.ProcessBlock(dst); err != nil {
		return frames
	}

	if analyzer != nil && frames > 0 {
		mono := make([]float64, frames)
		for i := 0; i < frames; i++ {
			sum := 0.0
			for ch := range dst {
				sum += dst[ch][i]
			}
			mono[i] = sum / float64(len(dst))
		}
		analyzer.Feed(mono)
	}
	return frames
}

// Destroy stops playback, disconnects the signal graph, and detaches any
// analyzer. Safe to call multiple times, including mid-load; an in-flight
// fetch resolves into a discarded buffer.
func (t *Transport) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	t.state = StateIdle
	t.stopLocked()
	graph := t.graph
	analyzer := t.analyzer
	t.analyzer = nil
	t.mu.Unlock()

	graph.Disconnect()
	if analyzer != nil {
		analyzer.Disconnect()
	}
}

func (t *Transport) attachAnalyzer(a *FrequencyAnalyzer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrDestroyed
	}
	t.analyzer = a
	return nil
}

func (t *Transport) detachAnalyzer(a *FrequencyAnalyzer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.analyzer == a {
		t.analyzer = nil
	}
}
