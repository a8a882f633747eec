package audio

import (
	"errors"
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Band edges in Hz for the coarse energy getters.
const (
	bassLowHz  = 20.0
	bassHighHz = 250.0
	midsHighHz = 2000.0
	trebHighHz = 20000.0
)

// Spectrum byte mapping range, dBFS. Matches the usual analyzer convention
// of clipping everything below the floor to 0 and above the ceiling to 255.
const (
	analyzerMinDB = -100.0
	analyzerMaxDB = -30.0
)

// ErrAnalyzerConnected is returned when Connect is called twice on the same
// analyzer instance.
var ErrAnalyzerConnected = errors.New("audio: analyzer already connected")

// FrequencyAnalyzer taps the rendered signal of one transport and exposes
// windowed frequency- and time-domain snapshots. Getters read the most
// recent buffered frame; they never block and never mutate the audio.
type FrequencyAnalyzer struct {
	mu         sync.Mutex
	fftSize    int
	sampleRate int

	ring   []float64
	pos    int
	filled int
	win    []float64

	transport *Transport
	connected bool
}

// NewFrequencyAnalyzer creates an analyzer with the given FFT size (rounded
// up to a power of two, minimum 32).
func NewFrequencyAnalyzer(fftSize, sampleRate int) *FrequencyAnalyzer {
	size := 32
	for size < fftSize {
		size *= 2
	}
	return &FrequencyAnalyzer{
		fftSize:    size,
		sampleRate: sampleRate,
		ring:       make([]float64, size),
		win:        window.Hann(size),
	}
}

// Connect attaches the analyzer to a transport's render tap. Exactly once
// per instance; connecting to a destroyed transport fails.
func (a *FrequencyAnalyzer) Connect(t *Transport) error {
	a.mu.Lock()
	if a.connected {
		a.mu.Unlock()
		return ErrAnalyzerConnected
	}
	a.mu.Unlock()

	if err := t.attachAnalyzer(a); err != nil {
		return err
	}

	a.mu.Lock()
	a.connected = true
	a.transport = t
	a.mu.Unlock()
	return nil
}

// Disconnect releases the tap. Idempotent.
func (a *FrequencyAnalyzer) Disconnect() {
	a.mu.Lock()
	t := a.transport
	a.transport = nil
	a.connected = false
	a.pos = 0
	a.filled = 0
	a.mu.Unlock()

	if t != nil {
		t.detachAnalyzer(a)
	}
}

// Feed pushes rendered mono samples into the analysis ring. Called by the
// owning transport on every render.
func (a *FrequencyAnalyzer) Feed(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.connected {
		return
	}
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos++
		if a.pos >= a.fftSize {
			a.pos = 0
		}
		if a.filled < a.fftSize {
			a.filled++
		}
	}
}

// FFTSize returns the analysis window length.
func (a *FrequencyAnalyzer) FFTSize() int {
	return a.fftSize
}

// snapshot copies the ring in chronological order. Caller holds no lock.
func (a *FrequencyAnalyzer) snapshot() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.connected {
		return nil
	}
	out := make([]float64, a.fftSize)
	idx := a.pos
	for i := 0; i < a.fftSize; i++ {
		out[i] = a.ring[idx]
		idx++
		if idx >= a.fftSize {
			idx = 0
		}
	}
	return out
}

// magnitudes returns the linear magnitude spectrum, fftSize/2 bins
// normalized by window gain. Nil before a successful Connect.
func (a *FrequencyAnalyzer) magnitudes() []float64 {
	samples := a.snapshot()
	if samples == nil {
		return nil
	}
	for i := range samples {
		samples[i] *= a.win[i]
	}
	spectrum := fft.FFTReal(samples)

	bins := a.fftSize / 2
	norm := floats.Sum(a.win)
	if norm <= 0 {
		norm = float64(a.fftSize)
	}
	mags := make([]float64, bins)
	for k := 0; k < bins; k++ {
		m := cmplx.Abs(spectrum[k]) / norm
		if k > 0 {
			m *= 2 // Fold negative frequencies
		}
		mags[k] = m
	}
	return mags
}

// FrequencyData returns the current magnitude spectrum as fftSize/2 bytes in
// [0, 255], dB-mapped between the analyzer floor and ceiling. Nil before a
// successful Connect.
func (a *FrequencyAnalyzer) FrequencyData() []byte {
	mags := a.magnitudes()
	if mags == nil {
		return nil
	}
	out := make([]byte, len(mags))
	for i, m := range mags {
		out[i] = magToByte(m)
	}
	return out
}

// TimeDomainData returns the current waveform as bytes centered on 128,
// matching the frequency snapshot length. Nil before a successful Connect.
func (a *FrequencyAnalyzer) TimeDomainData() []byte {
	samples := a.snapshot()
	if samples == nil {
		return nil
	}
	out := make([]byte, len(samples))
	for i, s := range samples {
		v := 128 + clamp(s, -1, 1)*127
		out[i] = byte(v)
	}
	return out
}

// Bass returns the normalized [0, 1] average energy between 20 and 250 Hz.
func (a *FrequencyAnalyzer) Bass() float64 {
	return a.bandEnergy(bassLowHz, bassHighHz)
}

// Mids returns the normalized [0, 1] average energy between 250 and 2000 Hz.
func (a *FrequencyAnalyzer) Mids() float64 {
	return a.bandEnergy(bassHighHz, midsHighHz)
}

// Treble returns the normalized [0, 1] average energy between 2 and 20 kHz.
func (a *FrequencyAnalyzer) Treble() float64 {
	return a.bandEnergy(midsHighHz, trebHighHz)
}

func (a *FrequencyAnalyzer) bandEnergy(lowHz, highHz float64) float64 {
	mags := a.magnitudes()
	if mags == nil {
		return 0
	}
	binHz := float64(a.sampleRate) / float64(a.fftSize)
	lo := int(lowHz / binHz)
	hi := int(highHz / binHz)
	if lo < 0 {
		lo = 0
	}
	if hi > len(mags) {
		hi = len(mags)
	}
	if hi <= lo {
		return 0
	}
	sum := 0.0
	for _, m := range mags[lo:hi] {
		sum += float64(magToByte(m))
	}
	return sum / float64(hi-lo) / 255.0
}

// FrequencyBands partitions the spectrum into n contiguous equal-width index
// ranges and returns each range's normalized [0, 1] average. Nil before a
// successful Connect or when n < 1.
func (a *FrequencyAnalyzer) FrequencyBands(n int) []float64 {
	if n < 1 {
		return nil
	}
	mags := a.magnitudes()
	if mags == nil {
		return nil
	}
	bands := make([]float64, n)
	width := len(mags) / n
	if width < 1 {
		width = 1
	}
	for b := 0; b < n; b++ {
		lo := b * width
		if lo >= len(mags) {
			break
		}
		hi := lo + width
		if hi > len(mags) {
			hi = len(mags)
		}
		sum := 0.0
		for _, m := range mags[lo:hi] {
			sum += float64(magToByte(m))
		}
		bands[b] = sum / float64(hi-lo) / 255.0
	}
	return bands
}

func magToByte(m float64) byte {
	if m <= 0 {
		return 0
	}
	db := 20 * math.Log10(m)
	scaled := (db - analyzerMinDB) / (analyzerMaxDB - analyzerMinDB)
	return byte(clamp(scaled, 0, 1) * 255)
}
