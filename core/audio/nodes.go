package audio

import "math"

// numChannels is the fixed channel count of the processing chain. Mono input
// is upmixed by the transport before it reaches the graph.
const numChannels = 2

// biquadNode is one peaking-EQ section. Coefficients follow the standard
// audio-EQ cookbook peaking filter; gain updates recompute coefficients
// without touching filter state, so the signal path length never changes.
type biquadNode struct {
	sampleRate float64
	freq       float64
	q          float64
	gainDB     float64

	b0, b1, b2 float64
	a1, a2     float64

	z1 [numChannels]float64
	z2 [numChannels]float64
}

func newBiquadNode(freq, q float64, sampleRate int) *biquadNode {
	n := &biquadNode{
		sampleRate: float64(sampleRate),
		freq:       freq,
		q:          q,
	}
	n.SetGain(0)
	return n
}

// SetGain updates the peaking gain in dB and recomputes coefficients.
func (n *biquadNode) SetGain(db float64) {
	n.gainDB = db

	a := math.Pow(10, db/40)
	w0 := 2 * math.Pi * n.freq / n.sampleRate
	alpha := math.Sin(w0) / (2 * n.q)
	cosw0 := math.Cos(w0)

	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a

	n.b0 = b0 / a0
	n.b1 = b1 / a0
	n.b2 = b2 / a0
	n.a1 = a1 / a0
	n.a2 = a2 / a0
}

// Gain returns the active peaking gain in dB.
func (n *biquadNode) Gain() float64 {
	return n.gainDB
}

// process runs one sample through the section (transposed direct form II).
func (n *biquadNode) process(x float64, ch int) float64 {
	y := n.b0*x + n.z1[ch]
	n.z1[ch] = n.b1*x - n.a1*y + n.z2[ch]
	n.z2[ch] = n.b2*x - n.a2*y
	return y
}

func (n *biquadNode) reset() {
	for ch := 0; ch < numChannels; ch++ {
		n.z1[ch] = 0
		n.z2[ch] = 0
	}
}

// delayNode is a circular-buffer delay line with feedback. The buffer is
// sized for the maximum delay at construction; changing the delay time only
// moves the read offset.
type delayNode struct {
	sampleRate   int
	buf          [numChannels][]float64
	pos          [numChannels]int
	delaySamples int
	feedback     float64
}

func newDelayNode(maxDelaySeconds float64, sampleRate int) *delayNode {
	size := int(maxDelaySeconds * float64(sampleRate))
	if size < 1 {
		size = 1
	}
	n := &delayNode{sampleRate: sampleRate}
	for ch := 0; ch < numChannels; ch++ {
		n.buf[ch] = make([]float64, size)
	}
	return n
}

// SetTime sets the delay length in seconds, clamped to the buffer capacity.
func (n *delayNode) SetTime(seconds float64) {
	samples := int(seconds * float64(n.sampleRate))
	if samples < 0 {
		samples = 0
	}
	if max := len(n.buf[0]) - 1; samples > max {
		samples = max
	}
	n.delaySamples = samples
}

// SetFeedback sets the feedback gain, clamped below unity to keep the loop
// stable.
func (n *delayNode) SetFeedback(fb float64) {
	if fb < 0 {
		fb = 0
	}
	if fb > 0.95 {
		fb = 0.95
	}
	n.feedback = fb
}

// Time returns the active delay in seconds.
func (n *delayNode) Time() float64 {
	return float64(n.delaySamples) / float64(n.sampleRate)
}

// Feedback returns the active feedback gain.
func (n *delayNode) Feedback() float64 {
	return n.feedback
}

// process returns the delayed (wet) sample for x.
func (n *delayNode) process(x float64, ch int) float64 {
	buf := n.buf[ch]
	size := len(buf)
	read := n.pos[ch] - n.delaySamples
	if read < 0 {
		read += size
	}
	out := buf[read]
	buf[n.pos[ch]] = x + out*n.feedback
	n.pos[ch]++
	if n.pos[ch] >= size {
		n.pos[ch] = 0
	}
	return out
}

func (n *delayNode) reset() {
	for ch := 0; ch < numChannels; ch++ {
		for i := range n.buf[ch] {
			n.buf[ch][i] = 0
		}
		n.pos[ch] = 0
	}
}

// convolverNode convolves the input against a generated impulse response,
// one response per channel. Direct-form convolution over an input ring.
type convolverNode struct {
	impulse [][]float64
	history [numChannels][]float64
	pos     [numChannels]int
}

func newConvolverNode() *convolverNode {
	return &convolverNode{}
}

// SetImpulse installs a new impulse response and clears history.
func (n *convolverNode) SetImpulse(impulse [][]float64) {
	n.impulse = impulse
	for ch := 0; ch < numChannels; ch++ {
		taps := 0
		if ch < len(impulse) {
			taps = len(impulse[ch])
		}
		n.history[ch] = make([]float64, taps)
		n.pos[ch] = 0
	}
}

// HasImpulse reports whether a response is installed.
func (n *convolverNode) HasImpulse() bool {
	return len(n.impulse) > 0 && len(n.impulse[0]) > 0
}

// process returns the convolved (wet) sample for x. Without an impulse the
// input passes through unchanged.
func (n *convolverNode) process(x float64, ch int) float64 {
	if ch >= len(n.impulse) || len(n.impulse[ch]) == 0 {
		return x
	}
	ir := n.impulse[ch]
	hist := n.history[ch]
	size := len(hist)

	hist[n.pos[ch]] = x
	sum := 0.0
	idx := n.pos[ch]
	for _, tap := range ir {
		sum += tap * hist[idx]
		idx--
		if idx < 0 {
			idx = size - 1
		}
	}
	n.pos[ch]++
	if n.pos[ch] >= size {
		n.pos[ch] = 0
	}
	return sum
}

func (n *convolverNode) reset() {
	for ch := 0; ch < numChannels; ch++ {
		for i := range n.history[ch] {
			n.history[ch][i] = 0
		}
		n.pos[ch] = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
