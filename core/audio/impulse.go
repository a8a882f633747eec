package audio

import (
	"fmt"
	"math"
	"math/rand"

	"EchoFM/model"
)

// reverbSeconds maps reverb types to impulse lengths in seconds.
var reverbSeconds = map[string]float64{
	model.ReverbSmall:     0.5,
	model.ReverbHall:      2.0,
	model.ReverbCathedral: 4.0,
}

// GenerateImpulse builds a synthetic stereo impulse response for the given
// reverb type: white noise with a squared linear decay envelope,
//
//	amp(t) = rand(-1, 1) * (1 - t/n)^2
//
// generated independently per channel. This approximates a diffuse room
// response without shipping sampled IRs.
func GenerateImpulse(kind string, sampleRate int, rng *rand.Rand) ([][]float64, error) {
	seconds, ok := reverbSeconds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reverb type: %q", kind)
	}
	n := int(seconds * float64(sampleRate))
	if n < 1 {
		n = 1
	}

	impulse := make([][]float64, numChannels)
	for ch := range impulse {
		impulse[ch] = make([]float64, n)
		for i := 0; i < n; i++ {
			decay := 1 - float64(i)/float64(n)
			impulse[ch][i] = (rng.Float64()*2 - 1) * math.Pow(decay, 2)
		}
	}
	return impulse, nil
}
