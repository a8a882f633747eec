package audio

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoFM/model"
)

func TestGenerateImpulse(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("lengths match reverb type", func(t *testing.T) {
		cases := []struct {
			kind   string
			frames int
		}{
			{model.ReverbSmall, 22050},
			{model.ReverbHall, 88200},
			{model.ReverbCathedral, 176400},
		}
		for _, tc := range cases {
			impulse, err := GenerateImpulse(tc.kind, 44100, rng)
			require.NoError(t, err, tc.kind)
			require.Len(t, impulse, 2)
			assert.Len(t, impulse[0], tc.frames)
			assert.Len(t, impulse[1], tc.frames)
		}
	})

	t.Run("envelope decays", func(t *testing.T) {
		impulse, err := GenerateImpulse(model.ReverbHall, 44100, rng)
		require.NoError(t, err)

		// Average magnitude of the first tenth should dominate the last tenth.
		n := len(impulse[0])
		head := avgAbs(impulse[0][:n/10])
		tail := avgAbs(impulse[0][n-n/10:])
		assert.Greater(t, head, tail*10)
	})

	t.Run("samples bounded", func(t *testing.T) {
		impulse, err := GenerateImpulse(model.ReverbSmall, 8000, rng)
		require.NoError(t, err)
		for _, ch := range impulse {
			for _, v := range ch {
				assert.LessOrEqual(t, math.Abs(v), 1.0)
			}
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := GenerateImpulse("closet", 44100, rng)
		assert.Error(t, err)
	})
}

func avgAbs(xs []float64) float64 {
	var sum float64
	for _, v := range xs {
		sum += math.Abs(v)
	}
	return sum / float64(len(xs))
}
