package audio

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoFM/model"
)

func TestApplyEqualizer(t *testing.T) {
	t.Run("enabled sets stage gains", func(t *testing.T) {
		g := NewSignalGraph(44100)
		gains := model.EQPresets["bassBoost"]
		require.NoError(t, g.ApplyEqualizer(gains, true))

		assert.Equal(t, 8.0, g.StageGain(0))
		assert.Equal(t, 3.0, g.StageGain(3))
		assert.Equal(t, 0.0, g.StageGain(9))
	})

	t.Run("disabled forces all stages to zero", func(t *testing.T) {
		g := NewSignalGraph(44100)
		gains := model.EQPresets["rock"]
		require.NoError(t, g.ApplyEqualizer(gains, false))

		for i := 0; i < model.NumEQBands; i++ {
			assert.Zero(t, g.StageGain(i), "stage %d", i)
		}
	})

	t.Run("re-enabling restores stored gains", func(t *testing.T) {
		g := NewSignalGraph(44100)
		gains := model.EQPresets["treble"]
		require.NoError(t, g.ApplyEqualizer(gains, true))
		require.NoError(t, g.ApplyEqualizer(gains, false))
		require.NoError(t, g.ApplyEqualizer(gains, true))

		assert.Equal(t, 8.0, g.StageGain(9))
	})

	t.Run("gains clamped to range", func(t *testing.T) {
		g := NewSignalGraph(44100)
		gains := []float64{99, -99, 0, 0, 0, 0, 0, 0, 0, 0}
		require.NoError(t, g.ApplyEqualizer(gains, true))

		assert.Equal(t, model.EQGainMax, g.StageGain(0))
		assert.Equal(t, model.EQGainMin, g.StageGain(1))
	})

	t.Run("wrong gain count rejected", func(t *testing.T) {
		g := NewSignalGraph(44100)
		assert.Error(t, g.ApplyEqualizer([]float64{1, 2, 3}, true))
	})
}

func TestApplyDelay(t *testing.T) {
	g := NewSignalGraph(44100)

	require.NoError(t, g.ApplyDelay(0.25, 0.4, true))
	dry, wet := g.DelayMix()
	assert.Equal(t, 0.5, dry)
	assert.Equal(t, 0.5, wet)

	seconds, feedback := g.DelayParams()
	assert.InDelta(t, 0.25, seconds, 1e-9)
	assert.Equal(t, 0.4, feedback)

	require.NoError(t, g.ApplyDelay(0.25, 0.4, false))
	dry, wet = g.DelayMix()
	assert.Equal(t, 1.0, dry)
	assert.Zero(t, wet)
}

func TestApplyReverb(t *testing.T) {
	t.Run("mix follows wet when enabled", func(t *testing.T) {
		g := NewSignalGraph(44100)
		require.NoError(t, g.ApplyReverb(model.ReverbHall, 0.3, true))

		dry, wet := g.ReverbMix()
		assert.InDelta(t, 0.7, dry, 1e-9)
		assert.InDelta(t, 0.3, wet, 1e-9)
		assert.Equal(t, model.ReverbHall, g.ReverbType())
	})

	t.Run("disabled is fully dry but keeps impulse", func(t *testing.T) {
		g := NewSignalGraph(44100)
		require.NoError(t, g.ApplyReverb(model.ReverbSmall, 0.5, false))

		dry, wet := g.ReverbMix()
		assert.Equal(t, 1.0, dry)
		assert.Zero(t, wet)
		assert.Equal(t, model.ReverbSmall, g.ReverbType())
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		g := NewSignalGraph(44100)
		assert.Error(t, g.ApplyReverb("bathroom", 0.3, true))
	})
}

func TestApplySettingsValidates(t *testing.T) {
	g := NewSignalGraph(44100)

	s := model.DefaultAudioSettings()
	require.NoError(t, g.ApplySettings(s))

	s.EQ.Gains = s.EQ.Gains[:5]
	assert.Error(t, g.ApplySettings(s))
}

func TestProcessBlockBypassedIsIdentity(t *testing.T) {
	g := NewSignalGraph(44100)

	block := make([][]float64, 2)
	want := make([][]float64, 2)
	rng := rand.New(rand.NewSource(7))
	for ch := range block {
		block[ch] = make([]float64, 256)
		want[ch] = make([]float64, 256)
		for i := range block[ch] {
			v := rng.Float64()*2 - 1
			block[ch][i] = v
			want[ch][i] = v
		}
	}

	require.NoError(t, g.ProcessBlock(block))
	for ch := range block {
		for i := range block[ch] {
			assert.InDelta(t, want[ch][i], block[ch][i], 1e-9)
		}
	}
}

func TestDisconnect(t *testing.T) {
	g := NewSignalGraph(44100)
	g.Disconnect()
	g.Disconnect() // idempotent

	assert.ErrorIs(t, g.ApplyDelay(0.1, 0.1, true), ErrGraphClosed)
	assert.ErrorIs(t, g.ProcessBlock(nil), ErrGraphClosed)
}

func TestConnectSourceOnce(t *testing.T) {
	g := NewSignalGraph(44100)
	src := sliceSource{data: [][]float64{make([]float64, 16), make([]float64, 16)}}

	require.NoError(t, g.ConnectSource(&src))
	assert.ErrorIs(t, g.ConnectSource(&src), ErrSourceConnected)
}

type sliceSource struct {
	data [][]float64
	pos  int
}

func (s *sliceSource) Read(dst [][]float64) int {
	n := 0
	for ch := range dst {
		copied := copy(dst[ch], s.data[ch][s.pos:])
		if copied > n {
			n = copied
		}
	}
	s.pos += n
	return n
}
