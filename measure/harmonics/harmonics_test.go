package harmonics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-wavyd/dsp/harmonic"
)

func TestAnalyzeRecoversModel(t *testing.T) {
	partials := []harmonic.Partial{
		{Weight: 1, Phase: 0},
		{Weight: 0.5, Phase: math.Pi},
		{Weight: 0.25, Phase: 0.9},
	}
	m, err := harmonic.New(partials)
	require.NoError(t, err)

	cycle, err := m.Cycle(1024)
	require.NoError(t, err)

	res, err := Analyze(cycle, 5)
	require.NoError(t, err)
	require.Len(t, res.Harmonics, 5)
	require.InDelta(t, 0, res.DC, 1e-12)

	n := float64(len(partials))
	for i, p := range partials {
		h := res.Harmonics[i]
		require.Equal(t, i+1, h.Number)
		require.InDelta(t, p.Weight/n, h.Amplitude, 1e-9, "harmonic %d amplitude", i+1)
		require.InDelta(t, p.Phase/float64(i+1), h.Phase, 1e-9, "harmonic %d phase", i+1)
	}
	for _, h := range res.Harmonics[3:] {
		require.InDelta(t, 0, h.Amplitude, 1e-9)
		require.Zero(t, h.Phase)
	}
}

func TestAnalyzeNegativeWeight(t *testing.T) {
	m, err := harmonic.New([]harmonic.Partial{{Weight: -1}})
	require.NoError(t, err)
	cycle, err := m.Cycle(64)
	require.NoError(t, err)

	res, err := Analyze(cycle, 1)
	require.NoError(t, err)
	require.InDelta(t, 1, res.Harmonics[0].Amplitude, 1e-12)
	require.InDelta(t, math.Pi, math.Abs(res.Harmonics[0].Phase), 1e-9)
}

func TestAnalyzeDC(t *testing.T) {
	cycle := make([]float64, 16)
	for i := range cycle {
		cycle[i] = 0.5
	}
	res, err := Analyze(cycle, 3)
	require.NoError(t, err)
	require.InDelta(t, 0.5, res.DC, 1e-12)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(nil, 1)
	require.ErrorIs(t, err, ErrEmptyCycle)

	_, err = Analyze(make([]float64, 12), 1)
	require.ErrorIs(t, err, ErrCycleLength)

	_, err = Analyze(make([]float64, 16), 0)
	require.ErrorIs(t, err, ErrMaxHarmonic)

	_, err = Analyze(make([]float64, 16), 8)
	require.ErrorIs(t, err, ErrMaxHarmonic)
}

func TestWrapPhase(t *testing.T) {
	require.InDelta(t, math.Pi, wrapPhase(-math.Pi), 1e-15)
	require.InDelta(t, -math.Pi/2, wrapPhase(3*math.Pi/2), 1e-12)
	require.InDelta(t, 0.25, wrapPhase(0.25+4*math.Pi), 1e-12)
}

func TestAnalyzeTHD(t *testing.T) {
	m, err := harmonic.Parse("1:0,0.5:0,0.25:0")
	require.NoError(t, err)
	cycle, err := m.Cycle(256)
	require.NoError(t, err)

	res, err := Analyze(cycle, 8)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(0.5*0.5+0.25*0.25), res.THD, 1e-9)
	require.InDelta(t, 20*math.Log10(res.THD), res.THD_dB, 1e-9)

	pure, err := harmonic.Parse("1:0")
	require.NoError(t, err)
	cycle, err = pure.Cycle(256)
	require.NoError(t, err)
	res, err = Analyze(cycle, 8)
	require.NoError(t, err)
	require.InDelta(t, 0, res.THD, 1e-9)
}

func TestDistortionWithoutFundamental(t *testing.T) {
	require.Zero(t, distortion([]Harmonic{{Number: 1}, {Number: 2}}))
	require.True(t, math.IsInf(distortion([]Harmonic{{Number: 1}, {Number: 2, Amplitude: 1}}), 1))
}
