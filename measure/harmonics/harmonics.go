// Package harmonics measures the harmonic content of exactly one period of
// a waveform, such as a quantized wave table.
package harmonics

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// silence is the amplitude below which a harmonic counts as absent.
const silence = 1e-12

// Errors returned by Analyze.
var (
	ErrEmptyCycle  = errors.New("harmonics: cycle is empty")
	ErrCycleLength = errors.New("harmonics: cycle length must be a power of two")
	ErrMaxHarmonic = errors.New("harmonics: max harmonic must be >= 1 and below half the cycle length")
)

// Harmonic is one measured sinusoid Amplitude*sin(Number*t + Phase).
type Harmonic struct {
	Number    int
	Amplitude float64
	Phase     float64 // radians in (-π, π]
}

// Result holds the measured decomposition of one period.
type Result struct {
	DC        float64
	Harmonics []Harmonic
	THD       float64 // RMS of harmonics 2..max relative to the fundamental
	THD_dB    float64
}

// Analyze decomposes cycle, which must hold exactly one period sampled at
// len(cycle) evenly spaced points, into its DC offset and the first
// maxHarmonic harmonics.
func Analyze(cycle []float64, maxHarmonic int) (Result, error) {
	n := len(cycle)
	if n == 0 {
		return Result{}, ErrEmptyCycle
	}
	if n&(n-1) != 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrCycleLength, n)
	}
	if maxHarmonic < 1 || 2*maxHarmonic >= n {
		return Result{}, fmt.Errorf("%w: %d for %d samples", ErrMaxHarmonic, maxHarmonic, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Result{}, fmt.Errorf("harmonics: fft plan: %w", err)
	}

	in := make([]complex128, n)
	for i, v := range cycle {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("harmonics: fft: %w", err)
	}

	res := Result{
		DC:        real(out[0]) / float64(n),
		Harmonics: make([]Harmonic, maxHarmonic),
	}
	for h := 1; h <= maxHarmonic; h++ {
		bin := out[h]
		amp := 2 * cmplx.Abs(bin) / float64(n)
		phase := 0.0
		if !core.NearlyEqual(amp, 0, silence) {
			// A sine of phase φ lands in its bin at angle φ - π/2.
			phase = wrapPhase(cmplx.Phase(bin) + math.Pi/2)
		}
		res.Harmonics[h-1] = Harmonic{Number: h, Amplitude: amp, Phase: phase}
	}
	res.THD = distortion(res.Harmonics)
	res.THD_dB = ratioToDB(res.THD)
	return res, nil
}

// distortion is sqrt(sum of A_h^2 for h >= 2) / A_1. A cycle without a
// fundamental has infinite distortion unless it is silent.
func distortion(hs []Harmonic) float64 {
	var sum float64
	for _, h := range hs[1:] {
		sum += h.Amplitude * h.Amplitude
	}
	fundamental := hs[0].Amplitude
	if core.NearlyEqual(fundamental, 0, silence) {
		if sum == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Sqrt(sum) / fundamental
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// wrapPhase maps p into (-π, π].
func wrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p <= -math.Pi {
		p += 2 * math.Pi
	} else if p > math.Pi {
		p -= 2 * math.Pi
	}
	return p
}
