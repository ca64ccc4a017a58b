package harmonic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// Partial is one harmonic component. Phase is the raw phase in radians; it
// is divided by the 1-based harmonic number when the model is evaluated.
type Partial struct {
	Weight float64
	Phase  float64
}

// Model is an immutable sum of harmonic partials.
type Model struct {
	partials []Partial
}

// New creates a model from partials in harmonic order. The slice is copied.
func New(partials []Partial) (*Model, error) {
	if len(partials) == 0 {
		return nil, fmt.Errorf("harmonic: model needs at least one partial: %w", core.ErrConfig)
	}
	for i, p := range partials {
		if !isFinite(p.Weight) || !isFinite(p.Phase) {
			return nil, fmt.Errorf("harmonic: partial %d is not finite (%v:%v): %w", i+1, p.Weight, p.Phase, core.ErrConfig)
		}
	}
	m := &Model{partials: make([]Partial, len(partials))}
	copy(m.partials, partials)
	return m, nil
}

// Len returns the number of partials.
func (m *Model) Len() int {
	return len(m.partials)
}

// Partials returns a copy of the partials in harmonic order.
func (m *Model) Partials() []Partial {
	out := make([]Partial, len(m.partials))
	copy(out, m.partials)
	return out
}

// SampleAtTime evaluates the model at phase t (radians of the fundamental):
//
//	x(t) = 1/N * Σ w_i * sin((i+1)*t + p_i/(i+1))
//
// The mean is not clamped; depending on phase alignment the result may leave
// [-1, 1].
func (m *Model) SampleAtTime(t float64) float64 {
	var sum float64
	for i, p := range m.partials {
		h := float64(i + 1)
		sum += p.Weight * math.Sin(h*t+p.Phase/h)
	}
	return sum / float64(len(m.partials))
}

// Cycle samples one full period at n evenly spaced points t = i*2π/n.
func (m *Model) Cycle(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("harmonic: cycle length must be > 0: %d: %w", n, core.ErrConfig)
	}
	out := make([]float64, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		out[i] = m.SampleAtTime(float64(i) * step)
	}
	return out, nil
}

// String returns the model in the textual form accepted by Parse.
func (m *Model) String() string {
	var sb strings.Builder
	for i, p := range m.partials {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(p.Weight, 'g', -1, 64))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(p.Phase, 'g', -1, 64))
	}
	return sb.String()
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
