// Package table samples one period of a harmonic model into a fixed-size
// lookup table suitable for embedding in firmware.
package table

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-wavyd/dsp/core"
	"github.com/cwbudde/algo-wavyd/dsp/signal"
)

// Sampler is the model contract consumed by the quantizer.
type Sampler interface {
	SampleAtTime(t float64) float64
}

type config struct {
	normalize bool
}

// Option configures QuantizeWithOptions.
type Option func(*config)

// WithNormalize rescales the cycle so its largest magnitude is 1 before the
// scale factor is applied. A silent cycle stays silent.
func WithNormalize() Option {
	return func(c *config) {
		c.normalize = true
	}
}

// Quantize samples model at size evenly spaced phases t = i*2π/size, multiplies
// each value by scale and, if round is set, rounds to the nearest integer
// with ties away from zero. Index i corresponds to phase fraction i/size.
func Quantize(model Sampler, size int, scale float64, round bool) ([]float64, error) {
	return QuantizeWithOptions(model, size, scale, round)
}

// QuantizeWithOptions is Quantize with additional options.
func QuantizeWithOptions(model Sampler, size int, scale float64, round bool, opts ...Option) ([]float64, error) {
	cycle, cfg, err := sample(model, size, scale, opts)
	if err != nil {
		return nil, err
	}

	if cfg.normalize {
		cycle, err = signal.Normalize(cycle, 1)
		if err != nil {
			return nil, fmt.Errorf("table: %w", err)
		}
	}

	out := make([]float64, size)
	vecmath.ScaleBlock(out, cycle, scale)
	if round {
		for i, v := range out {
			out[i] = core.RoundHalfAway(v)
		}
	}
	return out, nil
}

// Gain returns the signed factor QuantizeWithOptions applies to the model
// output before rounding: scale, divided by the cycle peak when normalizing.
// Dividing a table by its gain recovers model units. A silent normalized
// cycle has gain 0.
func Gain(model Sampler, size int, scale float64, opts ...Option) (float64, error) {
	cycle, cfg, err := sample(model, size, scale, opts)
	if err != nil {
		return 0, err
	}
	if !cfg.normalize {
		return scale, nil
	}
	peak := signal.Peak(cycle)
	if peak == 0 {
		return 0, nil
	}
	return scale / peak, nil
}

func sample(model Sampler, size int, scale float64, opts []Option) ([]float64, config, error) {
	var cfg config
	if model == nil {
		return nil, cfg, fmt.Errorf("table: model must not be nil: %w", core.ErrConfig)
	}
	if size <= 0 {
		return nil, cfg, fmt.Errorf("table: size must be > 0: %d: %w", size, core.ErrConfig)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, cfg, fmt.Errorf("table: scale must be finite: %v: %w", scale, core.ErrConfig)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cycle := make([]float64, size)
	step := 2 * math.Pi / float64(size)
	for i := range cycle {
		cycle[i] = model.SampleAtTime(float64(i) * step)
	}
	return cycle, cfg, nil
}
