package core

import (
	"fmt"
	"math"
)

// Default PCM settings used when no option overrides them.
const (
	DefaultSampleRate   = 44100
	DefaultBitDepth     = 16
	DefaultChannels     = 2
	DefaultMaxAmplitude = 32760
)

// Format describes the integer PCM frame layout produced by a sample stream.
type Format struct {
	SampleRate   int
	BitDepth     int
	Channels     int
	MaxAmplitude float64
}

// FormatOption mutates a Format.
type FormatOption func(*Format)

// DefaultFormat returns 44.1 kHz, 16-bit, stereo with a peak of 32760.
func DefaultFormat() Format {
	return Format{
		SampleRate:   DefaultSampleRate,
		BitDepth:     DefaultBitDepth,
		Channels:     DefaultChannels,
		MaxAmplitude: DefaultMaxAmplitude,
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate int) FormatOption {
	return func(f *Format) {
		f.SampleRate = sampleRate
	}
}

// WithBitDepth sets the sample width in bits.
func WithBitDepth(bitDepth int) FormatOption {
	return func(f *Format) {
		f.BitDepth = bitDepth
	}
}

// WithChannels sets the number of interleaved channels.
func WithChannels(channels int) FormatOption {
	return func(f *Format) {
		f.Channels = channels
	}
}

// WithMaxAmplitude sets the integer amplitude reached at envelope peak.
func WithMaxAmplitude(peak float64) FormatOption {
	return func(f *Format) {
		f.MaxAmplitude = peak
	}
}

// NewFormat applies zero or more options to the default format and validates
// the result.
func NewFormat(opts ...FormatOption) (Format, error) {
	f := DefaultFormat()
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// Validate checks that the format is one the stream can produce: 16-bit
// signed little-endian with one or two channels.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("format: sample rate must be > 0: %d: %w", f.SampleRate, ErrConfig)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("format: unsupported bit depth %d: %w", f.BitDepth, ErrConfig)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("format: unsupported channel count %d: %w", f.Channels, ErrConfig)
	}
	if !(f.MaxAmplitude > 0) || f.MaxAmplitude > math.MaxInt16 {
		return fmt.Errorf("format: max amplitude must be in (0, %d]: %v: %w", math.MaxInt16, f.MaxAmplitude, ErrConfig)
	}
	return nil
}

// SampleSize returns the number of bytes per channel sample.
func (f Format) SampleSize() int {
	return f.BitDepth / 8
}

// BlockAlign returns the number of bytes per interleaved frame.
func (f Format) BlockAlign() int {
	return f.SampleSize() * f.Channels
}
