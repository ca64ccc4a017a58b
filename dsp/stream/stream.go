package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// blockFrames bounds the scratch buffers used per evaluation block.
const blockFrames = 512

// Sampler is the model contract consumed by the stream.
type Sampler interface {
	SampleAtTime(t float64) float64
}

// Option configures a Stream.
type Option func(*Stream)

// WithEnvelope replaces the default triangular fade.
func WithEnvelope(env Envelope) Option {
	return func(s *Stream) {
		if env != nil {
			s.envelope = env
		}
	}
}

// Stream is a finite, pull-driven producer of interleaved 16-bit
// little-endian PCM frames. Every channel of a frame carries the same sample.
//
// A Stream is not safe for concurrent use; callers serialize pulls.
type Stream struct {
	model     Sampler
	format    core.Format
	frequency float64
	envelope  Envelope

	step      float64
	total     int
	produced  int
	exhausted bool

	raw  []float64
	gain []float64
}

// New creates a stream that renders duration seconds of model at frequency Hz.
func New(model Sampler, frequency, duration float64, format core.Format, opts ...Option) (*Stream, error) {
	if model == nil {
		return nil, fmt.Errorf("stream: model must not be nil: %w", core.ErrConfig)
	}
	if math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return nil, fmt.Errorf("stream: frequency must be finite: %v: %w", frequency, core.ErrConfig)
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("stream: duration must be > 0: %v: %w", duration, core.ErrConfig)
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}

	frames := math.Round(float64(format.SampleRate) * duration)
	if frames < 1 {
		return nil, fmt.Errorf("stream: %v s at %d Hz yields no frames: %w", duration, format.SampleRate, core.ErrConfig)
	}
	if frames > math.MaxInt32 {
		return nil, fmt.Errorf("stream: %v s at %d Hz is too long: %w", duration, format.SampleRate, core.ErrConfig)
	}

	s := &Stream{
		model:     model,
		format:    format,
		frequency: frequency,
		envelope:  Triangle,
		step:      2 * math.Pi * frequency / float64(format.SampleRate),
		total:     int(frames),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Format returns the PCM frame layout.
func (s *Stream) Format() core.Format {
	return s.format
}

// Frequency returns the fundamental frequency in Hz.
func (s *Stream) Frequency() float64 {
	return s.frequency
}

// BlockAlign returns the size of one frame in bytes.
func (s *Stream) BlockAlign() int {
	return s.format.BlockAlign()
}

// FramesProduced returns the number of frames emitted so far.
func (s *Stream) FramesProduced() int {
	return s.produced
}

// TotalFrames returns the number of frames the stream emits in total.
func (s *Stream) TotalFrames() int {
	return s.total
}

// Remaining returns the number of frames not yet emitted.
func (s *Stream) Remaining() int {
	return s.total - s.produced
}

// Exhausted reports whether the end-of-stream marker has been returned.
func (s *Stream) Exhausted() bool {
	return s.exhausted
}

// Pull returns up to n bytes of whole frames. Once every frame has been
// produced, Pull returns an empty buffer and done == true, and keeps doing so
// on every later call. A request smaller than one frame yields an empty
// buffer with done == false.
func (s *Stream) Pull(n int) (buf []byte, done bool) {
	if s.Remaining() == 0 {
		s.exhausted = true
		return []byte{}, true
	}
	frames := s.framesFor(n)
	buf = make([]byte, frames*s.BlockAlign())
	s.render(buf, frames)
	return buf, false
}

// Read implements io.Reader over whole frames. It returns io.EOF once the
// stream is exhausted and io.ErrShortBuffer if p cannot hold one frame.
func (s *Stream) Read(p []byte) (int, error) {
	if s.Remaining() == 0 {
		s.exhausted = true
		return 0, io.EOF
	}
	frames := s.framesFor(len(p))
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	s.render(p, frames)
	return frames * s.BlockAlign(), nil
}

func (s *Stream) framesFor(n int) int {
	if n <= 0 {
		return 0
	}
	return min(n/s.BlockAlign(), s.Remaining())
}

// render writes frames starting at the cursor into dst and advances it.
func (s *Stream) render(dst []byte, frames int) {
	sampleSize := s.format.SampleSize()
	blockAlign := s.BlockAlign()
	peak := s.format.MaxAmplitude

	for done := 0; done < frames; {
		n := min(blockFrames, frames-done)
		s.raw = core.EnsureLen(s.raw, n)
		s.gain = core.EnsureLen(s.gain, n)

		for i := 0; i < n; i++ {
			k := s.produced + done + i
			s.raw[i] = s.model.SampleAtTime(float64(k) * s.step)
			s.gain[i] = s.envelope(k, s.total) * peak
		}
		vecmath.MulBlockInPlace(s.raw, s.gain)

		for i := 0; i < n; i++ {
			sample := uint16(core.QuantizeInt16(s.raw[i]))
			off := (done + i) * blockAlign
			for c := 0; c < s.format.Channels; c++ {
				binary.LittleEndian.PutUint16(dst[off+c*sampleSize:], sample)
			}
		}
		done += n
	}
	s.produced += frames
}
