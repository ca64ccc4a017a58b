package stream

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/algo-wavyd/dsp/core"
	"github.com/cwbudde/algo-wavyd/dsp/harmonic"
	"github.com/cwbudde/algo-wavyd/internal/testutil"
)

func mustModel(t *testing.T, spec string) *harmonic.Model {
	t.Helper()
	m, err := harmonic.Parse(spec)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", spec, err)
	}
	return m
}

func mustFormat(t *testing.T, opts ...core.FormatOption) core.Format {
	t.Helper()
	f, err := core.NewFormat(opts...)
	if err != nil {
		t.Fatalf("NewFormat() error = %v", err)
	}
	return f
}

func mustStream(t *testing.T, m Sampler, freq, dur float64, f core.Format, opts ...Option) *Stream {
	t.Helper()
	s, err := New(m, freq, dur, f, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// drain pulls chunk bytes at a time until the terminal marker.
func drain(t *testing.T, s *Stream, chunk int) []byte {
	t.Helper()
	var out bytes.Buffer
	for i := 0; ; i++ {
		if i > s.TotalFrames()+2 {
			t.Fatalf("stream did not terminate after %d pulls", i)
		}
		buf, done := s.Pull(chunk)
		if done {
			if len(buf) != 0 {
				t.Fatalf("terminal buffer has %d bytes", len(buf))
			}
			return out.Bytes()
		}
		if len(buf)%s.BlockAlign() != 0 {
			t.Fatalf("pull returned %d bytes, not frame aligned", len(buf))
		}
		if len(buf) > chunk {
			t.Fatalf("pull returned %d bytes for a %d byte request", len(buf), chunk)
		}
		out.Write(buf)
	}
}

func TestNewValidation(t *testing.T) {
	m := mustModel(t, "1:0")
	def := core.DefaultFormat()

	tests := []struct {
		name   string
		model  Sampler
		freq   float64
		dur    float64
		format core.Format
	}{
		{name: "nil model", model: nil, freq: 441, dur: 1, format: def},
		{name: "zero duration", model: m, freq: 441, dur: 0, format: def},
		{name: "negative duration", model: m, freq: 441, dur: -1, format: def},
		{name: "nan duration", model: m, freq: 441, dur: math.NaN(), format: def},
		{name: "nan frequency", model: m, freq: math.NaN(), dur: 1, format: def},
		{name: "zero sample rate", model: m, freq: 441, dur: 1, format: core.Format{SampleRate: 0, BitDepth: 16, Channels: 2, MaxAmplitude: 1}},
		{name: "unsupported bit depth", model: m, freq: 441, dur: 1, format: core.Format{SampleRate: 44100, BitDepth: 8, Channels: 2, MaxAmplitude: 1}},
		{name: "unsupported channels", model: m, freq: 441, dur: 1, format: core.Format{SampleRate: 44100, BitDepth: 16, Channels: 3, MaxAmplitude: 1}},
		{name: "no frames", model: m, freq: 441, dur: 1e-9, format: def},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.model, tt.freq, tt.dur, tt.format)
			if !errors.Is(err, core.ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestTotalFrames(t *testing.T) {
	s := mustStream(t, mustModel(t, "1:0"), 441, 2, core.DefaultFormat())
	if s.TotalFrames() != 88200 {
		t.Fatalf("TotalFrames() = %d, want 88200", s.TotalFrames())
	}
	if s.FramesProduced() != 0 || s.Exhausted() {
		t.Fatal("new stream must start producing at frame 0")
	}
}

func TestChunkingInvariance(t *testing.T) {
	m := mustModel(t, "1:0,0.5:PI,0.25:0.3")
	f := mustFormat(t, core.WithSampleRate(8000))

	ref := drain(t, mustStream(t, m, 441, 0.25, f), 1<<20)
	if len(ref) != 2000*f.BlockAlign() {
		t.Fatalf("reference has %d bytes, want %d", len(ref), 2000*f.BlockAlign())
	}

	for _, chunk := range []int{4, 5, 7, 64, 1000, 4096, 8003} {
		s := mustStream(t, m, 441, 0.25, f)
		got := drain(t, s, chunk)
		if !bytes.Equal(got, ref) {
			t.Fatalf("chunk %d: output differs from single pull", chunk)
		}
		if s.FramesProduced() != s.TotalFrames() {
			t.Fatalf("chunk %d: produced %d of %d frames", chunk, s.FramesProduced(), s.TotalFrames())
		}
	}
}

func TestExhaustionIsIdempotent(t *testing.T) {
	s := mustStream(t, mustModel(t, "1:0"), 100, 0.01, mustFormat(t, core.WithSampleRate(1000)))

	buf, done := s.Pull(1 << 10)
	if done || len(buf) != 10*s.BlockAlign() {
		t.Fatalf("first pull: %d bytes, done=%v", len(buf), done)
	}
	if s.Exhausted() {
		t.Fatal("stream must not be exhausted before the terminal pull")
	}

	for i := 0; i < 3; i++ {
		buf, done = s.Pull(1 << 10)
		if !done || len(buf) != 0 {
			t.Fatalf("pull %d after end: %d bytes, done=%v", i, len(buf), done)
		}
		if !s.Exhausted() {
			t.Fatal("stream must be exhausted after the terminal pull")
		}
	}
	if s.FramesProduced() != s.TotalFrames() {
		t.Fatalf("FramesProduced() = %d, want %d", s.FramesProduced(), s.TotalFrames())
	}
}

func TestPullSmallerThanFrame(t *testing.T) {
	s := mustStream(t, mustModel(t, "1:0"), 100, 0.01, mustFormat(t, core.WithSampleRate(1000)))
	for _, n := range []int{-1, 0, 1, 3} {
		buf, done := s.Pull(n)
		if done || len(buf) != 0 {
			t.Fatalf("Pull(%d) = %d bytes, done=%v", n, len(buf), done)
		}
	}
	if s.FramesProduced() != 0 {
		t.Fatalf("FramesProduced() = %d, want 0", s.FramesProduced())
	}
}

func TestQuarterCycleSamples(t *testing.T) {
	// Four samples per period put the unit sine exactly on 0, 1, 0, -1.
	f := mustFormat(t, core.WithSampleRate(4), core.WithChannels(1), core.WithMaxAmplitude(1000))
	s := mustStream(t, mustModel(t, "1:0"), 1, 2, f, WithEnvelope(Constant(1)))

	got := testutil.Mono(testutil.DecodeInt16LE(t, drain(t, s, 1024), 1))
	want := []int16{0, 1000, 0, -1000, 0, 1000, 0, -1000}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelsCarrySameSample(t *testing.T) {
	s := mustStream(t, mustModel(t, "1:0,0.3:1"), 441, 0.05, mustFormat(t, core.WithChannels(2)))
	frames := testutil.DecodeInt16LE(t, drain(t, s, 333), 2)
	for i, fr := range frames {
		if fr[0] != fr[1] {
			t.Fatalf("frame %d: channels differ %v", i, fr)
		}
	}
}

func TestEnvelopeShape(t *testing.T) {
	// A constant model isolates the envelope.
	f := mustFormat(t, core.WithSampleRate(1000), core.WithChannels(1))
	s := mustStream(t, constModel(1), 0, 1, f)

	got := testutil.Mono(testutil.DecodeInt16LE(t, drain(t, s, 4096), 1))
	if len(got) != 1000 {
		t.Fatalf("len = %d, want 1000", len(got))
	}
	if got[0] != 0 {
		t.Fatalf("first frame = %d, want 0", got[0])
	}
	if got[500] != core.DefaultMaxAmplitude {
		t.Fatalf("midpoint frame = %d, want %d", got[500], core.DefaultMaxAmplitude)
	}
	if got[999] > 100 {
		t.Fatalf("last frame = %d, want close to 0", got[999])
	}
	for i := 1; i <= 500; i++ {
		if got[i] < got[i-1] {
			t.Fatalf("fade-in not monotonic at %d", i)
		}
	}
	for i := 501; i < 1000; i++ {
		if got[i] > got[i-1] {
			t.Fatalf("fade-out not monotonic at %d", i)
		}
	}
}

func TestOverdriveSaturates(t *testing.T) {
	m, err := harmonic.New([]harmonic.Partial{{Weight: 3}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f := mustFormat(t, core.WithSampleRate(4), core.WithChannels(1))
	s := mustStream(t, m, 1, 1, f, WithEnvelope(Constant(1)))

	got := testutil.Mono(testutil.DecodeInt16LE(t, drain(t, s, 64), 1))
	want := []int16{0, math.MaxInt16, 0, math.MinInt16}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestReadUntilEOF(t *testing.T) {
	m := mustModel(t, "1:0,0.5:0")
	f := mustFormat(t, core.WithSampleRate(8000))

	want := drain(t, mustStream(t, m, 441, 0.1, f), 1<<20)

	s := mustStream(t, m, 441, 0.1, f)
	var got bytes.Buffer
	p := make([]byte, 256)
	for {
		n, err := s.Read(p)
		got.Write(p[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Fatal("Read output differs from Pull output")
	}
	if n, err := s.Read(p); n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("Read after EOF = %d, %v", n, err)
	}
}

func TestReadShortBuffer(t *testing.T) {
	s := mustStream(t, mustModel(t, "1:0"), 441, 0.1, core.DefaultFormat())
	if _, err := s.Read(make([]byte, 3)); !errors.Is(err, io.ErrShortBuffer) {
		t.Fatalf("err = %v, want io.ErrShortBuffer", err)
	}
}

type constModel float64

func (c constModel) SampleAtTime(float64) float64 { return float64(c) }
