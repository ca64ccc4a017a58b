package testutil

import (
	"encoding/binary"
	"testing"
)

// DecodeInt16LE splits interleaved little-endian 16-bit PCM into frames of
// channels samples each.
func DecodeInt16LE(t *testing.T, buf []byte, channels int) [][]int16 {
	t.Helper()
	frameSize := 2 * channels
	if len(buf)%frameSize != 0 {
		t.Fatalf("buffer of %d bytes is not aligned to %d-byte frames", len(buf), frameSize)
	}
	frames := make([][]int16, len(buf)/frameSize)
	for i := range frames {
		frame := make([]int16, channels)
		for c := range frame {
			off := i*frameSize + 2*c
			frame[c] = int16(binary.LittleEndian.Uint16(buf[off:]))
		}
		frames[i] = frame
	}
	return frames
}

// Mono returns the first channel of every frame.
func Mono(frames [][]int16) []int16 {
	out := make([]int16, len(frames))
	for i, f := range frames {
		out[i] = f[0]
	}
	return out
}
