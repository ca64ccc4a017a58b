package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// pullBytes is the request size used when draining a source.
const pullBytes = 16 << 10

// Source is a pull-driven PCM producer such as *stream.Stream.
type Source interface {
	Pull(n int) ([]byte, bool)
	Format() core.Format
}

// WriteWAV drains src into a new WAV file at path.
func WriteWAV(path string, src Source) (frames int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("sink: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sink: %w", cerr)
		}
	}()
	return EncodeWAV(f, src)
}

// EncodeWAV drains src into w as 16-bit PCM WAV data and returns the number
// of frames written.
func EncodeWAV(w io.WriteSeeker, src Source) (int, error) {
	format := src.Format()
	enc := wav.NewEncoder(w, format.SampleRate, format.BitDepth, format.Channels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		SourceBitDepth: format.BitDepth,
	}

	frames := 0
	for {
		pcm, done := src.Pull(pullBytes)
		if done {
			break
		}
		n := len(pcm) / 2
		if cap(buf.Data) < n {
			buf.Data = make([]int, n)
		}
		buf.Data = buf.Data[:n]
		for i := range buf.Data {
			buf.Data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
		}
		if err := enc.Write(buf); err != nil {
			return frames, fmt.Errorf("sink: wav write: %w", err)
		}
		frames += n / format.Channels
	}

	if err := enc.Close(); err != nil {
		return frames, fmt.Errorf("sink: wav close: %w", err)
	}
	return frames, nil
}
