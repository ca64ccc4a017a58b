package sink

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// pollInterval is how often playback completion is checked.
const pollInterval = 10 * time.Millisecond

type player interface {
	Play()
	IsPlaying() bool
	Close() error
}

// Play sends r, a stream of interleaved 16-bit little-endian frames in
// format, to the default audio device and blocks until it has drained or ctx
// is done.
func Play(ctx context.Context, r io.Reader, format core.Format) error {
	if err := format.Validate(); err != nil {
		return fmt.Errorf("sink: %w", err)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("sink: audio device: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	p := otoCtx.NewPlayer(r)
	if err := playUntilDone(ctx, p, pollInterval); err != nil {
		return err
	}
	if err := p.Err(); err != nil {
		return fmt.Errorf("sink: playback: %w", err)
	}
	return nil
}

func playUntilDone(ctx context.Context, p player, poll time.Duration) (err error) {
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sink: close player: %w", cerr)
		}
	}()

	p.Play()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
