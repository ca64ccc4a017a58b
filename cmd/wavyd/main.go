// Command wavyd synthesizes an additive harmonic wave and plays it, writes it
// to a WAV file, dumps it as a firmware lookup table or plots one cycle.
//
// Usage:
//
//	wavyd [flags] [spec [dump]]
//
// The positional spec lists partial weights and phases in harmonic order, e.g.
// "1:0,0.5:PI,0.25:0.5PI". Without an output flag the wave is played.
//
// Examples:
//
//	wavyd 1:0,0.5:0
//	wavyd -duration 5 -wav out.wav 1:0,0.3:PI
//	wavyd -preset theremin -normalize 1:0,0.5:0.5PI > wavetable.h
//	wavyd -dump -template list -table 256 -scale 127 1:0
//	wavyd -ascii -analyze 8 1:0,0.5:0,0.25:0
//	wavyd -png wave.png 1:0,0:0,0.33:0
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-wavyd/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if errors.Is(err, pflag.ErrHelp) || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("wavyd", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: wavyd [flags] [spec [dump]]\n\n")
		fmt.Fprintf(stderr, "Synthesizes a wave from weighted, phase-shifted harmonics.\n")
		fmt.Fprintf(stderr, "Without an output flag the wave is played on the default device.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  wavyd 1:0,0.5:0\n")
		fmt.Fprintf(stderr, "  wavyd --wav out.wav --duration 5 1:0,0.3:PI\n")
		fmt.Fprintf(stderr, "  wavyd --preset theremin 1:0,0.5:0.5PI > wavetable.h\n")
		fmt.Fprintf(stderr, "  wavyd --ascii --analyze 8 1:0,0.5:0,0.25:0\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Positional arguments: spec, then an optional dump switch.
	if rest := fs.Args(); len(rest) > 0 {
		if len(rest) > 2 {
			return fmt.Errorf("too many arguments: %q", rest)
		}
		if err := fs.Set("spec", rest[0]); err != nil {
			return err
		}
		if len(rest) == 2 && rest[1] != "" && rest[1] != "false" && rest[1] != "0" {
			if err := fs.Set("dump", "true"); err != nil {
				return err
			}
		}
	}

	v := config.New()
	if err := config.BindFlags(v, fs); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	app := newApp(cfg, stdout, stderr)
	return app.run(ctx)
}
