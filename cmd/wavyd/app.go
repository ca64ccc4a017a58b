package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-wavyd/dsp/harmonic"
	"github.com/cwbudde/algo-wavyd/dsp/stream"
	"github.com/cwbudde/algo-wavyd/dsp/table"
	"github.com/cwbudde/algo-wavyd/internal/config"
	"github.com/cwbudde/algo-wavyd/internal/sink"
	"github.com/cwbudde/algo-wavyd/measure/harmonics"
	"github.com/cwbudde/algo-wavyd/plot"
	"github.com/cwbudde/algo-wavyd/render"
)

// analysisSize is the cycle length analyzed when the table cannot be used.
const analysisSize = 4096

type app struct {
	cfg    config.Config
	stdout io.Writer
	log    *log.Logger
	now    func() time.Time
	play   func(ctx context.Context, r io.Reader, s *stream.Stream) error
}

func newApp(cfg config.Config, stdout, stderr io.Writer) *app {
	return &app{
		cfg:    cfg,
		stdout: stdout,
		log:    log.New(stderr, "wavyd: ", 0),
		now:    time.Now,
		play: func(ctx context.Context, r io.Reader, s *stream.Stream) error {
			return sink.Play(ctx, r, s.Format())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	cfg := &a.cfg
	if !cfg.Play && cfg.WavPath == "" && !cfg.Table.Dump && !cfg.Plot.ASCII && cfg.Plot.PNGPath == "" && cfg.Analyze == 0 {
		cfg.Play = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	model, err := harmonic.Parse(cfg.Spec)
	if err != nil {
		return err
	}

	// Validate every stream up front so no output is produced on bad input.
	var playStream, wavStream *stream.Stream
	if cfg.Play {
		if playStream, err = a.newStream(model); err != nil {
			return err
		}
	}
	if cfg.WavPath != "" {
		if wavStream, err = a.newStream(model); err != nil {
			return err
		}
	}

	var tpl *render.Template
	if cfg.Table.Dump {
		if tpl, err = render.Load(cfg.Template); err != nil {
			return err
		}
	}

	var values []float64
	if cfg.Table.Dump || cfg.Plot.ASCII || cfg.Analyze > 0 {
		values, err = table.QuantizeWithOptions(model, cfg.Table.Size, cfg.Table.Scale, cfg.Table.Round, a.tableOptions()...)
		if err != nil {
			return err
		}
	}

	// The PNG is encoded in memory so a bad canvas fails before any output.
	var pngData []byte
	if cfg.Plot.PNGPath != "" {
		var buf bytes.Buffer
		err = plot.PNG(&buf, model, plot.PNGOptions{
			Width:  cfg.Plot.Width,
			Height: cfg.Plot.Height,
			Margin: cfg.Plot.Margin,
		})
		if err != nil {
			return err
		}
		pngData = buf.Bytes()
	}

	if tpl != nil {
		if err := a.dump(tpl, model, values); err != nil {
			return err
		}
	}
	if cfg.Plot.ASCII {
		if err := a.ascii(values); err != nil {
			return err
		}
	}
	if cfg.Analyze > 0 {
		if err := a.analyze(model, values); err != nil {
			return err
		}
	}
	if pngData != nil {
		if err := os.WriteFile(cfg.Plot.PNGPath, pngData, 0o644); err != nil {
			return err
		}
		a.log.Printf("saved png %s", cfg.Plot.PNGPath)
	}
	if wavStream != nil {
		frames, err := sink.WriteWAV(cfg.WavPath, wavStream)
		if err != nil {
			return err
		}
		a.log.Printf("wrote %d frames to %s", frames, cfg.WavPath)
	}
	if playStream != nil {
		a.log.Printf("generating a %ghz wave for %g seconds", playStream.Frequency(), cfg.Duration)
		if err := a.play(ctx, playStream, playStream); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) newStream(model *harmonic.Model) (*stream.Stream, error) {
	format, err := a.cfg.Format()
	if err != nil {
		return nil, err
	}
	return stream.New(model, a.cfg.Frequency, a.cfg.Duration, format)
}

func (a *app) tableOptions() []table.Option {
	if a.cfg.Table.Normalize {
		return []table.Option{table.WithNormalize()}
	}
	return nil
}

func (a *app) dump(tpl *render.Template, model *harmonic.Model, values []float64) (err error) {
	params := render.Params{
		Values: map[string]string{
			"spec":      model.String(),
			"partials":  describePartials(model),
			"table":     fmt.Sprint(a.cfg.Table.Size),
			"scale":     render.FormatValue(a.cfg.Table.Scale),
			"round":     fmt.Sprint(a.cfg.Table.Round),
			"normalize": fmt.Sprint(a.cfg.Table.Normalize),
			"frequency": render.FormatValue(a.cfg.Frequency),
			"template":  tpl.Name,
		},
		Date: a.now(),
	}

	w := a.stdout
	if a.cfg.Output != "" {
		var f *os.File
		if f, err = os.Create(a.cfg.Output); err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		bw := bufio.NewWriter(f)
		defer func() {
			if ferr := bw.Flush(); ferr != nil && err == nil {
				err = ferr
			}
		}()
		w = bw
	}
	return tpl.Render(w, values, params)
}

// describePartials lists harmonic number, weight and phase, one per line.
func describePartials(model *harmonic.Model) string {
	var sb strings.Builder
	sb.WriteString("Harmonic, weight, phase")
	for i, p := range model.Partials() {
		fmt.Fprintf(&sb, "\n%d %.4f %.5f", i, p.Weight, p.Phase)
	}
	return sb.String()
}

func (a *app) ascii(values []float64) error {
	opts := plot.DefaultASCIIOptions()
	opts.Cols = min(opts.Cols, len(values))
	opts.Peak = math.Abs(a.cfg.Table.Scale)
	if opts.Peak == 0 {
		opts.Peak = 1
	}
	return plot.ASCII(a.stdout, values, opts)
}

// analyze measures the table in model units when it holds enough points for
// the requested harmonics and the model cycle otherwise.
func (a *app) analyze(model *harmonic.Model, values []float64) error {
	gain, err := table.Gain(model, a.cfg.Table.Size, a.cfg.Table.Scale, a.tableOptions()...)
	if err != nil {
		return err
	}

	var cycle []float64
	if n := len(values); n&(n-1) == 0 && 2*a.cfg.Analyze < n && gain != 0 {
		cycle = make([]float64, n)
		vecmath.ScaleBlock(cycle, values, 1/gain)
	} else if cycle, err = model.Cycle(analysisSize); err != nil {
		return err
	}

	res, err := harmonics.Analyze(cycle, min(a.cfg.Analyze, len(cycle)/2-1))
	if err != nil {
		return err
	}

	partials := model.Partials()
	count := float64(len(partials))

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Harmonic\tWeight\tPhase [rad]\tExpected Amp\tMeasured Amp\tMeasured Phase [rad]\n")
	fmt.Fprintf(tw, "--------\t------\t-----------\t------------\t------------\t--------------------\n")
	for _, h := range res.Harmonics {
		var p harmonic.Partial
		if h.Number <= len(partials) {
			p = partials[h.Number-1]
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%.5f\t%.6f\t%.6f\t%.5f\n",
			h.Number,
			p.Weight,
			p.Phase,
			p.Weight/count,
			h.Amplitude,
			h.Phase,
		)
	}
	fmt.Fprintf(tw, "DC\t\t\t0.000000\t%.6f\t\n", res.DC)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "\nTHD: %.4f%% (%.2f dB)\n", res.THD*100, res.THD_dB)
	return err
}
