package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
)

// Sampler is the model contract used by PNG.
type Sampler interface {
	SampleAtTime(t float64) float64
}

// PNGOptions configures the image plot.
type PNGOptions struct {
	Width  int
	Height int
	Margin int
}

// DefaultPNGOptions returns an 800x300 canvas with a 20 pixel margin.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 800, Height: 300, Margin: 20}
}

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axisColor  = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	waveColor  = color.RGBA{0x02, 0x02, 0x02, 0xff}
)

// Image draws one period of model across the plot area. A unit amplitude
// reaches the margins; larger excursions are cut at the image border.
func Image(model Sampler, opts PNGOptions) (*image.RGBA, error) {
	plotWidth := opts.Width - 2*opts.Margin
	plotHeight := opts.Height - 2*opts.Margin
	if opts.Margin < 0 || plotWidth <= 0 || plotHeight <= 0 {
		return nil, fmt.Errorf("plot: canvas %dx%d leaves no room inside margin %d", opts.Width, opts.Height, opts.Margin)
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	mid := opts.Height / 2
	line(img, opts.Margin, mid, opts.Width-opts.Margin, mid, axisColor)

	px, py := opts.Margin, mid
	for j := 0; j < plotWidth; j++ {
		sample := model.SampleAtTime(float64(j) * 2 * math.Pi / float64(plotWidth))
		y := mid - int(math.Round(sample*float64(plotHeight)/2))
		y = max(-1, min(opts.Height, y))
		x := j + opts.Margin
		line(img, px, py, x, y, waveColor)
		px, py = x, y
	}
	return img, nil
}

// PNG encodes Image(model, opts) to w.
func PNG(w io.Writer, model Sampler, opts PNGOptions) error {
	img, err := Image(model, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// line draws a Bresenham segment; points outside the image are clipped by Set.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
