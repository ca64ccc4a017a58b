package plot

import (
	"bytes"
	"image/png"
	"math"
	"testing"
)

type sine struct{ amp float64 }

func (s sine) SampleAtTime(t float64) float64 { return s.amp * math.Sin(t) }

func TestImageDrawsAxisAndWave(t *testing.T) {
	opts := PNGOptions{Width: 120, Height: 60, Margin: 10}
	img, err := Image(sine{amp: 1}, opts)
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 60 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != background {
		t.Fatalf("corner = %v, want background", got)
	}
	// Quarter period peaks at the top margin.
	if got := img.RGBAAt(10+25, 10); got != waveColor {
		t.Fatalf("peak pixel = %v, want wave color", got)
	}
	// Three quarters reaches the bottom margin.
	if got := img.RGBAAt(10+75, 50); got != waveColor {
		t.Fatalf("trough pixel = %v, want wave color", got)
	}
	if got := img.RGBAAt(opts.Width-opts.Margin, 30); got != axisColor {
		t.Fatalf("axis end = %v, want axis color", got)
	}
}

func TestImageClipsOverdrive(t *testing.T) {
	if _, err := Image(sine{amp: 1e12}, PNGOptions{Width: 50, Height: 40, Margin: 5}); err != nil {
		t.Fatalf("Image() error = %v", err)
	}
}

func TestPNGEncodes(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, sine{amp: 0.5}, DefaultPNGOptions()); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 300 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestImageRejectsTinyCanvas(t *testing.T) {
	if _, err := Image(sine{amp: 1}, PNGOptions{Width: 20, Height: 20, Margin: 10}); err == nil {
		t.Fatal("expected error for canvas without plot area")
	}
}
