package plot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

// ASCIIOptions configures the character plot.
type ASCIIOptions struct {
	Rows int     // odd number of text rows; the middle one is the zero axis
	Cols int     // number of plotted columns
	Peak float64 // value drawn on the top row
}

// DefaultASCIIOptions matches a 1024 entry table scaled to ±2048.
func DefaultASCIIOptions() ASCIIOptions {
	return ASCIIOptions{Rows: 33, Cols: 128, Peak: 2048}
}

// ErrNoValues is returned when there is nothing to plot.
var ErrNoValues = errors.New("plot: no values")

// ASCII draws values as rows of text: '-' marks the zero axis and '*' one
// decimated value per column. Values beyond Peak are pinned to the border.
func ASCII(w io.Writer, values []float64, opts ASCIIOptions) error {
	if len(values) == 0 {
		return ErrNoValues
	}
	if opts.Rows < 3 || opts.Rows%2 == 0 {
		return fmt.Errorf("plot: rows must be odd and >= 3: %d", opts.Rows)
	}
	if opts.Cols <= 0 {
		return fmt.Errorf("plot: cols must be > 0: %d", opts.Cols)
	}
	if !(opts.Peak > 0) {
		return fmt.Errorf("plot: peak must be > 0: %v", opts.Peak)
	}

	half := opts.Rows / 2
	canvas := make([][]byte, opts.Rows)
	for r := range canvas {
		fill := byte(' ')
		if r == half {
			fill = '-'
		}
		row := make([]byte, opts.Cols)
		for c := range row {
			row[c] = fill
		}
		canvas[r] = row
	}

	for c := 0; c < opts.Cols; c++ {
		v := values[c*len(values)/opts.Cols]
		offset := int(math.Round(v / opts.Peak * float64(half)))
		offset = max(-half, min(half, offset))
		canvas[half-offset][c] = '*'
	}

	bw := bufio.NewWriter(w)
	for _, row := range canvas {
		if _, err := bw.Write(row); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
