package stream

// Envelope returns the gain in [0, 1] for frame k of a stream of total frames.
type Envelope func(k, total int) float64

// Triangle fades linearly from 0 to 1 over the first half of the stream and
// back to 0 over the second half. Frames 0 and total are silent.
func Triangle(k, total int) float64 {
	if total <= 0 || k <= 0 || k >= total {
		return 0
	}
	if 2*k <= total {
		return 2 * float64(k) / float64(total)
	}
	return 2 * float64(total-k) / float64(total)
}

// Constant returns an envelope holding a fixed gain for every frame.
func Constant(level float64) Envelope {
	return func(int, int) float64 {
		return level
	}
}
