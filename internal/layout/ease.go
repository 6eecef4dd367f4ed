package layout

import "time"

// Ease is a cubic ease-in-out over t in [0,1]; t is clamped.
func Ease(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	default:
		u := -2*t + 2
		return 1 - u*u*u/2
	}
}

// Interpolate returns the point a fraction t of the way from one point to another.
func Interpolate(from, to Point, t float64) Point {
	return Point{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}

// Progress is the eased completion of a block's move elapsed after the
// transition began, honouring its delay.
func (b Block) Progress(elapsed time.Duration) float64 {
	return Ease(float64(elapsed-b.Delay) / float64(Duration))
}

// Frame returns every block's position elapsed after a move from one
// arrangement to another began.
func Frame(blocks []Block, from, to Arrangement, elapsed time.Duration) []Point {
	out := make([]Point, len(blocks))
	for i, b := range blocks {
		out[i] = Interpolate(b.At(from), b.At(to), b.Progress(elapsed))
	}
	return out
}

// Settled reports whether every block has arrived elapsed after the move began.
func Settled(blocks []Block, elapsed time.Duration) bool {
	for _, b := range blocks {
		if b.Progress(elapsed) < 1 {
			return false
		}
	}
	return true
}
