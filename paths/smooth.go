package paths

import "fmt"

func checkWindow(window int) error {
	if window < 1 {
		return fmt.Errorf("%w: window %d must be at least 1", ErrInvalidParameter, window)
	}
	return nil
}

// Smooth computes the moving average of v over window consecutive
// points. Point i of the result is the mean of v[i] to v[i+window-1],
// so the result has len(v)-window+1 points, or none at all if v is
// shorter than the window. A window of 1 returns a copy of v.
func Smooth(v []Vec2, window int) ([]Vec2, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	n := len(v) - window + 1
	if n <= 0 {
		return []Vec2{}, nil
	}
	r := make([]Vec2, n)
	w := float64(window)
	for i := range r {
		var sum Vec2
		for _, x := range v[i : i+window] {
			sum[0] += x[0]
			sum[1] += x[1]
		}
		r[i] = Vec2{sum[0] / w, sum[1] / w}
	}
	return r, nil
}

// Smoothed returns a copy of the paths with each path smoothed.
func (ps *Paths) Smoothed(window int) (*Paths, error) {
	np := &Paths{Bounds: ps.Bounds, P: make([]Path, len(ps.P))}
	for i, p := range ps.P {
		v, err := Smooth(p.V, window)
		if err != nil {
			return nil, err
		}
		np.P[i] = Path{V: v}
	}
	return np, nil
}
