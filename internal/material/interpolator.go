// Package material holds the wavelength-indexed optical property tables and
// the piecewise-linear emission spectra that drive packet sampling.
package material

import (
	"fmt"
	"sort"
)

// linearInterp is a 1-D linear interpolator over a strictly ascending axis.
// Queries outside the axis range are an error; scene assembly guarantees
// every reachable wavelength stays inside every table it touches.
type linearInterp struct {
	xs   []float64
	ys   []float64
	grad []float64
}

func newLinearInterp(xs, ys []float64) (linearInterp, error) {
	if len(xs) != len(ys) {
		return linearInterp{}, fmt.Errorf("material: axis has %d nodes but data has %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return linearInterp{}, fmt.Errorf("material: interpolator needs at least two nodes, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return linearInterp{}, fmt.Errorf("material: axis not strictly ascending at node %d (%g after %g)", i, xs[i], xs[i-1])
		}
	}

	grad := make([]float64, len(xs)-1)
	for i := range grad {
		grad[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	return linearInterp{
		xs:   append([]float64(nil), xs...),
		ys:   append([]float64(nil), ys...),
		grad: grad,
	}, nil
}

func (l *linearInterp) min() float64 { return l.xs[0] }
func (l *linearInterp) max() float64 { return l.xs[len(l.xs)-1] }

// at interpolates y at x, failing when x lies outside the axis range.
func (l *linearInterp) at(x float64) (float64, error) {
	if x < l.min() || x > l.max() {
		return 0, fmt.Errorf("material: query %g outside table range [%g, %g]", x, l.min(), l.max())
	}

	// Index of the segment containing x.
	i := sort.SearchFloat64s(l.xs, x)
	if i > 0 && (i == len(l.xs) || l.xs[i] != x) {
		i--
	}
	if i == len(l.grad) {
		i--
	}

	return l.ys[i] + (x-l.xs[i])*l.grad[i], nil
}
