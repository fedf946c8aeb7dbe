package material

import (
	"fmt"
	"math"
)

// Spectrum is an immutable piecewise-linear PDF over wavelength with
// CDF-inverse sampling. Node weights must be strictly positive and the
// wavelength axis strictly ascending.
type Spectrum struct {
	xs  []float64
	ps  []float64
	cdf []float64
}

// NewSpectrum builds a spectrum from wavelength nodes and their relative
// intensities. The distribution is normalized internally.
func NewSpectrum(wavelength, intensity []float64) (*Spectrum, error) {
	if len(wavelength) != len(intensity) {
		return nil, fmt.Errorf("material: spectrum has %d wavelengths but %d intensities", len(wavelength), len(intensity))
	}
	if len(wavelength) < 2 {
		return nil, fmt.Errorf("material: spectrum needs at least two nodes, got %d", len(wavelength))
	}
	if wavelength[0] <= 0 {
		return nil, fmt.Errorf("material: spectrum wavelengths must be positive, got %g", wavelength[0])
	}
	for i := 1; i < len(wavelength); i++ {
		if wavelength[i] <= wavelength[i-1] {
			return nil, fmt.Errorf("material: spectrum axis not strictly ascending at node %d", i)
		}
	}
	for i, p := range intensity {
		if p <= 0 {
			return nil, fmt.Errorf("material: spectrum intensity %g at node %d is not positive", p, i)
		}
	}

	// Trapezoid-rule CDF over the nodes.
	cdf := make([]float64, len(wavelength))
	for i := 1; i < len(cdf); i++ {
		area := 0.5 * (intensity[i-1] + intensity[i]) * (wavelength[i] - wavelength[i-1])
		cdf[i] = cdf[i-1] + area
	}
	total := cdf[len(cdf)-1]
	for i := range cdf {
		cdf[i] /= total
	}

	return &Spectrum{
		xs:  append([]float64(nil), wavelength...),
		ps:  append([]float64(nil), intensity...),
		cdf: cdf,
	}, nil
}

// Min is the lowest wavelength of the spectrum support.
func (s *Spectrum) Min() float64 { return s.xs[0] }

// Max is the highest wavelength of the spectrum support.
func (s *Spectrum) Max() float64 { return s.xs[len(s.xs)-1] }

// Sample draws a wavelength from the spectrum by CDF inversion. uniform
// must yield values in [0,1). Within a segment the linear density is
// inverted exactly by solving the segment's quadratic.
func (s *Spectrum) Sample(uniform func() float64) float64 {
	xi := uniform()

	// Locate the segment holding xi.
	seg := len(s.cdf) - 2
	for i := 1; i < len(s.cdf); i++ {
		if xi <= s.cdf[i] {
			seg = i - 1
			break
		}
	}

	x0, x1 := s.xs[seg], s.xs[seg+1]
	p0, p1 := s.ps[seg], s.ps[seg+1]
	segArea := s.cdf[seg+1] - s.cdf[seg]
	frac := (xi - s.cdf[seg]) / segArea

	m := (p1 - p0) / (x1 - x0)
	if math.Abs(m) < 1e-300*math.Max(p0, p1) || m == 0 {
		// Flat segment: plain linear inversion.
		return x0 + frac*(x1-x0)
	}

	// Solve 0.5*m*t^2 + p0*t = frac * segment area (un-normalized), with
	// t = x - x0.
	target := frac * 0.5 * (p0 + p1) * (x1 - x0)
	disc := p0*p0 + 2.0*m*target
	if disc < 0 {
		disc = 0
	}
	t := (math.Sqrt(disc) - p0) / m
	if t < 0 {
		t = 0
	}
	if t > x1-x0 {
		t = x1 - x0
	}
	return x0 + t
}
