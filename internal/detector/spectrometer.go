package detector

import (
	"fmt"
	"sync"

	"github.com/fwordingham/arctorus/internal/geom"
)

// Spectrometer is a spectral detector: a mesh surface with a wavelength
// histogram of deposited packet weight.
type Spectrometer struct {
	Name string
	Mesh geom.Mesh

	minBound float64
	maxBound float64
	binWidth float64

	mu   sync.Mutex
	bins []float64
}

// NewSpectrometer builds a spectrometer over the given surface mesh,
// binning wavelengths in [minBound, maxBound] into numBins buckets.
func NewSpectrometer(name string, mesh geom.Mesh, minBound, maxBound float64, numBins int) (*Spectrometer, error) {
	if minBound >= maxBound {
		return nil, fmt.Errorf("detector: spectrometer %q range [%g, %g] invalid", name, minBound, maxBound)
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("detector: spectrometer %q needs a positive bin count, got %d", name, numBins)
	}
	return &Spectrometer{
		Name:     name,
		Mesh:     mesh,
		minBound: minBound,
		maxBound: maxBound,
		binWidth: (maxBound - minBound) / float64(numBins),
		bins:     make([]float64, numBins),
	}, nil
}

// Range returns the histogram's wavelength bounds.
func (s *Spectrometer) Range() (min, max float64) { return s.minBound, s.maxBound }

// AddHit deposits a packet's weight into the bin holding its wavelength.
// Wavelengths outside the histogram range are dropped.
func (s *Spectrometer) AddHit(wavelength, weight float64) {
	if wavelength < s.minBound || wavelength > s.maxBound {
		return
	}
	bin := int((wavelength - s.minBound) / s.binWidth)
	if bin >= len(s.bins) {
		bin = len(s.bins) - 1
	}

	s.mu.Lock()
	s.bins[bin] += weight
	s.mu.Unlock()
}

// Bins copies the histogram counts.
func (s *Spectrometer) Bins() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.bins...)
}

// BinCenter returns the central wavelength of bin i.
func (s *Spectrometer) BinCenter(i int) float64 {
	return s.minBound + (float64(i)+0.5)*s.binWidth
}

// TotalWeight sums the histogram.
func (s *Spectrometer) TotalWeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, b := range s.bins {
		total += b
	}
	return total
}
