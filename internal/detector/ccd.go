// Package detector holds the imaging (CCD) and spectroscopic
// (Spectrometer) detectors. Both are mutated only through mutex-guarded
// add-hit operations; everything else is immutable after construction.
package detector

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/meshio"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// ccdQuad is the unit square the CCD surface is instanced from: two
// triangles in the z=0 plane, facing +z.
const ccdQuad = `v 1.000000 1.000000 0.000000
v -1.000000 1.000000 0.000000
v 1.000000 -1.000000 0.000000
v -1.000000 -1.000000 0.000000
vn 0.0000 0.0000 1.0000
f 2//1 3//1 1//1
f 2//1 4//1 3//1
`

// HitRecord is the auxiliary per-hit log entry: the world hit position,
// the depth at which the packet Raman-shifted, and the packet's final
// iteration count.
type HitRecord struct {
	Pos        vecmat.Vec3
	RamanDepth float64
	LoopCount  int
}

// CCD is an imaging detector: a transformed quad mesh with a pixel grid of
// additive tristimulus accumulators.
type CCD struct {
	Name string
	Mesh geom.Mesh

	width  int
	height int
	color  bool

	worldToLocal vecmat.Mat4

	mu      sync.Mutex
	pixels  [][3]float64
	records []HitRecord
}

// NewCCD builds a CCD of the given pixel dimensions placed by the world
// transform parameters. color selects tristimulus accumulation; a
// monochrome CCD adds the weight equally to all three channels.
func NewCCD(name string, width, height int, color bool, trans, facing vecmat.Vec3, spinRadians float64, scale vecmat.Vec3) (*CCD, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("detector: ccd %q pixel dimensions %dx%d invalid", name, width, height)
	}

	data, err := meshio.Parse(strings.NewReader(ccdQuad))
	if err != nil {
		return nil, fmt.Errorf("detector: ccd quad: %w", err)
	}

	world := vecmat.BuildWorldTransform(trans, facing, spinRadians, scale)
	mesh, err := geom.NewMesh(data, world)
	if err != nil {
		return nil, fmt.Errorf("detector: ccd %q: %w", name, err)
	}

	return &CCD{
		Name:         name,
		Mesh:         mesh,
		width:        width,
		height:       height,
		color:        color,
		worldToLocal: vecmat.Inverse(world),
		pixels:       make([][3]float64, width*height),
	}, nil
}

// Width is the pixel count across the CCD.
func (c *CCD) Width() int { return c.width }

// Height is the pixel count down the CCD.
func (c *CCD) Height() int { return c.height }

// pixelOf maps a world hit position onto the pixel grid via the stored
// inverse transform; the local quad spans [-1,1] on x and y.
func (c *CCD) pixelOf(pos vecmat.Vec3) (int, int, bool) {
	local := vecmat.ApplyPosition(c.worldToLocal, pos)
	u := (local[0] + 1.0) / 2.0
	v := (local[1] + 1.0) / 2.0
	if u < 0.0 || u >= 1.0 || v < 0.0 || v >= 1.0 {
		// Numerical slop can push a boundary hit just outside; clamp.
		if u < -1e-9 || u > 1.0+1e-9 || v < -1e-9 || v > 1.0+1e-9 {
			return 0, 0, false
		}
		u = clamp01(u)
		v = clamp01(v)
	}
	px := int(u * float64(c.width))
	py := int(v * float64(c.height))
	if px >= c.width {
		px = c.width - 1
	}
	if py >= c.height {
		py = c.height - 1
	}
	return px, py, true
}

// AddHit deposits a packet's weight at its hit position. The wavelength
// selects the tristimulus split when the CCD is in color mode.
func (c *CCD) AddHit(pos vecmat.Vec3, weight, wavelength float64) {
	px, py, ok := c.pixelOf(pos)
	if !ok {
		return
	}

	rgb := [3]float64{weight, weight, weight}
	if c.color {
		r, g, b := wavelengthRGB(wavelength)
		rgb = [3]float64{weight * r, weight * g, weight * b}
	}

	c.mu.Lock()
	p := &c.pixels[py*c.width+px]
	p[0] += rgb[0]
	p[1] += rgb[1]
	p[2] += rgb[2]
	c.mu.Unlock()
}

// AddCount appends an auxiliary hit record.
func (c *CCD) AddCount(pos vecmat.Vec3, ramanDepth float64, loopCount int) {
	c.mu.Lock()
	c.records = append(c.records, HitRecord{Pos: pos, RamanDepth: ramanDepth, LoopCount: loopCount})
	c.mu.Unlock()
}

// Pixels copies the pixel accumulators, row-major from the bottom-left of
// the local quad.
func (c *CCD) Pixels() [][3]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][3]float64(nil), c.pixels...)
}

// Records copies the auxiliary hit log.
func (c *CCD) Records() []HitRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]HitRecord(nil), c.records...)
}

// MaxChannel returns the largest single pixel channel value.
func (c *CCD) MaxChannel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	max := 0.0
	for _, p := range c.pixels {
		for _, v := range p {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// TotalWeight sums the deposited weight across all pixels and channels,
// divided by three so monochrome deposits count once.
func (c *CCD) TotalWeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, p := range c.pixels {
		total += (p[0] + p[1] + p[2]) / 3.0
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
