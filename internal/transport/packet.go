package transport

import (
	"math"

	"github.com/fwordingham/arctorus/internal/material"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// speedOfLight in vacuum, m/s, for time-of-flight accounting.
const speedOfLight = 299792458.0

// aetherIndex is the medium-stack marker for the surrounding aether.
const aetherIndex = -1

// packet is one weighted photon packet in flight. Mutable; lives for one
// worker-loop pass.
type packet struct {
	pos vecmat.Vec3
	dir vecmat.Vec3

	wavelength float64
	weight     float64
	time       float64

	// mediumStack records the entities the packet is currently inside,
	// bottom first; the last element is the current medium. The bottom is
	// always the aether.
	mediumStack []int

	// opt caches the current medium's material evaluated at the packet's
	// wavelength.
	opt material.OptProps

	ramanShifted bool
	ramanDepth   float64

	path []vecmat.Vec3
}

func newPacket(pos, dir vecmat.Vec3, wavelength float64, aether material.OptProps) *packet {
	return &packet{
		pos:         pos,
		dir:         dir,
		wavelength:  wavelength,
		weight:      1.0,
		mediumStack: []int{aetherIndex},
		opt:         aether,
	}
}

// currentMedium is the entity index of the stack top.
func (p *packet) currentMedium() int {
	return p.mediumStack[len(p.mediumStack)-1]
}

// previousMedium is the entity index just below the stack top; it is the
// medium the packet returns to when it exits the current one.
func (p *packet) previousMedium() (int, bool) {
	if len(p.mediumStack) < 2 {
		return 0, false
	}
	return p.mediumStack[len(p.mediumStack)-2], true
}

func (p *packet) pushMedium(index int) {
	p.mediumStack = append(p.mediumStack, index)
}

func (p *packet) popMedium() bool {
	if len(p.mediumStack) < 2 {
		return false
	}
	p.mediumStack = p.mediumStack[:len(p.mediumStack)-1]
	return true
}

// move advances the packet along its direction, updating time-of-flight
// with the current medium's refractive index.
func (p *packet) move(dist float64) {
	p.pos = p.pos.Add(p.dir.Mul(dist))
	p.time += dist * p.opt.RefIndex / speedOfLight
}

// rotate deflects the direction by declination dec about the current
// heading while preserving azimuthal symmetry: azi picks the rotation
// plane uniformly about the old direction.
func (p *packet) rotate(dec, azi float64) {
	d := p.dir

	sinDec, cosDec := math.Sincos(dec)
	sinAzi, cosAzi := math.Sincos(azi)

	if math.Abs(d[2]) > 0.99999 {
		// Travelling along +-z: the general frame degenerates, use the
		// direct form.
		sign := 1.0
		if d[2] < 0 {
			sign = -1.0
		}
		p.dir = vecmat.Vec3{
			sinDec * cosAzi,
			sinDec * sinAzi,
			sign * cosDec,
		}
	} else {
		den := math.Sqrt(1.0 - d[2]*d[2])
		p.dir = vecmat.Vec3{
			sinDec*(d[0]*d[2]*cosAzi-d[1]*sinAzi)/den + d[0]*cosDec,
			sinDec*(d[1]*d[2]*cosAzi+d[0]*sinAzi)/den + d[1]*cosDec,
			-sinDec*cosAzi*den + d[2]*cosDec,
		}
	}

	p.dir = vecmat.MustNormalize(p.dir)
}

func (p *packet) recordPath() {
	p.path = append(p.path, p.pos)
}
