// Package geom holds the triangle and mesh primitives the transport engine
// traces against. Triangles carry per-vertex normals so hit normals can be
// barycentrically interpolated, which is what lets coarse meshes stand in
// for smooth surfaces.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/fwordingham/arctorus/internal/vecmat"
)

// Epsilon is the geometric rejection tolerance: IEEE-754 double machine
// epsilon, matching the parallel-ray cutoff of the ray-triangle test.
var Epsilon = math.Nextafter(1, 2) - 1

// ErrDegenerateTriangle is returned when three vertices span no area.
var ErrDegenerateTriangle = errors.New("geom: triangle has zero area")

// Triangle is an immutable triangle with per-vertex normals. The plane
// normal and area are precomputed at construction.
type Triangle struct {
	Pos  [3]vecmat.Vec3
	Norm [3]vecmat.Vec3

	PlaneNorm vecmat.Vec3
	Area      float64
}

// NewTriangle builds a triangle from three vertex positions and their unit
// normals. Fails if the vertices are collinear.
func NewTriangle(pos [3]vecmat.Vec3, norm [3]vecmat.Vec3) (Triangle, error) {
	e1 := pos[1].Sub(pos[0])
	e2 := pos[2].Sub(pos[0])

	crossed := e1.Cross(e2)
	area := 0.5 * crossed.Len()
	if area <= 0 || math.IsNaN(area) {
		return Triangle{}, ErrDegenerateTriangle
	}

	plane, err := vecmat.Normalize(crossed)
	if err != nil {
		return Triangle{}, ErrDegenerateTriangle
	}

	for i := range norm {
		n, err := vecmat.Normalize(norm[i])
		if err != nil {
			return Triangle{}, fmt.Errorf("geom: vertex %d normal: %w", i, err)
		}
		norm[i] = n
	}

	return Triangle{Pos: pos, Norm: norm, PlaneNorm: plane, Area: area}, nil
}

// Intersect runs the Moller-Trumbore construction for a ray against the
// triangle. It returns the strictly-positive hit distance and the
// barycentrically interpolated unit normal at the hit point. ok is false
// when the ray is near-parallel to the plane, the hit lies outside the
// triangle, or the intersection is at or behind the origin.
func (t *Triangle) Intersect(pos, dir vecmat.Vec3) (dist float64, norm vecmat.Vec3, ok bool) {
	e1 := t.Pos[1].Sub(t.Pos[0])
	e2 := t.Pos[2].Sub(t.Pos[0])

	q := dir.Cross(e2)
	a := e1.Dot(q)

	if math.Abs(a) <= Epsilon {
		return 0, vecmat.Vec3{}, false
	}

	s := pos.Sub(t.Pos[0]).Mul(1.0 / a)
	r := s.Cross(e1)

	gamma := r.Dot(dir)
	beta := s.Dot(q)
	alpha := 1.0 - beta - gamma

	if alpha < 0.0 || beta < 0.0 || gamma < 0.0 {
		return 0, vecmat.Vec3{}, false
	}

	dist = e2.Dot(r)
	if dist <= 0.0 {
		return 0, vecmat.Vec3{}, false
	}

	norm = vecmat.MustNormalize(
		t.Norm[0].Mul(alpha).Add(t.Norm[1].Mul(beta)).Add(t.Norm[2].Mul(gamma)))

	return dist, norm, true
}

// RandomPosAndNorm draws a uniformly distributed point on the triangle
// surface along with the interpolated normal there. uniform must yield
// values in [0,1).
func (t *Triangle) RandomPosAndNorm(uniform func() float64) (vecmat.Vec3, vecmat.Vec3) {
	a := uniform()
	b := uniform()

	// Mirror points falling beyond the diagonal back inside.
	if a+b > 1.0 {
		a = 1.0 - a
		b = 1.0 - b
	}

	pos := t.Pos[2].
		Add(t.Pos[0].Sub(t.Pos[2]).Mul(a)).
		Add(t.Pos[1].Sub(t.Pos[2]).Mul(b))

	norm := vecmat.MustNormalize(
		t.Norm[0].Mul(a).Add(t.Norm[1].Mul(b)).Add(t.Norm[2].Mul(1.0 - a - b)))

	return pos, norm
}

// Bounds returns the axis-aligned bounding box of the triangle.
func (t *Triangle) Bounds() (min, max vecmat.Vec3) {
	min = t.Pos[0]
	max = t.Pos[0]
	for _, p := range t.Pos[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// Centroid returns the mean of the three vertex positions.
func (t *Triangle) Centroid() vecmat.Vec3 {
	return t.Pos[0].Add(t.Pos[1]).Add(t.Pos[2]).Mul(1.0 / 3.0)
}
