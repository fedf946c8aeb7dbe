package octree

import (
	"math"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// triOverlap is the Akenine-Moller separating-axis test between the cell's
// box and a triangle: nine edge cross-product axes, the three box axes, and
// the triangle plane. Kept expanded inline; it runs on the hot path of tree
// construction. A triangle lying exactly in a box face plane counts as
// overlapping.
func (c *Cell) triOverlap(tri *geom.Triangle) bool {
	// Translate so the box center is the origin.
	v0 := tri.Pos[0].Sub(c.center)
	v1 := tri.Pos[1].Sub(c.center)
	v2 := tri.Pos[2].Sub(c.center)

	e0 := v1.Sub(v0)
	e1 := v2.Sub(v1)
	e2 := v0.Sub(v2)

	h := c.halfWidth

	var p0, p2, rad float64

	p0 = e0[2]*v0[1] - e0[1]*v0[2]
	p2 = e0[2]*v2[1] - e0[1]*v2[2]
	rad = math.Abs(e0[2])*h[1] + math.Abs(e0[1])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = -e0[2]*v0[0] + e0[0]*v0[2]
	p2 = -e0[2]*v2[0] + e0[0]*v2[2]
	rad = math.Abs(e0[2])*h[0] + math.Abs(e0[0])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = e0[1]*v1[0] - e0[0]*v1[1]
	p2 = e0[1]*v2[0] - e0[0]*v2[1]
	rad = math.Abs(e0[1])*h[0] + math.Abs(e0[0])*h[1]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = e1[2]*v0[1] - e1[1]*v0[2]
	p2 = e1[2]*v2[1] - e1[1]*v2[2]
	rad = math.Abs(e1[2])*h[1] + math.Abs(e1[1])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = -e1[2]*v0[0] + e1[0]*v0[2]
	p2 = -e1[2]*v2[0] + e1[0]*v2[2]
	rad = math.Abs(e1[2])*h[0] + math.Abs(e1[0])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = e1[1]*v0[0] - e1[0]*v0[1]
	p2 = e1[1]*v1[0] - e1[0]*v1[1]
	rad = math.Abs(e1[1])*h[0] + math.Abs(e1[0])*h[1]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = e2[2]*v0[1] - e2[1]*v0[2]
	p2 = e2[2]*v1[1] - e2[1]*v1[2]
	rad = math.Abs(e2[2])*h[1] + math.Abs(e2[1])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = -e2[2]*v0[0] + e2[0]*v0[2]
	p2 = -e2[2]*v1[0] + e2[0]*v1[2]
	rad = math.Abs(e2[2])*h[0] + math.Abs(e2[0])*h[2]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	p0 = e2[1]*v1[0] - e2[0]*v1[1]
	p2 = e2[1]*v2[0] - e2[0]*v2[1]
	rad = math.Abs(e2[1])*h[0] + math.Abs(e2[0])*h[1]
	if math.Min(p0, p2) > rad || math.Max(p0, p2) < -rad {
		return false
	}

	// Box axes: AABB of the triangle against the box.
	for q := 0; q < 3; q++ {
		lo := math.Min(v0[q], math.Min(v1[q], v2[q]))
		hi := math.Max(v0[q], math.Max(v1[q], v2[q]))
		if lo > h[q] || hi < -h[q] {
			return false
		}
	}

	return c.planeOverlap(e0.Cross(e1), v0)
}

// planeOverlap tests the triangle's plane (normal plus a point on it)
// against the origin-centered box. Touching counts as overlap.
func (c *Cell) planeOverlap(norm, point vecmat.Vec3) bool {
	var min, max vecmat.Vec3
	for q := 0; q < 3; q++ {
		v := point[q]
		if norm[q] > 0.0 {
			min[q] = -c.halfWidth[q] - v
			max[q] = c.halfWidth[q] - v
		} else {
			min[q] = c.halfWidth[q] - v
			max[q] = -c.halfWidth[q] - v
		}
	}
	return norm.Dot(min) <= 0.0 && norm.Dot(max) >= 0.0
}
