// Package octree implements the adaptive spatial partition the transport
// engine traces through. Leaves hold (object, triangle) reference lists for
// the entity, light, CCD and spectrometer triangle families; internal nodes
// own eight children split at the cell midpoint.
package octree

import (
	"fmt"
	"math"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// TriRef addresses one triangle of one object within a family.
type TriRef struct {
	Obj int
	Tri int
}

// Families groups the four triangle families the tree indexes, one slice of
// triangles per object.
type Families struct {
	Entities      [][]geom.Triangle
	Lights        [][]geom.Triangle
	CCDs          [][]geom.Triangle
	Spectrometers [][]geom.Triangle
}

// Hit is the result of a leaf's nearest-triangle query.
type Hit struct {
	Obj  int
	Tri  int
	Dist float64
	Norm vecmat.Vec3
}

// Cell is one node of the octree. Immutable after construction.
type Cell struct {
	center    vecmat.Vec3
	halfWidth vecmat.Vec3
	depth     int

	fams *Families

	leaf  bool
	child [8]*Cell

	entityTris       []TriRef
	lightTris        []TriRef
	ccdTris          []TriRef
	spectrometerTris []TriRef
}

// Build constructs the tree root over the given bounding box. A node stays
// a leaf once it reaches maxDepth, or once it is at least minDepth deep and
// holds no more than maxTri triangles across all four families.
func Build(minDepth, maxDepth, maxTri int, minBound, maxBound vecmat.Vec3, fams Families) (*Cell, error) {
	if minDepth > maxDepth {
		return nil, fmt.Errorf("octree: min depth %d exceeds max depth %d", minDepth, maxDepth)
	}
	for i := 0; i < 3; i++ {
		if maxBound[i] <= minBound[i] {
			return nil, fmt.Errorf("octree: degenerate bounds on axis %d", i)
		}
	}

	root := &Cell{
		center:    maxBound.Add(minBound).Mul(0.5),
		halfWidth: maxBound.Sub(minBound).Mul(0.5),
		depth:     0,
		fams:      &fams,
	}
	root.entityTris = root.filterAll(fams.Entities)
	root.lightTris = root.filterAll(fams.Lights)
	root.ccdTris = root.filterAll(fams.CCDs)
	root.spectrometerTris = root.filterAll(fams.Spectrometers)
	root.split(minDepth, maxDepth, maxTri)
	return root, nil
}

// filterAll collects every triangle of a family that overlaps this cell.
func (c *Cell) filterAll(objs [][]geom.Triangle) []TriRef {
	var refs []TriRef
	for i, tris := range objs {
		for j := range tris {
			if c.triOverlap(&tris[j]) {
				refs = append(refs, TriRef{Obj: i, Tri: j})
			}
		}
	}
	return refs
}

// filterRefs keeps the parent's references that still overlap this cell.
func (c *Cell) filterRefs(objs [][]geom.Triangle, parent []TriRef) []TriRef {
	var refs []TriRef
	for _, ref := range parent {
		if c.triOverlap(&objs[ref.Obj][ref.Tri]) {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (c *Cell) triCount() int {
	return len(c.entityTris) + len(c.lightTris) + len(c.ccdTris) + len(c.spectrometerTris)
}

// split decides leaf-ness and recursively creates children. Child i sits at
// the octant selected by the three sign bits: bit0 set means x below
// center, bit1 y below, bit2 z below.
func (c *Cell) split(minDepth, maxDepth, maxTri int) {
	if c.depth >= maxDepth || (c.depth >= minDepth && c.triCount() <= maxTri) {
		c.leaf = true
		return
	}

	half := c.halfWidth.Mul(0.5)
	for i := 0; i < 8; i++ {
		offset := half
		if i&1 != 0 {
			offset[0] = -offset[0]
		}
		if i&2 != 0 {
			offset[1] = -offset[1]
		}
		if i&4 != 0 {
			offset[2] = -offset[2]
		}

		child := &Cell{
			center:    c.center.Add(offset),
			halfWidth: half,
			depth:     c.depth + 1,
			fams:      c.fams,
		}
		child.entityTris = child.filterRefs(c.fams.Entities, c.entityTris)
		child.lightTris = child.filterRefs(c.fams.Lights, c.lightTris)
		child.ccdTris = child.filterRefs(c.fams.CCDs, c.ccdTris)
		child.spectrometerTris = child.filterRefs(c.fams.Spectrometers, c.spectrometerTris)
		child.split(minDepth, maxDepth, maxTri)

		c.child[i] = child
	}
}

// IsLeaf reports whether the cell is terminal.
func (c *Cell) IsLeaf() bool { return c.leaf }

// Depth is the cell's depth below the root.
func (c *Cell) Depth() int { return c.depth }

// Center is the cell's midpoint.
func (c *Cell) Center() vecmat.Vec3 { return c.center }

// HalfWidth is the cell's half-extent on each axis.
func (c *Cell) HalfWidth() vecmat.Vec3 { return c.halfWidth }

// Child returns the i-th child, or nil for leaves.
func (c *Cell) Child(i int) *Cell { return c.child[i] }

// EntityTris returns the leaf's entity triangle references.
func (c *Cell) EntityTris() []TriRef { return c.entityTris }

// LightTris returns the leaf's light triangle references.
func (c *Cell) LightTris() []TriRef { return c.lightTris }

// CCDTris returns the leaf's CCD triangle references.
func (c *Cell) CCDTris() []TriRef { return c.ccdTris }

// SpectrometerTris returns the leaf's spectrometer triangle references.
func (c *Cell) SpectrometerTris() []TriRef { return c.spectrometerTris }

// Contains reports whether pos falls within the cell bounds.
func (c *Cell) Contains(pos vecmat.Vec3) bool {
	for i := 0; i < 3; i++ {
		if pos[i] < c.center[i]-c.halfWidth[i] || pos[i] > c.center[i]+c.halfWidth[i] {
			return false
		}
	}
	return true
}

// Leaf descends by sign bits to the leaf containing pos. pos must lie
// within the cell.
func (c *Cell) Leaf(pos vecmat.Vec3) *Cell {
	if c.leaf {
		return c
	}

	idx := 0
	if pos[0] < c.center[0] {
		idx |= 1
	}
	if pos[1] < c.center[1] {
		idx |= 2
	}
	if pos[2] < c.center[2] {
		idx |= 4
	}
	return c.child[idx].Leaf(pos)
}

// DistanceToWall returns the smallest positive distance from pos along dir
// to any of the six slab planes of the cell's box.
func (c *Cell) DistanceToWall(pos, dir vecmat.Vec3) float64 {
	best := math.MaxFloat64
	for i := 0; i < 3; i++ {
		if dir[i] == 0.0 {
			continue
		}
		lo := (c.center[i] - c.halfWidth[i] - pos[i]) / dir[i]
		hi := (c.center[i] + c.halfWidth[i] - pos[i]) / dir[i]
		if lo > 0.0 && lo < best {
			best = lo
		}
		if hi > 0.0 && hi < best {
			best = hi
		}
	}
	return best
}

// NearestEntityHit scans the leaf's entity triangles for the closest
// strictly-positive ray hit.
func (c *Cell) NearestEntityHit(pos, dir vecmat.Vec3) (Hit, bool) {
	return c.nearestHit(c.fams.Entities, c.entityTris, pos, dir)
}

// NearestCCDHit scans the leaf's CCD triangles for the closest
// strictly-positive ray hit.
func (c *Cell) NearestCCDHit(pos, dir vecmat.Vec3) (Hit, bool) {
	return c.nearestHit(c.fams.CCDs, c.ccdTris, pos, dir)
}

// NearestSpectrometerHit scans the leaf's spectrometer triangles for the
// closest strictly-positive ray hit.
func (c *Cell) NearestSpectrometerHit(pos, dir vecmat.Vec3) (Hit, bool) {
	return c.nearestHit(c.fams.Spectrometers, c.spectrometerTris, pos, dir)
}

func (c *Cell) nearestHit(objs [][]geom.Triangle, refs []TriRef, pos, dir vecmat.Vec3) (Hit, bool) {
	best := Hit{Dist: math.MaxFloat64}
	found := false
	for _, ref := range refs {
		tri := &objs[ref.Obj][ref.Tri]
		dist, norm, ok := tri.Intersect(pos, dir)
		if ok && dist < best.Dist {
			best = Hit{Obj: ref.Obj, Tri: ref.Tri, Dist: dist, Norm: norm}
			found = true
		}
	}
	return best, found
}
