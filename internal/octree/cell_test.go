package octree

import (
	"math"
	"testing"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

func mustTri(t *testing.T, a, b, c vecmat.Vec3) geom.Triangle {
	t.Helper()
	n := vecmat.MustNormalize(b.Sub(a).Cross(c.Sub(a)))
	tri, err := geom.NewTriangle([3]vecmat.Vec3{a, b, c}, [3]vecmat.Vec3{n, n, n})
	if err != nil {
		t.Fatal(err)
	}
	return tri
}

// boxTris builds the 12 outward-facing triangles of an axis-aligned box.
func boxTris(t *testing.T, lo, hi vecmat.Vec3) []geom.Triangle {
	t.Helper()
	v := [8]vecmat.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], hi[1], lo[2]}, {lo[0], hi[1], lo[2]},
		{lo[0], lo[1], hi[2]}, {hi[0], lo[1], hi[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // z = lo
		{4, 5, 6, 7}, // z = hi
		{0, 1, 5, 4}, // y = lo
		{2, 3, 7, 6}, // y = hi
		{0, 4, 7, 3}, // x = lo
		{1, 2, 6, 5}, // x = hi
	}
	var tris []geom.Triangle
	for _, q := range quads {
		tris = append(tris, mustTri(t, v[q[0]], v[q[1]], v[q[2]]))
		tris = append(tris, mustTri(t, v[q[0]], v[q[2]], v[q[3]]))
	}
	return tris
}

func collectLeaves(c *Cell, out *[]*Cell) {
	if c.IsLeaf() {
		*out = append(*out, c)
		return
	}
	for i := 0; i < 8; i++ {
		collectLeaves(c.Child(i), out)
	}
}

func TestBuild_ContainmentProperties(t *testing.T) {
	// Three overlapping boxes in a unit-ish domain.
	fams := Families{
		Entities: [][]geom.Triangle{
			boxTris(t, vecmat.Vec3{-1, -1, -1}, vecmat.Vec3{0.5, 0.5, 0.5}),
			boxTris(t, vecmat.Vec3{-0.5, -0.5, -0.5}, vecmat.Vec3{1, 1, 1}),
			boxTris(t, vecmat.Vec3{-0.25, -0.9, -0.25}, vecmat.Vec3{0.25, 0.9, 0.25}),
		},
	}

	root, err := Build(2, 5, 8, vecmat.Vec3{-2, -2, -2}, vecmat.Vec3{2, 2, 2}, fams)
	if err != nil {
		t.Fatal(err)
	}

	var leaves []*Cell
	collectLeaves(root, &leaves)
	if len(leaves) == 0 {
		t.Fatal("tree has no leaves")
	}

	// (a) Every reference in a leaf overlaps that leaf's box.
	for _, leaf := range leaves {
		if leaf.Depth() < 2 {
			t.Errorf("leaf at depth %d below the minimum split depth", leaf.Depth())
		}
		for _, ref := range leaf.EntityTris() {
			if !leaf.triOverlap(&fams.Entities[ref.Obj][ref.Tri]) {
				t.Errorf("leaf holds entity triangle (%d,%d) that does not overlap its box", ref.Obj, ref.Tri)
			}
		}
	}

	// (b) Every triangle of every mesh appears in at least one leaf
	// whose box it overlaps.
	for oi, tris := range fams.Entities {
		for ti := range tris {
			found := false
			for _, leaf := range leaves {
				for _, ref := range leaf.EntityTris() {
					if ref.Obj == oi && ref.Tri == ti {
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if !found {
				t.Errorf("entity triangle (%d,%d) missing from every leaf", oi, ti)
			}
		}
	}
}

func TestTriOverlap_FacePlaneTriangleCounts(t *testing.T) {
	fams := Families{}
	root, err := Build(0, 0, 1, vecmat.Vec3{-1, -1, -1}, vecmat.Vec3{1, 1, 1}, fams)
	if err != nil {
		t.Fatal(err)
	}

	// Triangle lying exactly in the box's +z face plane.
	tri := mustTri(t, vecmat.Vec3{-0.5, -0.5, 1}, vecmat.Vec3{0.5, -0.5, 1}, vecmat.Vec3{0, 0.5, 1})
	if !root.triOverlap(&tri) {
		t.Error("triangle in a box face plane must count as overlapping")
	}

	// Just outside does not.
	tri = mustTri(t, vecmat.Vec3{-0.5, -0.5, 1.01}, vecmat.Vec3{0.5, -0.5, 1.01}, vecmat.Vec3{0, 0.5, 1.01})
	if root.triOverlap(&tri) {
		t.Error("triangle outside the box reported as overlapping")
	}

	// Far away on a diagonal axis.
	tri = mustTri(t, vecmat.Vec3{3, 3, 3}, vecmat.Vec3{4, 3, 3}, vecmat.Vec3{3, 4, 3})
	if root.triOverlap(&tri) {
		t.Error("distant triangle reported as overlapping")
	}
}

func TestLeaf_DescentBySignBits(t *testing.T) {
	fams := Families{
		Entities: [][]geom.Triangle{boxTris(t, vecmat.Vec3{-1, -1, -1}, vecmat.Vec3{1, 1, 1})},
	}
	root, err := Build(1, 3, 2, vecmat.Vec3{-2, -2, -2}, vecmat.Vec3{2, 2, 2}, fams)
	if err != nil {
		t.Fatal(err)
	}

	for _, pos := range []vecmat.Vec3{
		{1, 1, 1}, {-1, 1, 1}, {1, -1, 1}, {-1, -1, -1}, {0.1, -1.9, 1.9},
	} {
		leaf := root.Leaf(pos)
		if !leaf.IsLeaf() {
			t.Fatalf("Leaf(%v) returned an internal node", pos)
		}
		if !leaf.Contains(pos) {
			t.Errorf("Leaf(%v) box does not contain the query point", pos)
		}
	}
}

func TestDistanceToWall(t *testing.T) {
	root, err := Build(0, 0, 1, vecmat.Vec3{-1, -1, -1}, vecmat.Vec3{1, 1, 1}, Families{})
	if err != nil {
		t.Fatal(err)
	}

	d := root.DistanceToWall(vecmat.Vec3{0, 0, 0}, vecmat.Vec3{1, 0, 0})
	if math.Abs(d-1.0) > 1e-12 {
		t.Errorf("distance along +x = %g, want 1", d)
	}

	d = root.DistanceToWall(vecmat.Vec3{0.5, 0, 0}, vecmat.MustNormalize(vecmat.Vec3{-1, 0, 0}))
	if math.Abs(d-1.5) > 1e-12 {
		t.Errorf("distance along -x = %g, want 1.5", d)
	}

	// Diagonal.
	d = root.DistanceToWall(vecmat.Vec3{0, 0, 0}, vecmat.MustNormalize(vecmat.Vec3{1, 1, 0}))
	if math.Abs(d-math.Sqrt2) > 1e-12 {
		t.Errorf("diagonal distance = %g, want sqrt(2)", d)
	}
}

func TestNearestEntityHit(t *testing.T) {
	near := mustTri(t, vecmat.Vec3{-0.5, -0.5, 0.5}, vecmat.Vec3{0.5, -0.5, 0.5}, vecmat.Vec3{0, 0.5, 0.5})
	far := mustTri(t, vecmat.Vec3{-0.5, -0.5, 0.9}, vecmat.Vec3{0.5, -0.5, 0.9}, vecmat.Vec3{0, 0.5, 0.9})

	fams := Families{Entities: [][]geom.Triangle{{near}, {far}}}
	root, err := Build(0, 0, 100, vecmat.Vec3{-1, -1, -1}, vecmat.Vec3{1, 1, 1}, fams)
	if err != nil {
		t.Fatal(err)
	}

	hit, ok := root.NearestEntityHit(vecmat.Vec3{0, 0, 0}, vecmat.Vec3{0, 0, 1})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Obj != 0 {
		t.Errorf("hit object %d, want the nearer object 0", hit.Obj)
	}
	if math.Abs(hit.Dist-0.5) > 1e-12 {
		t.Errorf("hit distance = %g, want 0.5", hit.Dist)
	}

	// Looking away: no hit.
	if _, ok := root.NearestEntityHit(vecmat.Vec3{0, 0, 0}, vecmat.Vec3{0, 0, -1}); ok {
		t.Error("hit reported behind the ray")
	}
}
