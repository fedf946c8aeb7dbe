package geom

import (
	"fmt"

	"github.com/fwordingham/arctorus/internal/vecmat"
)

// MeshData is the raw vertex/normal/face table a mesh is instantiated from.
// Faces index into Verts and Norms (0-based; the file loaders convert from
// the 1-based on-disk form).
type MeshData struct {
	Verts []vecmat.Vec3
	Norms []vecmat.Vec3
	Faces [][3]FaceVert
}

// FaceVert pairs a position index with a normal index.
type FaceVert struct {
	Pos  int
	Norm int
}

// Mesh is an immutable list of world-space triangles.
type Mesh struct {
	Tris []Triangle

	totalArea float64
}

// NewMesh instantiates a mesh from raw data under a world transform.
// Positions get the full transform; normals get the inverse-transpose and
// are renormalized, which keeps them perpendicular under non-uniform scale.
func NewMesh(data MeshData, world vecmat.Mat4) (Mesh, error) {
	invT := vecmat.InverseTranspose(world)

	verts := make([]vecmat.Vec3, len(data.Verts))
	for i, v := range data.Verts {
		verts[i] = vecmat.ApplyPosition(world, v)
	}
	norms := make([]vecmat.Vec3, len(data.Norms))
	for i, n := range data.Norms {
		norms[i] = vecmat.ApplyDirection(invT, n)
	}

	m := Mesh{Tris: make([]Triangle, 0, len(data.Faces))}
	for fi, f := range data.Faces {
		var pos, nrm [3]vecmat.Vec3
		for k := 0; k < 3; k++ {
			if f[k].Pos < 0 || f[k].Pos >= len(verts) {
				return Mesh{}, fmt.Errorf("geom: face %d references vertex %d of %d", fi, f[k].Pos, len(verts))
			}
			if f[k].Norm < 0 || f[k].Norm >= len(norms) {
				return Mesh{}, fmt.Errorf("geom: face %d references normal %d of %d", fi, f[k].Norm, len(norms))
			}
			pos[k] = verts[f[k].Pos]
			nrm[k] = norms[f[k].Norm]
		}
		tri, err := NewTriangle(pos, nrm)
		if err != nil {
			return Mesh{}, fmt.Errorf("geom: face %d: %w", fi, err)
		}
		m.Tris = append(m.Tris, tri)
		m.totalArea += tri.Area
	}

	if len(m.Tris) == 0 {
		return Mesh{}, fmt.Errorf("geom: mesh has no faces")
	}

	return m, nil
}

// TotalArea is the summed surface area of all triangles.
func (m *Mesh) TotalArea() float64 { return m.totalArea }

// Areas returns the per-triangle surface areas, in triangle order.
func (m *Mesh) Areas() []float64 {
	a := make([]float64, len(m.Tris))
	for i := range m.Tris {
		a[i] = m.Tris[i].Area
	}
	return a
}

// Bounds returns the axis-aligned bounding box of the whole mesh.
func (m *Mesh) Bounds() (min, max vecmat.Vec3) {
	min, max = m.Tris[0].Bounds()
	for _, tri := range m.Tris[1:] {
		lo, hi := tri.Bounds()
		for i := 0; i < 3; i++ {
			if lo[i] < min[i] {
				min[i] = lo[i]
			}
			if hi[i] > max[i] {
				max[i] = hi[i]
			}
		}
	}
	return min, max
}
