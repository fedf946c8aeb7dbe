package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

func TestCCD_PixelMapping(t *testing.T) {
	// 10x10 CCD spanning [-1,1]^2 in the z=0 plane, facing +z.
	ccd, err := NewCCD("cam", 10, 10, false,
		vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 0, vecmat.Vec3{1, 1, 1})
	require.NoError(t, err)
	require.Len(t, ccd.Mesh.Tris, 2)

	// A hit at the center lands in pixel (5,5).
	ccd.AddHit(vecmat.Vec3{0.05, 0.05, 0}, 1.0, 700e-9)
	pixels := ccd.Pixels()
	assert.Equal(t, 1.0, pixels[5*10+5][0])

	// A hit near the lower-left corner lands in pixel (0,0).
	ccd.AddHit(vecmat.Vec3{-0.95, -0.95, 0}, 2.0, 700e-9)
	pixels = ccd.Pixels()
	assert.Equal(t, 2.0, pixels[0][1])

	assert.Equal(t, 2.0, ccd.MaxChannel())
	assert.InDelta(t, 3.0, ccd.TotalWeight(), 1e-12)
}

func TestCCD_ScaledAndMovedMapping(t *testing.T) {
	// 4x4 CCD scaled to span [-5,5]^2 around (10, 0, 2).
	ccd, err := NewCCD("cam", 4, 4, false,
		vecmat.Vec3{10, 0, 2}, vecmat.Vec3{0, 0, 1}, 0, vecmat.Vec3{5, 5, 1})
	require.NoError(t, err)

	ccd.AddHit(vecmat.Vec3{10, 0, 2}, 1.0, 700e-9)
	pixels := ccd.Pixels()
	assert.Equal(t, 1.0, pixels[2*4+2][0])

	// Off the face: dropped.
	ccd.AddHit(vecmat.Vec3{20, 0, 2}, 1.0, 700e-9)
	assert.InDelta(t, 1.0, ccd.TotalWeight(), 1e-12)
}

func TestCCD_FrontFaceNormal(t *testing.T) {
	ccd, err := NewCCD("cam", 2, 2, false,
		vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 0, vecmat.Vec3{1, 1, 1})
	require.NoError(t, err)

	// The quad faces +z; a ray travelling -z hits the front face.
	for _, tri := range ccd.Mesh.Tris {
		dist, norm, ok := tri.Intersect(vecmat.Vec3{0.1, 0.2, 1}, vecmat.Vec3{0, 0, -1})
		if ok {
			assert.Greater(t, dist, 0.0)
			assert.Less(t, vecmat.Vec3{0, 0, -1}.Dot(norm), 0.0)
		}
	}
}

func TestCCD_Records(t *testing.T) {
	ccd, err := NewCCD("cam", 2, 2, false,
		vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 0, vecmat.Vec3{1, 1, 1})
	require.NoError(t, err)

	ccd.AddCount(vecmat.Vec3{0.1, 0.2, 0}, 0.7, 42)
	recs := ccd.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, 0.7, recs[0].RamanDepth)
	assert.Equal(t, 42, recs[0].LoopCount)
}

func TestSpectrometer_Binning(t *testing.T) {
	mesh := specMesh(t)
	spec, err := NewSpectrometer("spec", mesh, 500e-9, 700e-9, 4)
	require.NoError(t, err)

	spec.AddHit(510e-9, 1.0)  // bin 0
	spec.AddHit(560e-9, 2.0)  // bin 1
	spec.AddHit(700e-9, 3.0)  // upper edge clamps to bin 3
	spec.AddHit(800e-9, 99.0) // out of range, dropped

	bins := spec.Bins()
	assert.Equal(t, []float64{1, 2, 0, 3}, bins)
	assert.InDelta(t, 6.0, spec.TotalWeight(), 1e-12)

	assert.InDelta(t, 525e-9, spec.BinCenter(0), 1e-15)
}

func TestSpectrometer_RejectsBadConfig(t *testing.T) {
	mesh := specMesh(t)
	_, err := NewSpectrometer("s", mesh, 700e-9, 500e-9, 4)
	assert.Error(t, err)
	_, err = NewSpectrometer("s", mesh, 500e-9, 700e-9, 0)
	assert.Error(t, err)
}

func specMesh(t *testing.T) geom.Mesh {
	t.Helper()
	data := geom.MeshData{
		Verts: []vecmat.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}},
		Norms: []vecmat.Vec3{{0, 0, 1}},
		Faces: [][3]geom.FaceVert{{{Pos: 0, Norm: 0}, {Pos: 1, Norm: 0}, {Pos: 2, Norm: 0}}},
	}
	mesh, err := geom.NewMesh(data, vecmat.BuildWorldTransform(vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 0, vecmat.Vec3{1, 1, 1}))
	if err != nil {
		t.Fatal(err)
	}
	return mesh
}
