package equip

import (
	"math"

	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/material"
	"github.com/fwordingham/arctorus/internal/randsrc"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

// Light is an emissive surface mesh with an emission spectrum and a power
// used to weight it against the scene's other lights.
type Light struct {
	Mesh  geom.Mesh
	Spec  *material.Spectrum
	Power float64

	triSelect *randsrc.Index
}

// NewLight builds a light over the given mesh. Triangle selection for
// surface sampling is area-weighted so points are uniform over the whole
// surface, not per-triangle.
func NewLight(mesh geom.Mesh, spec *material.Spectrum, power float64) (Light, error) {
	sel, err := randsrc.NewIndex(mesh.Areas())
	if err != nil {
		return Light{}, err
	}
	return Light{Mesh: mesh, Spec: spec, Power: power, triSelect: sel}, nil
}

// Emit draws an emission sample: a uniform surface point, a
// cosine-weighted direction in the hemisphere around the outward normal,
// and a wavelength from the spectrum.
func (l *Light) Emit(rng *randsrc.RNG) (pos, dir vecmat.Vec3, wavelength float64) {
	tri := &l.Mesh.Tris[l.triSelect.Sample(rng)]
	pos, norm := tri.RandomPosAndNorm(rng.Uniform)

	dir = cosineHemisphere(norm, rng)
	wavelength = l.Spec.Sample(rng.Uniform)
	return pos, dir, wavelength
}

// cosineHemisphere samples a direction about norm with density
// proportional to the cosine of the polar angle.
func cosineHemisphere(norm vecmat.Vec3, rng *randsrc.RNG) vecmat.Vec3 {
	cosTheta := math.Sqrt(rng.Uniform())
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	phi := rng.Range(0.0, 2.0*math.Pi)

	// Orthonormal basis about the normal.
	var tangent vecmat.Vec3
	if math.Abs(norm[0]) < 0.9 {
		tangent = vecmat.MustNormalize(vecmat.Vec3{1, 0, 0}.Cross(norm))
	} else {
		tangent = vecmat.MustNormalize(vecmat.Vec3{0, 1, 0}.Cross(norm))
	}
	bitangent := norm.Cross(tangent)

	return vecmat.MustNormalize(
		tangent.Mul(sinTheta * math.Cos(phi)).
			Add(bitangent.Mul(sinTheta * math.Sin(phi))).
			Add(norm.Mul(cosTheta)))
}
