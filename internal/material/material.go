package material

import (
	"fmt"
)

// OptProps is the bundle of optical properties a packet caches for its
// current medium at its current wavelength.
type OptProps struct {
	RefIndex    float64
	Albedo      float64
	Interaction float64
	Anisotropy  float64
}

// Material is an immutable set of four wavelength-indexed interpolators:
// refractive index, single-scattering albedo, interaction coefficient and
// anisotropy. The interaction coefficient and albedo are derived once at
// construction from the tabulated absorption and scattering mean free
// paths: interaction = 1/a + 1/s, albedo = (1/s)/interaction.
type Material struct {
	refIndex    linearInterp
	albedo      linearInterp
	interaction linearInterp
	anisotropy  linearInterp

	minWavelength float64
	maxWavelength float64
}

// New builds a material from parallel columns over a common wavelength
// axis: refractive index, absorption mean free path, scattering mean free
// path and anisotropy.
func New(wavelength, refIndex, absLength, scatLength, anisotropy []float64) (*Material, error) {
	n := len(wavelength)
	if len(refIndex) != n || len(absLength) != n || len(scatLength) != n || len(anisotropy) != n {
		return nil, fmt.Errorf("material: column lengths differ (w=%d n=%d a=%d s=%d g=%d)",
			n, len(refIndex), len(absLength), len(scatLength), len(anisotropy))
	}

	interaction := make([]float64, n)
	albedo := make([]float64, n)
	for i := 0; i < n; i++ {
		if refIndex[i] <= 0 {
			return nil, fmt.Errorf("material: refractive index %g at node %d is not positive", refIndex[i], i)
		}
		if absLength[i] <= 0 {
			return nil, fmt.Errorf("material: absorption length %g at node %d is not positive", absLength[i], i)
		}
		if scatLength[i] <= 0 {
			return nil, fmt.Errorf("material: scattering length %g at node %d is not positive", scatLength[i], i)
		}
		if anisotropy[i] <= -1 || anisotropy[i] >= 1 {
			return nil, fmt.Errorf("material: anisotropy %g at node %d outside (-1, 1)", anisotropy[i], i)
		}
		interaction[i] = 1.0/absLength[i] + 1.0/scatLength[i]
		albedo[i] = (1.0 / scatLength[i]) / interaction[i]
	}

	m := &Material{minWavelength: wavelength[0], maxWavelength: wavelength[n-1]}
	var err error
	if m.refIndex, err = newLinearInterp(wavelength, refIndex); err != nil {
		return nil, err
	}
	if m.albedo, err = newLinearInterp(wavelength, albedo); err != nil {
		return nil, err
	}
	if m.interaction, err = newLinearInterp(wavelength, interaction); err != nil {
		return nil, err
	}
	if m.anisotropy, err = newLinearInterp(wavelength, anisotropy); err != nil {
		return nil, err
	}
	return m, nil
}

// MinWavelength is the lower bound of the common wavelength axis.
func (m *Material) MinWavelength() float64 { return m.minWavelength }

// MaxWavelength is the upper bound of the common wavelength axis.
func (m *Material) MaxWavelength() float64 { return m.maxWavelength }

// RefIndex interpolates the refractive index at the given wavelength.
func (m *Material) RefIndex(wavelength float64) (float64, error) {
	return m.refIndex.at(wavelength)
}

// Albedo interpolates the single-scattering albedo at the given wavelength.
func (m *Material) Albedo(wavelength float64) (float64, error) {
	return m.albedo.at(wavelength)
}

// Interaction interpolates the interaction coefficient (inverse mean free
// path) at the given wavelength.
func (m *Material) Interaction(wavelength float64) (float64, error) {
	return m.interaction.at(wavelength)
}

// Anisotropy interpolates the Henyey-Greenstein anisotropy at the given
// wavelength.
func (m *Material) Anisotropy(wavelength float64) (float64, error) {
	return m.anisotropy.at(wavelength)
}

// Sample evaluates all four tables at once, the form the transport loop
// caches on every medium or wavelength change.
func (m *Material) Sample(wavelength float64) (OptProps, error) {
	var p OptProps
	var err error
	if p.RefIndex, err = m.refIndex.at(wavelength); err != nil {
		return OptProps{}, err
	}
	if p.Albedo, err = m.albedo.at(wavelength); err != nil {
		return OptProps{}, err
	}
	if p.Interaction, err = m.interaction.at(wavelength); err != nil {
		return OptProps{}, err
	}
	if p.Anisotropy, err = m.anisotropy.at(wavelength); err != nil {
		return OptProps{}, err
	}
	return p, nil
}
