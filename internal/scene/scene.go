// Package scene assembles the immutable simulation scene the transport
// engine runs against: the aether material, entity/light/detector lists,
// the voxel grid, the octree, and the power-weighted light selector.
package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fwordingham/arctorus/internal/detector"
	"github.com/fwordingham/arctorus/internal/equip"
	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/material"
	"github.com/fwordingham/arctorus/internal/octree"
	"github.com/fwordingham/arctorus/internal/randsrc"
	"github.com/fwordingham/arctorus/internal/voxelgrid"
)

// TreeParams are the octree construction limits.
type TreeParams struct {
	MinDepth int
	MaxDepth int
	MaxTri   int
}

// Scene is the full immutable simulation setup. The grid and detectors are
// internally locked; everything else is read-only during a run.
type Scene struct {
	// ID tags this assembled scene; output artifacts carry it so runs
	// can be told apart.
	ID uuid.UUID

	Aether        *material.Material
	Entities      []equip.Entity
	Lights        []equip.Light
	CCDs          []*detector.CCD
	Spectrometers []*detector.Spectrometer

	Grid *voxelgrid.Grid
	Tree *octree.Cell

	LightSelect *randsrc.Index
}

// Assemble validates the scene pieces and builds the derived structures.
// It checks that every light's spectrum support is inside the wavelength
// range of the aether and of every entity material, so in-flight table
// queries cannot go out of range.
func Assemble(aether *material.Material, entities []equip.Entity, lights []equip.Light,
	ccds []*detector.CCD, spectrometers []*detector.Spectrometer,
	grid *voxelgrid.Grid, tree TreeParams) (*Scene, error) {

	if aether == nil {
		return nil, fmt.Errorf("scene: aether material is required")
	}
	if len(lights) == 0 {
		return nil, fmt.Errorf("scene: at least one light is required")
	}
	if grid == nil {
		return nil, fmt.Errorf("scene: voxel grid is required")
	}

	for li := range lights {
		lo, hi := lights[li].Spec.Min(), lights[li].Spec.Max()
		if lo < aether.MinWavelength() || hi > aether.MaxWavelength() {
			return nil, fmt.Errorf("scene: light %d spectrum [%g, %g] exceeds aether material range [%g, %g]",
				li, lo, hi, aether.MinWavelength(), aether.MaxWavelength())
		}
		for ei := range entities {
			mat := entities[ei].Mat
			if lo < mat.MinWavelength() || hi > mat.MaxWavelength() {
				return nil, fmt.Errorf("scene: light %d spectrum [%g, %g] exceeds entity %d material range [%g, %g]",
					li, lo, hi, ei, mat.MinWavelength(), mat.MaxWavelength())
			}
		}
	}

	fams := octree.Families{
		Entities:      triFamily(len(entities), func(i int) []geom.Triangle { return entities[i].Mesh.Tris }),
		Lights:        triFamily(len(lights), func(i int) []geom.Triangle { return lights[i].Mesh.Tris }),
		CCDs:          triFamily(len(ccds), func(i int) []geom.Triangle { return ccds[i].Mesh.Tris }),
		Spectrometers: triFamily(len(spectrometers), func(i int) []geom.Triangle { return spectrometers[i].Mesh.Tris }),
	}

	root, err := octree.Build(tree.MinDepth, tree.MaxDepth, tree.MaxTri, grid.MinBound(), grid.MaxBound(), fams)
	if err != nil {
		return nil, err
	}

	powers := make([]float64, len(lights))
	for i := range lights {
		if lights[i].Power <= 0 {
			return nil, fmt.Errorf("scene: light %d power %g is not positive", i, lights[i].Power)
		}
		powers[i] = lights[i].Power
	}
	sel, err := randsrc.NewIndex(powers)
	if err != nil {
		return nil, err
	}

	return &Scene{
		ID:            uuid.New(),
		Aether:        aether,
		Entities:      entities,
		Lights:        lights,
		CCDs:          ccds,
		Spectrometers: spectrometers,
		Grid:          grid,
		Tree:          root,
		LightSelect:   sel,
	}, nil
}

// MaterialOf resolves a medium index to its material; -1 is the aether.
func (s *Scene) MaterialOf(index int) *material.Material {
	if index < 0 {
		return s.Aether
	}
	return s.Entities[index].Mat
}

func triFamily(n int, tris func(int) []geom.Triangle) [][]geom.Triangle {
	fam := make([][]geom.Triangle, n)
	for i := 0; i < n; i++ {
		fam[i] = tris(i)
	}
	return fam
}
