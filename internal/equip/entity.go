// Package equip holds the mesh-bound scene objects: material volumes and
// emissive lights.
package equip

import (
	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/material"
)

// Entity is an immutable pairing of a closed triangle mesh and the
// material filling its interior. Packets track which entities they are
// inside by index into the scene's entity list.
type Entity struct {
	Mesh geom.Mesh
	Mat  *material.Material
}
