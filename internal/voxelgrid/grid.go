// Package voxelgrid accumulates absorbed energy into a uniform cuboid
// voxel array. Workers write through one grid-wide mutex; lock hold times
// are a single addition.
package voxelgrid

import (
	"fmt"
	"math"
	"sync"

	"github.com/fwordingham/arctorus/internal/vecmat"
)

// Index addresses one voxel.
type Index [3]int

// Grid is an axis-aligned box split into Nx*Ny*Nz equal cuboid voxels,
// each holding cumulative absorbed energy.
type Grid struct {
	minBound vecmat.Vec3
	maxBound vecmat.Vec3
	numCells [3]int
	cellSize vecmat.Vec3

	mu     sync.Mutex
	energy []float64
}

// New builds an empty grid over the given bounds.
func New(minBound, maxBound vecmat.Vec3, numCells [3]int) (*Grid, error) {
	for i := 0; i < 3; i++ {
		if maxBound[i] <= minBound[i] {
			return nil, fmt.Errorf("voxelgrid: degenerate bounds on axis %d", i)
		}
		if numCells[i] <= 0 {
			return nil, fmt.Errorf("voxelgrid: cell count %d on axis %d is not positive", numCells[i], i)
		}
	}

	g := &Grid{
		minBound: minBound,
		maxBound: maxBound,
		numCells: numCells,
	}
	for i := 0; i < 3; i++ {
		g.cellSize[i] = (maxBound[i] - minBound[i]) / float64(numCells[i])
	}
	g.energy = make([]float64, numCells[0]*numCells[1]*numCells[2])
	return g, nil
}

// MinBound is the lower corner of the grid box.
func (g *Grid) MinBound() vecmat.Vec3 { return g.minBound }

// MaxBound is the upper corner of the grid box.
func (g *Grid) MaxBound() vecmat.Vec3 { return g.maxBound }

// NumCells is the voxel count along each axis.
func (g *Grid) NumCells() [3]int { return g.numCells }

// CellSize is the edge lengths of one voxel.
func (g *Grid) CellSize() vecmat.Vec3 { return g.cellSize }

// VoxelVolume is the volume of a single voxel.
func (g *Grid) VoxelVolume() float64 {
	return g.cellSize[0] * g.cellSize[1] * g.cellSize[2]
}

// Contains reports whether pos lies within the grid box.
func (g *Grid) Contains(pos vecmat.Vec3) bool {
	for i := 0; i < 3; i++ {
		if pos[i] < g.minBound[i] || pos[i] > g.maxBound[i] {
			return false
		}
	}
	return true
}

// VoxelOf maps a position to the voxel containing it. ok is false when the
// position lies outside the grid. Positions on the upper boundary clamp to
// the last voxel.
func (g *Grid) VoxelOf(pos vecmat.Vec3) (Index, bool) {
	if !g.Contains(pos) {
		return Index{}, false
	}
	var idx Index
	for i := 0; i < 3; i++ {
		idx[i] = int((pos[i] - g.minBound[i]) / g.cellSize[i])
		if idx[i] >= g.numCells[i] {
			idx[i] = g.numCells[i] - 1
		}
	}
	return idx, true
}

// VoxelBox returns the bounds of one voxel.
func (g *Grid) VoxelBox(idx Index) (min, max vecmat.Vec3) {
	for i := 0; i < 3; i++ {
		min[i] = g.minBound[i] + float64(idx[i])*g.cellSize[i]
		max[i] = min[i] + g.cellSize[i]
	}
	return min, max
}

// DistanceToWall returns the smallest positive distance from pos along dir
// to any of the six slab planes of the given voxel.
func (g *Grid) DistanceToWall(idx Index, pos, dir vecmat.Vec3) float64 {
	lo, hi := g.VoxelBox(idx)
	best := math.MaxFloat64
	for i := 0; i < 3; i++ {
		if dir[i] == 0.0 {
			continue
		}
		d0 := (lo[i] - pos[i]) / dir[i]
		d1 := (hi[i] - pos[i]) / dir[i]
		if d0 > 0.0 && d0 < best {
			best = d0
		}
		if d1 > 0.0 && d1 < best {
			best = d1
		}
	}
	return best
}

// AddEnergy adds a non-negative energy amount to the voxel at idx under
// the grid lock.
func (g *Grid) AddEnergy(idx Index, amount float64) {
	if amount < 0 || math.IsNaN(amount) {
		return
	}
	g.mu.Lock()
	g.energy[g.flat(idx)] += amount
	g.mu.Unlock()
}

// Energy reads one voxel's accumulated energy.
func (g *Grid) Energy(idx Index) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.energy[g.flat(idx)]
}

// Snapshot copies the whole energy field for output, in x-major order.
func (g *Grid) Snapshot() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]float64(nil), g.energy...)
}

// TotalEnergy sums the whole field.
func (g *Grid) TotalEnergy() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0.0
	for _, e := range g.energy {
		total += e
	}
	return total
}

// MaxEnergy returns the largest single-voxel energy.
func (g *Grid) MaxEnergy() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	max := 0.0
	for _, e := range g.energy {
		if e > max {
			max = e
		}
	}
	return max
}

func (g *Grid) flat(idx Index) int {
	return (idx[0]*g.numCells[1]+idx[1])*g.numCells[2] + idx[2]
}
