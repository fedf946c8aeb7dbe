// Package sceneconfig loads the JSON scene description and assembles the
// runnable scene from it: material and spectrum tables, transformed
// meshes, detectors, the voxel grid and the octree parameters.
package sceneconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fwordingham/arctorus/internal/detector"
	"github.com/fwordingham/arctorus/internal/equip"
	"github.com/fwordingham/arctorus/internal/geom"
	"github.com/fwordingham/arctorus/internal/meshio"
	"github.com/fwordingham/arctorus/internal/scene"
	"github.com/fwordingham/arctorus/internal/tableio"
	"github.com/fwordingham/arctorus/internal/transport"
	"github.com/fwordingham/arctorus/internal/vecmat"
	"github.com/fwordingham/arctorus/internal/voxelgrid"
)

// Config mirrors the scene description file.
type Config struct {
	Optimisation Optimisation `json:"optimisation"`
	Simulation   Simulation   `json:"simulation"`
	System       System       `json:"system"`
}

// Optimisation holds the per-packet loop cap and roulette settings.
type Optimisation struct {
	LoopLimit int      `json:"loop_limit"`
	Roulette  Roulette `json:"roulette"`
}

// Roulette holds the low-weight termination parameters.
type Roulette struct {
	Weight   float64 `json:"weight"`
	Chambers float64 `json:"chambers"`
}

// Simulation holds the scene content sections.
type Simulation struct {
	Aether        Aether                  `json:"aether"`
	Entities      map[string]EntityConf   `json:"entities"`
	Lights        map[string]LightConf    `json:"lights"`
	CCDs          map[string]CCDConf      `json:"ccds"`
	Spectrometers map[string]SpectrumConf `json:"spectrometers"`
	Grid          GridConf                `json:"grid"`
	Tree          TreeConf                `json:"tree"`
}

// Aether names the material table of the surrounding medium.
type Aether struct {
	Mat string `json:"mat"`
}

// Placement is the shared world-transform parameter block. An omitted
// facing direction defaults to +z and an omitted scale to unity.
type Placement struct {
	Trans [3]float64 `json:"trans"`
	Dir   [3]float64 `json:"dir"`
	Rot   float64    `json:"rot"`
	Scale [3]float64 `json:"scale"`
}

func (p Placement) withDefaults() Placement {
	if p.Dir == ([3]float64{}) {
		p.Dir = [3]float64{0, 0, 1}
	}
	if p.Scale == ([3]float64{}) {
		p.Scale = [3]float64{1, 1, 1}
	}
	return p
}

// EntityConf places one material volume.
type EntityConf struct {
	Mesh string `json:"mesh"`
	Mat  string `json:"mat"`
	Placement
}

// LightConf places one emissive surface.
type LightConf struct {
	Mesh  string  `json:"mesh"`
	Spec  string  `json:"spec"`
	Power float64 `json:"power"`
	Placement
}

// CCDConf places one imaging detector.
type CCDConf struct {
	Pixel [2]int `json:"pixel"`
	Col   bool   `json:"col"`
	Placement
}

// SpectrumConf places one spectrometer.
type SpectrumConf struct {
	Mesh  string     `json:"mesh"`
	Range [2]float64 `json:"range"`
	Bins  int        `json:"bins"`
	Placement
}

// GridConf bounds the voxel grid.
type GridConf struct {
	Min   [3]float64 `json:"min"`
	Max   [3]float64 `json:"max"`
	Cells [3]int     `json:"cells"`
}

// TreeConf holds the octree construction limits.
type TreeConf struct {
	MinDepth int `json:"min_depth"`
	MaxDepth int `json:"max_depth"`
	MaxTri   int `json:"max_tri"`
}

// System holds runtime reporting settings.
type System struct {
	LogUpdatePeriod float64 `json:"log_update_period"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sceneconfig: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("sceneconfig: %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("sceneconfig: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Optimisation.LoopLimit <= 0 {
		return fmt.Errorf("optimisation.loop_limit must be positive, got %d", c.Optimisation.LoopLimit)
	}
	if c.Optimisation.Roulette.Weight < 0 {
		return fmt.Errorf("optimisation.roulette.weight must be non-negative, got %g", c.Optimisation.Roulette.Weight)
	}
	if c.Optimisation.Roulette.Chambers <= 1 {
		return fmt.Errorf("optimisation.roulette.chambers must exceed 1, got %g", c.Optimisation.Roulette.Chambers)
	}
	if c.Simulation.Aether.Mat == "" {
		return fmt.Errorf("simulation.aether.mat is required")
	}
	if len(c.Simulation.Lights) == 0 {
		return fmt.Errorf("simulation.lights must name at least one light")
	}
	for i := 0; i < 3; i++ {
		if c.Simulation.Grid.Max[i] <= c.Simulation.Grid.Min[i] {
			return fmt.Errorf("simulation.grid bounds degenerate on axis %d", i)
		}
		if c.Simulation.Grid.Cells[i] <= 0 {
			return fmt.Errorf("simulation.grid.cells[%d] must be positive", i)
		}
	}
	if c.Simulation.Tree.MinDepth > c.Simulation.Tree.MaxDepth {
		return fmt.Errorf("simulation.tree.min_depth %d exceeds max_depth %d", c.Simulation.Tree.MinDepth, c.Simulation.Tree.MaxDepth)
	}
	return nil
}

// TransportParams translates the optimisation section.
func (c *Config) TransportParams(workers int) transport.Params {
	return transport.Params{
		LoopLimit:        c.Optimisation.LoopLimit,
		RouletteWeight:   c.Optimisation.Roulette.Weight,
		RouletteChambers: c.Optimisation.Roulette.Chambers,
		Workers:          workers,
	}
}

// LogUpdatePeriod translates the system section.
func (c *Config) LogUpdatePeriod() time.Duration {
	return time.Duration(c.System.LogUpdatePeriod * float64(time.Second))
}

// Build assembles the scene. Relative file paths resolve against baseDir.
// Named sections are instantiated in sorted-name order so object indices
// are stable across runs.
func Build(cfg *Config, baseDir string) (*scene.Scene, error) {
	aether, err := tableio.LoadMaterial(resolve(baseDir, cfg.Simulation.Aether.Mat))
	if err != nil {
		return nil, err
	}

	var entities []equip.Entity
	for _, name := range sortedKeys(cfg.Simulation.Entities) {
		ec := cfg.Simulation.Entities[name]
		mesh, err := loadMesh(baseDir, ec.Mesh, ec.Placement)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		mat, err := tableio.LoadMaterial(resolve(baseDir, ec.Mat))
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		entities = append(entities, equip.Entity{Mesh: mesh, Mat: mat})
	}

	var lights []equip.Light
	for _, name := range sortedKeys(cfg.Simulation.Lights) {
		lc := cfg.Simulation.Lights[name]
		mesh, err := loadMesh(baseDir, lc.Mesh, lc.Placement)
		if err != nil {
			return nil, fmt.Errorf("light %q: %w", name, err)
		}
		spec, err := tableio.LoadSpectrum(resolve(baseDir, lc.Spec))
		if err != nil {
			return nil, fmt.Errorf("light %q: %w", name, err)
		}
		light, err := equip.NewLight(mesh, spec, lc.Power)
		if err != nil {
			return nil, fmt.Errorf("light %q: %w", name, err)
		}
		lights = append(lights, light)
	}

	var ccds []*detector.CCD
	for _, name := range sortedKeys(cfg.Simulation.CCDs) {
		cc := cfg.Simulation.CCDs[name]
		p := cc.Placement.withDefaults()
		ccd, err := detector.NewCCD(name, cc.Pixel[0], cc.Pixel[1], cc.Col,
			vec(p.Trans), vec(p.Dir), radians(p.Rot), vec(p.Scale))
		if err != nil {
			return nil, err
		}
		ccds = append(ccds, ccd)
	}

	var spectrometers []*detector.Spectrometer
	for _, name := range sortedKeys(cfg.Simulation.Spectrometers) {
		sc := cfg.Simulation.Spectrometers[name]
		mesh, err := loadMesh(baseDir, sc.Mesh, sc.Placement)
		if err != nil {
			return nil, fmt.Errorf("spectrometer %q: %w", name, err)
		}
		spec, err := detector.NewSpectrometer(name, mesh, sc.Range[0], sc.Range[1], sc.Bins)
		if err != nil {
			return nil, err
		}
		spectrometers = append(spectrometers, spec)
	}

	grid, err := voxelgrid.New(vec(cfg.Simulation.Grid.Min), vec(cfg.Simulation.Grid.Max), cfg.Simulation.Grid.Cells)
	if err != nil {
		return nil, err
	}

	return scene.Assemble(aether, entities, lights, ccds, spectrometers, grid, scene.TreeParams{
		MinDepth: cfg.Simulation.Tree.MinDepth,
		MaxDepth: cfg.Simulation.Tree.MaxDepth,
		MaxTri:   cfg.Simulation.Tree.MaxTri,
	})
}

func loadMesh(baseDir, path string, p Placement) (geom.Mesh, error) {
	data, err := meshio.Load(resolve(baseDir, path))
	if err != nil {
		return geom.Mesh{}, err
	}
	p = p.withDefaults()
	world := vecmat.BuildWorldTransform(vec(p.Trans), vec(p.Dir), radians(p.Rot), vec(p.Scale))
	return geom.NewMesh(data, world)
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func vec(a [3]float64) vecmat.Vec3 { return vecmat.Vec3{a[0], a[1], a[2]} }

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
