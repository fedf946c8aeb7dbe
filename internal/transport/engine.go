// Package transport drives photon packets through the scene: it samples
// competing event distances, arbitrates the nearest, and performs
// scatter / voxel-crossing / interface / detector events until each packet
// terminates. Workers run disjoint packet batches in parallel; all shared
// mutation goes through the grid and detector locks.
package transport

import (
	"math"
	"sync"

	"github.com/fwordingham/arctorus/internal/logx"
	"github.com/fwordingham/arctorus/internal/octree"
	"github.com/fwordingham/arctorus/internal/randsrc"
	"github.com/fwordingham/arctorus/internal/scene"
	"github.com/fwordingham/arctorus/internal/vecmat"
	"github.com/fwordingham/arctorus/internal/voxelgrid"
)

// SmoothingLength is the nudge applied past voxel and interface
// boundaries so the same surface is not re-selected next iteration.
const SmoothingLength = 1e-12

// Default Raman side-channel constants: shift probability per scatter and
// the fixed wavelength packets are reassigned to.
const (
	DefaultRamanProb       = 0.01
	DefaultRamanWavelength = 700e-9
)

// dirTol is the unit-length tolerance the direction invariant is checked
// against.
const dirTol = 1e-9

// Params configure a run.
type Params struct {
	// LoopLimit is the per-packet iteration cap before a stuck kill.
	LoopLimit int
	// RouletteWeight is the weight threshold below which packets play
	// roulette.
	RouletteWeight float64
	// RouletteChambers is the roulette survival denominator; survivors
	// have their weight multiplied by it, preserving expected energy.
	RouletteChambers float64

	// RamanProb is the per-scatter probability of the one-time Raman
	// shift; RamanWavelength is the wavelength shifted packets take.
	RamanProb       float64
	RamanWavelength float64

	// Workers is the parallel worker count; zero or negative means one.
	Workers int

	// RecordPaths turns on per-packet path archiving. Off by default:
	// it allocates on the hot path.
	RecordPaths bool
}

type eventKind int

const (
	eventNone eventKind = iota
	eventScatter
	eventVoxelCross
	eventEntityHit
	eventCCDHit
	eventSpectrometerHit
)

// Engine runs packets through one assembled scene.
type Engine struct {
	scene  *scene.Scene
	params Params
	log    logx.Logger

	// Paths is populated when Params.RecordPaths is set.
	Paths PathArchive

	progMu   sync.Mutex
	progress []float64
}

// New builds an engine. Zero-valued Raman parameters take the defaults;
// a zero worker count means one worker.
func New(sc *scene.Scene, params Params, log logx.Logger) *Engine {
	if params.RamanProb == 0 {
		params.RamanProb = DefaultRamanProb
	}
	if params.RamanWavelength == 0 {
		params.RamanWavelength = DefaultRamanWavelength
	}
	if params.Workers < 1 {
		params.Workers = 1
	}
	if log == nil {
		log = logx.NewNopLogger()
	}
	return &Engine{
		scene:    sc,
		params:   params,
		log:      log,
		progress: make([]float64, params.Workers),
	}
}

// Progress snapshots the per-worker completion percentages.
func (e *Engine) Progress() []float64 {
	e.progMu.Lock()
	defer e.progMu.Unlock()
	return append([]float64(nil), e.progress...)
}

func (e *Engine) setProgress(worker int, pct float64) {
	e.progMu.Lock()
	e.progress[worker] = pct
	e.progMu.Unlock()
}

// Run partitions nPackets across the configured workers, runs them to
// completion, and returns the merged counters. Per-worker random streams
// are derived from the run seed, so a single-worker run is repeatable.
func (e *Engine) Run(nPackets int64, seed int64) Counters {
	workers := e.params.Workers

	batch := nPackets / int64(workers)
	remainder := nPackets % int64(workers)

	var mu sync.Mutex
	var total Counters
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		n := batch
		if int64(w) < remainder {
			n++
		}
		go func(widx int, n int64) {
			defer wg.Done()
			c := e.RunWorker(n, widx, seed)
			mu.Lock()
			total.add(c)
			mu.Unlock()
		}(w, n)
	}
	wg.Wait()

	e.log.Infof("run complete: emitted=%d scatters=%d raman=%d escaped=%d ccd=%d (raman=%d other=%d) spectrometer=%d rouletted=%d zeroweight=%d looplimit=%d badstart=%d",
		total.Emitted, total.Scatters, total.RamanScatters, total.Escaped,
		total.CCDArrivals, total.CCDRaman, total.CCDNonRaman, total.SpectrometerHit,
		total.Rouletted, total.ZeroWeight, total.LoopLimit, total.BadStart)

	return total
}

// RunWorker emits and transports n packets on one worker, using the
// worker's own random stream. Each packet runs to termination before the
// next starts.
func (e *Engine) RunWorker(n int64, workerID int, seed int64) Counters {
	rng := randsrc.New(seed, workerID)
	var c Counters

	for i := int64(0); i < n; i++ {
		if workerID < len(e.progress) {
			e.setProgress(workerID, 100.0*float64(i)/float64(n))
		}

		c.Emitted++

		li := e.scene.LightSelect.Sample(rng)
		pos, dir, wavelength := e.scene.Lights[li].Emit(rng)

		aetherOpt, err := e.scene.Aether.Sample(wavelength)
		if err != nil {
			e.log.Warnf("packet dropped at emission: %v", err)
			c.BadStart++
			continue
		}

		pkt := newPacket(pos, dir, wavelength, aetherOpt)
		e.transport(pkt, rng, &c)

		if e.params.RecordPaths {
			e.Paths.add(pkt.path)
		}
	}

	if workerID < len(e.progress) {
		e.setProgress(workerID, 100.0)
	}
	return c
}

// transport iterates one packet to a terminal event.
func (e *Engine) transport(pkt *packet, rng *randsrc.RNG, c *Counters) {
	grid := e.scene.Grid

	voxIdx, ok := grid.VoxelOf(pkt.pos)
	if !ok {
		e.log.Warnf("packet emitted outside the voxel grid at %v", pkt.pos)
		c.BadStart++
		return
	}

	if e.params.RecordPaths {
		pkt.recordPath()
	}

	// pending is the absorbed energy owed to the current voxel; it is
	// committed under the grid lock at voxel crossings and at packet
	// termination.
	pending := 0.0
	commit := func() {
		if pending > 0 {
			grid.AddEnergy(voxIdx, pending)
			pending = 0
		}
	}

	loops := 0
	for {
		loops++
		if loops > e.params.LoopLimit {
			commit()
			c.LoopLimit++
			return
		}

		if !vecmat.IsUnit(pkt.dir, dirTol) {
			e.log.Warnf("packet direction drifted off unit length (|d|=%g); terminating", vecmat.Length(pkt.dir))
			commit()
			c.BadStart++
			return
		}

		// Roulette: low-weight packets either die or survive with a
		// compensating weight boost, keeping the expectation unchanged.
		if pkt.weight <= e.params.RouletteWeight {
			if rng.Uniform() <= 1.0/e.params.RouletteChambers {
				pkt.weight *= e.params.RouletteChambers
			} else {
				commit()
				c.Rouletted++
				return
			}
		}

		kind, dist, hit := e.determineEvent(pkt, rng, voxIdx)

		switch kind {
		case eventNone:
			e.log.Warnf("no finite positive event distance for packet at %v; terminating", pkt.pos)
			commit()
			c.BadStart++
			return

		case eventScatter:
			pending += dist * pkt.weight
			pkt.move(dist)
			if e.params.RecordPaths {
				pkt.recordPath()
			}

			pkt.rotate(rng.HenyeyGreenstein(pkt.opt.Anisotropy), rng.Range(0.0, 2.0*math.Pi))
			c.Scatters++

			if !pkt.ramanShifted && rng.Uniform() <= e.params.RamanProb {
				pkt.ramanShifted = true
				pkt.ramanDepth = pkt.pos[2]
				pkt.wavelength = e.params.RamanWavelength
				c.RamanScatters++

				opt, err := e.scene.MaterialOf(pkt.currentMedium()).Sample(pkt.wavelength)
				if err != nil {
					e.log.Warnf("raman shift outside material table: %v", err)
					commit()
					c.BadStart++
					return
				}
				pkt.opt = opt
			}

			pkt.weight *= pkt.opt.Albedo
			if pkt.weight <= 0 {
				commit()
				c.ZeroWeight++
				return
			}

		case eventVoxelCross:
			pending += dist * pkt.weight
			commit()

			pkt.move(dist + SmoothingLength)
			if e.params.RecordPaths {
				pkt.recordPath()
			}

			if !grid.Contains(pkt.pos) {
				c.Escaped++
				if pkt.ramanShifted {
					c.EscapedRaman++
				}
				return
			}
			voxIdx, _ = grid.VoxelOf(pkt.pos)

		case eventEntityHit:
			if !e.entityInterface(pkt, rng, dist, hit, &pending) {
				commit()
				c.BadStart++
				return
			}
			if e.params.RecordPaths {
				pkt.recordPath()
			}

		case eventCCDHit:
			pending += dist * pkt.weight
			pkt.move(dist)
			if e.params.RecordPaths {
				pkt.recordPath()
			}
			commit()

			c.CCDArrivals++
			if pkt.ramanShifted {
				c.CCDRaman++
			} else {
				c.CCDNonRaman++
			}

			// Front-face hits register only for Raman-shifted packets:
			// this CCD images the Raman channel.
			if pkt.dir.Dot(hit.Norm) < 0.0 && pkt.ramanShifted {
				ccd := e.scene.CCDs[hit.Obj]
				ccd.AddHit(pkt.pos, pkt.weight, e.params.RamanWavelength)
				ccd.AddCount(pkt.pos, pkt.ramanDepth, loops)
			}
			return

		case eventSpectrometerHit:
			pending += dist * pkt.weight
			pkt.move(dist)
			if e.params.RecordPaths {
				pkt.recordPath()
			}
			commit()

			c.SpectrometerHit++
			if pkt.dir.Dot(hit.Norm) < 0.0 {
				e.scene.Spectrometers[hit.Obj].AddHit(pkt.wavelength, pkt.weight)
			}
			return
		}
	}
}

// determineEvent samples the competing event distances and returns the
// nearest strictly-positive finite one. The octree leaf is re-resolved
// from the packet position every iteration, so the triangle queries always
// run against the cell actually containing the packet.
func (e *Engine) determineEvent(pkt *packet, rng *randsrc.RNG, voxIdx voxelgrid.Index) (eventKind, float64, octree.Hit) {
	scatDist := math.Inf(1)
	if pkt.opt.Interaction > 0 {
		if xi := rng.Uniform(); xi > 0 {
			scatDist = -math.Log(xi) / pkt.opt.Interaction
		}
	}

	voxDist := e.scene.Grid.DistanceToWall(voxIdx, pkt.pos, pkt.dir)

	leaf := e.scene.Tree.Leaf(pkt.pos)
	entityHit, entityOK := leaf.NearestEntityHit(pkt.pos, pkt.dir)
	ccdHit, ccdOK := leaf.NearestCCDHit(pkt.pos, pkt.dir)
	specHit, specOK := leaf.NearestSpectrometerHit(pkt.pos, pkt.dir)

	best := eventNone
	bestDist := math.Inf(1)
	var bestHit octree.Hit

	consider := func(kind eventKind, dist float64, hit octree.Hit) {
		if dist > 0 && !math.IsInf(dist, 1) && !math.IsNaN(dist) && dist < bestDist {
			best, bestDist, bestHit = kind, dist, hit
		}
	}

	consider(eventScatter, scatDist, octree.Hit{})
	consider(eventVoxelCross, voxDist, octree.Hit{})
	if entityOK {
		consider(eventEntityHit, entityHit.Dist, entityHit)
	}
	if ccdOK {
		consider(eventCCDHit, ccdHit.Dist, ccdHit)
	}
	if specOK {
		consider(eventSpectrometerHit, specHit.Dist, specHit)
	}

	return best, bestDist, bestHit
}

// entityInterface performs the material-interface event: Fresnel
// reflection or Snell refraction with medium-stack bookkeeping. Returns
// false when the packet must be terminated because an invariant failed;
// the caller commits pending energy and counts the kill.
func (e *Engine) entityInterface(pkt *packet, rng *randsrc.RNG, dist float64, hit octree.Hit, pending *float64) bool {
	if dist < SmoothingLength {
		e.log.Warnf("interface distance %g below the smoothing length; terminating packet", dist)
		return false
	}

	// Orient the normal against the ray.
	norm := hit.Norm
	if pkt.dir.Dot(norm) > 0.0 {
		norm = norm.Mul(-1.0)
	}

	// Entering a new entity or exiting the current one?
	exiting := pkt.currentMedium() == hit.Obj
	var fromIdx, toIdx int
	if exiting {
		prev, ok := pkt.previousMedium()
		if !ok {
			e.log.Warnf("medium stack empty on exit from entity %d; terminating packet", hit.Obj)
			return false
		}
		fromIdx, toIdx = hit.Obj, prev
	} else {
		fromIdx, toIdx = pkt.currentMedium(), hit.Obj
	}

	nFrom, err := e.scene.MaterialOf(fromIdx).RefIndex(pkt.wavelength)
	if err != nil {
		e.log.Warnf("interface refractive index lookup: %v", err)
		return false
	}
	nTo, err := e.scene.MaterialOf(toIdx).RefIndex(pkt.wavelength)
	if err != nil {
		e.log.Warnf("interface refractive index lookup: %v", err)
		return false
	}

	cosI := -pkt.dir.Dot(norm)
	if cosI > 1.0 {
		cosI = 1.0
	}
	thetaI := math.Acos(cosI)

	if rng.Uniform() <= reflectance(thetaI, nFrom, nTo) {
		// Reflect: stop just short of the surface and mirror.
		*pending += (dist - SmoothingLength) * pkt.weight
		pkt.move(dist - SmoothingLength)
		pkt.dir = reflectionDir(pkt.dir, norm)
		return true
	}

	// Refract: step just past the surface, bend, and swap media.
	*pending += (dist + SmoothingLength) * pkt.weight
	pkt.move(dist + SmoothingLength)
	pkt.dir = refractionDir(pkt.dir, norm, nFrom/nTo)

	if exiting {
		if !pkt.popMedium() {
			e.log.Warnf("medium stack empty on exit from entity %d; terminating packet", hit.Obj)
			return false
		}
	} else {
		pkt.pushMedium(toIdx)
	}

	opt, err := e.scene.MaterialOf(pkt.currentMedium()).Sample(pkt.wavelength)
	if err != nil {
		e.log.Warnf("optical property lookup after interface: %v", err)
		return false
	}
	pkt.opt = opt

	return true
}
