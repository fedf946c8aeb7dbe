package transport

import (
	"math"
	"testing"

	"github.com/fwordingham/arctorus/internal/material"
	"github.com/fwordingham/arctorus/internal/randsrc"
	"github.com/fwordingham/arctorus/internal/vecmat"
)

func TestPacket_MoveRoundTrip(t *testing.T) {
	opt := material.OptProps{RefIndex: 1.4, Albedo: 1, Interaction: 1, Anisotropy: 0}
	start := vecmat.Vec3{0.3, -1.2, 5.5}
	pkt := newPacket(start, vecmat.MustNormalize(vecmat.Vec3{1, 2, -3}), 550e-9, opt)

	const d = 123.456
	pkt.move(d)
	pkt.move(-d)

	for i := 0; i < 3; i++ {
		if math.Abs(pkt.pos[i]-start[i]) > 1e-12*d {
			t.Errorf("axis %d drifted to %g from %g", i, pkt.pos[i], start[i])
		}
	}
}

func TestPacket_MoveAdvancesTimeOfFlight(t *testing.T) {
	opt := material.OptProps{RefIndex: 1.5}
	pkt := newPacket(vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 550e-9, opt)

	pkt.move(speedOfLight) // one light-second of path
	if math.Abs(pkt.time-1.5) > 1e-12 {
		t.Errorf("time = %g, want 1.5 (slowed by the refractive index)", pkt.time)
	}
}

func TestPacket_RotateKeepsUnitLengthAndDeflection(t *testing.T) {
	rng := randsrc.New(31, 0)
	opt := material.OptProps{RefIndex: 1}

	for i := 0; i < 10000; i++ {
		// Random initial direction, including near-pole cases.
		dir := vecmat.MustNormalize(vecmat.Vec3{
			rng.Range(-1, 1), rng.Range(-1, 1), rng.Range(-1, 1),
		})
		if i%100 == 0 {
			dir = vecmat.Vec3{0, 0, 1}
		}

		pkt := newPacket(vecmat.Vec3{}, dir, 550e-9, opt)
		dec := rng.Range(0, math.Pi)
		pkt.rotate(dec, rng.Range(0, 2*math.Pi))

		if math.Abs(pkt.dir.Len()-1.0) > 1e-9 {
			t.Fatalf("direction %v not unit after rotate", pkt.dir)
		}
		if got := dir.Dot(pkt.dir); math.Abs(got-math.Cos(dec)) > 1e-9 {
			t.Fatalf("deflection cosine = %g, want %g", got, math.Cos(dec))
		}
	}
}

func TestPacket_MediumStack(t *testing.T) {
	pkt := newPacket(vecmat.Vec3{}, vecmat.Vec3{0, 0, 1}, 550e-9, material.OptProps{})

	if pkt.currentMedium() != aetherIndex {
		t.Fatalf("fresh packet medium = %d, want aether", pkt.currentMedium())
	}
	if _, ok := pkt.previousMedium(); ok {
		t.Fatal("fresh packet reported a previous medium")
	}
	if pkt.popMedium() {
		t.Fatal("popping the aether base must fail")
	}

	pkt.pushMedium(2)
	pkt.pushMedium(0)
	if pkt.currentMedium() != 0 {
		t.Errorf("top = %d, want 0", pkt.currentMedium())
	}
	prev, ok := pkt.previousMedium()
	if !ok || prev != 2 {
		t.Errorf("previous = %d (%v), want 2", prev, ok)
	}

	if !pkt.popMedium() {
		t.Fatal("pop failed with entries on the stack")
	}
	if pkt.currentMedium() != 2 {
		t.Errorf("top after pop = %d, want 2", pkt.currentMedium())
	}
}
