package transport

import (
	"math"

	"github.com/fwordingham/arctorus/internal/vecmat"
)

// reflectionDir mirrors an incoming direction about a surface normal
// oriented against it (dir . norm <= 0).
func reflectionDir(dir, norm vecmat.Vec3) vecmat.Vec3 {
	return vecmat.MustNormalize(dir.Sub(norm.Mul(2.0 * dir.Dot(norm))))
}

// refractionDir bends an incoming direction across an interface via the
// unit-vector form of Snell's law. eta is nFrom/nTo; norm must oppose dir.
// The caller has already excluded total internal reflection.
func refractionDir(dir, norm vecmat.Vec3, eta float64) vecmat.Vec3 {
	cosI := -dir.Dot(norm)
	sinT2 := eta * eta * (1.0 - cosI*cosI)
	if sinT2 > 1.0 {
		sinT2 = 1.0
	}
	cosT := math.Sqrt(1.0 - sinT2)

	return vecmat.MustNormalize(dir.Mul(eta).Add(norm.Mul(eta*cosI - cosT)))
}

// reflectance returns the probability of reflection for an unpolarized
// packet at incidence angle thetaI crossing from refractive index nFrom to
// nTo: unity under total internal reflection, otherwise the mean of the
// two Fresnel polarization reflectances.
func reflectance(thetaI, nFrom, nTo float64) float64 {
	sinI := math.Sin(thetaI)
	if sinI >= nTo/nFrom {
		return 1.0
	}

	cosI := math.Cos(thetaI)
	sinT := nFrom / nTo * sinI
	cosT := math.Sqrt(1.0 - sinT*sinT)

	rs := (nFrom*cosI - nTo*cosT) / (nFrom*cosI + nTo*cosT)
	rp := (nFrom*cosT - nTo*cosI) / (nFrom*cosT + nTo*cosI)

	r := 0.5 * (rs*rs + rp*rp)
	if r > 1.0 {
		r = 1.0
	}
	if r < 0.0 {
		r = 0.0
	}
	return r
}
