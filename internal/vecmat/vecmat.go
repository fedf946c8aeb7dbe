// Package vecmat provides the fixed-size vector and 4x4 transform kernel
// the rest of the transport engine is built on. It wraps mgl64: photon
// accumulation needs double precision throughout.
package vecmat

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a real 3-vector.
type Vec3 = mgl64.Vec3

// Mat4 is a real 4x4 transform matrix.
type Mat4 = mgl64.Mat4

// ErrZeroLength is returned by Normalize when the input vector's length is
// too small to produce a meaningful direction.
var ErrZeroLength = errors.New("vecmat: cannot normalize a zero-length vector")

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 { return a.Dot(b) }

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 { return a.Cross(b) }

// Length returns the Euclidean norm of v.
func Length(v Vec3) float64 { return v.Len() }

// Normalize returns v scaled to unit length, or ErrZeroLength if v is too
// close to zero to normalize reliably.
func Normalize(v Vec3) (Vec3, error) {
	l := v.Len()
	if l <= 1e-300 || math.IsNaN(l) {
		return Vec3{}, ErrZeroLength
	}
	return v.Mul(1.0 / l), nil
}

// MustNormalize normalizes v, panicking if it is zero-length. It is meant
// for call sites where a zero-length vector is an invariant violation
// rather than recoverable input (e.g. a triangle edge cross-product that
// construction has already validated non-degenerate).
func MustNormalize(v Vec3) Vec3 {
	n, err := Normalize(v)
	if err != nil {
		panic(err)
	}
	return n
}

// IsUnit reports whether v has unit length within tol.
func IsUnit(v Vec3, tol float64) bool {
	return math.Abs(v.Len()-1.0) <= tol
}

// Inverse returns the inverse of m.
func Inverse(m Mat4) Mat4 { return m.Inv() }

// Transpose returns the transpose of m.
func Transpose(m Mat4) Mat4 { return m.Transpose() }

// ApplyPosition transforms a position by m, using w=1 (full affine
// transform including translation).
func ApplyPosition(m Mat4, p Vec3) Vec3 {
	v4 := m.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1.0})
	return Vec3{v4.X(), v4.Y(), v4.Z()}
}

// ApplyDirection transforms a direction by the inverse-transpose of m (w=0),
// renormalizing the result. This is the correct transform for normals and
// other direction vectors under non-uniform scale.
func ApplyDirection(invTranspose Mat4, d Vec3) Vec3 {
	v4 := invTranspose.Mul4x1(mgl64.Vec4{d.X(), d.Y(), d.Z(), 0.0})
	return MustNormalize(Vec3{v4.X(), v4.Y(), v4.Z()})
}

// InverseTranspose returns Inverse(Transpose(m)), the matrix normals must be
// transformed by under a non-uniform scale.
func InverseTranspose(m Mat4) Mat4 {
	return Transpose(Inverse(m))
}

// BuildWorldTransform composes a world transform from a translation, an
// outward facing direction, an in-plane spin (radians) about that facing
// direction, and a per-axis scale. The facing direction is normalized
// first; a rotation taking the local +Z axis to that direction is composed
// with the spin about the local Z axis, then the non-uniform scale is
// applied before translation.
func BuildWorldTransform(translation, facing Vec3, spinRadians float64, scale Vec3) Mat4 {
	fwd := MustNormalize(facing)

	rot := lookRotation(fwd)
	spin := mgl64.HomogRotate3DZ(spinRadians)
	scaleM := mgl64.Scale3D(scale.X(), scale.Y(), scale.Z())
	translate := mgl64.Translate3D(translation.X(), translation.Y(), translation.Z())

	return translate.Mul4(rot).Mul4(spin).Mul4(scaleM)
}

// lookRotation returns a rotation matrix taking the local +Z axis to fwd.
func lookRotation(fwd Vec3) Mat4 {
	zAxis := Vec3{0, 0, 1}
	dot := zAxis.Dot(fwd)

	if dot > 1.0-1e-12 {
		return mgl64.Ident4()
	}
	if dot < -1.0+1e-12 {
		// 180 degree rotation: pick any axis perpendicular to zAxis.
		return mgl64.HomogRotate3D(math.Pi, Vec3{1, 0, 0})
	}

	axis := MustNormalize(zAxis.Cross(fwd))
	angle := math.Acos(clamp(dot, -1, 1))
	return mgl64.HomogRotate3D(angle, axis)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
