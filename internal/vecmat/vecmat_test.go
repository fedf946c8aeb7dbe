package vecmat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	v, err := Normalize(Vec3{3, 0, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, Length(v), 1e-12)
	assert.InDelta(t, 0.6, v.X(), 1e-12)
	assert.InDelta(t, 0.8, v.Z(), 1e-12)

	_, err = Normalize(Vec3{})
	assert.ErrorIs(t, err, ErrZeroLength)
}

func TestApplyPosition_TranslationAndScale(t *testing.T) {
	m := BuildWorldTransform(Vec3{1, 2, 3}, Vec3{0, 0, 1}, 0, Vec3{2, 2, 2})
	p := ApplyPosition(m, Vec3{1, 0, 0})
	assert.InDelta(t, 3.0, p.X(), 1e-12)
	assert.InDelta(t, 2.0, p.Y(), 1e-12)
	assert.InDelta(t, 3.0, p.Z(), 1e-12)
}

func TestApplyDirection_NonUniformScaleKeepsNormalsPerpendicular(t *testing.T) {
	// Squash z by 10: a surface normal along +z must stay along +z and
	// stay unit length under the inverse-transpose.
	m := BuildWorldTransform(Vec3{}, Vec3{0, 0, 1}, 0, Vec3{1, 1, 0.1})
	invT := InverseTranspose(m)

	n := ApplyDirection(invT, Vec3{0, 0, 1})
	assert.InDelta(t, 1.0, Length(n), 1e-12)
	assert.InDelta(t, 1.0, n.Z(), 1e-12)

	// A slanted normal must be re-perpendicular to the transformed
	// tangent plane.
	tangent := ApplyPosition(m, Vec3{1, 0, 1}).Sub(ApplyPosition(m, Vec3{}))
	slanted := ApplyDirection(invT, MustNormalize(Vec3{-1, 0, 1}))
	assert.InDelta(t, 0.0, Dot(tangent, slanted), 1e-12)
}

func TestBuildWorldTransform_FacingTakesZToDirection(t *testing.T) {
	for _, facing := range []Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, -1},
		{1, 1, 1},
	} {
		m := BuildWorldTransform(Vec3{}, facing, 0, Vec3{1, 1, 1})
		got := ApplyPosition(m, Vec3{0, 0, 1})
		want := MustNormalize(facing)
		if math.Abs(got.X()-want.X()) > 1e-9 ||
			math.Abs(got.Y()-want.Y()) > 1e-9 ||
			math.Abs(got.Z()-want.Z()) > 1e-9 {
			t.Errorf("facing %v: +z mapped to %v, want %v", facing, got, want)
		}
	}
}

func TestInverse_RoundTrip(t *testing.T) {
	m := BuildWorldTransform(Vec3{4, -2, 7}, Vec3{1, 2, -1}, 0.3, Vec3{2, 0.5, 3})
	inv := Inverse(m)

	p := Vec3{0.7, -1.3, 2.2}
	back := ApplyPosition(inv, ApplyPosition(m, p))
	assert.InDelta(t, p.X(), back.X(), 1e-9)
	assert.InDelta(t, p.Y(), back.Y(), 1e-9)
	assert.InDelta(t, p.Z(), back.Z(), 1e-9)
}
