package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterial_DerivedProperties(t *testing.T) {
	// Constant mean free paths: a = 2, s = 4.
	w := []float64{400e-9, 700e-9}
	mat, err := New(w,
		[]float64{1.5, 1.5},
		[]float64{2, 2},
		[]float64{4, 4},
		[]float64{0.9, 0.9},
	)
	require.NoError(t, err)

	p, err := mat.Sample(550e-9)
	require.NoError(t, err)

	// interaction = 1/a + 1/s, albedo = (1/s)/interaction.
	assert.InDelta(t, 0.75, p.Interaction, 1e-12)
	assert.InDelta(t, (0.25)/0.75, p.Albedo, 1e-12)
	assert.InDelta(t, 1.5, p.RefIndex, 1e-12)
	assert.InDelta(t, 0.9, p.Anisotropy, 1e-12)
}

func TestMaterial_Interpolation(t *testing.T) {
	w := []float64{400e-9, 600e-9}
	mat, err := New(w,
		[]float64{1.0, 2.0},
		[]float64{1, 1},
		[]float64{1, 1},
		[]float64{0, 0},
	)
	require.NoError(t, err)

	n, err := mat.RefIndex(500e-9)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, n, 1e-12)

	// Endpoints are in range.
	_, err = mat.RefIndex(400e-9)
	assert.NoError(t, err)
	_, err = mat.RefIndex(600e-9)
	assert.NoError(t, err)

	// Outside the table is an error, not an extrapolation.
	_, err = mat.RefIndex(700e-9)
	assert.Error(t, err)
	_, err = mat.Sample(399e-9)
	assert.Error(t, err)
}

func TestMaterial_RejectsBadTables(t *testing.T) {
	w := []float64{400e-9, 700e-9}
	ones := []float64{1, 1}

	_, err := New(w, []float64{0, 1}, ones, ones, []float64{0, 0})
	assert.Error(t, err, "non-positive refractive index")

	_, err = New(w, ones, []float64{-1, 1}, ones, []float64{0, 0})
	assert.Error(t, err, "negative absorption length")

	_, err = New(w, ones, ones, ones, []float64{1, 0})
	assert.Error(t, err, "anisotropy at the open bound")

	_, err = New([]float64{700e-9, 400e-9}, ones, ones, ones, []float64{0, 0})
	assert.Error(t, err, "descending axis")
}

func TestSpectrum_SampleStaysInSupport(t *testing.T) {
	spec, err := NewSpectrum([]float64{500e-9, 600e-9, 650e-9}, []float64{1, 3, 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 10000; i++ {
		wl := spec.Sample(rng.Float64)
		if wl < spec.Min() || wl > spec.Max() {
			t.Fatalf("sample %g outside support [%g, %g]", wl, spec.Min(), spec.Max())
		}
	}
}

func TestSpectrum_FlatDistributionMean(t *testing.T) {
	spec, err := NewSpectrum([]float64{400e-9, 800e-9}, []float64{1, 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += spec.Sample(rng.Float64)
	}
	mean := sum / n
	assert.InDelta(t, 600e-9, mean, 2e-9)
}

func TestSpectrum_LinearRampMean(t *testing.T) {
	// p(x) ramping from ~0 to 1 over [1,2] um: density proportional to
	// the distance above the lower bound has mean 2/3 of the range above
	// that bound. Weights must be
	// strictly positive, so use a near-zero start.
	spec, err := NewSpectrum([]float64{1e-6, 2e-6}, []float64{1e-9, 1.0})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += spec.Sample(rng.Float64)
	}
	mean := sum / n

	want := 1e-6 + 2.0/3.0*1e-6
	if math.Abs(mean-want) > 5e-9 {
		t.Errorf("ramp mean = %g, want %g", mean, want)
	}
}

func TestSpectrum_RejectsBadInput(t *testing.T) {
	_, err := NewSpectrum([]float64{500e-9}, []float64{1})
	assert.Error(t, err, "single node")

	_, err = NewSpectrum([]float64{600e-9, 500e-9}, []float64{1, 1})
	assert.Error(t, err, "descending axis")

	_, err = NewSpectrum([]float64{500e-9, 600e-9}, []float64{1, 0})
	assert.Error(t, err, "zero weight")
}
