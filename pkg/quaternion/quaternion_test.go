package quaternion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityIsUnit(t *testing.T) {
	q := Identity()
	assert.InDelta(t, 1.0, q.Norm(), 1e-9)
}

func TestNewNormalizes(t *testing.T) {
	q := New(2, 0, 0, 0)
	assert.InDelta(t, 1.0, q.Norm(), 1e-9)
	assert.InDelta(t, 1.0, q.W, 1e-9)
}

func TestMulIdentity(t *testing.T) {
	q := New(0.5, 0.5, 0.5, 0.5)
	assert.InDelta(t, q.W, q.Mul(Identity()).W, 1e-12)
	assert.InDelta(t, q.X, q.Mul(Identity()).X, 1e-12)
}

func TestMulAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a, b, c := RandomUnit(rng), RandomUnit(rng), RandomUnit(rng)

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))

	assert.InDelta(t, left.W, right.W, 1e-9)
	assert.InDelta(t, left.X, right.X, 1e-9)
	assert.InDelta(t, left.Y, right.Y, 1e-9)
	assert.InDelta(t, left.Z, right.Z, 1e-9)
}

func TestGeodesicIdenticalIsZero(t *testing.T) {
	q := New(0.1, 0.2, 0.3, 0.9)
	assert.InDelta(t, 0.0, q.Geodesic(q), 1e-9)
}

func TestGeodesicAntipodalIsZero(t *testing.T) {
	q := New(0.1, 0.2, 0.3, 0.9)
	assert.InDelta(t, 0.0, q.Geodesic(q.Neg()), 1e-9)
}

func TestGeodesicOrthogonalIsHalfPi(t *testing.T) {
	a := Quaternion{W: 1}
	b := Quaternion{X: 1}
	assert.InDelta(t, math.Pi/2, a.Geodesic(b), 1e-9)
}

func TestSlerpEndpoints(t *testing.T) {
	a := New(1, 0.2, 0, 0)
	b := New(0, 1, 0.3, 0)

	start := a.Slerp(b, 0)
	end := a.Slerp(b, 1)

	assert.InDelta(t, a.W, start.W, 1e-6)
	assert.InDelta(t, b.W, end.W, 1e-6)
}

func TestSlerpMidpointEquidistant(t *testing.T) {
	a := New(1, 0, 0, 0)
	b := New(0, 1, 0, 0)
	mid := a.Slerp(b, 0.5)

	assert.InDelta(t, a.Geodesic(mid), b.Geodesic(mid), 1e-9)
}

func TestSlerpNearParallelFallsBackToNLERP(t *testing.T) {
	a := New(1, 0, 0, 0)
	b := New(1, 1e-6, 0, 0)
	mid := a.Slerp(b, 0.5)
	assert.InDelta(t, 1.0, mid.Norm(), 1e-9)
}

func TestSlerpAntipodalTakesShortestArc(t *testing.T) {
	a := New(1, 0, 0, 0)
	b := a.Neg()
	// b is antipodal to a; slerp should move along the short arc, not
	// through a degenerate long way around.
	mid := a.Slerp(b, 0.5)
	assert.InDelta(t, 1.0, mid.Norm(), 1e-9)
}

func TestRandomUnitIsUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		q := RandomUnit(rng)
		assert.InDelta(t, 1.0, q.Norm(), 1e-9)
	}
}

func TestRandomNearWithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	center := New(1, 0, 0, 0)
	radius := 0.3

	for i := 0; i < 200; i++ {
		q, err := RandomNear(center, radius, rng)
		require.NoError(t, err)
		assert.LessOrEqual(t, center.Geodesic(q), radius+1e-9)
	}
}

func TestRandomNearRejectsLargeRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := RandomNear(Identity(), math.Pi+0.01, rng)
	require.Error(t, err)
}

func TestRandomNearRejectsNegativeRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := RandomNear(Identity(), -0.1, rng)
	require.Error(t, err)
}

func TestRandomNearAcceptsRadiusBeyondHemisphere(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	center := New(1, 0, 0, 0)
	radius := math.Pi / 1.618033988749895 // R_N, which exceeds π/2

	for i := 0; i < 50; i++ {
		q, err := RandomNear(center, radius, rng)
		require.NoError(t, err)
		assert.LessOrEqual(t, center.Geodesic(q), math.Pi/2+1e-9)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	q := New(0.5, 0.5, 0.5, 0.5)
	got := FromArray(q.Array())
	assert.Equal(t, q, got)
}
