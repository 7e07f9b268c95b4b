package phasor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWrapsNegative(t *testing.T) {
	p := New(-0.5)
	assert.GreaterOrEqual(t, p.Theta, 0.0)
	assert.Less(t, p.Theta, TwoPi)
}

func TestNewWrapsAboveTwoPi(t *testing.T) {
	p := New(TwoPi + 1.0)
	assert.InDelta(t, 1.0, p.Theta, 1e-9)
}

func TestGoldenAngleIndexExactSpacing(t *testing.T) {
	p0 := GoldenAngleIndex(0)
	p1 := GoldenAngleIndex(1)
	assert.InDelta(t, 0.0, p0.Theta, 1e-9)
	assert.InDelta(t, GoldenAngle, p1.Theta, 1e-9)
}

func TestGoldenAngleIndexMaximizesSeparation(t *testing.T) {
	n := 10
	phases := make([]float64, n)
	for i := 0; i < n; i++ {
		phases[i] = GoldenAngleIndex(i).Theta
	}

	minDist := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Abs(phases[i] - phases[j])
			if d > math.Pi {
				d = TwoPi - d
			}
			if d < minDist {
				minDist = d
			}
		}
	}
	assert.Greater(t, minDist, 0.0)
}

func TestInterferenceInPhase(t *testing.T) {
	a := New(1.0)
	b := New(1.0)
	assert.InDelta(t, 1.0, a.Interference(b), 1e-12)
}

func TestInterferenceOutOfPhase(t *testing.T) {
	a := New(0)
	b := New(math.Pi)
	assert.InDelta(t, -1.0, a.Interference(b), 1e-12)
}

func TestInterferenceOrthogonal(t *testing.T) {
	a := New(0)
	b := New(math.Pi / 2)
	assert.InDelta(t, 0.0, a.Interference(b), 1e-9)
}

func TestInterferenceSymmetric(t *testing.T) {
	a := New(0.7)
	b := New(2.1)
	assert.InDelta(t, a.Interference(b), b.Interference(a), 1e-12)
}

func TestCircularInterpEndpoints(t *testing.T) {
	a := New(0.1)
	b := New(1.5)
	assert.InDelta(t, a.Theta, a.CircularInterp(b, 0).Theta, 1e-6)
	assert.InDelta(t, b.Theta, a.CircularInterp(b, 1).Theta, 1e-6)
}

func TestCircularInterpShortestArc(t *testing.T) {
	a := New(0.1)
	b := New(TwoPi - 0.1)
	mid := a.CircularInterp(b, 0.5)
	// shortest arc between these two near-zero phases passes through 0,
	// not through pi.
	assert.Less(t, math.Min(mid.Theta, TwoPi-mid.Theta), 0.2)
}

func TestCircularMeanOfIdenticalPhases(t *testing.T) {
	mean := CircularMean([]float64{0.5, 0.5, 0.5})
	assert.InDelta(t, 0.5, mean, 1e-9)
}

func TestCircularMeanOppositePhasesIsUndefined(t *testing.T) {
	mean := CircularMean([]float64{0, math.Pi})
	assert.InDelta(t, 0.0, mean, 1e-9)
}
