// Package phasor implements the scalar phase used for interference and
// Kuramoto coupling. A phasor is not a position on S³; it rides alongside
// a quaternion position as a separate, independent degree of freedom.
package phasor

import "math"

// TwoPi is used throughout for phase wrapping.
const TwoPi = 2 * math.Pi

// Phi is the golden ratio, the symbolic root every core constant derives
// from.
const Phi = 1.618033988749895

// GoldenAngle is 2π/φ², the irrational rotation that maximizes minimum
// pairwise separation on a circle.
const GoldenAngle = TwoPi / (Phi * Phi)

// Phasor is a scalar phase θ ∈ [0, 2π).
type Phasor struct {
	Theta float64
}

// New normalizes theta into [0, 2π).
func New(theta float64) Phasor {
	t := math.Mod(theta, TwoPi)
	if t < 0 {
		t += TwoPi
	}
	return Phasor{Theta: t}
}

// GoldenAngleIndex returns the phase assigned to insertion index k,
// (k * GoldenAngle) mod 2π. Successive indices are maximally separated.
func GoldenAngleIndex(k int) Phasor {
	return New(float64(k) * GoldenAngle)
}

// CircularInterp interpolates from p to o at parameter t via 2D
// unit-vector interpolation followed by atan2, taking the shortest arc.
func (p Phasor) CircularInterp(o Phasor, t float64) Phasor {
	x1, y1 := math.Cos(p.Theta), math.Sin(p.Theta)
	x2, y2 := math.Cos(o.Theta), math.Sin(o.Theta)

	x := x1 + t*(x2-x1)
	y := y1 + t*(y2-y1)

	if x == 0 && y == 0 {
		return p
	}
	return New(math.Atan2(y, x))
}

// Interference returns cos(p.Theta - o.Theta) ∈ [-1,1]; 1 is fully
// constructive, -1 fully destructive.
func (p Phasor) Interference(o Phasor) float64 {
	return math.Cos(p.Theta - o.Theta)
}

// CircularMean returns the vector mean of a set of phases via Σsin/Σcos
// and atan2. Used by the Kuramoto coupling step to find the phase every
// cross-manifold occurrence of a word is nudged toward. When the phases
// cancel (resultant shorter than 1e-9) the mean is undefined and 0 is
// returned.
func CircularMean(phases []float64) float64 {
	var sx, sy float64
	for _, th := range phases {
		sx += math.Cos(th)
		sy += math.Sin(th)
	}
	if math.Hypot(sx, sy) < 1e-9 {
		return 0
	}
	return math.Atan2(sy, sx)
}

// WeightedCircularMean is CircularMean with a per-phase weight, used for
// the mass-weighted mean phase in the coupling step.
func WeightedCircularMean(phases, weights []float64) float64 {
	var sx, sy float64
	for i, th := range phases {
		w := weights[i]
		sx += w * math.Cos(th)
		sy += w * math.Sin(th)
	}
	if sx == 0 && sy == 0 {
		return 0
	}
	return math.Atan2(sy, sx)
}
