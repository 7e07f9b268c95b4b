// Package quaternion implements unit quaternions as points on S³, the
// geometric substrate every occurrence position in the memory engine is
// stored as.
package quaternion

import (
	"math"
	"math/rand"

	"github.com/srobinson/attention-matters/pkg/daerr"
)

// SlerpThreshold is the dot-product magnitude above which Slerp falls back
// to a linear (NLERP) interpolation to avoid division-by-near-zero in the
// spherical formula.
const SlerpThreshold = 0.9995

// Quaternion is a unit 4-tuple (w,x,y,z). Values returned by every
// constructor and operation in this package satisfy |q| = 1 within 1e-9
// when their inputs are unit, except FromArray, which keeps its input as
// given.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the multiplicative identity quaternion (1,0,0,0).
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// New builds a quaternion from components and normalizes it.
func New(w, x, y, z float64) Quaternion {
	return Quaternion{W: w, X: x, Y: y, Z: z}.Normalize()
}

// Norm returns the Euclidean length of q in R⁴.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns q scaled to unit length. A zero quaternion normalizes
// to Identity rather than producing NaNs.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n < 1e-15 {
		return Identity()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// Dot returns the Euclidean inner product of q and o as 4-vectors.
func (q Quaternion) Dot(o Quaternion) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// Neg returns the additive inverse (-q), which represents the same
// rotation as q but is the antipode on S³.
func (q Quaternion) Neg() Quaternion {
	return Quaternion{-q.W, -q.X, -q.Y, -q.Z}
}

// Mul returns the Hamilton product q*o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Geodesic returns the angular distance between q and o on S³, using the
// absolute inner product so antipodal quaternions (which represent the
// same rotation) are identified.
func (q Quaternion) Geodesic(o Quaternion) float64 {
	d := q.Dot(o)
	if d < 0 {
		d = -d
	}
	if d > 1 {
		d = 1
	}
	return math.Acos(d)
}

// Slerp returns the spherical linear interpolation from q to o at
// parameter t ∈ [0,1], using the package's default near-parallel fallback
// threshold. Equivalent to SlerpWithThreshold(o, t, SlerpThreshold).
func (q Quaternion) Slerp(o Quaternion, t float64) Quaternion {
	return q.SlerpWithThreshold(o, t, SlerpThreshold)
}

// SlerpWithThreshold is Slerp with an explicit near-parallel fallback
// threshold, letting callers that carry their own configured threshold
// (rather than the package default) drive the same interpolation.
// Antipodal quaternions are flipped to take the shortest arc; inputs whose
// dot product exceeds threshold fall back to a normalized linear
// interpolation to avoid numerical blowup in the spherical formula.
func (q Quaternion) SlerpWithThreshold(o Quaternion, t, threshold float64) Quaternion {
	dot := q.Dot(o)
	target := o
	if dot < 0 {
		target = o.Neg()
		dot = -dot
	}
	if dot > 1 {
		dot = 1
	}

	if dot > threshold {
		return Quaternion{
			W: q.W + t*(target.W-q.W),
			X: q.X + t*(target.X-q.X),
			Y: q.Y + t*(target.Y-q.Y),
			Z: q.Z + t*(target.Z-q.Z),
		}.Normalize()
	}

	theta0 := math.Acos(dot)
	theta := theta0 * t
	sinTheta0 := math.Sin(theta0)
	sinTheta := math.Sin(theta)

	s0 := math.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		W: s0*q.W + s1*target.W,
		X: s0*q.X + s1*target.X,
		Y: s0*q.Y + s1*target.Y,
		Z: s0*q.Z + s1*target.Z,
	}.Normalize()
}

// RandomUnit samples a quaternion uniformly on S³ using Shoemake's method.
func RandomUnit(rng *rand.Rand) Quaternion {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()

	s1 := math.Sqrt(1 - u1)
	s2 := math.Sqrt(u1)
	theta1 := 2 * math.Pi * u2
	theta2 := 2 * math.Pi * u3

	return Quaternion{
		W: s1 * math.Sin(theta1),
		X: s1 * math.Cos(theta1),
		Y: s2 * math.Sin(theta2),
		Z: s2 * math.Cos(theta2),
	}
}

// gaussRandom returns a standard-normal sample via the Box-Muller
// transform, used to pick a uniformly random rotation axis for RandomNear.
func gaussRandom(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 <= 1e-15 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// RandomNear samples a quaternion near center by rotating it through a
// random angle of at most r about a uniformly random axis. The rotation
// moves the point by half that angle as measured by Geodesic, so every
// sample lies within r/2 of center. Samples are not uniformly distributed
// over that cap. It fails with daerr.ErrInvalidRadius if r is negative or
// exceeds π.
func RandomNear(center Quaternion, r float64, rng *rand.Rand) (Quaternion, error) {
	if r < 0 || r > math.Pi {
		return Quaternion{}, daerr.New(daerr.KindInvalidRadius, "quaternion.RandomNear", nil, r)
	}
	if r == 0 {
		return center, nil
	}

	ax, ay, az := gaussRandom(rng), gaussRandom(rng), gaussRandom(rng)
	axisNorm := math.Sqrt(ax*ax + ay*ay + az*az)
	if axisNorm < 1e-15 {
		ax, ay, az, axisNorm = 1, 0, 0, 1
	}
	ax, ay, az = ax/axisNorm, ay/axisNorm, az/axisNorm

	// The rotation angle is drawn as r·sqrt(u), which places samples farther
	// from center than a linear draw would.
	angle := r * math.Sqrt(rng.Float64())

	half := angle / 2
	rotation := Quaternion{
		W: math.Cos(half),
		X: ax * math.Sin(half),
		Y: ay * math.Sin(half),
		Z: az * math.Sin(half),
	}

	return rotation.Mul(center).Normalize(), nil
}

// Array returns q as a [w,x,y,z] slice, the wire-format representation.
func (q Quaternion) Array() [4]float64 {
	return [4]float64{q.W, q.X, q.Y, q.Z}
}

// FromArray builds a Quaternion from a [w,x,y,z] array without
// renormalizing, so exact snapshot round-trips are preserved bit-for-bit.
func FromArray(a [4]float64) Quaternion {
	return Quaternion{W: a[0], X: a[1], Y: a[2], Z: a[3]}
}
