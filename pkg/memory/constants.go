package memory

import (
	"math"

	"github.com/srobinson/attention-matters/pkg/phasor"
)

// Fixed counts and thresholds. The φ/π-derived geometric values are the
// vars below (and phasor.Phi, phasor.GoldenAngle).
const (
	// TotalMass is M, the target sum of the mass table after every
	// mutation.
	TotalMass = 1.0

	// NovelInterferenceThreshold is τ_novel, the minimum interference a
	// conscious/subconscious occurrence pair needs to surface as a
	// novel link.
	NovelInterferenceThreshold = 0.8

	// VividFragmentCap is K, the number of top-scoring occurrences
	// extracted as fragments per vivid neighborhood.
	VividFragmentCap = 5

	// ComposeConsciousCap, ComposeSubconsciousCap, ComposeNovelCap are
	// N_con, N_sub, N_nov: the compose section caps.
	ComposeConsciousCap    = 3
	ComposeSubconsciousCap = 5
	ComposeNovelCap        = 3

	// sentencesPerNeighborhood is the ingestion grouping granularity:
	// every chunk of this many sentences becomes one neighborhood.
	sentencesPerNeighborhood = 3

	// largeQueryTokenFloor is the token count above which the drift
	// step starts excluding occurrences whose IDF weight falls under a
	// floor, bounding the cost of very large queries.
	largeQueryTokenFloor = 50

	// centroidDriftThreshold is the activated-occurrence count above which
	// drift switches from pairwise to centroid-based aggregation.
	centroidDriftThreshold = 200
)

// Threshold, SlerpThreshold and NeighborhoodRadius default to their
// φ/π-derived values but are overwritten by System.New from the System's
// own daeconfig.Config (after validation), so a non-default Config actually
// changes vividness/anchoring, near-parallel SLERP fallback, and the
// neighborhood radius invariant. They hold package-wide rather than per-
// System because, per System's own doc comment, there is exactly one
// mutable System in play at a time.

// Threshold is Θ, the activation/vividness/anchoring cutoff.
var Threshold = 0.5

// SlerpThreshold mirrors quaternion.SlerpThreshold; threaded through
// System.clampedSlerp via quaternion.SlerpWithThreshold.
var SlerpThreshold = 0.9995

// NeighborhoodRadius is R_N = π/φ.
var NeighborhoodRadius = math.Pi / phasor.Phi
