package memory

import (
	"gonum.org/v1/gonum/stat"

	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// FeedbackSignal classifies whether a surfaced recall actually helped.
type FeedbackSignal int

const (
	// Boost drifts an occurrence toward the IDF-weighted centroid of
	// everything the triggering query activated, and bumps its
	// activation: a recall that helped is itself evidence the memory
	// matters.
	Boost FeedbackSignal = iota
	// Demote decays an occurrence's activation, making it less anchored
	// and more likely to drift away in future queries.
	Demote
)

// boostDriftFactor is the base fraction a Boost signal SLERPs a target
// occurrence toward the query centroid, scaled by the occurrence's own
// IDF weight and plasticity so rare, still-plastic words move the most.
const boostDriftFactor = 0.15

// demoteDecay is the activation_count reduction a Demote signal applies,
// floored at zero.
const demoteDecay uint32 = 2

// FeedbackResult reports what ApplyFeedback changed.
type FeedbackResult struct {
	Boosted  int
	Demoted  int
	Centroid *quaternion.Quaternion
}

// ApplyFeedback reinforces or decays the occurrences of query's tokens
// that belong to one of neighborhoodIDs, depending on signal. It does not
// renormalize mass or run the query pipeline; Boost increments activation
// counts directly, without touching LastActivatedAt. Feedback is a
// distinct, caller-initiated signal from recall.
//
// Boost computes the IDF-weighted centroid of every occurrence query's
// tokens match anywhere in the system (not just the targeted
// neighborhoods) and SLERPs each targeted, non-anchored occurrence toward
// it. Demote reduces the targeted occurrences' activation, with no floor
// below zero.
func (s *System) ApplyFeedback(query string, neighborhoodIDs []NeighborhoodID, signal FeedbackSignal) FeedbackResult {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return FeedbackResult{}
	}

	seen := make(map[string]bool)
	var queryOccs []*Occurrence
	for _, tok := range tokens {
		if seen[tok.Word] {
			continue
		}
		seen[tok.Word] = true
		for _, ref := range s.WordIndex[tok.Word] {
			if occ := s.occurrenceByID[ref.OccurrenceID]; occ != nil {
				queryOccs = append(queryOccs, occ)
			}
		}
	}
	if len(queryOccs) == 0 {
		return FeedbackResult{}
	}

	targets := make(map[NeighborhoodID]bool, len(neighborhoodIDs))
	for _, id := range neighborhoodIDs {
		targets[id] = true
	}

	var targetOccs []*Occurrence
	for _, o := range queryOccs {
		if targets[o.NeighborhoodID] {
			targetOccs = append(targetOccs, o)
		}
	}

	if signal == Boost {
		return s.applyBoost(queryOccs, targetOccs)
	}
	return s.applyDemote(targetOccs)
}

func (s *System) applyBoost(queryOccs, targetOccs []*Occurrence) FeedbackResult {
	if len(targetOccs) == 0 {
		return FeedbackResult{}
	}

	weights := make([]float64, len(queryOccs))
	for i, o := range queryOccs {
		weights[i] = s.IDF(o.Word)
	}
	centroid, ok := idfWeightedCentroid(queryOccs, weights)
	if !ok {
		return FeedbackResult{}
	}

	boosted := 0
	for _, o := range targetOccs {
		if o.Anchored {
			continue
		}
		factor := boostDriftFactor * s.IDF(o.Word) * o.Plasticity()
		if factor <= 0 {
			continue
		}
		o.Position = o.Position.SlerpWithThreshold(centroid, factor, SlerpThreshold)
		o.ActivationCount++
		boosted++
	}

	return FeedbackResult{Boosted: boosted, Centroid: &centroid}
}

func (s *System) applyDemote(targetOccs []*Occurrence) FeedbackResult {
	demoted := 0
	for _, o := range targetOccs {
		before := o.ActivationCount
		if o.ActivationCount > demoteDecay {
			o.ActivationCount -= demoteDecay
		} else {
			o.ActivationCount = 0
		}
		if o.ActivationCount != before {
			demoted++
		}
	}
	return FeedbackResult{Demoted: demoted}
}

// idfWeightedCentroid computes the IDF-weighted centroid of occs in R⁴,
// normalized back onto S³. Unlike Neighborhood.WeightedCentroid, occs may
// span any number of neighborhoods.
func idfWeightedCentroid(occs []*Occurrence, weights []float64) (quaternion.Quaternion, bool) {
	var sumW float64
	for _, w := range weights {
		sumW += w
	}
	if sumW == 0 {
		return quaternion.Quaternion{}, false
	}

	ws, xs, ys, zs, ss := weights, make([]float64, len(occs)), make([]float64, len(occs)), make([]float64, len(occs)), make([]float64, len(occs))
	for i, o := range occs {
		xs[i] = o.Position.W
		ys[i] = o.Position.X
		zs[i] = o.Position.Y
		ss[i] = o.Position.Z
	}

	return quaternion.Quaternion{
		W: stat.Mean(xs, ws),
		X: stat.Mean(ys, ws),
		Y: stat.Mean(zs, ws),
		Z: stat.Mean(ss, ws),
	}.Normalize(), true
}
