package memory

import (
	"sort"

	"github.com/srobinson/attention-matters/pkg/daeconfig"
	"github.com/srobinson/attention-matters/pkg/phasor"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// QueryResult is the record produced by a single Query call.
type QueryResult struct {
	QueryTokens            []string
	ActivatedOccurrences   []OccurrenceID
	NeighborhoodActivation map[NeighborhoodID]uint32
	InterferenceTable      map[string]float64
}

// Query executes the full pipeline: activate → drift → interference →
// coupling → record. An empty query returns an empty result without
// mutating the system.
func (s *System) Query(text string) *QueryResult {
	tokens := Tokenize(text)
	result := &QueryResult{
		QueryTokens:             tokensToWords(tokens),
		NeighborhoodActivation:  make(map[NeighborhoodID]uint32),
		InterferenceTable:       make(map[string]float64),
	}

	if len(tokens) == 0 {
		return result
	}

	activated := s.activateQuery(tokens, result)
	if len(tokens) > largeQueryTokenFloor {
		activated = s.filterByIDFFloor(activated)
	}
	s.driftStep(activated)
	s.interferenceStep(result)
	s.couplingStep(result)
	s.renormalizeMass()

	sort.Slice(result.ActivatedOccurrences, func(i, j int) bool {
		return result.ActivatedOccurrences[i] < result.ActivatedOccurrences[j]
	})

	s.logDebug("query executed", "tokens", len(tokens), "activated", len(result.ActivatedOccurrences))
	return result
}

func tokensToWords(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Word
	}
	return out
}

// activateQuery activates every occurrence of every query token (honoring
// multiplicity: a word repeated n times in the query text activates its
// matching occurrences n times) and returns the deduplicated set of
// activated occurrence ids.
func (s *System) activateQuery(tokens []Token, result *QueryResult) map[OccurrenceID]*Occurrence {
	now := s.now()
	activated := make(map[OccurrenceID]*Occurrence)

	for _, tok := range tokens {
		for _, ref := range s.WordIndex[tok.Word] {
			occ := s.occurrenceByID[ref.OccurrenceID]
			if occ == nil {
				continue
			}
			occ.Activate(now)
			if nbhd := s.neighborhoodByID[ref.NeighborhoodID]; nbhd != nil {
				nbhd.TotalActivations++
			}
			result.NeighborhoodActivation[ref.NeighborhoodID]++
			if _, seen := activated[occ.ID]; !seen {
				activated[occ.ID] = occ
				result.ActivatedOccurrences = append(result.ActivatedOccurrences, occ.ID)
			}
		}
	}

	return activated
}

type driftPair struct {
	a, b *Occurrence
}

// filterByIDFFloor drops the lower half (by IDF) of a large activated set,
// bounding the cost of the drift step's pairwise scan for queries whose
// token count exceeds largeQueryTokenFloor. The discarded occurrences keep
// whatever activation they already received; only their eligibility to
// participate in drift this query is affected.
func (s *System) filterByIDFFloor(activated map[OccurrenceID]*Occurrence) map[OccurrenceID]*Occurrence {
	if len(activated) == 0 {
		return activated
	}

	idfs := make([]float64, 0, len(activated))
	for _, o := range activated {
		idfs = append(idfs, s.IDF(o.Word))
	}
	sort.Float64s(idfs)
	floor := idfs[len(idfs)/2]

	out := make(map[OccurrenceID]*Occurrence, len(activated))
	for id, o := range activated {
		if s.IDF(o.Word) >= floor {
			out[id] = o
		}
	}
	return out
}

// driftStep moves every pair of activated occurrences that share a
// neighborhood (or whose neighborhoods' seeds are within 2*R_N of each
// other) toward one another along the geodesic, subject to the
// neighborhood-radius invariant. Pairs are processed in ascending
// (a.ID, b.ID) order for determinism; anchored occurrences never move.
// When the activated set grows past centroidDriftThreshold, pairwise
// drift is replaced with per-neighborhood centroid drift to keep the
// step's cost from scaling quadratically with query size.
func (s *System) driftStep(activated map[OccurrenceID]*Occurrence) {
	// Anchoring is evaluated for every activated occurrence, including one
	// with no drift partner in this query.
	for _, o := range activated {
		if nbhd := s.neighborhoodByID[o.NeighborhoodID]; nbhd != nil {
			o.DriftRate(uint32(nbhd.Count()))
		}
	}

	if len(activated) > centroidDriftThreshold {
		s.centroidDriftStep(activated)
		return
	}

	ids := make([]OccurrenceID, 0, len(activated))
	for id := range activated {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var pairs []driftPair
	for i := 0; i < len(ids); i++ {
		a := activated[ids[i]]
		for j := i + 1; j < len(ids); j++ {
			b := activated[ids[j]]
			if s.shouldDrift(a, b) {
				pairs = append(pairs, driftPair{a, b})
			}
		}
	}

	weighting := s.Config.DriftWeighting
	for _, p := range pairs {
		s.driftPairOnce(p.a, p.b, weighting)
	}
}

// centroidDriftStep moves every mobile activated occurrence toward its own
// neighborhood's IDF-weighted centroid of the other activated occurrences
// in that neighborhood, an O(n) aggregate approximation of pairwise drift
// for large activated sets.
func (s *System) centroidDriftStep(activated map[OccurrenceID]*Occurrence) {
	byNeighborhood := make(map[NeighborhoodID][]*Occurrence)
	for _, o := range activated {
		byNeighborhood[o.NeighborhoodID] = append(byNeighborhood[o.NeighborhoodID], o)
	}

	ids := make([]NeighborhoodID, 0, len(byNeighborhood))
	for id := range byNeighborhood {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, nid := range ids {
		occs := byNeighborhood[nid]
		nbhd := s.neighborhoodByID[nid]
		if nbhd == nil || len(occs) < 2 {
			continue
		}

		weights := make([]float64, len(nbhd.Occurrences))
		for i, o := range nbhd.Occurrences {
			if _, ok := activated[o.ID]; ok {
				weights[i] = s.IDF(o.Word)
			}
		}

		sort.Slice(occs, func(i, j int) bool { return occs[i].ID < occs[j].ID })
		for _, o := range occs {
			if o.Anchored {
				continue
			}
			centroid, ok := nbhd.WeightedCentroid(o.ID, weights)
			if !ok {
				continue
			}
			t := o.Plasticity() * o.DriftRate(uint32(nbhd.Count()))
			if t > 0 {
				o.Position = s.clampedSlerp(o.Position, centroid, t, nbhd.Seed)
			}
		}
	}
}

func (s *System) shouldDrift(a, b *Occurrence) bool {
	if a.NeighborhoodID == b.NeighborhoodID {
		return true
	}
	na := s.neighborhoodByID[a.NeighborhoodID]
	nb := s.neighborhoodByID[b.NeighborhoodID]
	if na == nil || nb == nil {
		return false
	}
	return na.Seed.Geodesic(nb.Seed) <= 2*NeighborhoodRadius
}

// driftPairOnce snapshots both positions before computing either delta, so
// b's SLERP target is a's pre-update position and vice versa: the pair's
// read-then-commit is one atomic unit and neither half observes the
// other's write.
func (s *System) driftPairOnce(a, b *Occurrence, weighting daeconfig.DriftWeighting) {
	idfA := s.IDF(a.Word)
	idfB := s.IDF(b.Word)

	na := s.neighborhoodByID[a.NeighborhoodID]
	nb := s.neighborhoodByID[b.NeighborhoodID]
	if na == nil || nb == nil {
		return
	}

	splitAB := idfB / (idfA + idfB)
	splitBA := idfA / (idfA + idfB)
	if weighting == daeconfig.DriftWeightingAverage {
		splitAB, splitBA = 0.5, 0.5
	}

	aPos, bPos := a.Position, b.Position
	var newAPos, newBPos quaternion.Quaternion
	moveA, moveB := false, false

	if !a.Anchored {
		tA := a.Plasticity() * a.DriftRate(uint32(na.Count())) * splitAB
		if tA > 0 {
			newAPos = s.clampedSlerp(aPos, bPos, tA, na.Seed)
			moveA = true
		}
	}
	if !b.Anchored {
		tB := b.Plasticity() * b.DriftRate(uint32(nb.Count())) * splitBA
		if tB > 0 {
			newBPos = s.clampedSlerp(bPos, aPos, tB, nb.Seed)
			moveB = true
		}
	}

	if moveA {
		a.Position = newAPos
	}
	if moveB {
		b.Position = newBPos
	}
}

// clampedSlerp slerps from pos toward target at parameter t, binary
// searching down to the largest t' ≤ t whose result still satisfies the
// neighborhood-radius invariant against seed.
func (s *System) clampedSlerp(pos, target quaternion.Quaternion, t float64, seed quaternion.Quaternion) quaternion.Quaternion {
	candidate := pos.SlerpWithThreshold(target, t, SlerpThreshold)
	if seed.Geodesic(candidate) <= NeighborhoodRadius+1e-9 {
		return candidate
	}

	lo, hi := 0.0, t
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		c := pos.SlerpWithThreshold(target, mid, SlerpThreshold)
		if seed.Geodesic(c) <= NeighborhoodRadius+1e-9 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return pos.SlerpWithThreshold(target, lo, SlerpThreshold)
}

// interferenceStep computes I_w = Σ idf(w)·cos(θ_con−θ_sub) over every
// cross-manifold pair of occurrences of w, for every word present in
// both the conscious and at least one subconscious episode.
func (s *System) interferenceStep(result *QueryResult) {
	consciousByWord := occurrencesByWord(s.ConsciousEpisode.AllOccurrences())
	subconsciousByWord := make(map[string][]*Occurrence)
	for _, ep := range s.Subconscious {
		for w, occs := range occurrencesByWord(ep.AllOccurrences()) {
			subconsciousByWord[w] = append(subconsciousByWord[w], occs...)
		}
	}

	for w, consOccs := range consciousByWord {
		subOccs, ok := subconsciousByWord[w]
		if !ok || len(subOccs) == 0 {
			continue
		}

		idf := s.IDF(w)
		var sum float64
		for _, c := range consOccs {
			for _, sub := range subOccs {
				sum += idf * c.Phasor.Interference(sub.Phasor)
			}
		}
		result.InterferenceTable[w] = sum
	}
}

func occurrencesByWord(occs []*Occurrence) map[string][]*Occurrence {
	out := make(map[string][]*Occurrence)
	for _, o := range occs {
		out[o.Word] = append(out[o.Word], o)
	}
	return out
}

// couplingStep nudges every occurrence of every cross-manifold word
// toward that word's mass-weighted circular mean phase, split K_con for
// conscious occurrences and K_sub = 1 - K_con for subconscious ones.
// Updates are staged and committed atomically after every mean and split
// has been computed from the pre-coupling state.
func (s *System) couplingStep(result *QueryResult) {
	type staged struct {
		occ      *Occurrence
		newTheta float64
	}

	consciousByWord := occurrencesByWord(s.ConsciousEpisode.AllOccurrences())
	subconsciousByWord := make(map[string][]*Occurrence)
	for _, ep := range s.Subconscious {
		for w, occs := range occurrencesByWord(ep.AllOccurrences()) {
			subconsciousByWord[w] = append(subconsciousByWord[w], occs...)
		}
	}

	var kCon, kSub float64
	switch s.Config.CouplingMode {
	case daeconfig.CouplingModeFixed:
		kCon = s.Config.FixedKCon
		kSub = 1 - kCon
	default:
		kCon, kSub = s.massDerivedCoupling(consciousByWord, subconsciousByWord)
	}

	var updates []staged
	for w, consOccs := range consciousByWord {
		subOccs, ok := subconsciousByWord[w]
		if !ok || len(subOccs) == 0 {
			continue
		}

		all := append(append([]*Occurrence{}, consOccs...), subOccs...)
		phases := make([]float64, len(all))
		weights := make([]float64, len(all))
		for i, o := range all {
			phases[i] = o.Phasor.Theta
			weights[i] = s.MassTable[o.ID]
		}
		mean := phasor.New(phasor.WeightedCircularMean(phases, weights))

		for _, o := range consOccs {
			t := clamp01(kCon * o.Plasticity() * s.MassTable[o.ID])
			updates = append(updates, staged{o, o.Phasor.CircularInterp(mean, t).Theta})
		}
		for _, o := range subOccs {
			t := clamp01(kSub * o.Plasticity() * s.MassTable[o.ID])
			updates = append(updates, staged{o, o.Phasor.CircularInterp(mean, t).Theta})
		}
	}

	for _, u := range updates {
		u.occ.Phasor = phasor.New(u.newTheta)
	}
}

func (s *System) massDerivedCoupling(consciousByWord, subconsciousByWord map[string][]*Occurrence) (float64, float64) {
	var consMass, subMass float64
	for w, consOccs := range consciousByWord {
		if _, ok := subconsciousByWord[w]; !ok {
			continue
		}
		for _, o := range consOccs {
			consMass += s.MassTable[o.ID]
		}
		for _, o := range subconsciousByWord[w] {
			subMass += s.MassTable[o.ID]
		}
	}

	if consMass+subMass == 0 {
		return 0.5, 0.5
	}
	kCon := consMass / (consMass + subMass)
	return kCon, 1 - kCon
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
