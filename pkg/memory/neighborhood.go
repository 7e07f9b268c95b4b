package memory

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/srobinson/attention-matters/pkg/daerr"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// NeighborhoodID is a dense arena index.
type NeighborhoodID uint64

// NeighborhoodKind classifies a neighborhood's role. Plain ingestion
// produces Memory; mark_salient accepts a "decision:"/"preference:"
// prefix convention to tag the resulting neighborhood.
type NeighborhoodKind int

const (
	NeighborhoodMemory NeighborhoodKind = iota
	NeighborhoodDecision
	NeighborhoodPreference
	NeighborhoodInsight
)

func (k NeighborhoodKind) String() string {
	switch k {
	case NeighborhoodDecision:
		return "decision"
	case NeighborhoodPreference:
		return "preference"
	case NeighborhoodInsight:
		return "insight"
	default:
		return "memory"
	}
}

func neighborhoodKindFromString(s string) NeighborhoodKind {
	switch s {
	case "decision":
		return NeighborhoodDecision
	case "preference":
		return NeighborhoodPreference
	case "insight":
		return NeighborhoodInsight
	default:
		return NeighborhoodMemory
	}
}

// Neighborhood is a seeded cluster of occurrences, every member of which
// lies within NeighborhoodRadius of Seed.
type Neighborhood struct {
	ID                NeighborhoodID
	Seed              quaternion.Quaternion
	Kind              NeighborhoodKind
	SourceText        string
	Occurrences       []*Occurrence
	wordIndex         map[string]OccurrenceID
	TotalActivations  uint32
	CreatedAt         time.Time
}

func newNeighborhood(id NeighborhoodID, seed quaternion.Quaternion, sourceText string, now time.Time) *Neighborhood {
	return &Neighborhood{
		ID:         id,
		Seed:       seed,
		SourceText: sourceText,
		wordIndex:  make(map[string]OccurrenceID),
		CreatedAt:  now,
	}
}

// SeedNew picks a random seed quaternion uniformly on S³.
func SeedNew(rng *rand.Rand) quaternion.Quaternion {
	return quaternion.RandomUnit(rng)
}

// Contains reports whether word already has an occurrence in this
// neighborhood, and returns it if so.
func (n *Neighborhood) Contains(word string) (*Occurrence, bool) {
	id, ok := n.wordIndex[word]
	if !ok {
		return nil, false
	}
	for _, o := range n.Occurrences {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Insert appends occ to the neighborhood, validating the radius
// invariant. Returns daerr.ErrOutOfNeighborhood if occ.Position lies
// farther than NeighborhoodRadius from Seed.
func (n *Neighborhood) Insert(occ *Occurrence) error {
	if n.Seed.Geodesic(occ.Position) > NeighborhoodRadius+1e-9 {
		return daerr.New(daerr.KindOutOfNeighborhood, "Neighborhood.Insert", nil, occ.Word, n.ID)
	}
	occ.NeighborhoodID = n.ID
	n.Occurrences = append(n.Occurrences, occ)
	n.wordIndex[occ.Word] = occ.ID
	return nil
}

// ActivateWord increments activation on every occurrence matching word
// (at most one, given the no-duplicate-within-neighborhood invariant)
// and updates TotalActivations. Returns the activated occurrence, if any.
func (n *Neighborhood) ActivateWord(word string, now time.Time) *Occurrence {
	occ, ok := n.Contains(word)
	if !ok {
		return nil
	}
	occ.Activate(now)
	n.TotalActivations++
	return occ
}

// Count returns the number of occurrences in the neighborhood.
func (n *Neighborhood) Count() int {
	return len(n.Occurrences)
}

// ActivatedCount returns the number of occurrences with activation_count > 0.
func (n *Neighborhood) ActivatedCount() int {
	c := 0
	for _, o := range n.Occurrences {
		if o.ActivationCount > 0 {
			c++
		}
	}
	return c
}

// Vividness is the fraction of occurrences with activation_count > 0.
func (n *Neighborhood) Vividness() float64 {
	if len(n.Occurrences) == 0 {
		return 0
	}
	return float64(n.ActivatedCount()) / float64(len(n.Occurrences))
}

// IsVivid reports whether Vividness() ≥ Θ.
func (n *Neighborhood) IsVivid() bool {
	return n.Vividness() >= Threshold
}

// TotalActivation sums ActivationCount across every occurrence.
func (n *Neighborhood) TotalActivation() uint64 {
	var sum uint64
	for _, o := range n.Occurrences {
		sum += uint64(o.ActivationCount)
	}
	return sum
}

// Mass returns this neighborhood's share of system mass, the sum of its
// occurrences' individual masses.
func (n *Neighborhood) Mass(massTable map[OccurrenceID]float64) float64 {
	var sum float64
	for _, o := range n.Occurrences {
		sum += massTable[o.ID]
	}
	return sum
}

// WeightedCentroid computes the IDF-weighted leave-one-out centroid of
// every occurrence in the neighborhood except excludeID, used by the
// large-query centroid drift approximation.
// weights must be indexed the same as n.Occurrences.
func (n *Neighborhood) WeightedCentroid(excludeID OccurrenceID, weights []float64) (quaternion.Quaternion, bool) {
	var ws, xs, ys, zs, ss []float64
	for i, o := range n.Occurrences {
		if o.ID == excludeID {
			continue
		}
		w := weights[i]
		ws = append(ws, w)
		xs = append(xs, o.Position.W)
		ys = append(ys, o.Position.X)
		zs = append(zs, o.Position.Y)
		ss = append(ss, o.Position.Z)
	}
	if len(ws) == 0 {
		return quaternion.Quaternion{}, false
	}

	var sumW float64
	for _, w := range ws {
		sumW += w
	}
	if sumW == 0 {
		return quaternion.Quaternion{}, false
	}

	return quaternion.Quaternion{
		W: stat.Mean(xs, ws),
		X: stat.Mean(ys, ws),
		Y: stat.Mean(zs, ws),
		Z: stat.Mean(ss, ws),
	}.Normalize(), true
}
