package memory

import "time"

// EpisodeID is a dense arena index.
type EpisodeID uint64

// EpisodeKind distinguishes the two manifolds an episode can belong to.
type EpisodeKind int

const (
	Subconscious EpisodeKind = iota
	Conscious
)

func (k EpisodeKind) String() string {
	if k == Conscious {
		return "conscious"
	}
	return "subconscious"
}

// Episode is an ordered bag of neighborhoods, one of {conscious, subconscious}.
type Episode struct {
	ID            EpisodeID
	Kind          EpisodeKind
	Name          string
	Neighborhoods []*Neighborhood
	CreatedAt     time.Time
}

func newEpisode(id EpisodeID, kind EpisodeKind, name string, now time.Time) *Episode {
	return &Episode{ID: id, Kind: kind, Name: name, CreatedAt: now}
}

// AddNeighborhood appends n to the episode, preserving insertion order.
func (e *Episode) AddNeighborhood(n *Neighborhood) {
	e.Neighborhoods = append(e.Neighborhoods, n)
}

// Count returns the number of neighborhoods in the episode.
func (e *Episode) Count() int {
	return len(e.Neighborhoods)
}

// TotalActivation sums TotalActivation across every neighborhood.
func (e *Episode) TotalActivation() uint64 {
	var sum uint64
	for _, n := range e.Neighborhoods {
		sum += n.TotalActivation()
	}
	return sum
}

// Mass sums every neighborhood's share of mass.
func (e *Episode) Mass(massTable map[OccurrenceID]float64) float64 {
	var sum float64
	for _, n := range e.Neighborhoods {
		sum += n.Mass(massTable)
	}
	return sum
}

// AllOccurrences flattens every occurrence across every neighborhood, in
// insertion order.
func (e *Episode) AllOccurrences() []*Occurrence {
	var out []*Occurrence
	for _, n := range e.Neighborhoods {
		out = append(out, n.Occurrences...)
	}
	return out
}

// DisplayName returns Name, or "Memory" if it's unset.
func (e *Episode) DisplayName() string {
	if e.Name == "" {
		return "Memory"
	}
	return e.Name
}

// VividNeighborhoodCount returns the number of neighborhoods whose
// Vividness() ≥ Θ.
func (e *Episode) VividNeighborhoodCount() int {
	c := 0
	for _, n := range e.Neighborhoods {
		if n.IsVivid() {
			c++
		}
	}
	return c
}

// IsVivid reports whether the ratio of vivid neighborhoods to total
// neighborhoods reaches Θ.
func (e *Episode) IsVivid() bool {
	if len(e.Neighborhoods) == 0 {
		return false
	}
	return float64(e.VividNeighborhoodCount())/float64(len(e.Neighborhoods)) >= Threshold
}
