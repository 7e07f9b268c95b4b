package memory

import (
	"encoding/json"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/srobinson/attention-matters/pkg/daerr"
	"github.com/srobinson/attention-matters/pkg/phasor"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// CurrentVersion is the snapshot wire format version this codec reads
// and writes.
const CurrentVersion = "0.7.2"

// WireOccurrence is the bit-stable JSON representation of an Occurrence.
// Field order matches the declared wire format exactly; encoding/json
// marshals struct fields in declaration order, so this ordering is the
// on-wire key ordering.
type WireOccurrence struct {
	ID              OccurrenceID `json:"id"`
	Word            string       `json:"word"`
	Position        [4]float64   `json:"position"`
	Phase           float64      `json:"phase"`
	ActivationCount uint32       `json:"activation_count"`
	Anchored        bool         `json:"anchored"`
	CreatedAt       time.Time    `json:"created_at"`
	LastActivatedAt *time.Time   `json:"last_activated_at,omitempty"`
}

// WireNeighborhood is the wire representation of a Neighborhood.
type WireNeighborhood struct {
	ID          NeighborhoodID   `json:"id"`
	Seed        [4]float64       `json:"seed"`
	Kind        string           `json:"kind,omitempty"`
	SourceText  string           `json:"source_text,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Occurrences []WireOccurrence `json:"occurrences"`
}

// WireEpisode is the wire representation of an Episode.
type WireEpisode struct {
	ID            EpisodeID          `json:"id"`
	Kind          string             `json:"kind"`
	Name          string             `json:"name,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Neighborhoods []WireNeighborhood `json:"neighborhoods"`
}

// WireSnapshot is the top-level exported object. Key order is version,
// rng_seed, conscious, subconscious, df_table, doc_count, exactly as
// declared below.
type WireSnapshot struct {
	Version      string            `json:"version"`
	RNGSeed      uint64            `json:"rng_seed"`
	Conscious    WireEpisode       `json:"conscious"`
	Subconscious []WireEpisode     `json:"subconscious"`
	DFTable      map[string]uint32 `json:"df_table"`
	DocCount     uint32            `json:"doc_count"`
}

func episodeToWire(e *Episode) WireEpisode {
	w := WireEpisode{
		ID:        e.ID,
		Kind:      e.Kind.String(),
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
	}
	for _, n := range e.Neighborhoods {
		w.Neighborhoods = append(w.Neighborhoods, neighborhoodToWire(n))
	}
	return w
}

func neighborhoodToWire(n *Neighborhood) WireNeighborhood {
	w := WireNeighborhood{
		ID:         n.ID,
		Seed:       n.Seed.Array(),
		Kind:       n.Kind.String(),
		SourceText: n.SourceText,
		CreatedAt:  n.CreatedAt,
	}
	for _, o := range n.Occurrences {
		w.Occurrences = append(w.Occurrences, occurrenceToWire(o))
	}
	return w
}

func occurrenceToWire(o *Occurrence) WireOccurrence {
	w := WireOccurrence{
		ID:              o.ID,
		Word:            o.Word,
		Position:        o.Position.Array(),
		Phase:           o.Phasor.Theta,
		ActivationCount: o.ActivationCount,
		Anchored:        o.Anchored,
		CreatedAt:       o.CreatedAt,
	}
	if !o.LastActivatedAt.IsZero() {
		t := o.LastActivatedAt
		w.LastActivatedAt = &t
	}
	return w
}

// Export serializes the complete system state to the v0.7.2 wire format.
func (s *System) Export() ([]byte, error) {
	wire := WireSnapshot{
		Version:      CurrentVersion,
		RNGSeed:      s.RNGSeed,
		Conscious:    episodeToWire(s.ConsciousEpisode),
		DFTable:      copyDFTable(s.DFTable),
		DocCount:     s.DocCount,
	}
	for _, ep := range s.Subconscious {
		wire.Subconscious = append(wire.Subconscious, episodeToWire(ep))
	}

	return json.MarshalIndent(wire, "", "  ")
}

func copyDFTable(src map[string]uint32) map[string]uint32 {
	out := make(map[string]uint32, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Import replaces the system's complete state with the snapshot decoded
// from data, validating bad norms, implausible document frequencies, and
// JSON structure, failing with daerr.ErrCorruptState on any violation.
func (s *System) Import(data []byte) error {
	var wire WireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return daerr.New(daerr.KindCorruptState, "System.Import", err)
	}

	next := &System{
		Name:             s.Name,
		WordIndex:        make(map[string][]WordRef),
		DFTable:          copyDFTable(wire.DFTable),
		MassTable:        make(map[OccurrenceID]float64),
		occurrenceByID:   make(map[OccurrenceID]*Occurrence),
		neighborhoodByID: make(map[NeighborhoodID]*Neighborhood),
		episodeByID:      make(map[EpisodeID]*Episode),
		RNGSeed:          wire.RNGSeed,
		DocCount:         wire.DocCount,
		Config:           s.Config,
		Logger:           s.Logger,
		Clock:            s.Clock,
	}
	next.rng = rand.New(rand.NewSource(int64(wire.RNGSeed)))

	var maxEpisodeID, maxNeighborhoodID, maxOccurrenceID uint64

	consciousEp, err := wireEpisodeToDomain(wire.Conscious, next)
	if err != nil {
		return err
	}
	consciousEp.Kind = Conscious
	next.ConsciousEpisode = consciousEp
	next.episodeByID[consciousEp.ID] = consciousEp
	trackMax(&maxEpisodeID, uint64(consciousEp.ID))

	for _, we := range wire.Subconscious {
		ep, err := wireEpisodeToDomain(we, next)
		if err != nil {
			return err
		}
		ep.Kind = Subconscious
		next.Subconscious = append(next.Subconscious, ep)
		next.episodeByID[ep.ID] = ep
		trackMax(&maxEpisodeID, uint64(ep.ID))
	}

	for _, id := range next.occurrenceOrder {
		trackMax(&maxOccurrenceID, uint64(id))
	}
	for id := range next.neighborhoodByID {
		trackMax(&maxNeighborhoodID, uint64(id))
	}

	next.nextEpisodeID = maxEpisodeID + 1
	next.nextNeighborhoodID = maxNeighborhoodID
	next.nextOccurrenceID = maxOccurrenceID

	sort.Slice(next.occurrenceOrder, func(i, j int) bool {
		return next.occurrenceOrder[i] < next.occurrenceOrder[j]
	})

	next.renormalizeMass()
	if err := validateImportedMass(next); err != nil {
		return err
	}

	*s = *next
	return nil
}

func trackMax(max *uint64, v uint64) {
	if v > *max {
		*max = v
	}
}

func wireEpisodeToDomain(w WireEpisode, sys *System) (*Episode, error) {
	ep := &Episode{ID: w.ID, Name: w.Name, CreatedAt: w.CreatedAt}
	for _, wn := range w.Neighborhoods {
		n, err := wireNeighborhoodToDomain(wn, sys, ep.ID)
		if err != nil {
			return nil, err
		}
		ep.AddNeighborhood(n)
	}
	return ep, nil
}

func wireNeighborhoodToDomain(w WireNeighborhood, sys *System, episodeID EpisodeID) (*Neighborhood, error) {
	seed := quaternion.FromArray(w.Seed)
	if err := validateUnitNorm(seed); err != nil {
		return nil, err
	}

	n := newNeighborhood(w.ID, seed, w.SourceText, w.CreatedAt)
	n.Kind = neighborhoodKindFromString(w.Kind)
	sys.neighborhoodByID[n.ID] = n

	for _, wo := range w.Occurrences {
		occ, err := wireOccurrenceToDomain(wo, n.ID)
		if err != nil {
			return nil, err
		}
		n.Occurrences = append(n.Occurrences, occ)
		n.wordIndex[occ.Word] = occ.ID
		n.TotalActivations += occ.ActivationCount
		sys.registerOccurrence(episodeID, occ)
	}
	return n, nil
}

func wireOccurrenceToDomain(w WireOccurrence, neighborhoodID NeighborhoodID) (*Occurrence, error) {
	pos := quaternion.FromArray(w.Position)
	if err := validateUnitNorm(pos); err != nil {
		return nil, err
	}

	occ := &Occurrence{
		ID:              w.ID,
		NeighborhoodID:  neighborhoodID,
		Word:            w.Word,
		Position:        pos,
		Phasor:          phasor.New(w.Phase),
		ActivationCount: w.ActivationCount,
		Anchored:        w.Anchored,
		CreatedAt:       w.CreatedAt,
	}
	if w.LastActivatedAt != nil {
		occ.LastActivatedAt = *w.LastActivatedAt
	}
	return occ, nil
}

func validateUnitNorm(q quaternion.Quaternion) error {
	if math.Abs(q.Norm()-1) > 1e-6 {
		return daerr.New(daerr.KindCorruptState, "System.Import", nil, "quaternion not unit norm")
	}
	return nil
}

func validateImportedMass(s *System) error {
	var total float64
	for _, m := range s.MassTable {
		total += m
	}
	if math.Abs(total-1) > 1e-4 {
		return daerr.New(daerr.KindCorruptState, "System.Import", nil, "mass does not sum to 1")
	}
	for w, df := range s.DFTable {
		if df > s.DocCount {
			return daerr.New(daerr.KindCorruptState, "System.Import", nil, "document frequency exceeds doc count for "+w)
		}
	}
	return nil
}
