package memory

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/srobinson/attention-matters/pkg/daeconfig"
	"github.com/srobinson/attention-matters/pkg/daerr"
	"github.com/srobinson/attention-matters/pkg/phasor"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// WordRef points at one occurrence of a word anywhere in the system,
// used by the global word index.
type WordRef struct {
	EpisodeID      EpisodeID
	NeighborhoodID NeighborhoodID
	OccurrenceID   OccurrenceID
}

// Stats is the snapshot returned by System.Stats().
type Stats struct {
	Episodes               int
	Neighborhoods          int
	Occurrences            int
	ConsciousMass          float64
	TotalMass              float64
	DocCount               uint32
	NeighborhoodSizeMean   float64
	NeighborhoodSizeStdDev float64
}

// System owns both manifolds, the global word index, the IDF document
// frequency table and the mass table. There is exactly one mutable
// holder of a System at any time; it performs no internal locking.
type System struct {
	Name             string
	ConsciousEpisode *Episode
	Subconscious     []*Episode

	WordIndex map[string][]WordRef
	DFTable   map[string]uint32
	DocCount  uint32
	MassTable map[OccurrenceID]float64

	occurrenceByID   map[OccurrenceID]*Occurrence
	neighborhoodByID map[NeighborhoodID]*Neighborhood
	episodeByID      map[EpisodeID]*Episode
	occurrenceOrder  []OccurrenceID

	nextEpisodeID      uint64
	nextNeighborhoodID  uint64
	nextOccurrenceID    uint64

	RNGSeed uint64
	rng     *rand.Rand

	Config *daeconfig.Config
	Logger *log.Logger
	Clock  Clock
}

// New constructs a fresh System seeded for deterministic replay. cfg and
// logger may be nil; sensible defaults are used. cfg's geometric tunables
// (NeighborhoodRadius, Threshold, SlerpThreshold) are validated here, the
// one point they're read from for the System's lifetime: any value outside
// its valid range is clamped to the default and logged, never propagated
// into the engine unchecked.
func New(name string, seed uint64, cfg *daeconfig.Config, logger *log.Logger) *System {
	if cfg == nil {
		cfg = daeconfig.Default()
	}
	cfg = validateConfig(cfg, logger)

	Threshold = cfg.Threshold
	SlerpThreshold = cfg.SlerpThreshold
	NeighborhoodRadius = cfg.NeighborhoodRadius

	s := &System{
		Name:             name,
		WordIndex:        make(map[string][]WordRef),
		DFTable:          make(map[string]uint32),
		MassTable:        make(map[OccurrenceID]float64),
		occurrenceByID:   make(map[OccurrenceID]*Occurrence),
		neighborhoodByID: make(map[NeighborhoodID]*Neighborhood),
		episodeByID:      make(map[EpisodeID]*Episode),
		RNGSeed:          seed,
		rng:              rand.New(rand.NewSource(int64(seed))),
		Config:           cfg,
		Logger:           logger,
		Clock:            RealClock,
	}

	s.nextEpisodeID = 1
	s.ConsciousEpisode = newEpisode(EpisodeID(s.nextEpisodeID), Conscious, "conscious", s.now())
	s.episodeByID[s.ConsciousEpisode.ID] = s.ConsciousEpisode
	s.nextEpisodeID++

	return s
}

// validateConfig clamps any geometric tunable outside its valid range to
// the corresponding default, logging the correction. NeighborhoodRadius
// must lie in (0, π]: π is the angular diameter of S³ and the bound
// quaternion.RandomNear itself enforces. Threshold is a fraction in (0, 1].
// SlerpThreshold is a dot-product magnitude in (0, 1).
func validateConfig(cfg *daeconfig.Config, logger *log.Logger) *daeconfig.Config {
	out := *cfg
	def := daeconfig.Default()

	warn := func(field string, got, want float64) {
		if logger != nil {
			logger.Warn("config value out of range, clamped to default", "field", field, "got", got, "clampedTo", want)
		}
	}
	if out.NeighborhoodRadius <= 0 || out.NeighborhoodRadius > math.Pi {
		warn("NeighborhoodRadius", out.NeighborhoodRadius, def.NeighborhoodRadius)
		out.NeighborhoodRadius = def.NeighborhoodRadius
	}
	if out.Threshold <= 0 || out.Threshold > 1 {
		warn("Threshold", out.Threshold, def.Threshold)
		out.Threshold = def.Threshold
	}
	if out.SlerpThreshold <= 0 || out.SlerpThreshold >= 1 {
		warn("SlerpThreshold", out.SlerpThreshold, def.SlerpThreshold)
		out.SlerpThreshold = def.SlerpThreshold
	}
	return &out
}

func (s *System) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *System) logDebug(msg string, kv ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, kv...)
	}
}

func (s *System) logError(msg string, kv ...interface{}) {
	if s.Logger != nil {
		s.Logger.Error(msg, kv...)
	}
}

// IDF returns the inverse document frequency weight for word:
// ln((1+N)/(1+df(w))) + 1.
func (s *System) IDF(word string) float64 {
	n := float64(s.DocCount)
	df := float64(s.DFTable[word])
	return math.Log((1+n)/(1+df)) + 1
}

func (s *System) newOccurrenceID() OccurrenceID {
	id := OccurrenceID(s.nextOccurrenceID + 1)
	s.nextOccurrenceID++
	return id
}

func (s *System) newNeighborhoodID() NeighborhoodID {
	id := NeighborhoodID(s.nextNeighborhoodID + 1)
	s.nextNeighborhoodID++
	return id
}

func (s *System) newEpisodeID() EpisodeID {
	id := EpisodeID(s.nextEpisodeID)
	s.nextEpisodeID++
	return id
}

func (s *System) registerOccurrence(episodeID EpisodeID, o *Occurrence) {
	s.occurrenceByID[o.ID] = o
	s.occurrenceOrder = append(s.occurrenceOrder, o.ID)
	s.WordIndex[o.Word] = append(s.WordIndex[o.Word], WordRef{
		EpisodeID:      episodeID,
		NeighborhoodID: o.NeighborhoodID,
		OccurrenceID:   o.ID,
	})
}

// ingestInto tokenizes text, groups it into sentence-chunk neighborhoods,
// and appends them to episode. preActivated occurrences are created with
// activation_count = 1 (the conscious-manifold convention).
func (s *System) ingestInto(episode *Episode, text string, preActivated bool, kind NeighborhoodKind) error {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return daerr.New(daerr.KindEmptyInput, "System.ingestInto", nil)
	}

	seen := make(map[string]bool)
	for _, tok := range tokens {
		seen[tok.Word] = true
	}
	for w := range seen {
		s.DFTable[w]++
	}
	s.DocCount++

	now := s.now()
	for _, group := range groupBySentenceChunks(tokens) {
		seed := SeedNew(s.rng)
		nbhd := newNeighborhood(s.newNeighborhoodID(), seed, text, now)
		nbhd.Kind = kind

		for _, tok := range group {
			if _, ok := nbhd.Contains(tok.Word); ok {
				continue
			}

			k := nbhd.Count()
			pos, err := quaternion.RandomNear(seed, NeighborhoodRadius, s.rng)
			if err != nil {
				return err
			}

			occ := &Occurrence{
				ID:        s.newOccurrenceID(),
				Word:      tok.Word,
				Position:  pos,
				Phasor:    phasor.GoldenAngleIndex(k),
				CreatedAt: now,
			}
			if preActivated {
				occ.ActivationCount = 1
				occ.LastActivatedAt = now
			}

			if err := nbhd.Insert(occ); err != nil {
				return err
			}
			s.registerOccurrence(episode.ID, occ)
		}

		if nbhd.Count() > 0 {
			episode.AddNeighborhood(nbhd)
			s.neighborhoodByID[nbhd.ID] = nbhd
		}
	}

	s.renormalizeMass()
	s.logDebug("ingested text", "episode", episode.ID, "tokens", len(tokens))
	return nil
}

// Ingest tokenizes text and adds it as a new episode (Subconscious) or
// into the system's single conscious episode (Conscious). Returns the
// episode id new content was added to.
func (s *System) Ingest(text string, kind EpisodeKind, name string) (EpisodeID, error) {
	if kind == Conscious {
		nk, body := splitNeighborhoodKindPrefix(text)
		if err := s.ingestInto(s.ConsciousEpisode, body, true, nk); err != nil {
			return 0, err
		}
		return s.ConsciousEpisode.ID, nil
	}

	ep := newEpisode(s.newEpisodeID(), Subconscious, name, s.now())
	if err := s.ingestInto(ep, text, false, NeighborhoodMemory); err != nil {
		return 0, err
	}
	s.Subconscious = append(s.Subconscious, ep)
	s.episodeByID[ep.ID] = ep
	return ep.ID, nil
}

// MarkSalient ingests text into the conscious episode with occurrences
// pre-activated at activation_count = 1. A leading "decision:",
// "preference:" or "insight:" tag is stripped and used to classify the
// resulting neighborhoods; otherwise they default to Memory.
func (s *System) MarkSalient(text string) (EpisodeID, error) {
	return s.Ingest(text, Conscious, "")
}

// splitNeighborhoodKindPrefix strips a "kind: " prefix from text and
// returns the classified kind and remaining body.
func splitNeighborhoodKindPrefix(text string) (NeighborhoodKind, string) {
	for _, prefix := range []string{"decision:", "preference:", "insight:"} {
		if len(text) > len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			return neighborhoodKindFromString(strings.TrimSpace(prefix[:len(prefix)-1])), strings.TrimSpace(text[len(prefix):])
		}
	}
	return NeighborhoodMemory, text
}

// ActivateResponse tokenizes text and activates every matching occurrence
// in both manifolds, then renormalizes mass. It neither drifts nor
// couples phases; it is used as light reinforcement and is infallible on
// valid input.
func (s *System) ActivateResponse(text string) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return
	}

	now := s.now()
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok.Word] {
			continue
		}
		seen[tok.Word] = true

		for _, ref := range s.WordIndex[tok.Word] {
			nbhd := s.neighborhoodByID[ref.NeighborhoodID]
			if nbhd != nil {
				nbhd.ActivateWord(tok.Word, now)
			}
		}
	}
	s.renormalizeMass()
}

// renormalizeMass recomputes MassTable so that mass ∝ activation_count+1
// and Σmass = 1. Iterates occurrenceOrder (ascending id, equal to
// creation order) so the result is identical across runs given the same
// operation sequence.
func (s *System) renormalizeMass() {
	var total float64
	for _, id := range s.occurrenceOrder {
		occ := s.occurrenceByID[id]
		total += float64(occ.ActivationCount) + 1
	}
	if total == 0 {
		return
	}
	for _, id := range s.occurrenceOrder {
		occ := s.occurrenceByID[id]
		s.MassTable[id] = (float64(occ.ActivationCount) + 1) / total
	}
}

// AllEpisodes returns the conscious episode followed by every
// subconscious episode, in that fixed order.
func (s *System) AllEpisodes() []*Episode {
	out := make([]*Episode, 0, 1+len(s.Subconscious))
	out = append(out, s.ConsciousEpisode)
	out = append(out, s.Subconscious...)
	return out
}

// GetOccurrence looks up an occurrence by id, returning
// daerr.ErrUnknownEntity if it doesn't exist.
func (s *System) GetOccurrence(id OccurrenceID) (*Occurrence, error) {
	o, ok := s.occurrenceByID[id]
	if !ok {
		return nil, daerr.New(daerr.KindUnknownEntity, "System.GetOccurrence", nil, id)
	}
	return o, nil
}

// Stats returns counts and mass norms across the whole system.
func (s *System) Stats() Stats {
	st := Stats{
		Episodes:    1 + len(s.Subconscious),
		DocCount:    s.DocCount,
		Occurrences: len(s.occurrenceOrder),
	}

	sizes := make([]float64, 0)
	for _, ep := range s.AllEpisodes() {
		st.Neighborhoods += ep.Count()
		for _, n := range ep.Neighborhoods {
			sizes = append(sizes, float64(n.Count()))
		}
	}

	for _, mass := range s.MassTable {
		st.TotalMass += mass
	}
	st.ConsciousMass = s.ConsciousEpisode.Mass(s.MassTable)

	if len(sizes) > 0 {
		if mean, err := stats.Mean(sizes); err == nil {
			st.NeighborhoodSizeMean = mean
		}
		if sd, err := stats.StandardDeviationPopulation(sizes); err == nil {
			st.NeighborhoodSizeStdDev = sd
		}
	}

	return st
}
