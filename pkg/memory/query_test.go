package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryEmptyReturnsEmptyResultWithoutMutation(t *testing.T) {
	s := New("test", 1, nil, nil)
	_, err := s.Ingest("the cat sat on the mat", Subconscious, "")
	require.NoError(t, err)

	before := snapshotMass(s)
	result := s.Query("")
	after := snapshotMass(s)

	assert.Empty(t, result.ActivatedOccurrences)
	assert.Equal(t, before, after)
}

func TestQueryS1SurfacesSubconsciousNeighborhood(t *testing.T) {
	s := New("test", 7, nil, nil)
	_, err := s.Ingest("the cat sat on the mat", Subconscious, "")
	require.NoError(t, err)

	result := s.Query("cat")
	require.NotEmpty(t, result.ActivatedOccurrences)

	surf := s.ComputeSurface(result)
	require.NotEmpty(t, surf.Subconscious.VividNeighborhoods)
}

func TestQueryS2NovelLinkAcrossManifolds(t *testing.T) {
	s := New("test", 11, nil, nil)
	_, err := s.MarkSalient("event sourcing is preferred over crud")
	require.NoError(t, err)
	_, err = s.Ingest("event sourcing gives us an audit trail", Subconscious, "")
	require.NoError(t, err)

	result := s.Query("audit trail")
	assert.NotNil(t, result)
	// "event" and "sourcing" occur in both manifolds at the same insertion
	// index, so their golden-angle phases coincide and interfere fully.
	_, hasSharedWord := result.InterferenceTable["event"]
	assert.True(t, hasSharedWord)

	surf := s.ComputeSurface(result)
	require.NotEmpty(t, surf.NovelLinks)
}

func TestQueryMassConservationAfterQuery(t *testing.T) {
	s := New("test", 3, nil, nil)
	_, err := s.Ingest("the quick brown fox jumps over the lazy dog", Subconscious, "")
	require.NoError(t, err)

	s.Query("fox dog")

	var total float64
	for _, m := range s.MassTable {
		total += m
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestQueryRadiusInvariantHoldsAfterDrift(t *testing.T) {
	s := New("test", 5, nil, nil)
	_, err := s.Ingest("alpha beta gamma delta epsilon zeta eta theta", Subconscious, "")
	require.NoError(t, err)

	s.Query("alpha beta gamma delta epsilon zeta eta theta")

	for _, ep := range s.AllEpisodes() {
		for _, n := range ep.Neighborhoods {
			for _, o := range n.Occurrences {
				assert.LessOrEqual(t, n.Seed.Geodesic(o.Position), NeighborhoodRadius+1e-9)
			}
		}
	}
}

func TestCouplingSplitSumsToExactlyOne(t *testing.T) {
	s := New("test", 9, nil, nil)
	kCon, kSub := s.massDerivedCoupling(map[string][]*Occurrence{}, map[string][]*Occurrence{})
	assert.Equal(t, 1.0, kCon+kSub)
}

func TestInterferenceSymmetricWithinQueryPipeline(t *testing.T) {
	s := New("test", 13, nil, nil)
	_, err := s.MarkSalient("hello world")
	require.NoError(t, err)
	_, err = s.Ingest("hello there world", Subconscious, "")
	require.NoError(t, err)

	s.Query("hello world")
	result := &QueryResult{InterferenceTable: make(map[string]float64)}
	s.interferenceStep(result)
	require.NotEmpty(t, result.InterferenceTable)

	consByWord := occurrencesByWord(s.ConsciousEpisode.AllOccurrences())
	for word, val := range result.InterferenceTable {
		var reversed float64
		for _, ep := range s.Subconscious {
			for _, sub := range ep.AllOccurrences() {
				if sub.Word != word {
					continue
				}
				for _, c := range consByWord[word] {
					reversed += s.IDF(word) * sub.Phasor.Interference(c.Phasor)
				}
			}
		}
		assert.InDelta(t, val, reversed, 1e-12)
	}
}

func TestQueryAboveTokenFloorStillConservesMass(t *testing.T) {
	s := New("test", 17, nil, nil)
	words := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		words = append(words, "word"+string(rune('a'+i%26)))
	}
	_, err := s.Ingest(strings.Join(words, " "), Subconscious, "")
	require.NoError(t, err)

	result := s.Query(strings.Join(words, " "))
	require.NotEmpty(t, result.ActivatedOccurrences)

	var total float64
	for _, m := range s.MassTable {
		total += m
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestCentroidDriftStepRespectsRadiusInvariant(t *testing.T) {
	s := New("test", 19, nil, nil)
	activated := make(map[OccurrenceID]*Occurrence)
	_, err := s.Ingest("alpha beta gamma delta epsilon", Subconscious, "")
	require.NoError(t, err)

	for _, n := range s.Subconscious[0].Neighborhoods {
		for _, o := range n.Occurrences {
			o.Activate(s.now())
			activated[o.ID] = o
		}
	}

	s.centroidDriftStep(activated)

	for _, n := range s.Subconscious[0].Neighborhoods {
		for _, o := range n.Occurrences {
			assert.LessOrEqual(t, n.Seed.Geodesic(o.Position), NeighborhoodRadius+1e-9)
		}
	}
}

func snapshotMass(s *System) map[OccurrenceID]float64 {
	out := make(map[OccurrenceID]float64, len(s.MassTable))
	for k, v := range s.MassTable {
		out[k] = v
	}
	return out
}
