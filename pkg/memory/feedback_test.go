package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFeedbackSystem(t *testing.T) *System {
	t.Helper()
	s := New("test", 42, nil, nil)
	_, err := s.Ingest("quantum physics particle wave", Subconscious, "science")
	require.NoError(t, err)
	_, err = s.Ingest("quantum computing algorithm design", Subconscious, "engineering")
	require.NoError(t, err)
	_, err = s.MarkSalient("quantum mechanics research")
	require.NoError(t, err)
	s.Query("quantum physics computing")
	return s
}

func TestApplyFeedbackBoostMovesOccurrencesAndBumpsActivation(t *testing.T) {
	s := makeFeedbackSystem(t)
	nbhd := s.Subconscious[0].Neighborhoods[0]

	beforeActivation := make(map[OccurrenceID]uint32)
	for _, o := range nbhd.Occurrences {
		beforeActivation[o.ID] = o.ActivationCount
	}

	result := s.ApplyFeedback("quantum physics", []NeighborhoodID{nbhd.ID}, Boost)

	require.NotNil(t, result.Centroid)
	assert.Greater(t, result.Boosted, 0)

	anyBumped := false
	for _, o := range nbhd.Occurrences {
		if o.ActivationCount != beforeActivation[o.ID] {
			anyBumped = true
		}
	}
	assert.True(t, anyBumped, "boost should bump activation on at least one occurrence")
}

func TestApplyFeedbackDemoteDecaysActivation(t *testing.T) {
	s := makeFeedbackSystem(t)
	nbhd := s.Subconscious[0].Neighborhoods[0]

	var totalBefore uint32
	for _, o := range nbhd.Occurrences {
		totalBefore += o.ActivationCount
	}
	require.Greater(t, totalBefore, uint32(0), "fixture must have some activation before demoting")

	result := s.ApplyFeedback("quantum physics", []NeighborhoodID{nbhd.ID}, Demote)
	assert.Greater(t, result.Demoted, 0)

	var totalAfter uint32
	for _, o := range nbhd.Occurrences {
		totalAfter += o.ActivationCount
	}
	assert.Less(t, totalAfter, totalBefore)
}

func TestApplyFeedbackDemoteFloorsAtZero(t *testing.T) {
	s := New("test", 1, nil, nil)
	_, err := s.Ingest("hello world", Subconscious, "")
	require.NoError(t, err)
	nbhd := s.Subconscious[0].Neighborhoods[0]

	result := s.ApplyFeedback("hello", []NeighborhoodID{nbhd.ID}, Demote)
	assert.Equal(t, 0, result.Demoted)

	for _, o := range nbhd.Occurrences {
		assert.Equal(t, uint32(0), o.ActivationCount)
	}
}

func TestApplyFeedbackUnknownNeighborhoodBoostsNothing(t *testing.T) {
	s := makeFeedbackSystem(t)
	result := s.ApplyFeedback("quantum", []NeighborhoodID{NeighborhoodID(999999)}, Boost)
	assert.Equal(t, 0, result.Boosted)
}

func TestApplyFeedbackEmptyQueryIsNoOp(t *testing.T) {
	s := makeFeedbackSystem(t)
	nbhd := s.Subconscious[0].Neighborhoods[0]
	result := s.ApplyFeedback("", []NeighborhoodID{nbhd.ID}, Boost)
	assert.Equal(t, FeedbackResult{}, result)
}

func TestApplyFeedbackBoostRespectsAnchoring(t *testing.T) {
	s := makeFeedbackSystem(t)
	nbhd := s.Subconscious[0].Neighborhoods[0]
	nbhd.Occurrences[0].Anchored = true
	anchoredPos := nbhd.Occurrences[0].Position

	s.ApplyFeedback("quantum physics", []NeighborhoodID{nbhd.ID}, Boost)

	assert.Equal(t, anchoredPos, nbhd.Occurrences[0].Position, "anchored occurrence must not drift")
}
