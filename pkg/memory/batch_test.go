package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBatchSystem(t *testing.T) *System {
	t.Helper()
	s := New("test", 42, nil, nil)
	_, err := s.Ingest("quantum physics particle wave", Subconscious, "science")
	require.NoError(t, err)
	_, err = s.Ingest("neural network deep learning", Subconscious, "science")
	require.NoError(t, err)
	_, err = s.Ingest("rust compiler borrow lifetime", Subconscious, "engineering")
	require.NoError(t, err)
	_, err = s.MarkSalient("quantum computing neural architecture")
	require.NoError(t, err)
	return s
}

func TestBatchQueryReturnsOneResultPerRequest(t *testing.T) {
	s := makeBatchSystem(t)

	results := s.BatchQuery([]BatchQueryRequest{
		{Query: "quantum physics"},
		{Query: "rust compiler"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "quantum physics", results[0].Query)
	assert.Equal(t, "rust compiler", results[1].Query)
}

func TestBatchQueryActivatesDisjointSubsets(t *testing.T) {
	s := makeBatchSystem(t)

	results := s.BatchQuery([]BatchQueryRequest{
		{Query: "quantum physics"},
		{Query: "rust compiler"},
	})

	assert.NotEmpty(t, results[0].ActivatedOccurrences)
	assert.NotEmpty(t, results[1].ActivatedOccurrences)

	seen := make(map[OccurrenceID]bool)
	for _, id := range results[0].ActivatedOccurrences {
		seen[id] = true
	}
	for _, id := range results[1].ActivatedOccurrences {
		assert.False(t, seen[id], "disjoint queries should not share activated occurrences")
	}
}

func TestBatchQueryOverlappingRequestsShareUnionActivation(t *testing.T) {
	s := makeBatchSystem(t)

	results := s.BatchQuery([]BatchQueryRequest{
		{Query: "quantum physics"},
		{Query: "quantum computing"},
	})

	assert.NotEmpty(t, results[0].ActivatedOccurrences)
	assert.NotEmpty(t, results[1].ActivatedOccurrences)
	assert.NotEmpty(t, results[0].Context.Text)
	assert.NotEmpty(t, results[1].Context.Text)
}

func TestBatchQueryEmptyRequestsReturnsNil(t *testing.T) {
	s := makeBatchSystem(t)
	assert.Nil(t, s.BatchQuery(nil))
}

func TestBatchQuerySingleRequestMatchesDirectQuery(t *testing.T) {
	s1 := makeBatchSystem(t)
	s2 := makeBatchSystem(t)

	batchResults := s1.BatchQuery([]BatchQueryRequest{{Query: "quantum physics"}})

	directResult := s2.Query("quantum physics")
	directSurface := s2.ComputeSurface(directResult)
	directContext := s2.ComposeContext(directSurface, directResult, "quantum physics")

	assert.Equal(t, directContext.Text, batchResults[0].Context.Text)
}

func TestBatchQueryConservesMassAcrossUnion(t *testing.T) {
	s := makeBatchSystem(t)
	s.BatchQuery([]BatchQueryRequest{
		{Query: "quantum physics"},
		{Query: "neural network"},
		{Query: "rust compiler"},
	})

	var total float64
	for _, m := range s.MassTable {
		total += m
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}
