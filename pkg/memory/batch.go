package memory

import "sort"

// BatchQueryRequest is one query within a BatchQuery call.
type BatchQueryRequest struct {
	Query string
}

// BatchQueryResult is the per-request outcome of a BatchQuery call.
type BatchQueryResult struct {
	Query                string
	Context              *ComposedContext
	ActivatedOccurrences []OccurrenceID
}

// BatchQuery amortizes activation, drift, interference and coupling
// across the union of every request's tokens, running each exactly once
// against the combined set rather than once per request, then partitions
// the union's activated occurrences per request to compose each
// request's own context. IDF weights are a property of the whole
// manifold's document-frequency table, not of any one query, so they're
// identical whether computed once against the union or once per request;
// the only thing amortization changes is how many times the O(n)/O(n²)
// drift and interference passes run. An empty requests slice returns nil.
//
// Unlike Query, which activates every literal token occurrence (so a
// repeated word activates its matching occurrence more than once), the
// union built here is deduplicated by word: a word shared across several
// requests in the same batch, or repeated within one request's text, is
// activated exactly once. This matches the original engine's batch
// behavior and is necessary for the amortization itself — the point is
// that activating the union once stands in for activating each request's
// tokens independently.
func (s *System) BatchQuery(requests []BatchQueryRequest) []BatchQueryResult {
	if len(requests) == 0 {
		return nil
	}

	perRequestTokens := make([][]Token, len(requests))
	seenUnion := make(map[string]bool)
	var unionTokens []Token
	for i, req := range requests {
		toks := Tokenize(req.Query)
		perRequestTokens[i] = toks
		for _, t := range toks {
			if !seenUnion[t.Word] {
				seenUnion[t.Word] = true
				unionTokens = append(unionTokens, t)
			}
		}
	}

	union := &QueryResult{
		NeighborhoodActivation: make(map[NeighborhoodID]uint32),
		InterferenceTable:      make(map[string]float64),
	}
	activated := s.activateQuery(unionTokens, union)
	if len(unionTokens) > largeQueryTokenFloor {
		activated = s.filterByIDFFloor(activated)
	}
	s.driftStep(activated)
	s.interferenceStep(union)
	s.couplingStep(union)
	s.renormalizeMass()

	results := make([]BatchQueryResult, len(requests))
	for i, req := range requests {
		results[i] = s.partitionBatchResult(req.Query, perRequestTokens[i], activated, union)
	}
	return results
}

// partitionBatchResult builds the per-request QueryResult, Surface and
// ComposedContext from the union's already-activated/drifted/coupled
// state, restricted to the occurrences and words this request's own
// tokens actually touch.
func (s *System) partitionBatchResult(query string, tokens []Token, activated map[OccurrenceID]*Occurrence, union *QueryResult) BatchQueryResult {
	words := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		words[t.Word] = true
	}

	reqResult := &QueryResult{
		QueryTokens:            tokensToWords(tokens),
		NeighborhoodActivation: make(map[NeighborhoodID]uint32),
		InterferenceTable:      make(map[string]float64),
	}
	for id, occ := range activated {
		if words[occ.Word] {
			reqResult.ActivatedOccurrences = append(reqResult.ActivatedOccurrences, id)
		}
	}
	sort.Slice(reqResult.ActivatedOccurrences, func(i, j int) bool {
		return reqResult.ActivatedOccurrences[i] < reqResult.ActivatedOccurrences[j]
	})
	for w, v := range union.InterferenceTable {
		if words[w] {
			reqResult.InterferenceTable[w] = v
		}
	}
	for nid, c := range union.NeighborhoodActivation {
		reqResult.NeighborhoodActivation[nid] = c
	}

	surf := s.ComputeSurface(reqResult)
	ctx := s.ComposeContext(surf, reqResult, query)

	return BatchQueryResult{
		Query:                query,
		Context:              ctx,
		ActivatedOccurrences: reqResult.ActivatedOccurrences,
	}
}
