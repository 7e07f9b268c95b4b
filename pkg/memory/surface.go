package memory

import "sort"

// NeighborhoodSurface is a vivid neighborhood ranked by its activation
// score, with its top fragment occurrences already selected.
type NeighborhoodSurface struct {
	NeighborhoodID NeighborhoodID
	EpisodeID      EpisodeID
	Score          float64
	Fragments      []*Occurrence
}

// ManifoldSurface is the emergent structure surfaced from one manifold.
type ManifoldSurface struct {
	VividNeighborhoods []*NeighborhoodSurface
	VividEpisodes      []EpisodeID
}

// NovelLink pairs a conscious and subconscious occurrence of the same
// word whose phase interference crosses the novelty threshold.
type NovelLink struct {
	Word                    string
	ConsciousOccurrence     *Occurrence
	SubconsciousOccurrence  *Occurrence
	Interference            float64
}

// Surface is the full emergent recall structure computed from a
// QueryResult: nothing here is fetched by key, it's ranked out of
// whatever crossed threshold.
type Surface struct {
	Conscious    ManifoldSurface
	Subconscious ManifoldSurface
	NovelLinks   []NovelLink
}

func (s *System) occurrenceScore(o *Occurrence) float64 {
	return float64(o.ActivationCount) * s.IDF(o.Word)
}

// ComputeSurface ranks and selects vivid neighborhoods/episodes and
// extracts representative fragments for each manifold, plus cross-
// manifold novel links, from the state the query pipeline left behind.
func (s *System) ComputeSurface(result *QueryResult) *Surface {
	surf := &Surface{
		Conscious:    s.computeManifoldSurface([]*Episode{s.ConsciousEpisode}),
		Subconscious: s.computeManifoldSurface(s.Subconscious),
		NovelLinks:   s.computeNovelLinks(),
	}
	return surf
}

func (s *System) computeManifoldSurface(episodes []*Episode) ManifoldSurface {
	var vivid []*NeighborhoodSurface
	var vividEpisodes []EpisodeID

	for _, ep := range episodes {
		if ep.IsVivid() {
			vividEpisodes = append(vividEpisodes, ep.ID)
		}
		for _, n := range ep.Neighborhoods {
			if !n.IsVivid() {
				continue
			}
			vivid = append(vivid, &NeighborhoodSurface{
				NeighborhoodID: n.ID,
				EpisodeID:      ep.ID,
				Score:          s.neighborhoodScore(n),
				Fragments:      s.topFragments(n),
			})
		}
	}

	sort.Slice(vivid, func(i, j int) bool {
		if vivid[i].Score != vivid[j].Score {
			return vivid[i].Score > vivid[j].Score
		}
		return vivid[i].NeighborhoodID < vivid[j].NeighborhoodID
	})
	sort.Slice(vividEpisodes, func(i, j int) bool { return vividEpisodes[i] < vividEpisodes[j] })

	return ManifoldSurface{VividNeighborhoods: vivid, VividEpisodes: vividEpisodes}
}

func (s *System) neighborhoodScore(n *Neighborhood) float64 {
	var sum float64
	for _, o := range n.Occurrences {
		if o.ActivationCount > 0 {
			sum += s.occurrenceScore(o)
		}
	}
	return sum
}

// topFragments selects the top VividFragmentCap occurrences by score
// (desc, ties broken by ascending id), then re-orders that selected set
// back into the neighborhood's original insertion order.
func (s *System) topFragments(n *Neighborhood) []*Occurrence {
	ranked := append([]*Occurrence{}, n.Occurrences...)
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := s.occurrenceScore(ranked[i]), s.occurrenceScore(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})

	cap := VividFragmentCap
	if len(ranked) < cap {
		cap = len(ranked)
	}
	selected := make(map[OccurrenceID]bool, cap)
	for _, o := range ranked[:cap] {
		selected[o.ID] = true
	}

	var ordered []*Occurrence
	for _, o := range n.Occurrences {
		if selected[o.ID] {
			ordered = append(ordered, o)
		}
	}
	return ordered
}

func (s *System) computeNovelLinks() []NovelLink {
	consciousByWord := occurrencesByWord(s.ConsciousEpisode.AllOccurrences())
	var links []NovelLink

	for _, ep := range s.Subconscious {
		for _, sub := range ep.AllOccurrences() {
			consOccs, ok := consciousByWord[sub.Word]
			if !ok {
				continue
			}
			for _, cons := range consOccs {
				interference := cons.Phasor.Interference(sub.Phasor)
				if interference >= NovelInterferenceThreshold {
					links = append(links, NovelLink{
						Word:                   sub.Word,
						ConsciousOccurrence:    cons,
						SubconsciousOccurrence: sub,
						Interference:           interference,
					})
				}
			}
		}
	}

	sort.Slice(links, func(i, j int) bool {
		si := links[i].Interference * s.IDF(links[i].Word)
		sj := links[j].Interference * s.IDF(links[j].Word)
		if si != sj {
			return si > sj
		}
		if links[i].ConsciousOccurrence.ID != links[j].ConsciousOccurrence.ID {
			return links[i].ConsciousOccurrence.ID < links[j].ConsciousOccurrence.ID
		}
		return links[i].SubconsciousOccurrence.ID < links[j].SubconsciousOccurrence.ID
	})

	return links
}
