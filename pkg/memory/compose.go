package memory

import (
	"fmt"
	"strings"
)

// ComposedContext is the human-readable three-section text block
// produced from a Surface.
type ComposedContext struct {
	Text string
}

const (
	consciousHeader    = "CONSCIOUS RECALL:"
	subconsciousHeader = "SUBCONSCIOUS RECALL:"
	novelHeader        = "NOVEL CONNECTIONS:"
)

// ComposeContext assembles the conscious / subconscious / novel sections
// from surf, each a pure function of the surface output's fragment words
// and each neighborhood's Kind tag. An empty section is omitted
// entirely; headers are fixed string literals.
func (s *System) ComposeContext(surf *Surface, result *QueryResult, query string) *ComposedContext {
	var sections []string

	if sec := composeManifoldSection(consciousHeader, surf.Conscious, s, ComposeConsciousCap); sec != "" {
		sections = append(sections, sec)
	}
	if sec := composeManifoldSection(subconsciousHeader, surf.Subconscious, s, ComposeSubconsciousCap); sec != "" {
		sections = append(sections, sec)
	}
	if sec := composeNovelSection(surf.NovelLinks); sec != "" {
		sections = append(sections, sec)
	}

	return &ComposedContext{Text: strings.Join(sections, "\n\n")}
}

func composeManifoldSection(header string, m ManifoldSurface, s *System, cap int) string {
	if len(m.VividNeighborhoods) == 0 {
		return ""
	}

	n := cap
	if len(m.VividNeighborhoods) < n {
		n = len(m.VividNeighborhoods)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, ns := range m.VividNeighborhoods[:n] {
		b.WriteString("\n- ")
		b.WriteString(fragmentLine(ns, s))
	}
	return b.String()
}

func fragmentLine(ns *NeighborhoodSurface, s *System) string {
	nbhd := s.neighborhoodByID[ns.NeighborhoodID]
	words := make([]string, 0, len(ns.Fragments))
	for _, o := range ns.Fragments {
		words = append(words, o.Word)
	}
	line := strings.Join(words, " ")

	if nbhd != nil {
		switch nbhd.Kind {
		case NeighborhoodDecision:
			return fmt.Sprintf("[decision] %s", line)
		case NeighborhoodPreference:
			return fmt.Sprintf("[preference] %s", line)
		case NeighborhoodInsight:
			return fmt.Sprintf("[insight] %s", line)
		}
	}
	return line
}

func composeNovelSection(links []NovelLink) string {
	if len(links) == 0 {
		return ""
	}

	n := ComposeNovelCap
	if len(links) < n {
		n = len(links)
	}

	var b strings.Builder
	b.WriteString(novelHeader)
	for _, l := range links[:n] {
		b.WriteString("\n- ")
		b.WriteString(fmt.Sprintf("%s relates to %s", l.ConsciousOccurrence.Word, l.SubconsciousOccurrence.Word))
	}
	return b.String()
}
