package link

import (
	"sort"

	"github.com/memweave/memweave/internal/item"
)

// Graph is the deduplicated edge set over a candidate item set, plus a
// per-item connection count used for ranking and sizing.
type Graph struct {
	Edges []Edge
	// Connections counts edges touching each item. Content edges count
	// at half weight to reflect their lower confidence.
	Connections map[string]float64
}

// Builder applies the scorer pairwise over a candidate set.
//
// Evaluation is O(n²) in the candidate count; acceptable at the scale of
// hundreds of items. An inverted tag index would prune candidates for
// larger corpora.
type Builder struct {
	scorer *Scorer

	// Progress, if set, is called after each source item's pair scan.
	Progress func(done, total int)
}

// NewBuilder creates a Builder using the given scorer.
func NewBuilder(scorer *Scorer) *Builder {
	return &Builder{scorer: scorer}
}

// Build produces the full edge list and connection counts for items.
//
// Pairs are evaluated in canonical ID order so the output is deterministic
// regardless of the input ordering. Per unordered pair, at most one
// non-direct edge is emitted: tag signals are evaluated before content and
// temporal signals, and the first qualifying signal wins. Direct edges are
// always added independently, so a pair can carry a direct edge plus one
// inferred edge, but never two inferred edges.
func (b *Builder) Build(items []item.Item) *Graph {
	sorted := make([]item.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	g := &Graph{Connections: make(map[string]float64, len(sorted))}
	linked := make(map[[2]string]bool) // unordered pair → has a non-direct edge

	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			source, target := sorted[i], sorted[j]
			key := pairKey(source.ID, target.ID)

			if e := b.scorer.DirectEdge(source, target); e != nil {
				g.add(*e)
			}
			if linked[key] {
				continue
			}

			// First qualifying inferred signal wins; tag precedes content
			// by evaluation order (a preserved behavioural quirk, see
			// DESIGN.md), temporal comes last.
			for _, score := range []func(item.Item, item.Item) *Edge{
				b.scorer.TagEdge,
				b.scorer.ContentEdge,
				b.scorer.TemporalEdge,
			} {
				if e := score(source, target); e != nil {
					g.add(*e)
					linked[key] = true
					break
				}
			}
		}
		if b.Progress != nil {
			b.Progress(i+1, len(sorted))
		}
	}
	return g
}

// EdgesFor returns the edges touching the given item ID.
func (g *Graph) EdgesFor(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.SourceID == id || e.TargetID == id {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) add(e Edge) {
	g.Edges = append(g.Edges, e)

	contribution := 1.0
	if e.Type == EdgeContent {
		contribution = 0.5
	}
	g.Connections[e.SourceID] += contribution
	g.Connections[e.TargetID] += contribution
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
