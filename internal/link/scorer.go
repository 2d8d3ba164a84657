package link

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/memweave/memweave/internal/item"
)

// EdgeType identifies the signal that produced an edge.
type EdgeType string

const (
	EdgeDirect   EdgeType = "direct"   // explicit relation declared by the author
	EdgeTag      EdgeType = "tag"      // shared visible tags
	EdgeContent  EdgeType = "content"  // lexical overlap
	EdgeTemporal EdgeType = "temporal" // created close together in time
)

// Edge is a derived, ephemeral relationship between two items. Edges are
// recomputed on demand and never persisted as first-class records.
type Edge struct {
	SourceID     string   `json:"source_id"`
	TargetID     string   `json:"target_id"`
	Type         EdgeType `json:"type"`
	Weight       float64  `json:"weight"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// directWeight is fixed high; explicit author intent outranks every
// inferred signal.
const directWeight = 3

// Options tunes the scorer. Zero values are replaced by spec defaults
// via DefaultOptions.
type Options struct {
	SimilarityThreshold float64
	MinSharedWords      int
	TemporalWindow      time.Duration
	SourceTokenCap      int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.15,
		MinSharedWords:      2,
		TemporalWindow:      2 * time.Hour,
		SourceTokenCap:      20,
	}
}

// Scorer produces zero or one edge per signal type for an item pair.
type Scorer struct {
	opts Options
}

// NewScorer creates a Scorer with the given options. Unset fields fall
// back to defaults.
func NewScorer(opts Options) *Scorer {
	def := DefaultOptions()
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = def.SimilarityThreshold
	}
	if opts.MinSharedWords == 0 {
		opts.MinSharedWords = def.MinSharedWords
	}
	if opts.TemporalWindow == 0 {
		opts.TemporalWindow = def.TemporalWindow
	}
	if opts.SourceTokenCap == 0 {
		opts.SourceTokenCap = def.SourceTokenCap
	}
	return &Scorer{opts: opts}
}

// DirectEdge emits an edge when either item explicitly declares the other
// in its related set.
func (s *Scorer) DirectEdge(source, target item.Item) *Edge {
	if !source.RelatedTo(target.ID) && !target.RelatedTo(source.ID) {
		return nil
	}
	return &Edge{
		SourceID: source.ID,
		TargetID: target.ID,
		Type:     EdgeDirect,
		Weight:   directWeight,
	}
}

// TagEdge emits an edge weighted by the number of shared visible tags.
// The computation is symmetric in source and target.
func (s *Scorer) TagEdge(source, target item.Item) *Edge {
	targetTags := make(map[string]bool)
	for _, t := range VisibleTags(target) {
		targetTags[t] = true
	}

	var shared []string
	for _, t := range VisibleTags(source) {
		if targetTags[t] {
			shared = append(shared, t)
		}
	}
	if len(shared) == 0 {
		return nil
	}
	sort.Strings(shared)

	label := shared
	if len(label) > 2 {
		label = label[:2]
	}
	return &Edge{
		SourceID:     source.ID,
		TargetID:     target.ID,
		Type:         EdgeTag,
		Weight:       float64(len(shared)),
		MatchedTerms: label,
	}
}

// ContentEdge emits an edge when the source's key vocabulary appears in
// the target. The overlap is asymmetric: the source token set is capped
// so similarity measures "does the source's vocabulary show up in the
// target", not full-document Jaccard.
func (s *Scorer) ContentEdge(source, target item.Item) *Edge {
	sourceTokens := SourceTokens(source.Content, s.opts.SourceTokenCap)
	if len(sourceTokens) == 0 {
		return nil
	}

	targetSet := make(map[string]bool)
	for _, t := range Tokens(target.Content) {
		targetSet[t] = true
	}

	var shared []string
	for _, t := range sourceTokens {
		if targetSet[t] {
			shared = append(shared, t)
		}
	}

	similarity := float64(len(shared)) / math.Max(float64(len(sourceTokens)), 1)

	// Both gates are strict: a similarity of exactly the threshold, or
	// exactly MinSharedWords matches, does not qualify.
	if similarity <= s.opts.SimilarityThreshold || len(shared) <= s.opts.MinSharedWords {
		return nil
	}

	return &Edge{
		SourceID:     source.ID,
		TargetID:     target.ID,
		Type:         EdgeContent,
		Weight:       math.Round(similarity * 10),
		MatchedTerms: shared,
	}
}

// TemporalEdge emits a binary proximity edge when the items were created
// within the temporal window of each other. Identical timestamps do not
// qualify.
func (s *Scorer) TemporalEdge(source, target item.Item) *Edge {
	delta := source.CreatedAt.Sub(target.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	if delta <= 0 || delta >= s.opts.TemporalWindow {
		return nil
	}
	return &Edge{
		SourceID: source.ID,
		TargetID: target.ID,
		Type:     EdgeTemporal,
		Weight:   1,
	}
}

// Label renders a short human-readable description of an edge.
func (e Edge) Label() string {
	switch e.Type {
	case EdgeTag:
		return "tags: " + strings.Join(e.MatchedTerms, ", ")
	case EdgeContent:
		return "similar content"
	case EdgeTemporal:
		return "same timeframe"
	default:
		return "linked"
	}
}
