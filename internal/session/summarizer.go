package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/memweave/memweave/internal/item"
)

// Metrics aggregates a finished session's counters.
type Metrics struct {
	Duration          time.Duration `json:"duration"`
	TotalActivities   int           `json:"total_activities"`
	Searches          int           `json:"searches"`
	ToolsUsed         int           `json:"tools_used"`
	FilesAccessed     int           `json:"files_accessed"`
	ErrorsEncountered int           `json:"errors_encountered"`
	ErrorsResolved    int           `json:"errors_resolved"`
	SolutionsFound    int           `json:"solutions_found"`
	Discoveries       int           `json:"discoveries"`
	KeyMoments        int           `json:"key_moments"`
}

// Summary is the derived view of a finished session. It is not persisted
// directly; when significant, its formatted content becomes a new
// memory item.
type Summary struct {
	Metrics         Metrics  `json:"metrics"`
	SessionTypes    []string `json:"session_types"`
	Narrative       string   `json:"narrative"`
	IsSignificant   bool     `json:"is_significant"`
	Highlights      []string `json:"highlights,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Session type classification thresholds.
const (
	debuggingTypeErrors    = 5
	explorationTypeFiles   = 20
	developmentTypeTools   = 5
	developmentTypeMinutes = 30
)

// Summarize computes metrics, classifies the session, assembles the
// narrative, and applies the significance gate. Deterministic: no
// randomness and no LLM calls in this path.
func Summarize(s *Session, endTime time.Time) *Summary {
	m := computeMetrics(s, endTime)
	types := classify(s, m)

	sum := &Summary{
		Metrics:         m,
		SessionTypes:    types,
		Narrative:       buildNarrative(s, m, types),
		Highlights:      buildHighlights(s),
		Recommendations: buildRecommendations(s, m, types),
	}
	sum.IsSignificant = isSignificant(m, types)
	return sum
}

func computeMetrics(s *Session, endTime time.Time) Metrics {
	m := Metrics{
		Duration:          endTime.Sub(s.StartTime),
		TotalActivities:   len(s.Activities),
		Searches:          len(s.Searches),
		ToolsUsed:         len(s.Tools),
		FilesAccessed:     len(s.Files),
		ErrorsEncountered: len(s.Errors),
		SolutionsFound:    len(s.Solutions),
		Discoveries:       len(s.Discoveries),
		KeyMoments:        len(s.KeyMoments),
	}
	for _, e := range s.Errors {
		if e.Resolved {
			m.ErrorsResolved++
		}
	}
	return m
}

// classify returns every matching category; the set is non-exclusive,
// defaulting to {general}.
func classify(s *Session, m Metrics) []string {
	var types []string
	if m.ErrorsEncountered > debuggingTypeErrors && m.SolutionsFound > 0 {
		types = append(types, "debugging")
	}
	if m.FilesAccessed > explorationTypeFiles {
		types = append(types, "exploration")
	}
	if m.Discoveries > 0 {
		types = append(types, "research")
	}
	if m.ToolsUsed > developmentTypeTools && m.Duration > developmentTypeMinutes*time.Minute {
		types = append(types, "development")
	}
	if s.Context.Goal != "" {
		types = append(types, "focused")
	}
	if len(types) == 0 {
		types = []string{"general"}
	}
	return types
}

// isSignificant is a disjunctive gate: any single strong signal suffices.
// The policy favours recall over precision for permanent persistence.
func isSignificant(m Metrics, types []string) bool {
	switch {
	case m.Discoveries > 0:
		return true
	case m.SolutionsFound > 0:
		return true
	case m.Duration > time.Hour && m.TotalActivities > 50:
		return true
	case hasType(types, "debugging") && m.ErrorsResolved > 0:
		return true
	case m.KeyMoments > 2:
		return true
	}
	return false
}

func hasType(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// buildNarrative assembles the fixed-template sentence sequence.
func buildNarrative(s *Session, m Metrics, types []string) string {
	parts := []string{
		fmt.Sprintf("Worked for %s across %d activities.", formatDuration(m.Duration), m.TotalActivities),
	}

	if hasType(types, "debugging") {
		parts = append(parts, fmt.Sprintf("Debugged %d errors and resolved %d of them.",
			m.ErrorsEncountered, m.ErrorsResolved))
	}
	if hasType(types, "exploration") {
		parts = append(parts, fmt.Sprintf("Explored %d files.", m.FilesAccessed))
	}
	if m.Discoveries > 0 {
		parts = append(parts, fmt.Sprintf("Made %d discoveries.", m.Discoveries))
	}
	if len(s.KeyMoments) > 0 {
		parts = append(parts, fmt.Sprintf("Notable moments: %s.", strings.Join(momentTypes(s.KeyMoments), ", ")))
	}
	return strings.Join(parts, " ")
}

// momentTypes lists the unique key-moment types in first-appearance order.
func momentTypes(moments []KeyMoment) []string {
	seen := make(map[KeyMomentType]bool)
	var out []string
	for _, km := range moments {
		if seen[km.Type] {
			continue
		}
		seen[km.Type] = true
		out = append(out, string(km.Type))
	}
	return out
}

func buildHighlights(s *Session) []string {
	var out []string

	for _, q := range topSearches(s, 3) {
		out = append(out, fmt.Sprintf("Searched %q %d times", q, s.Searches[q].Count))
	}
	for _, d := range s.Discoveries {
		out = append(out, "Discovery: "+d.Description)
	}
	for _, sol := range s.Solutions {
		line := "Solved: " + sol.Description
		if len(sol.ResolvedErrors) > 0 {
			line += " (resolved: " + strings.Join(sol.ResolvedErrors, "; ") + ")"
		}
		out = append(out, line)
	}
	for _, name := range topTools(s, 3) {
		out = append(out, fmt.Sprintf("Used %s %d times", name, s.Tools[name].Count))
	}
	return out
}

func buildRecommendations(s *Session, m Metrics, types []string) []string {
	var out []string

	var unresolved []string
	for _, e := range s.Errors {
		if !e.Resolved && e.Message != "" {
			unresolved = append(unresolved, e.Message)
		}
	}
	if len(unresolved) > 0 {
		out = append(out, fmt.Sprintf("%d unresolved errors remain: %s",
			len(unresolved), strings.Join(unresolved, "; ")))
	}

	// Repeated searches that never returned results suggest missing
	// content or wrong terms.
	for _, q := range sortedQueries(s) {
		st := s.Searches[q]
		if st.NoResultCount >= 2 {
			out = append(out, fmt.Sprintf("Repeated search %q found nothing %d times; try different terms", q, st.NoResultCount))
		}
	}

	if hasType(types, "debugging") && m.Duration > time.Hour {
		out = append(out, "Long debugging session; consider taking a break and revisiting with fresh eyes")
	}
	return out
}

// topSearches returns up to n queries by descending count, ties broken
// lexically for determinism.
func topSearches(s *Session, n int) []string {
	qs := sortedQueries(s)
	sort.SliceStable(qs, func(i, j int) bool {
		return s.Searches[qs[i]].Count > s.Searches[qs[j]].Count
	})
	if len(qs) > n {
		qs = qs[:n]
	}
	return qs
}

func sortedQueries(s *Session) []string {
	qs := make([]string, 0, len(s.Searches))
	for q := range s.Searches {
		qs = append(qs, q)
	}
	sort.Strings(qs)
	return qs
}

func topTools(s *Session, n int) []string {
	names := make([]string, 0, len(s.Tools))
	for name := range s.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool {
		return s.Tools[names[i]].Count > s.Tools[names[j]].Count
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// SummaryItem builds the memory item persisted for a significant session.
func SummaryItem(s *Session, sum *Summary) item.Item {
	tags := []string{"session-summary"}
	tags = append(tags, sum.SessionTypes...)
	tags = append(tags, durationBucket(sum.Metrics.Duration))

	return item.Item{
		Kind:      item.KindMemory,
		Content:   FormatContent(s, sum),
		Tags:      tags,
		Project:   s.Context.Project,
		Category:  "session",
		CreatedAt: s.EndTime,
	}
}

// FormatContent renders the narrative plus structured sections as the
// persisted content string.
func FormatContent(s *Session, sum *Summary) string {
	var sb strings.Builder
	sb.WriteString("# Session summary\n\n")
	sb.WriteString(sum.Narrative)
	sb.WriteString("\n")

	if len(sum.Highlights) > 0 {
		sb.WriteString("\n## Highlights\n")
		for _, h := range sum.Highlights {
			sb.WriteString("- " + h + "\n")
		}
	}
	if len(sum.Recommendations) > 0 {
		sb.WriteString("\n## Recommendations\n")
		for _, r := range sum.Recommendations {
			sb.WriteString("- " + r + "\n")
		}
	}
	return sb.String()
}

// durationBucket tags summaries by coarse session length.
func durationBucket(d time.Duration) string {
	switch {
	case d < 30*time.Minute:
		return "short-session"
	case d <= 2*time.Hour:
		return "medium-session"
	default:
		return "long-session"
	}
}

// formatDuration renders a duration as "42m" or "1h 10m".
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "under a minute"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
