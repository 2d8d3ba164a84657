package session

import (
	"strings"
	"time"
)

// solutionLookback is how far back a solution searches for unresolved
// errors to mark resolved.
const solutionLookback = 10 * time.Minute

// handleSearch aggregates per-query stats and fires the repeated-search
// moment exactly when a query's count reaches the threshold.
func (t *Tracker) handleSearch(s *Session, a Activity) {
	q := normalizeQuery(stringField(a.Data, "query"))
	if q == "" {
		return
	}

	st := s.Searches[q]
	if st == nil {
		st = &SearchStat{}
		s.Searches[q] = st
	}
	st.Count++
	st.LastAt = a.Timestamp
	if n, ok := intField(a.Data, "result_count"); ok && n == 0 {
		st.NoResultCount++
	}

	// Fires once, at the threshold crossing; not on later repeats.
	if st.Count == repeatedSearchThreshold {
		s.KeyMoments = append(s.KeyMoments, KeyMoment{
			Type:      MomentRepeatedSearch,
			Timestamp: a.Timestamp,
			Data:      map[string]any{"query": q, "count": st.Count},
		})
	}
}

func (t *Tracker) handleToolUse(s *Session, a Activity) {
	name := stringField(a.Data, "tool")
	if name == "" {
		name = stringField(a.Data, "name")
	}
	if name == "" {
		return
	}

	st := s.Tools[name]
	if st == nil {
		st = &ToolStat{}
		s.Tools[name] = st
	}
	st.Count++
	st.LastAt = a.Timestamp
}

func (t *Tracker) handleFileAccess(s *Session, a Activity) {
	path := stringField(a.Data, "path")
	if path == "" {
		path = stringField(a.Data, "file")
	}
	if path != "" {
		s.Files[path] = true
	}
}

// handleError records the error and fires an error-spike moment on a
// high-severity error or once the session's error count passes the
// spike threshold.
func (t *Tracker) handleError(s *Session, a Activity) {
	ev := ErrorEvent{
		Message:   stringField(a.Data, "message"),
		Severity:  stringField(a.Data, "severity"),
		Timestamp: a.Timestamp,
	}
	s.Errors = append(s.Errors, ev)

	if ev.Severity == "high" || len(s.Errors) > errorSpikeThreshold {
		s.KeyMoments = append(s.KeyMoments, KeyMoment{
			Type:      MomentErrorSpike,
			Timestamp: a.Timestamp,
			Data: map[string]any{
				"message":  ev.Message,
				"severity": ev.Severity,
				"total":    len(s.Errors),
			},
		})
	}
}

// handleSolution records the solution and resolves any unresolved errors
// from the look-back window, firing a problem-solved moment when at
// least one error was resolved.
func (t *Tracker) handleSolution(s *Session, a Activity) {
	sol := SolutionEvent{
		Description: stringField(a.Data, "description"),
		Timestamp:   a.Timestamp,
	}

	cutoff := a.Timestamp.Add(-solutionLookback)
	for i := range s.Errors {
		e := &s.Errors[i]
		if e.Resolved || e.Timestamp.Before(cutoff) {
			continue
		}
		e.Resolved = true
		sol.ResolvedErrors = append(sol.ResolvedErrors, e.Message)
	}
	s.Solutions = append(s.Solutions, sol)

	if len(sol.ResolvedErrors) > 0 {
		s.KeyMoments = append(s.KeyMoments, KeyMoment{
			Type:      MomentProblemSolved,
			Timestamp: a.Timestamp,
			Data:      map[string]any{"resolved": sol.ResolvedErrors},
		})
	}
}

func (t *Tracker) handleDiscovery(s *Session, a Activity) {
	desc := stringField(a.Data, "description")
	s.Discoveries = append(s.Discoveries, DiscoveryEvent{
		Description: desc,
		Timestamp:   a.Timestamp,
	})
	s.KeyMoments = append(s.KeyMoments, KeyMoment{
		Type:      MomentDiscovery,
		Timestamp: a.Timestamp,
		Data:      map[string]any{"description": desc},
	})
}

// normalizeQuery canonicalises a search query for aggregation.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// stringField reads a string payload value, tolerating absence and
// non-string shapes.
func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// intField reads a numeric payload value. JSON decoding yields float64.
func intField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
