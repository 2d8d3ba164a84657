// Package session tracks a stream of typed activity events, detects
// behavioural patterns over a rolling window, and summarises finished
// sessions into persistable memory items.
package session

import "time"

// ActivityType classifies a tracked event.
type ActivityType string

const (
	ActivitySearch     ActivityType = "search"
	ActivityToolUse    ActivityType = "tool_use"
	ActivityFileAccess ActivityType = "file_access"
	ActivityError      ActivityType = "error"
	ActivitySolution   ActivityType = "solution"
	ActivityDiscovery  ActivityType = "discovery"
)

// ValidActivityType returns true if t is a recognised activity type.
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivitySearch, ActivityToolUse, ActivityFileAccess,
		ActivityError, ActivitySolution, ActivityDiscovery:
		return true
	}
	return false
}

// Activity is a single tracked event. Immutable once appended; Data has
// credential-shaped keys stripped before storage.
type Activity struct {
	Type      ActivityType   `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// ErrorEvent records a tracked error and whether a later solution
// resolved it.
type ErrorEvent struct {
	Message   string    `json:"message"`
	Severity  string    `json:"severity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

// SolutionEvent records a tracked solution and the error messages it
// resolved via the look-back window.
type SolutionEvent struct {
	Description    string    `json:"description"`
	Timestamp      time.Time `json:"timestamp"`
	ResolvedErrors []string  `json:"resolved_errors,omitempty"`
}

// DiscoveryEvent records something learned during the session.
type DiscoveryEvent struct {
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// SearchStat aggregates repeated uses of one normalised query.
type SearchStat struct {
	Count         int       `json:"count"`
	NoResultCount int       `json:"no_result_count,omitempty"`
	LastAt        time.Time `json:"last_at"`
}

// ToolStat aggregates uses of one tool.
type ToolStat struct {
	Count  int       `json:"count"`
	LastAt time.Time `json:"last_at"`
}

// KeyMomentType classifies a detected pattern or notable event.
type KeyMomentType string

const (
	MomentRepeatedSearch     KeyMomentType = "repeated_search"
	MomentErrorSpike         KeyMomentType = "error_spike"
	MomentProblemSolved      KeyMomentType = "problem_solved"
	MomentDiscovery          KeyMomentType = "discovery"
	MomentDebuggingSession   KeyMomentType = "debugging_session"
	MomentExplorationSession KeyMomentType = "exploration_session"
)

// KeyMoment is an append-only log entry inside a session.
type KeyMoment struct {
	Type      KeyMomentType  `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Context holds session metadata and the idempotent pattern flags.
type Context struct {
	Project             string   `json:"project,omitempty"`
	Goal                string   `json:"goal,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	DebuggingDetected   bool     `json:"debugging_detected"`
	ExplorationDetected bool     `json:"exploration_detected"`
	AutoStarted         bool     `json:"auto_started,omitempty"`
}

// Session is the open unit of activity tracking. At most one session is
// open per tracker; a finished session moves to history.
type Session struct {
	ID           string                 `json:"id"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time,omitempty"`
	LastActivity time.Time              `json:"last_activity"`
	Activities   []Activity             `json:"activities"`
	Errors       []ErrorEvent           `json:"errors,omitempty"`
	Solutions    []SolutionEvent        `json:"solutions,omitempty"`
	Discoveries  []DiscoveryEvent       `json:"discoveries,omitempty"`
	Files        map[string]bool        `json:"files,omitempty"`
	Searches     map[string]*SearchStat `json:"searches,omitempty"`
	Tools        map[string]*ToolStat   `json:"tools,omitempty"`
	KeyMoments   []KeyMoment            `json:"key_moments,omitempty"`
	Context      Context                `json:"context"`
}

// Duration returns the session length, using now for open sessions.
func (s *Session) Duration(now time.Time) time.Duration {
	if !s.EndTime.IsZero() {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}
