package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memweave/memweave/internal/item"
)

// EndReason records why a session was closed.
type EndReason string

const (
	ReasonManual   EndReason = "manual"
	ReasonTimeout  EndReason = "timeout"
	ReasonShutdown EndReason = "shutdown"
)

// SummaryStore persists significant session summaries as content items.
// *item.Store satisfies it; tests substitute fakes.
type SummaryStore interface {
	Insert(it item.Item) (string, error)
}

// EndEvent is delivered to observers when a session closes.
type EndEvent struct {
	Session   Session
	Summary   *Summary // nil when discarded
	Reason    EndReason
	Discarded bool
}

// Observer receives fire-and-forget lifecycle notifications. Callbacks
// run outside the tracker lock, in registration order.
type Observer interface {
	SessionStarted(s Session)
	SessionEnded(ev EndEvent)
}

// Config tunes the tracker lifecycle.
type Config struct {
	SessionTimeout     time.Duration
	MinSessionDuration time.Duration
	AutoSaveInterval   time.Duration
	MaxBufferSize      int
	HistoryPath        string // JSON session history document
}

// DefaultConfig returns the standard lifecycle settings.
func DefaultConfig() Config {
	return Config{
		SessionTimeout:     30 * time.Minute,
		MinSessionDuration: 5 * time.Minute,
		AutoSaveInterval:   5 * time.Minute,
		MaxBufferSize:      1000,
		HistoryPath:        "data/session-history.json",
	}
}

// Tracker owns the single optional open session, the rolling activity
// buffer, and the archived session history. All state is guarded by mu:
// tool handlers and the background timeout loop share it.
type Tracker struct {
	mu        sync.Mutex
	cfg       Config
	store     SummaryStore
	current   *Session
	history   []Record
	buffer    []Activity // rolling window across sessions, FIFO-capped
	observers []Observer
	done      chan struct{}
	closeOnce sync.Once

	now func() time.Time // swapped out in tests
}

// NewTracker creates a Tracker, loading any existing history from
// cfg.HistoryPath. store may be nil; summaries are then never persisted
// as items (history still records them).
func NewTracker(cfg Config, store SummaryStore) *Tracker {
	def := DefaultConfig()
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = def.SessionTimeout
	}
	if cfg.MinSessionDuration == 0 {
		cfg.MinSessionDuration = def.MinSessionDuration
	}
	if cfg.AutoSaveInterval == 0 {
		cfg.AutoSaveInterval = def.AutoSaveInterval
	}
	if cfg.MaxBufferSize == 0 {
		cfg.MaxBufferSize = def.MaxBufferSize
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = def.HistoryPath
	}
	return &Tracker{
		cfg:     cfg,
		store:   store,
		history: loadHistory(cfg.HistoryPath),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

// AddObserver registers a lifecycle observer.
func (t *Tracker) AddObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Start opens a new session. An already-open session is closed first;
// two sessions are never open concurrently.
func (t *Tracker) Start(project, goal string, tags []string) Session {
	t.mu.Lock()
	var pending []func()
	if t.current != nil {
		_, ev, _ := t.endLocked(ReasonManual)
		pending = append(pending, t.notifyEnded(ev))
	}
	s := t.startLocked(project, goal, tags, false)
	snapshot := *s
	pending = append(pending, t.notifyStarted(snapshot))
	t.mu.Unlock()

	for _, fire := range pending {
		fire()
	}
	return snapshot
}

// startLocked creates the session record. Caller holds mu.
func (t *Tracker) startLocked(project, goal string, tags []string, auto bool) *Session {
	now := t.now()
	t.current = &Session{
		ID:           uuid.NewString(),
		StartTime:    now,
		LastActivity: now,
		Files:        make(map[string]bool),
		Searches:     make(map[string]*SearchStat),
		Tools:        make(map[string]*ToolStat),
		Context: Context{
			Project:     project,
			Goal:        goal,
			Tags:        tags,
			AutoStarted: auto,
		},
	}
	return t.current
}

// Track records an activity against the open session, starting one
// implicitly if none is open. Unknown activity types are rejected;
// malformed payload shapes are tolerated and sanitized.
func (t *Tracker) Track(typ ActivityType, data map[string]any) error {
	if !ValidActivityType(typ) {
		return fmt.Errorf("session: unknown activity type %q", typ)
	}

	t.mu.Lock()
	var pending []func()
	if t.current == nil {
		s := t.startLocked("", "", nil, true)
		pending = append(pending, t.notifyStarted(*s))
	}

	a := Activity{
		Type:      typ,
		Timestamp: t.now(),
		Data:      sanitizeData(data),
	}
	s := t.current
	s.Activities = append(s.Activities, a)
	s.LastActivity = a.Timestamp

	t.buffer = append(t.buffer, a)
	if len(t.buffer) > t.cfg.MaxBufferSize {
		// FIFO eviction keeps memory bounded.
		t.buffer = t.buffer[len(t.buffer)-t.cfg.MaxBufferSize:]
	}

	t.route(s, a)
	t.detectPatterns(s)
	t.mu.Unlock()

	for _, fire := range pending {
		fire()
	}
	return nil
}

// route dispatches an activity to its type-specific aggregate handler.
// Caller holds mu.
func (t *Tracker) route(s *Session, a Activity) {
	switch a.Type {
	case ActivitySearch:
		t.handleSearch(s, a)
	case ActivityToolUse:
		t.handleToolUse(s, a)
	case ActivityFileAccess:
		t.handleFileAccess(s, a)
	case ActivityError:
		t.handleError(s, a)
	case ActivitySolution:
		t.handleSolution(s, a)
	case ActivityDiscovery:
		t.handleDiscovery(s, a)
	}
}

// End closes the open session. It returns the summary, or nil when no
// session was open or the session was discarded for being shorter than
// the minimum duration (non-manual reasons only).
//
// A store failure while persisting a significant summary is returned to
// the caller, but the session is already archived in history by then;
// the failure never re-opens or duplicates the session.
func (t *Tracker) End(reason EndReason) (*Summary, error) {
	t.mu.Lock()
	summary, ev, err := t.endLocked(reason)
	var fire func()
	if ev != nil {
		fire = t.notifyEnded(ev)
	}
	t.mu.Unlock()

	if fire != nil {
		fire()
	}
	return summary, err
}

// endLocked performs the close transition. Caller holds mu.
func (t *Tracker) endLocked(reason EndReason) (*Summary, *EndEvent, error) {
	s := t.current
	if s == nil {
		return nil, nil, nil
	}

	endTime := t.now()
	s.EndTime = endTime
	t.current = nil

	if endTime.Sub(s.StartTime) < t.cfg.MinSessionDuration && reason != ReasonManual {
		// Too short to be meaningful; discarded, not archived.
		return nil, &EndEvent{Session: *s, Reason: reason, Discarded: true}, nil
	}

	summary := Summarize(s, endTime)

	// Archive before the store write so a write failure cannot corrupt
	// session state.
	t.history = append(t.history, Record{
		Session: *s,
		Summary: summary,
		Reason:  reason,
		EndedAt: endTime,
	})
	if len(t.history) > historyCap {
		t.history = t.history[len(t.history)-historyCap:]
	}

	var storeErr error
	if summary.IsSignificant && t.store != nil {
		if _, err := t.store.Insert(SummaryItem(s, summary)); err != nil {
			storeErr = fmt.Errorf("session: persist summary: %w", err)
		}
	}

	return summary, &EndEvent{Session: *s, Summary: summary, Reason: reason}, storeErr
}

// Current returns a snapshot of the open session, if any.
func (t *Tracker) Current() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Session{}, false
	}
	return *t.current, true
}

// History returns the archived session records, oldest first.
func (t *Tracker) History() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.history))
	copy(out, t.history)
	return out
}

// CheckTimeout closes the open session when it has been idle longer
// than the configured timeout.
func (t *Tracker) CheckTimeout() {
	t.mu.Lock()
	var fire func()
	if t.current != nil && t.now().Sub(t.current.LastActivity) > t.cfg.SessionTimeout {
		_, ev, _ := t.endLocked(ReasonTimeout)
		if ev != nil {
			fire = t.notifyEnded(ev)
		}
	}
	t.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// SaveHistory rewrites the history document on disk.
func (t *Tracker) SaveHistory() error {
	t.mu.Lock()
	records := make([]Record, len(t.history))
	copy(records, t.history)
	path := t.cfg.HistoryPath
	t.mu.Unlock()

	return saveHistory(path, records)
}

// Run drives the periodic timeout check and history autosave until
// Close is called. Intended to run in its own goroutine.
func (t *Tracker) Run() {
	ticker := time.NewTicker(t.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.CheckTimeout()
			_ = t.SaveHistory()
		case <-t.done:
			return
		}
	}
}

// Close stops the background loop, ends any open session with reason
// shutdown, and flushes history to disk.
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	_, err := t.End(ReasonShutdown)
	if saveErr := t.SaveHistory(); saveErr != nil && err == nil {
		err = saveErr
	}
	return err
}

// notifyStarted returns a closure firing SessionStarted on the current
// observer set. Caller holds mu; the closure is invoked after unlock.
func (t *Tracker) notifyStarted(s Session) func() {
	obs := make([]Observer, len(t.observers))
	copy(obs, t.observers)
	return func() {
		for _, o := range obs {
			o.SessionStarted(s)
		}
	}
}

func (t *Tracker) notifyEnded(ev *EndEvent) func() {
	obs := make([]Observer, len(t.observers))
	copy(obs, t.observers)
	e := *ev
	return func() {
		for _, o := range obs {
			o.SessionEnded(e)
		}
	}
}

// credentialKeywords mark data keys that are stripped before storage.
var credentialKeywords = []string{"password", "token", "secret", "key"}

// sanitizeData copies the payload, dropping credential-shaped keys.
// A nil payload is tolerated and becomes an empty map.
func sanitizeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		lower := strings.ToLower(k)
		sensitive := false
		for _, kw := range credentialKeywords {
			if strings.Contains(lower, kw) {
				sensitive = true
				break
			}
		}
		if sensitive {
			continue
		}
		out[k] = v
	}
	return out
}
