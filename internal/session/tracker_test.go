package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/memweave/memweave/internal/item"
)

// fakeClock lets tests advance tracker time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(t *testing.T, store SummaryStore) (*Tracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	tr := NewTracker(Config{
		HistoryPath: filepath.Join(t.TempDir(), "history.json"),
	}, store)
	tr.now = clock.now
	return tr, clock
}

type fakeStore struct {
	items []item.Item
	err   error
}

func (f *fakeStore) Insert(it item.Item) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.items = append(f.items, it)
	return "fake-id", nil
}

type recordingObserver struct {
	started []Session
	ended   []EndEvent
}

func (o *recordingObserver) SessionStarted(s Session) { o.started = append(o.started, s) }
func (o *recordingObserver) SessionEnded(ev EndEvent) { o.ended = append(o.ended, ev) }

func TestStartClosesOpenSession(t *testing.T) {
	tr, clock := newTestTracker(t, nil)
	obs := &recordingObserver{}
	tr.AddObserver(obs)

	first := tr.Start("alpha", "", nil)
	clock.advance(10 * time.Minute)
	second := tr.Start("beta", "", nil)

	if first.ID == second.ID {
		t.Fatal("expected a fresh session ID on restart")
	}
	cur, ok := tr.Current()
	if !ok || cur.ID != second.ID {
		t.Fatalf("current = %q, want %q", cur.ID, second.ID)
	}
	if len(obs.ended) != 1 || obs.ended[0].Session.ID != first.ID {
		t.Fatalf("expected exactly one end event for the first session, got %+v", obs.ended)
	}
	if obs.ended[0].Reason != ReasonManual {
		t.Errorf("implicit close reason = %q, want %q", obs.ended[0].Reason, ReasonManual)
	}
	if len(obs.started) != 2 {
		t.Errorf("started notifications = %d, want 2", len(obs.started))
	}
}

func TestTrackAutoStartsSession(t *testing.T) {
	tr, _ := newTestTracker(t, nil)

	if err := tr.Track(ActivitySearch, map[string]any{"query": "goroutine leak"}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	cur, ok := tr.Current()
	if !ok {
		t.Fatal("expected an auto-started session")
	}
	if !cur.Context.AutoStarted {
		t.Error("auto-started session should carry the AutoStarted flag")
	}
	if len(cur.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(cur.Activities))
	}
}

func TestTrackRejectsUnknownType(t *testing.T) {
	tr, _ := newTestTracker(t, nil)

	if err := tr.Track(ActivityType("teleport"), nil); err == nil {
		t.Fatal("expected an error for an unknown activity type")
	}
	if _, ok := tr.Current(); ok {
		t.Error("rejected activity must not auto-start a session")
	}
}

func TestShortSessionDiscardedOnTimeout(t *testing.T) {
	tr, clock := newTestTracker(t, nil)
	obs := &recordingObserver{}
	tr.AddObserver(obs)

	tr.Start("alpha", "", nil)
	clock.advance(4 * time.Minute)

	summary, err := tr.End(ReasonTimeout)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if summary != nil {
		t.Fatal("4-minute timeout session should be discarded with a nil summary")
	}
	if len(tr.History()) != 0 {
		t.Error("discarded session must not be archived")
	}
	if len(obs.ended) != 1 || !obs.ended[0].Discarded {
		t.Fatalf("expected a discarded end event, got %+v", obs.ended)
	}
}

func TestShortSessionKeptOnManualEnd(t *testing.T) {
	tr, clock := newTestTracker(t, nil)

	tr.Start("alpha", "", nil)
	clock.advance(2 * time.Minute)

	summary, err := tr.End(ReasonManual)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if summary == nil {
		t.Fatal("manual end must summarize regardless of duration")
	}
	if got := len(tr.History()); got != 1 {
		t.Fatalf("history = %d records, want 1", got)
	}
}

func TestEndWithoutSession(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	summary, err := tr.End(ReasonManual)
	if err != nil || summary != nil {
		t.Fatalf("End on idle tracker = (%v, %v), want (nil, nil)", summary, err)
	}
}

func TestSignificantSummaryPersisted(t *testing.T) {
	store := &fakeStore{}
	tr, clock := newTestTracker(t, store)

	tr.Start("alpha", "", nil)
	clock.advance(time.Minute)
	tr.Track(ActivityDiscovery, map[string]any{"description": "config reload races the watcher"})
	clock.advance(10 * time.Minute)

	if _, err := tr.End(ReasonManual); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("persisted items = %d, want 1", len(store.items))
	}
	it := store.items[0]
	if it.Kind != item.KindMemory {
		t.Errorf("summary item kind = %q, want %q", it.Kind, item.KindMemory)
	}
	if !it.HasTag("session-summary") {
		t.Errorf("summary item tags = %v, want session-summary present", it.Tags)
	}
}

func TestStoreFailureStillArchives(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	tr, clock := newTestTracker(t, store)

	tr.Start("alpha", "", nil)
	tr.Track(ActivitySolution, map[string]any{"description": "pinned the driver version"})
	clock.advance(10 * time.Minute)

	summary, err := tr.End(ReasonManual)
	if err == nil {
		t.Fatal("expected the store error to surface")
	}
	if summary == nil {
		t.Fatal("summary should be returned despite the store failure")
	}
	if len(tr.History()) != 1 {
		t.Error("session must be archived even when the store write fails")
	}
	if _, ok := tr.Current(); ok {
		t.Error("store failure must not re-open the session")
	}
}

func TestInsignificantSummaryNotPersisted(t *testing.T) {
	store := &fakeStore{}
	tr, clock := newTestTracker(t, store)

	tr.Start("alpha", "", nil)
	tr.Track(ActivityToolUse, map[string]any{"tool": "grep"})
	clock.advance(10 * time.Minute)

	if _, err := tr.End(ReasonManual); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(store.items) != 0 {
		t.Fatalf("insignificant session persisted %d items, want 0", len(store.items))
	}
	if len(tr.History()) != 1 {
		t.Error("insignificant sessions still belong in history")
	}
}

func TestCheckTimeout(t *testing.T) {
	tr, clock := newTestTracker(t, nil)

	tr.Start("alpha", "", nil)
	tr.Track(ActivityToolUse, map[string]any{"tool": "grep"})

	clock.advance(29 * time.Minute)
	tr.CheckTimeout()
	if _, ok := tr.Current(); !ok {
		t.Fatal("session timed out before the idle threshold")
	}

	clock.advance(2 * time.Minute)
	tr.CheckTimeout()
	if _, ok := tr.Current(); ok {
		t.Fatal("session should have timed out after 31 idle minutes")
	}
	records := tr.History()
	if len(records) != 1 || records[0].Reason != ReasonTimeout {
		t.Fatalf("history = %+v, want one timeout record", records)
	}
}

func TestSanitizeData(t *testing.T) {
	tr, _ := newTestTracker(t, nil)

	tr.Track(ActivityToolUse, map[string]any{
		"tool":         "deploy",
		"api_key":      "sk-live-123",
		"PASSWORD":     "hunter2",
		"authToken":    "abc",
		"clientSecret": "xyz",
		"target":       "staging",
	})

	cur, _ := tr.Current()
	data := cur.Activities[0].Data
	for _, k := range []string{"api_key", "PASSWORD", "authToken", "clientSecret"} {
		if _, ok := data[k]; ok {
			t.Errorf("credential key %q survived sanitization", k)
		}
	}
	if data["tool"] != "deploy" || data["target"] != "staging" {
		t.Errorf("benign keys mangled: %v", data)
	}
}

func TestTrackNilData(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	if err := tr.Track(ActivityFileAccess, nil); err != nil {
		t.Fatalf("Track with nil data: %v", err)
	}
	cur, _ := tr.Current()
	if cur.Activities[0].Data == nil {
		t.Error("nil payload should be normalised to an empty map")
	}
}

func TestBufferEviction(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	tr.cfg.MaxBufferSize = 10

	for i := 0; i < 25; i++ {
		tr.Track(ActivityToolUse, map[string]any{"tool": "grep"})
	}
	if len(tr.buffer) != 10 {
		t.Fatalf("buffer length = %d, want 10", len(tr.buffer))
	}
	cur, _ := tr.Current()
	if len(cur.Activities) != 25 {
		t.Errorf("session activities = %d, want 25; eviction is buffer-only", len(cur.Activities))
	}
}

func TestCloseEndsWithShutdownReason(t *testing.T) {
	tr, clock := newTestTracker(t, nil)

	tr.Start("alpha", "", nil)
	clock.advance(10 * time.Minute)

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	records := tr.History()
	if len(records) != 1 || records[0].Reason != ReasonShutdown {
		t.Fatalf("history = %+v, want one shutdown record", records)
	}
	// Second Close is a no-op.
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
