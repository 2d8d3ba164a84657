package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// historyCap bounds the archived records kept in memory and on disk.
const historyCap = 100

// Record is one archived session with its summary and close reason.
type Record struct {
	Session Session   `json:"session"`
	Summary *Summary  `json:"summary,omitempty"`
	Reason  EndReason `json:"reason"`
	EndedAt time.Time `json:"ended_at"`
}

// loadHistory reads the history document. A missing file yields empty
// history; a malformed one is logged and reset rather than treated as
// fatal, since the summaries that matter are already stored as items.
func loadHistory(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("session: history file %s is corrupt, starting fresh: %v", path, err)
		return nil
	}
	if len(records) > historyCap {
		records = records[len(records)-historyCap:]
	}
	return records
}

// saveHistory rewrites the history document wholesale, trimmed to the
// cap, creating parent directories as needed.
func saveHistory(path string, records []Record) error {
	if len(records) > historyCap {
		records = records[len(records)-historyCap:]
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("session: create history dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("session: write history: %w", err)
	}
	return nil
}
