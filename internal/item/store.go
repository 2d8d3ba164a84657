package item

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/memweave/memweave/internal/db"
)

// ErrNotFound is returned when an item lookup misses.
var ErrNotFound = errors.New("item not found")

// Store provides read/write access to content items in SQLite.
// It is the concrete store adapter consumed by the link builder and the
// session tracker.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert persists a new item and returns its generated ID.
// A zero CreatedAt is stamped with the current time.
func (s *Store) Insert(it Item) (string, error) {
	if it.Kind == "" {
		it.Kind = KindMemory
	}
	if !ValidKind(it.Kind) {
		return "", fmt.Errorf("store: invalid item kind %q", it.Kind)
	}

	id := it.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := it.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Conn().Exec(`
		INSERT INTO items (id, kind, content, tags, project, category, related_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(it.Kind), it.Content, marshalStrings(it.Tags),
		it.Project, it.Category, marshalStrings(it.RelatedIDs),
		createdAt.Format(timeLayout), createdAt.Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert item: %w", err)
	}
	return id, nil
}

// Get returns a single item by ID, or ErrNotFound.
func (s *Store) Get(id string) (Item, error) {
	row := s.db.Conn().QueryRow(`
		SELECT id, kind, content, tags, COALESCE(project,''), COALESCE(category,''), related_ids, created_at, updated_at
		FROM items WHERE id = ?`, id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, fmt.Errorf("store: item %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("store: get item: %w", err)
	}
	return it, nil
}

// List returns items matching the filter, newest first.
func (s *Store) List(f Filter) ([]Item, error) {
	query := `SELECT id, kind, content, tags, COALESCE(project,''), COALESCE(category,''), related_ids, created_at, updated_at FROM items`
	var (
		conds []string
		args  []any
	)
	if f.Kind != "" {
		conds = append(conds, `kind = ?`)
		args = append(args, string(f.Kind))
	}
	if f.Project != "" {
		conds = append(conds, `project = ?`)
		args = append(args, f.Project)
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		// Tag filtering happens in Go; tags are a JSON column.
		if f.Tag != "" && !it.HasTag(f.Tag) {
			continue
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateTags replaces an item's tag set. Used to write back bookkeeping
// annotations (title:/summary: tags) after enrichment.
func (s *Store) UpdateTags(id string, tags []string) error {
	res, err := s.db.Conn().Exec(
		`UPDATE items SET tags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		marshalStrings(tags), id,
	)
	if err != nil {
		return fmt.Errorf("store: update tags: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("store: item %q: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateRelated replaces an item's explicit relation set.
func (s *Store) UpdateRelated(id string, relatedIDs []string) error {
	res, err := s.db.Conn().Exec(
		`UPDATE items SET related_ids = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		marshalStrings(relatedIDs), id,
	)
	if err != nil {
		return fmt.Errorf("store: update related: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("store: item %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an item by ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Conn().Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete item: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("store: item %q: %w", id, ErrNotFound)
	}
	return nil
}

// CountByKind returns a count per item kind.
func (s *Store) CountByKind() (map[Kind]int, error) {
	rows, err := s.db.Conn().Query(`SELECT kind, COUNT(*) FROM items GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("store: count by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		counts[Kind(k)] = n
	}
	return counts, rows.Err()
}

// ---- Helpers ----

const timeLayout = "2006-01-02 15:04:05"

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var it Item
	var kind, tags, related, createdAt, updatedAt string
	if err := row.Scan(&it.ID, &kind, &it.Content, &tags, &it.Project, &it.Category, &related, &createdAt, &updatedAt); err != nil {
		return it, err
	}
	it.Kind = Kind(kind)
	it.Tags = unmarshalStrings(tags)
	it.RelatedIDs = unmarshalStrings(related)
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	return it, nil
}

func marshalStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

// parseTime tries multiple SQLite timestamp layouts.
// go-sqlite3 may return RFC3339 or the plain "2006-01-02 15:04:05" format
// depending on the connection string and platform.
func parseTime(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		timeLayout,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
