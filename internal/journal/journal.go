// Package journal stores daybook entries in DuckDB, grouped by day.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// DayLayout is the format of a day identifier.
const DayLayout = "2006-01-02"

var (
	// ErrEmptyText is returned when appending an entry without text.
	ErrEmptyText = errors.New("journal: entry text is empty")
	// ErrInvalidDay is returned for a day that is not YYYY-MM-DD.
	ErrInvalidDay = errors.New("journal: invalid day")
)

// Role says who wrote an entry.
type Role string

const (
	RoleAuthor Role = "author"
	RoleReply  Role = "reply"
)

// Entry is one journal entry.
type Entry struct {
	ID        string    `json:"id"`
	Day       string    `json:"day"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DaySummary describes one day that has entries.
type DaySummary struct {
	Day    string    `json:"day"`
	Count  int       `json:"count"`
	LastAt time.Time `json:"last_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id VARCHAR PRIMARY KEY,
    day VARCHAR NOT NULL,
    role VARCHAR NOT NULL,
    text VARCHAR NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// Store is a DuckDB-backed journal.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if _, err := db.Exec("SET enable_external_access=false"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set security settings: %w", err)
	}

	tuilog.Log.Info("Journal: opened", "path", path)
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ValidDay reports whether day is a YYYY-MM-DD date.
func ValidDay(day string) bool {
	_, err := time.Parse(DayLayout, day)
	return err == nil
}

// Today returns the identifier of the current local day.
func Today(now time.Time) string {
	return now.Format(DayLayout)
}

// Days lists the days that have entries, newest first.
func (s *Store) Days(ctx context.Context) ([]DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, count(*), max(created_at)
		FROM entries
		GROUP BY day
		ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	var days []DaySummary
	for rows.Next() {
		var d DaySummary
		if err := rows.Scan(&d.Day, &d.Count, &d.LastAt); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Entries returns the entries of day in the order they were written.
func (s *Store) Entries(ctx context.Context, day string) ([]Entry, error) {
	if !ValidDay(day) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, role, text, created_at
		FROM entries
		WHERE day = ?
		ORDER BY created_at, id`, day)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var role string
		if err := rows.Scan(&e.ID, &e.Day, &role, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Role = Role(role)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Append stores e and returns it with its ID and timestamp filled in.
// An empty Day defaults to the day of CreatedAt.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return Entry{}, ErrEmptyText
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.Day == "" {
		e.Day = Today(e.CreatedAt)
	}
	if !ValidDay(e.Day) {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidDay, e.Day)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Role == "" {
		e.Role = RoleAuthor
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, day, role, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Day, string(e.Role), e.Text, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	tuilog.Log.Debug("Journal: appended", "id", e.ID, "day", e.Day, "role", e.Role)
	return e, nil
}
