package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/classifier"
	"github.com/ziadkadry99/shopdesk/internal/db"
)

// Store reads and writes question log entries. It implements
// assistant.Recorder.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record logs an answered question. Failures are logged, never returned, so
// a broken log cannot hold back an answer.
func (s *Store) Record(ctx context.Context, ev assistant.Event) {
	err := s.Log(context.WithoutCancel(ctx), Entry{
		Surface:     ev.Surface,
		Role:        ev.Role,
		Query:       ev.Query,
		Label:       ev.Label,
		Denied:      ev.Denied,
		Backend:     ev.Backend,
		AnswerChars: ev.AnswerChars,
	})
	if err != nil {
		log.Printf("audit: %v", err)
	}
}

// Log inserts a new entry. A missing ID gets a UUID and a zero Timestamp
// becomes now.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Surface == "" {
		entry.Surface = assistant.SurfaceCLI
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO question_log (
			id, timestamp, surface, role, query, label, denied, backend, answer_chars
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.DateTime),
		entry.Surface,
		string(entry.Role),
		entry.Query,
		string(entry.Label),
		entry.Denied,
		entry.Backend,
		entry.AnswerChars,
	)
	if err != nil {
		return fmt.Errorf("inserting question log entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM question_log WHERE id = ?", id)
	return scanInto(row)
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Role    assistant.Role
	Label   classifier.Label
	Surface string
	Denied  *bool
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

const columns = "id, timestamp, surface, role, query, label, denied, backend, answer_chars"

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, string(filter.Role))
	}
	if filter.Label != "" {
		clauses = append(clauses, "label = ?")
		args = append(args, string(filter.Label))
	}
	if filter.Surface != "" {
		clauses = append(clauses, "surface = ?")
		args = append(args, filter.Surface)
	}
	if filter.Denied != nil {
		clauses = append(clauses, "denied = ?")
		args = append(args, *filter.Denied)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT " + columns + " FROM question_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying question log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Stats counts all entries, denials, and entries per label and per role.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		ByLabel: map[classifier.Label]int{},
		ByRole:  map[assistant.Role]int{},
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, label, denied, COUNT(*) FROM question_log GROUP BY role, label, denied")
	if err != nil {
		return st, fmt.Errorf("counting question log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, label string
			denied      bool
			n           int
		)
		if err := rows.Scan(&role, &label, &denied, &n); err != nil {
			return st, err
		}
		st.Total += n
		st.ByLabel[classifier.Label(label)] += n
		st.ByRole[assistant.Role(role)] += n
		if denied {
			st.Denied += n
		}
	}
	return st, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM question_log WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old question log entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e           Entry
		ts          sql.NullString
		role, label string
	)

	err := sc.Scan(&e.ID, &ts, &e.Surface, &role, &e.Query, &label, &e.Denied, &e.Backend, &e.AnswerChars)
	if err != nil {
		return nil, err
	}

	e.Role = assistant.Role(role)
	e.Label = classifier.Label(label)
	e.Timestamp = parseTimestamp(ts.String)
	return &e, nil
}

// parseTimestamp accepts the formats SQLite drivers hand back for DATETIME.
func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
