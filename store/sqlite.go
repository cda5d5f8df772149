package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agentdesk/agentdesk/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements EventLog using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			memory_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			payload TEXT,
			PRIMARY KEY (memory_id, actor_id, session_id, event_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(memory_id, actor_id, session_id, ts)`,
		`CREATE TABLE IF NOT EXISTS memory_strategies (
			memory_id TEXT PRIMARY KEY,
			strategy_id TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PutEvent appends one record to a session's log.
func (s *SQLiteStore) PutEvent(ctx context.Context, memoryID, actorID, sessionID string, record *domain.RawEventRecord) error {
	var payload sql.NullString
	if len(record.PayloadItems) > 0 {
		data, err := json.Marshal(record.PayloadItems)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	var ts int64
	if !record.EventTimestamp.IsZero() {
		ts = record.EventTimestamp.UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (memory_id, actor_id, session_id, event_id, ts, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		memoryID, actorID, sessionID, record.EventID, ts, payload)
	return err
}

// ListEvents returns one page of a session's records in event-id order. The
// continuation token is the last event id of the page. An empty first page
// reports ErrNotFound so callers can distinguish a brand-new actor.
func (s *SQLiteStore) ListEvents(ctx context.Context, q EventQuery) (*EventPage, error) {
	limit := q.MaxResults
	if limit <= 0 {
		limit = 100
	}

	columns := `event_id, ts`
	if q.IncludePayloads {
		columns += `, payload`
	}
	query := fmt.Sprintf(`SELECT %s FROM events WHERE memory_id = ? AND actor_id = ? AND session_id = ?`, columns)
	args := []interface{}{q.MemoryID, q.ActorID, q.SessionID}

	if q.NextToken != "" {
		query += ` AND event_id > ?`
		args = append(args, q.NextToken)
	}
	query += fmt.Sprintf(` ORDER BY event_id ASC LIMIT %d`, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.RawEventRecord
	for rows.Next() {
		var record domain.RawEventRecord
		var ts int64
		var payload sql.NullString
		if q.IncludePayloads {
			err = rows.Scan(&record.EventID, &ts, &payload)
		} else {
			err = rows.Scan(&record.EventID, &ts)
		}
		if err != nil {
			return nil, err
		}
		if ts > 0 {
			record.EventTimestamp = time.UnixMilli(ts)
		}
		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &record.PayloadItems); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload for event %s: %w", record.EventID, err)
			}
		}
		events = append(events, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(events) == 0 && q.NextToken == "" {
		return nil, fmt.Errorf("no events for actor %s session %s: %w", q.ActorID, q.SessionID, ErrNotFound)
	}

	page := &EventPage{Events: events}
	if len(page.Events) > limit {
		page.Events = page.Events[:limit]
		page.NextToken = page.Events[len(page.Events)-1].EventID
	}
	return page, nil
}

// DeleteEvent removes one record from a session's log.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, memoryID, actorID, sessionID, eventID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE memory_id = ? AND actor_id = ? AND session_id = ? AND event_id = ?`,
		memoryID, actorID, sessionID, eventID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return nil
}

// MemoryStrategyID resolves the long-term-memory strategy for a memory
// resource.
func (s *SQLiteStore) MemoryStrategyID(ctx context.Context, memoryID string) (string, error) {
	var strategyID string
	err := s.db.QueryRowContext(ctx,
		`SELECT strategy_id FROM memory_strategies WHERE memory_id = ?`,
		memoryID).Scan(&strategyID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("memory %s: %w", memoryID, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return strategyID, nil
}

// PutMemoryStrategy registers or replaces the strategy for a memory
// resource. Used at provisioning time and by tests.
func (s *SQLiteStore) PutMemoryStrategy(ctx context.Context, memoryID, strategyID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO memory_strategies (memory_id, strategy_id) VALUES (?, ?)`,
		memoryID, strategyID)
	return err
}
