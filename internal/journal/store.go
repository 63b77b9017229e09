// Package journal provides the SQLite-backed audit journal for Hyperplex.
// The engine writes committed missions and stack decisions here; nothing
// reads them back into session state.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fentz26/hyperplex/internal/models"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal: closed")

// Decision is one recorded state-mutating action.
type Decision struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	SubjectID  string    `json:"subject_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store provides access to the journal database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS missions (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		priority TEXT NOT NULL,
		deliverable TEXT NOT NULL,
		agent_ids TEXT NOT NULL,
		tools TEXT,
		completed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pdr (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		subject_id TEXT,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_missions_completed_at ON missions(completed_at);
	CREATE INDEX IF NOT EXISTS idx_pdr_timestamp ON pdr(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Mission Operations ---

// RecordMission inserts a completed mission. Re-recording an ID is a no-op.
func (s *Store) RecordMission(ctx context.Context, m models.Mission) error {
	if s.db == nil {
		return ErrClosed
	}
	agents, err := json.Marshal(m.AgentIDs)
	if err != nil {
		return fmt.Errorf("encode agents: %w", err)
	}
	tools, err := json.Marshal(m.Tools)
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO missions (id, task, priority, deliverable, agent_ids, tools, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Task, string(m.Priority), m.Deliverable, string(agents), string(tools), m.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert mission: %w", err)
	}
	return nil
}

// ListMissions returns up to limit missions, newest first. A limit below 1
// returns every mission.
func (s *Store) ListMissions(ctx context.Context, limit int) ([]models.Mission, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task, priority, deliverable, agent_ids, tools, completed_at FROM missions ORDER BY completed_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var missions []models.Mission
	for rows.Next() {
		var (
			m        models.Mission
			priority string
			agents   string
			tools    sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Task, &priority, &m.Deliverable, &agents, &tools, &m.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		m.Priority = models.Priority(priority)
		if err := json.Unmarshal([]byte(agents), &m.AgentIDs); err != nil {
			return nil, fmt.Errorf("decode agents for %s: %w", m.ID, err)
		}
		if tools.Valid && tools.String != "" {
			if err := json.Unmarshal([]byte(tools.String), &m.Tools); err != nil {
				return nil, fmt.Errorf("decode tools for %s: %w", m.ID, err)
			}
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// CountMissions returns the number of recorded missions.
func (s *Store) CountMissions(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM missions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	return n, nil
}

// --- Decision Operations ---

// WriteDecision writes a Process Decision Record.
func (s *Store) WriteDecision(ctx context.Context, action, inputsHash, outcome, subjectID, details string) (*Decision, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	d := &Decision{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		SubjectID:  subjectID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pdr (id, action, inputs_hash, outcome, subject_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Action, d.InputsHash, d.Outcome, d.SubjectID, d.Details, d.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pdr: %w", err)
	}
	return d, nil
}

// ListDecisions returns up to limit decisions, newest first.
func (s *Store) ListDecisions(ctx context.Context, limit int) ([]Decision, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, inputs_hash, outcome, subject_id, details, timestamp FROM pdr ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pdr: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var (
			d         Decision
			subjectID sql.NullString
			details   sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Action, &d.InputsHash, &d.Outcome, &subjectID, &details, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pdr: %w", err)
		}
		d.SubjectID = subjectID.String
		d.Details = details.String
		out = append(out, d)
	}
	return out, rows.Err()
}
