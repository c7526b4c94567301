package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/pipeline"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/regulate"
	"github.com/sharanyaa30/aura-cognitive-monitor/internal/storage"
)

// Store implements SessionStorage using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite storage with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// StartSession registers a new monitoring session
func (s *Store) StartSession(sessionID, profileID string, startedAt time.Time) error {
	query := `
		INSERT INTO sessions (id, profile_id, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	if _, err := s.db.Exec(query, sessionID, profileID, startedAt); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// StoreCycle persists one cycle record
func (s *Store) StoreCycle(sessionID string, metrics *pipeline.CycleMetrics) error {
	query := `
		INSERT INTO cycles (
			session_id, blink_rate, head_forward, breathing_rate,
			load_score, zone, face_detected, timestamp
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		sessionID,
		metrics.BlinkRate,
		metrics.HeadForward,
		metrics.BreathingRate,
		metrics.LoadScore,
		string(metrics.Zone),
		metrics.FaceDetected,
		metrics.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store cycle: %w", err)
	}

	return nil
}

// StoreIntervention persists one executed regulation action
func (s *Store) StoreIntervention(sessionID string, outcome *regulate.Outcome) error {
	query := `
		INSERT INTO interventions (session_id, kind, recommendation, used_fallback, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		sessionID,
		string(outcome.Kind),
		outcome.Recommendation,
		outcome.UsedFallback,
		outcome.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store intervention: %w", err)
	}

	return nil
}

// QueryCycles retrieves cycle records with optional filtering
func (s *Store) QueryCycles(filter storage.CycleFilter) ([]storage.CycleRecord, error) {
	query := `
		SELECT id, session_id, blink_rate, head_forward, breathing_rate,
		       load_score, zone, face_detected, timestamp, created_at
		FROM cycles
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if filter.Zone != "" {
		query += " AND zone = ?"
		args = append(args, filter.Zone)
	}

	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}

	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100" // Default limit
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var records []storage.CycleRecord
	for rows.Next() {
		var record storage.CycleRecord

		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.BlinkRate,
			&record.HeadForward,
			&record.BreathingRate,
			&record.LoadScore,
			&record.Zone,
			&record.FaceDetected,
			&record.Timestamp,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// QueryInterventions retrieves intervention records with optional filtering
func (s *Store) QueryInterventions(filter storage.InterventionFilter) ([]storage.InterventionRecord, error) {
	query := `
		SELECT id, session_id, kind, recommendation, used_fallback, timestamp, created_at
		FROM interventions
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}

	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}

	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var records []storage.InterventionRecord
	for rows.Next() {
		var record storage.InterventionRecord

		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.Kind,
			&record.Recommendation,
			&record.UsedFallback,
			&record.Timestamp,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
