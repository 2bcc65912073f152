package manifest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS manifests (
	decision_id       TEXT PRIMARY KEY,
	mission_id        TEXT NOT NULL,
	environment       TEXT NOT NULL,
	is_dark_window    INTEGER NOT NULL,
	window_state      TEXT NOT NULL,
	anomaly           TEXT,
	command           TEXT NOT NULL,
	validation_status TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	manifest_json     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_manifests_mission ON manifests(mission_id);
`

// #endregion schema

// #region store-struct

// Store persists manifests in SQLite. Rows are insert-once; there is no
// update path by design.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens the manifest database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region put

// Put inserts a manifest. A duplicate decision ID is an error; manifests are
// written exactly once.
func (s *Store) Put(m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	anomaly := ""
	if len(m.ActiveConditions) > 0 {
		anomaly = strings.Join(m.ActiveConditions, ",")
	}
	dark := 0
	if m.IsDarkWindow {
		dark = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO manifests (decision_id, mission_id, environment, is_dark_window, window_state, anomaly, command, validation_status, created_at, manifest_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.DecisionID, m.MissionID, m.Environment, dark, m.WindowState,
		nullIfEmpty(anomaly), m.DispatchedCommand, m.ValidationResult.Status,
		m.Timestamp.UTC().Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return fmt.Errorf("insert manifest: %w", err)
	}
	return nil
}

// #endregion put

// #region get

// Get retrieves one manifest by decision ID.
func (s *Store) Get(decisionID string) (Manifest, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT manifest_json FROM manifests WHERE decision_id = ?`, decisionID,
	).Scan(&data)
	if err != nil {
		return Manifest{}, fmt.Errorf("get manifest %s: %w", decisionID, err)
	}
	var m Manifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return Manifest{}, fmt.Errorf("unmarshal manifest %s: %w", decisionID, err)
	}
	return m, nil
}

// #endregion get

// #region query

// Filters narrows a manifest query. Zero values mean no filtering; a zero
// Limit defaults to 50, a negative Limit means unbounded.
type Filters struct {
	MissionID   string
	Environment string
	Anomaly     string // matches any listed condition kind
	DarkWindow  *bool
	Limit       int
}

// Query returns manifests newest-first matching the filters.
func (s *Store) Query(f Filters) ([]Manifest, error) {
	var where []string
	var args []any
	if f.MissionID != "" {
		where = append(where, "mission_id = ?")
		args = append(args, f.MissionID)
	}
	if f.Environment != "" {
		where = append(where, "environment = ?")
		args = append(args, f.Environment)
	}
	if f.Anomaly != "" {
		where = append(where, "anomaly LIKE ?")
		args = append(args, "%"+f.Anomaly+"%")
	}
	if f.DarkWindow != nil {
		dark := 0
		if *f.DarkWindow {
			dark = 1
		}
		where = append(where, "is_dark_window = ?")
		args = append(args, dark)
	}

	q := `SELECT manifest_json FROM manifests`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit >= 0 {
		limit := f.Limit
		if limit == 0 {
			limit = 50
		}
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query manifests: %w", err)
	}
	defer rows.Close()

	var out []Manifest
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var m Manifest
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("unmarshal manifest: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// #endregion query

// #region verify

// VerifyStored recomputes the integrity proof for a stored manifest.
func (s *Store) VerifyStored(decisionID string) (bool, error) {
	m, err := s.Get(decisionID)
	if err != nil {
		return false, err
	}
	return Verify(m), nil
}

// #endregion verify

// #region helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
