// Package store persists analysis snapshots to SQLite so progress can be
// compared across runs. Snapshots are immutable once written; history is
// append-only.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"testlens/internal/analysis"
	"testlens/internal/logging"
)

// Snapshot is one persisted analysis result, summarized.
type Snapshot struct {
	ID            string
	CreatedAt     time.Time
	Workspace     string
	Solution      string
	Projects      int
	TestProjects  int
	Classes       int
	TestedClasses int
	TestMethods   int
	Coverage      float64
	Framework     string
}

// ClassStat is the per-class row stored with each snapshot.
type ClassStat struct {
	SnapshotID  string
	Ref         string
	Name        string
	Project     string
	Score       int
	HasTests    bool
	TestMethods int
	Smells      []string
}

// SnapshotStore stores analysis snapshots in a SQLite database.
type SnapshotStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSnapshotStore opens (or creates) the snapshot database at path.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewSnapshotStore")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	// NORMAL is safe under WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set synchronous=NORMAL: %v", err)
	}

	s := &SnapshotStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("snapshot store ready at %s", path)
	return s, nil
}

func (s *SnapshotStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id             TEXT PRIMARY KEY,
		created_at     DATETIME NOT NULL,
		workspace      TEXT NOT NULL,
		solution       TEXT DEFAULT '',
		projects       INTEGER DEFAULT 0,
		test_projects  INTEGER DEFAULT 0,
		classes        INTEGER DEFAULT 0,
		tested_classes INTEGER DEFAULT 0,
		test_methods   INTEGER DEFAULT 0,
		coverage       REAL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS class_stats (
		snapshot_id  TEXT NOT NULL,
		ref          TEXT NOT NULL,
		name         TEXT NOT NULL,
		project      TEXT DEFAULT '',
		score        INTEGER DEFAULT 0,
		has_tests    INTEGER DEFAULT 0,
		test_methods INTEGER DEFAULT 0,
		smells       TEXT DEFAULT '',
		PRIMARY KEY (snapshot_id, ref),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id)
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_class_stats_snapshot ON class_stats(snapshot_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveSnapshot persists a report and returns the new snapshot ID.
func (s *SnapshotStore) SaveSnapshot(report *analysis.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	tested := 0
	for _, c := range report.Classes {
		if c.HasTests {
			tested++
		}
	}

	_, err = tx.Exec(`INSERT INTO snapshots
		(id, created_at, workspace, solution, projects, test_projects,
		 classes, tested_classes, test_methods, coverage, framework)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.GeneratedAt.UTC(), report.Workspace, report.Solution,
		len(report.Projects), len(report.TestProjects),
		len(report.Classes), tested, report.TestMethods,
		report.Coverage(), report.Stack.TestFramework)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO class_stats
		(snapshot_id, ref, name, project, score, has_tests, test_methods, smells)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare class stats: %w", err)
	}
	defer stmt.Close()

	for _, c := range report.Classes {
		hasTests := 0
		if c.HasTests {
			hasTests = 1
		}
		if _, err := stmt.Exec(id, c.Ref, c.Name, c.Project, c.Score,
			hasTests, c.TestMethods, strings.Join(c.Smells, ";")); err != nil {
			return "", fmt.Errorf("insert class stat %s: %w", c.Ref, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}

	logging.Store("saved snapshot %s (%d classes, %.1f%% coverage)",
		id, len(report.Classes), report.Coverage())
	return id, nil
}

// ListSnapshots returns snapshots newest first, up to limit (0 = all).
func (s *SnapshotStore) ListSnapshots(limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, created_at, workspace, solution, projects, test_projects,
		classes, tested_classes, test_methods, coverage, framework
		FROM snapshots ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &snap.Workspace, &snap.Solution,
			&snap.Projects, &snap.TestProjects, &snap.Classes, &snap.TestedClasses,
			&snap.TestMethods, &snap.Coverage, &snap.Framework); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Latest returns the most recent snapshot, or nil when none exist.
func (s *SnapshotStore) Latest() (*Snapshot, error) {
	snaps, err := s.ListSnapshots(1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// GetSnapshot loads one snapshot by ID.
func (s *SnapshotStore) GetSnapshot(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	err := s.db.QueryRow(`SELECT id, created_at, workspace, solution, projects,
		test_projects, classes, tested_classes, test_methods, coverage, framework
		FROM snapshots WHERE id = ?`, id).
		Scan(&snap.ID, &snap.CreatedAt, &snap.Workspace, &snap.Solution,
			&snap.Projects, &snap.TestProjects, &snap.Classes, &snap.TestedClasses,
			&snap.TestMethods, &snap.Coverage, &snap.Framework)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// ClassStats returns the per-class rows for a snapshot.
func (s *SnapshotStore) ClassStats(snapshotID string) ([]ClassStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT snapshot_id, ref, name, project, score,
		has_tests, test_methods, smells
		FROM class_stats WHERE snapshot_id = ? ORDER BY ref`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query class stats: %w", err)
	}
	defer rows.Close()

	var out []ClassStat
	for rows.Next() {
		var cs ClassStat
		var hasTests int
		var smells string
		if err := rows.Scan(&cs.SnapshotID, &cs.Ref, &cs.Name, &cs.Project,
			&cs.Score, &hasTests, &cs.TestMethods, &smells); err != nil {
			return nil, fmt.Errorf("scan class stat: %w", err)
		}
		cs.HasTests = hasTests != 0
		if smells != "" {
			cs.Smells = strings.Split(smells, ";")
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
