// Package cache persists scanned baselines and the apply run journal in SQLite.
package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/fingerprint"
	"github.com/hlop3z/nocstudio/internal/runner"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// CacheFile is the SQLite database file name inside the state directory.
	CacheFile = "cache.db"

	// runTimeFormat is fixed width so run timestamps sort as text.
	runTimeFormat = "2006-01-02T15:04:05.000000000Z"
)

// Cache stores scanned baselines and the run journal.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the cache database inside stateDir.
func Open(stateDir string) (*Cache, error) {
	cachePath := filepath.Join(stateDir, CacheFile)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to create cache directory").
			With("path", stateDir)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to open cache database").
			With("path", cachePath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to connect to cache database").
			With("path", cachePath)
	}

	c := &Cache{db: db, path: cachePath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the cache database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the path to the cache database file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *Cache) initSchema() error {
	schema := `
		-- Last scanned entity set per project directory
		CREATE TABLE IF NOT EXISTS baselines (
			project       TEXT PRIMARY KEY,
			entities_json TEXT NOT NULL,
			hash_json     TEXT NOT NULL,
			root_hash     TEXT NOT NULL,
			scanned_at    TEXT NOT NULL
		);

		-- One row per apply
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			project     TEXT NOT NULL,
			mode        TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			total       INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			aborted     INTEGER NOT NULL
		);

		-- One row per executed command
		CREATE TABLE IF NOT EXISTS run_commands (
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq         INTEGER NOT NULL,
			command     TEXT NOT NULL,
			output      TEXT NOT NULL,
			error       TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);

		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('version', '1');
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(schema); err != nil {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to initialize cache schema")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Baseline Operations
// -----------------------------------------------------------------------------

// Baseline is the scanned "original" entity set of one project.
type Baseline struct {
	Project   string
	Entities  []entity.Entity
	Hash      *fingerprint.SetHash
	ScannedAt time.Time
}

// GetBaseline returns the baseline for project, or nil if none is stored.
func (c *Cache) GetBaseline(project string) (*Baseline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entitiesJSON, hashJSON, scannedAt string
	err := c.db.QueryRow(
		"SELECT entities_json, hash_json, scanned_at FROM baselines WHERE project = ?",
		project,
	).Scan(&entitiesJSON, &hashJSON, &scannedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read baseline").
			With("project", project)
	}

	entities, err := DeserializeEntities([]byte(entitiesJSON))
	if err != nil {
		return nil, err
	}
	hash, err := DeserializeSetHash([]byte(hashJSON))
	if err != nil {
		return nil, err
	}

	b := &Baseline{Project: project, Entities: entities, Hash: hash}
	b.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	return b, nil
}

// SetBaseline stores entities as the baseline for project and returns it.
func (c *Cache) SetBaseline(project string, entities []entity.Entity) (*Baseline, error) {
	hash, err := fingerprint.Compute(entities)
	if err != nil {
		return nil, err
	}
	entitiesJSON, err := SerializeEntities(entities)
	if err != nil {
		return nil, err
	}
	hashJSON, err := SerializeSetHash(hash)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO baselines (project, entities_json, hash_json, root_hash, scanned_at) VALUES (?, ?, ?, ?, ?)",
		project, string(entitiesJSON), string(hashJSON), hash.Root, now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write baseline").
			With("project", project)
	}

	return &Baseline{Project: project, Entities: entity.CloneAll(entities), Hash: hash, ScannedAt: now}, nil
}

// DeleteBaseline removes the baseline for project.
func (c *Cache) DeleteBaseline(project string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("DELETE FROM baselines WHERE project = ?", project); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to delete baseline").
			With("project", project)
	}
	return nil
}

// ListBaselines returns the projects with a stored baseline.
func (c *Cache) ListBaselines() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query("SELECT project FROM baselines ORDER BY project")
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list baselines")
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan project")
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// -----------------------------------------------------------------------------
// Run Journal Operations
// -----------------------------------------------------------------------------

// RunRecord is one journaled apply.
type RunRecord struct {
	ID         string
	Project    string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
	Aborted    bool
	Commands   []CommandRecord
}

// CommandRecord is one journaled command.
type CommandRecord struct {
	Seq      int
	Command  string
	Output   string
	Error    string
	Duration time.Duration
}

// NewRunRecord converts a runner report into a journal entry with a fresh ID.
func NewRunRecord(project string, rep *runner.Report) *RunRecord {
	rec := &RunRecord{
		ID:         uuid.NewString(),
		Project:    project,
		Mode:       rep.Mode.String(),
		StartedAt:  rep.Started,
		FinishedAt: rep.Finished,
		Total:      rep.Total,
		Failed:     rep.Failed,
		Aborted:    rep.Aborted,
	}
	for _, res := range rep.Results {
		cr := CommandRecord{Seq: res.Seq, Command: res.Command, Output: res.Output, Duration: res.Duration}
		if res.Err != nil {
			cr.Error = res.Err.Error()
		}
		rec.Commands = append(rec.Commands, cr)
	}
	return rec
}

// RecordRun stores a run and its commands in one transaction.
func (c *Cache) RecordRun(rec *RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to begin run journal transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, project, mode, started_at, finished_at, total, failed, aborted) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Project, rec.Mode,
		rec.StartedAt.UTC().Format(runTimeFormat), rec.FinishedAt.UTC().Format(runTimeFormat),
		rec.Total, rec.Failed, boolToInt(rec.Aborted),
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write run").With("run", rec.ID)
	}

	for _, cr := range rec.Commands {
		_, err = tx.Exec(
			"INSERT INTO run_commands (run_id, seq, command, output, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
			rec.ID, cr.Seq, cr.Command, cr.Output, cr.Error, cr.Duration.Milliseconds(),
		)
		if err != nil {
			return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write run command").
				With("run", rec.ID).
				With("seq", cr.Seq)
		}
	}

	if err := tx.Commit(); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to commit run journal").With("run", rec.ID)
	}
	return nil
}

// ListRuns returns the most recent runs first, without their commands.
// A limit <= 0 returns every run.
func (c *Cache) ListRuns(limit int) ([]*RunRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := "SELECT id, project, mode, started_at, finished_at, total, failed, aborted FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID (or unique ID prefix) and its
// commands, or nil if not found.
func (c *Cache) GetRun(id string) (*RunRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(
		"SELECT id, project, mode, started_at, finished_at, total, failed, aborted FROM runs WHERE id LIKE ? || '%' LIMIT 2",
		id,
	)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read run").With("run", id)
	}

	var found []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, rec)
	}
	rows.Close()

	switch len(found) {
	case 0:
		return nil, nil
	case 2:
		return nil, alerr.New(alerr.ErrCacheRead, "run ID prefix is ambiguous").With("run", id)
	}
	rec := found[0]

	cmdRows, err := c.db.Query(
		"SELECT seq, command, output, error, duration_ms FROM run_commands WHERE run_id = ? ORDER BY seq",
		rec.ID,
	)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read run commands").With("run", rec.ID)
	}
	defer cmdRows.Close()

	for cmdRows.Next() {
		var cr CommandRecord
		var ms int64
		if err := cmdRows.Scan(&cr.Seq, &cr.Command, &cr.Output, &cr.Error, &ms); err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan run command")
		}
		cr.Duration = time.Duration(ms) * time.Millisecond
		rec.Commands = append(rec.Commands, cr)
	}
	return rec, cmdRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var started, finished string
	var aborted int
	if err := r.Scan(&rec.ID, &rec.Project, &rec.Mode, &started, &finished, &rec.Total, &rec.Failed, &aborted); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan run")
	}
	rec.StartedAt, _ = time.Parse(runTimeFormat, started)
	rec.FinishedAt, _ = time.Parse(runTimeFormat, finished)
	rec.Aborted = aborted != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Clear removes every baseline and run.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`
		DELETE FROM run_commands;
		DELETE FROM runs;
		DELETE FROM baselines;
	`)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to clear cache")
	}
	return nil
}
