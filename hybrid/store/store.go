// Package store persists hybrid output datasets in a SQLite database, so that
// runs produced at different times can be compared later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/alan-christopher/hybrid90/hybrid"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
)

// ErrRunNotFound is returned when a run id is not present in the store.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	label          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	signal_loss_db REAL NOT NULL DEFAULT 0,
	lo_loss_db     REAL NOT NULL DEFAULT 0,
	phase_slo      REAL NOT NULL DEFAULT 0,
	phase_iq       REAL NOT NULL DEFAULT 0,
	imbalance_i_db REAL NOT NULL DEFAULT 0,
	imbalance_q_db REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq    INTEGER NOT NULL,
	phase  INTEGER NOT NULL,
	re     REAL NOT NULL,
	im     REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// A Run is a labelled set of rows produced by one hybrid configuration.
type Run struct {
	// ID identifies the run. SaveRun assigns a random UUID if it is empty.
	ID    string
	Label string

	// CreatedAt defaults to the time of SaveRun.
	CreatedAt time.Time

	// Params records the impairments the rows were produced with.
	Params hybrid.Params

	// Rows is nil in the results of Runs; use Rows or Run to load them.
	Rows []dataset.Row

	// RowCount is the number of rows stored for the run.
	RowCount int
}

// Store wraps the database connection. It is safe for concurrent use.
type Store struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens (creating if necessary) the database at path and applies the
// schema.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{
		conn: conn,
		path: path,
		log:  log.With().Str("component", "store").Logger(),
	}
	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// OpenExisting is like Open, but fails instead of creating a database when
// nothing exists at path.
func OpenExisting(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("failed to open database: %s is a directory", path)
	}
	return Open(ctx, path, log)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates any missing tables. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.path, err)
	}
	return nil
}

// SaveRun stores run and all of its rows atomically, returning the run's id.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p := run.Params
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, created_at, signal_loss_db, lo_loss_db, phase_slo, phase_iq, imbalance_i_db, imbalance_q_db)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.CreatedAt.UTC().Format(time.RFC3339Nano),
		p.SignalLossDB, p.LOLossDB, p.PhaseSLO, p.PhaseIQ, p.ImbalanceIDB, p.ImbalanceQDB,
	); err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, seq, phase, re, im) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range run.Rows {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Phase, r.Real, r.Imag); err != nil {
			return "", fmt.Errorf("failed to insert sample %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	s.log.Debug().Str("run", run.ID).Str("label", run.Label).Int("rows", len(run.Rows)).Msg("saved run")
	return run.ID, nil
}

// Runs lists every stored run, oldest first, without their rows.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT r.id, r.label, r.created_at,
		       r.signal_loss_db, r.lo_loss_db, r.phase_slo, r.phase_iq, r.imbalance_i_db, r.imbalance_q_db,
		       (SELECT COUNT(*) FROM samples s WHERE s.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run loads a single run, including its rows.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT r.id, r.label, r.created_at,
		       r.signal_loss_db, r.lo_loss_db, r.phase_slo, r.phase_iq, r.imbalance_i_db, r.imbalance_q_db,
		       (SELECT COUNT(*) FROM samples s WHERE s.run_id = r.id)
		FROM runs r
		WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Rows, err = s.Rows(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Rows loads the rows of run id, in the order they were saved.
func (s *Store) Rows(ctx context.Context, id string) ([]dataset.Row, error) {
	var exists int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up run %s: %w", id, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT phase, re, im FROM samples WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples of run %s: %w", id, err)
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		var r dataset.Row
		if err := rows.Scan(&r.Phase, &r.Real, &r.Imag); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var created string
	p := &run.Params
	err := sc.Scan(&run.ID, &run.Label, &created,
		&p.SignalLossDB, &p.LOLossDB, &p.PhaseSLO, &p.PhaseIQ, &p.ImbalanceIDB, &p.ImbalanceQDB,
		&run.RowCount)
	if err != nil {
		return Run{}, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("failed to parse created_at of run %s: %w", run.ID, err)
	}
	return run, nil
}
