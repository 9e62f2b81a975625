package writers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register the pure-Go "sqlite" driver

	"delgen/internal/molecule"
	"delgen/pkg/api"
)

const (
	sqliteDriver  = "sqlite"
	moleculeTable = "molecules"
	insertBatch   = 1000
)

// ErrSchemaMismatch is returned when an existing molecules table has a
// different column layout than the run being written.
var ErrSchemaMismatch = errors.New("molecules table has a different column layout")

const storeSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	items       INTEGER NOT NULL DEFAULT 0,
	elapsed_ms  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS decode_counters (
	run_id TEXT NOT NULL REFERENCES runs(id),
	key    TEXT NOT NULL,
	value  INTEGER NOT NULL,
	PRIMARY KEY (run_id, key)
);
CREATE TABLE IF NOT EXISTS codon_counts (
	run_id TEXT NOT NULL REFERENCES runs(id),
	codons TEXT NOT NULL,
	count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, codons)
);
`

// Store is a SQLite database holding generation and decode runs.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one row of the runs table.
type Run struct {
	ID        string
	Kind      string // "generate" | "decode"
	Label     string
	StartedAt time.Time
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; the driver serializes anyway
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// DB exposes the handle for read-only inspection.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, label, started_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Kind, r.Label, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("begin run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun stamps the end of a run with the number of items written.
func (s *Store) FinishRun(ctx context.Context, id string, items int, elapsed time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, items = ?, elapsed_ms = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), items, elapsed.Milliseconds(), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func moleculeColumns(h molecule.Header) []string {
	return append([]string{"run_id"}, h.Columns()...)
}

// ensureMoleculeTable creates the molecules table for h, or checks that an
// existing one has the same columns.
func (s *Store) ensureMoleculeTable(ctx context.Context, h molecule.Header) error {
	want := moleculeColumns(h)
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, moleculeTable)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", moleculeTable, err)
	}
	var have []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		have = append(have, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(have) > 0 {
		if strings.Join(have, "\x00") != strings.Join(want, "\x00") {
			return fmt.Errorf("%w: have %v, want %v", ErrSchemaMismatch, have, want)
		}
		return nil
	}
	defs := make([]string, len(want))
	for i, c := range want {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", moleculeTable, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", moleculeTable, err)
	}
	return nil
}

// InsertMolecules writes every record from in, committing every insertBatch rows.
func (s *Store) InsertMolecules(ctx context.Context, runID string, h molecule.Header, in <-chan molecule.Record) error {
	if err := s.ensureMoleculeTable(ctx, h); err != nil {
		return err
	}
	cols := moleculeColumns(h)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", moleculeTable,
		strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	var (
		tx   *sql.Tx
		ins  *sql.Stmt
		rows int
	)
	commit := func() error {
		if tx == nil {
			return nil
		}
		_ = ins.Close()
		err := tx.Commit()
		tx, ins = nil, nil
		return err
	}
	defer func() {
		if ins != nil {
			_ = ins.Close()
		}
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	args := make([]any, len(cols))
	for r := range in {
		if tx == nil {
			var err error
			if tx, err = s.db.BeginTx(ctx, nil); err != nil {
				return fmt.Errorf("begin: %w", err)
			}
			if ins, err = tx.PrepareContext(ctx, stmt); err != nil {
				return fmt.Errorf("prepare insert: %w", err)
			}
		}
		fields := r.Fields()
		if len(fields) != len(cols)-1 {
			return fmt.Errorf("record %q has %d fields, header has %d", r.CodonSummary, len(fields), len(cols)-1)
		}
		args[0] = runID
		for i, f := range fields {
			args[i+1] = f
		}
		if _, err := ins.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %q: %w", r.CodonSummary, err)
		}
		rows++
		if rows%insertBatch == 0 {
			if err := commit(); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
		}
	}
	if err := commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WriteDecodeReport stores counters and codon counts of a decode run.
func (s *Store) WriteDecodeReport(ctx context.Context, runID string, rep api.DecodeReportV1) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for k, v := range rep.Counters {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO decode_counters (run_id, key, value) VALUES (?, ?, ?)`, runID, k, v); err != nil {
			return fmt.Errorf("insert counter %s: %w", k, err)
		}
	}
	for _, c := range rep.Codons {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO codon_counts (run_id, codons, count) VALUES (?, ?, ?)`,
			runID, strings.Join(c.Codons, codonSep), c.Count); err != nil {
			return fmt.Errorf("insert codon count: %w", err)
		}
	}
	return tx.Commit()
}
