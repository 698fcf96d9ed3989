// Package sink stores transformed records in a SQL database so runs can be
// queried after the fact.
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/dshills/scorebias/internal/dataset"
)

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Store writes runs and their records.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Run describes one transform for the runs table.
type Run struct {
	ID      string
	Variant string
	Seed    uint64
	Mode    string
	Source  string
	Hash    string
}

// Open opens a database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:scorebias.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/scorebias?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun writes the run and all of its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, header []string, records []dataset.Record) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO runs (id, variant, seed, mode, source, hash, header_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.Variant, strconv.FormatUint(run.Seed, 10), run.Mode, run.Source, run.Hash, string(headerJSON), time.Now().Unix()); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO records (run_id, idx, supporter, performance, satisfaction, fields_json)
VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Supporter, r.Performance, r.Satisfaction, string(fields)); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadRecords returns the stored records of a run in their original order.
func (s *Store) LoadRecords(ctx context.Context, runID string) ([]dataset.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT supporter, performance, satisfaction, fields_json
FROM records WHERE run_id = ? ORDER BY idx`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Record
	for rows.Next() {
		var (
			r      dataset.Record
			fields string
		)
		if err := rows.Scan(&r.Supporter, &r.Performance, &r.Satisfaction, &fields); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("decoding fields: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	out := make([]byte, 0, len(q)+8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, q[i])
	}
	return string(out)
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  variant TEXT NOT NULL,
  seed TEXT NOT NULL,
  mode TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  hash TEXT NOT NULL DEFAULT '',
  header_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  idx INTEGER NOT NULL,
  supporter BOOLEAN NOT NULL,
  performance INTEGER NOT NULL,
  satisfaction REAL NOT NULL,
  fields_json TEXT NOT NULL,
  PRIMARY KEY (run_id, idx)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  variant TEXT NOT NULL,
  seed TEXT NOT NULL,
  mode TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  hash TEXT NOT NULL DEFAULT '',
  header_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  idx INTEGER NOT NULL,
  supporter BOOLEAN NOT NULL,
  performance INTEGER NOT NULL,
  satisfaction DOUBLE PRECISION NOT NULL,
  fields_json TEXT NOT NULL,
  PRIMARY KEY (run_id, idx)
);
`
