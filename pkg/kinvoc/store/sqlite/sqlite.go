// Package sqlite backs the results store with a single-file SQLite
// database, suitable for keeping every analysis run of a corpus study
// side by side.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and the
// schema in place.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	corpus_root TEXT,
	heuristic TEXT,
	seed INTEGER DEFAULT 0,
	files INTEGER DEFAULT 0,
	utterances INTEGER DEFAULT 0,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS term_counts (
	run_id TEXT NOT NULL,
	term TEXT NOT NULL,
	vocative INTEGER NOT NULL,
	voc_child INTEGER NOT NULL,
	voc_adult INTEGER NOT NULL,
	argument INTEGER NOT NULL,
	arg_bare INTEGER NOT NULL,
	arg_det INTEGER NOT NULL,
	PRIMARY KEY(run_id, term),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS adjacency (
	run_id TEXT NOT NULL,
	term TEXT NOT NULL,
	voc_utterances INTEGER NOT NULL,
	voc_then_bare INTEGER NOT NULL,
	voc_then_det INTEGER NOT NULL,
	voc_then_voc INTEGER NOT NULL,
	voc_then_absent INTEGER NOT NULL,
	bare_utterances INTEGER NOT NULL,
	bare_after_voc INTEGER NOT NULL,
	PRIMARY KEY(run_id, term),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS qc_samples (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	stratum TEXT NOT NULL,
	term TEXT NOT NULL,
	class TEXT NOT NULL,
	category TEXT NOT NULL,
	file TEXT,
	line_no INTEGER DEFAULT 0,
	speaker TEXT,
	utterance TEXT,
	tokens_marked TEXT,
	manual_label TEXT NOT NULL DEFAULT '',
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_qc_samples_run ON qc_samples(run_id, stratum);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or updates a run record
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is empty: %w", internalerr.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, corpus_root, heuristic, seed, files, utterances, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	corpus_root=excluded.corpus_root,
	heuristic=excluded.heuristic,
	seed=excluded.seed,
	files=excluded.files,
	utterances=excluded.utterances,
	notes=excluded.notes;
`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.CorpusRoot, r.Heuristic, r.Seed, r.Files, r.Utterances, r.Notes)
	return err
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var (
		r       store.Run
		created string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, corpus_root, heuristic, seed, files, utterances, notes
FROM runs
WHERE id = ?;
`, id).Scan(&r.ID, &created, &r.CorpusRoot, &r.Heuristic, &r.Seed, &r.Files, &r.Utterances, &r.Notes)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	if parsed, perr := time.Parse(time.RFC3339, created); perr == nil {
		r.CreatedAt = parsed
	}
	return r, true, nil
}

// ListRuns retrieves the most recent runs, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, corpus_root, heuristic, seed, files, utterances, notes
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r       store.Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.CorpusRoot, &r.Heuristic, &r.Seed, &r.Files, &r.Utterances, &r.Notes); err != nil {
			return nil, err
		}
		if parsed, perr := time.Parse(time.RFC3339, created); perr == nil {
			r.CreatedAt = parsed
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UpsertTermCounts inserts or updates the term totals of one run
func (s *sqliteStore) UpsertTermCounts(ctx context.Context, runID string, counts []store.TermCount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO term_counts (run_id, term, vocative, voc_child, voc_adult, argument, arg_bare, arg_det)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, term) DO UPDATE SET
	vocative=excluded.vocative,
	voc_child=excluded.voc_child,
	voc_adult=excluded.voc_adult,
	argument=excluded.argument,
	arg_bare=excluded.arg_bare,
	arg_det=excluded.arg_det;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range counts {
		if c.Term == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, c.Term, c.Vocative, c.VocChild, c.VocAdult, c.Argument, c.ArgBare, c.ArgDet); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetTermCounts retrieves one run's term totals ordered by term
func (s *sqliteStore) GetTermCounts(ctx context.Context, runID string) ([]store.TermCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT term, vocative, voc_child, voc_adult, argument, arg_bare, arg_det
FROM term_counts
WHERE run_id = ?
ORDER BY term;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []store.TermCount
	for rows.Next() {
		var c store.TermCount
		if err := rows.Scan(&c.Term, &c.Vocative, &c.VocChild, &c.VocAdult, &c.Argument, &c.ArgBare, &c.ArgDet); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UpsertAdjacency inserts or updates the transition summaries of one run
func (s *sqliteStore) UpsertAdjacency(ctx context.Context, runID string, rows []store.AdjacencyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO adjacency (run_id, term, voc_utterances, voc_then_bare, voc_then_det, voc_then_voc, voc_then_absent, bare_utterances, bare_after_voc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, term) DO UPDATE SET
	voc_utterances=excluded.voc_utterances,
	voc_then_bare=excluded.voc_then_bare,
	voc_then_det=excluded.voc_then_det,
	voc_then_voc=excluded.voc_then_voc,
	voc_then_absent=excluded.voc_then_absent,
	bare_utterances=excluded.bare_utterances,
	bare_after_voc=excluded.bare_after_voc;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range rows {
		if a.Term == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, a.Term, a.VocUtterances, a.VocThenBare, a.VocThenDet, a.VocThenVoc, a.VocThenAbsent, a.BareUtterances, a.BareAfterVoc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetAdjacency retrieves one run's transition summaries ordered by term
func (s *sqliteStore) GetAdjacency(ctx context.Context, runID string) ([]store.AdjacencyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT term, voc_utterances, voc_then_bare, voc_then_det, voc_then_voc, voc_then_absent, bare_utterances, bare_after_voc
FROM adjacency
WHERE run_id = ?
ORDER BY term;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.AdjacencyRow
	for rows.Next() {
		var a store.AdjacencyRow
		if err := rows.Scan(&a.Term, &a.VocUtterances, &a.VocThenBare, &a.VocThenDet, &a.VocThenVoc, &a.VocThenAbsent, &a.BareUtterances, &a.BareAfterVoc); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertSamples inserts or updates QC sample rows. A full re-upsert
// overwrites review verdicts; use SetManualLabel to record verdicts
// incrementally.
func (s *sqliteStore) UpsertSamples(ctx context.Context, runID string, recs []store.SampleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO qc_samples (id, run_id, stratum, term, class, category, file, line_no, speaker, utterance, tokens_marked, manual_label)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	run_id=excluded.run_id,
	stratum=excluded.stratum,
	term=excluded.term,
	class=excluded.class,
	category=excluded.category,
	file=excluded.file,
	line_no=excluded.line_no,
	speaker=excluded.speaker,
	utterance=excluded.utterance,
	tokens_marked=excluded.tokens_marked,
	manual_label=excluded.manual_label;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if rec.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, runID, rec.Stratum, rec.Term, rec.Class, rec.Category, rec.File, rec.LineNo, rec.Speaker, rec.Utterance, rec.Marked, rec.Manual); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSamples retrieves one run's QC samples, optionally restricted to
// a stratum, ordered by stratum then record ID.
func (s *sqliteStore) GetSamples(ctx context.Context, runID, stratum string) ([]store.SampleRecord, error) {
	query := `
SELECT id, stratum, term, class, category, file, line_no, speaker, utterance, tokens_marked, manual_label
FROM qc_samples
WHERE run_id = ?
ORDER BY stratum, id;
`
	args := []interface{}{runID}
	if stratum != "" {
		query = `
SELECT id, stratum, term, class, category, file, line_no, speaker, utterance, tokens_marked, manual_label
FROM qc_samples
WHERE run_id = ? AND stratum = ?
ORDER BY id;
`
		args = append(args, stratum)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []store.SampleRecord
	for rows.Next() {
		var rec store.SampleRecord
		if err := rows.Scan(&rec.ID, &rec.Stratum, &rec.Term, &rec.Class, &rec.Category, &rec.File, &rec.LineNo, &rec.Speaker, &rec.Utterance, &rec.Marked, &rec.Manual); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetManualLabel records a reviewer verdict against a stored sample.
func (s *sqliteStore) SetManualLabel(ctx context.Context, sampleID, label string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE qc_samples SET manual_label = ? WHERE id = ?`, label, sampleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sample %s: %w", sampleID, internalerr.ErrNotFound)
	}
	return nil
}
