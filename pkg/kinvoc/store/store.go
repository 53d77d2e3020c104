// Package store persists analysis runs so that counts, adjacency
// summaries, and QC samples can be compared across corpus versions and
// heuristic settings without re-walking the corpus.
package store

import (
	"context"
	"time"
)

// Store is the persistence interface for analysis results.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Per-term classification totals
	UpsertTermCounts(ctx context.Context, runID string, rows []TermCount) error
	GetTermCounts(ctx context.Context, runID string) ([]TermCount, error)

	// Cross-utterance transition summaries
	UpsertAdjacency(ctx context.Context, runID string, rows []AdjacencyRow) error
	GetAdjacency(ctx context.Context, runID string) ([]AdjacencyRow, error)

	// QC sample sheets and their review verdicts
	UpsertSamples(ctx context.Context, runID string, recs []SampleRecord) error
	GetSamples(ctx context.Context, runID, stratum string) ([]SampleRecord, error)
	SetManualLabel(ctx context.Context, sampleID, label string) error
}

// Run is one recorded analysis pass over a corpus.
type Run struct {
	ID         string // ULID
	CreatedAt  time.Time
	CorpusRoot string
	Heuristic  string
	Seed       int64
	Files      int
	Utterances int
	Notes      string
}

// TermCount is one term's classification totals within a run.
type TermCount struct {
	Term     string
	Vocative int
	VocChild int
	VocAdult int
	Argument int
	ArgBare  int
	ArgDet   int
}

// AdjacencyRow is one term's stored transition summary.
type AdjacencyRow struct {
	Term           string
	VocUtterances  int
	VocThenBare    int
	VocThenDet     int
	VocThenVoc     int
	VocThenAbsent  int
	BareUtterances int
	BareAfterVoc   int
}

// SampleRecord is one stored QC sample row. Manual stays empty until a
// reviewer files a verdict through SetManualLabel.
type SampleRecord struct {
	ID        string // ULID minted by the sampler
	Stratum   string
	Term      string
	Class     string
	Category  string
	File      string
	LineNo    int
	Speaker   string
	Utterance string
	Marked    string
	Manual    string
}
