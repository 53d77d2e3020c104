// Package kinvoc ties the analysis pipeline together: walking a
// transcript corpus, classifying kinship-term occurrences, aggregating
// the results, and recording each pass as a run when a store is
// attached.
package kinvoc

import (
	"context"
	crand "crypto/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lexfield/kinvoc/pkg/kinvoc/adjacency"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/corpus"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
	"github.com/lexfield/kinvoc/pkg/kinvoc/sample"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store"
)

// Kinvoc is the analysis facade the command-line tools drive.
type Kinvoc struct {
	lex     *lexicon.Lexicon
	cls     *classify.Classifier
	store   store.Store
	entropy *ulid.MonotonicEntropy
}

// Options configures a Kinvoc instance. A nil Lexicon means the
// built-in defaults; a nil Store disables persistence.
type Options struct {
	Lexicon   *lexicon.Lexicon
	Heuristic classify.Heuristic
	Store     store.Store
}

// New creates a Kinvoc instance with the given dependencies.
func New(opts Options) *Kinvoc {
	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Kinvoc{
		lex:     lex,
		cls:     classify.New(lex, opts.Heuristic),
		store:   opts.Store,
		entropy: ulid.Monotonic(crand.Reader, 0),
	}
}

// Close releases the attached store, if any.
func (k *Kinvoc) Close() error {
	if k.store == nil {
		return nil
	}
	return k.store.Close()
}

// Lexicon returns the vocabulary the instance runs against.
func (k *Kinvoc) Lexicon() *lexicon.Lexicon { return k.lex }

// Classifier returns the configured classifier.
func (k *Kinvoc) Classifier() *classify.Classifier { return k.cls }

// RunInfo identifies one analysis pass.
type RunInfo struct {
	ID    string
	Stats corpus.WalkStats
}

func (k *Kinvoc) newRun(root string, seed int64, stats corpus.WalkStats) store.Run {
	return store.Run{
		ID:         ulid.MustNew(ulid.Now(), k.entropy).String(),
		CreatedAt:  time.Now().UTC(),
		CorpusRoot: root,
		Heuristic:  k.cls.Heuristic().String(),
		Seed:       seed,
		Files:      stats.Files,
		Utterances: stats.Utterances,
	}
}

// CountsResult is one counting pass over a corpus.
type CountsResult struct {
	Run    RunInfo
	Counts *corpus.Accumulator
}

// Counts classifies every utterance under root and aggregates per-term
// totals. With a store attached, the run and its term counts are
// persisted.
func (k *Kinvoc) Counts(ctx context.Context, root string) (*CountsResult, error) {
	acc, stats, err := corpus.Analyze(root, k.cls)
	if err != nil {
		return nil, err
	}

	run := k.newRun(root, 0, stats)
	if k.store != nil {
		if err := k.store.SaveRun(ctx, run); err != nil {
			return nil, err
		}
		rows := acc.TermRows(k.lex)
		counts := make([]store.TermCount, len(rows))
		for i, r := range rows {
			counts[i] = store.TermCount{
				Term:     r.Term,
				Vocative: r.Vocative,
				VocChild: r.VocChild,
				VocAdult: r.VocAdult,
				Argument: r.Argument,
				ArgBare:  r.ArgBare,
				ArgDet:   r.ArgDetermined,
			}
		}
		if err := k.store.UpsertTermCounts(ctx, run.ID, counts); err != nil {
			return nil, err
		}
	}

	return &CountsResult{
		Run:    RunInfo{ID: run.ID, Stats: stats},
		Counts: acc,
	}, nil
}

// AdjacencyResult is one bridging-context pass over a corpus.
type AdjacencyResult struct {
	Run     RunInfo
	Result  *adjacency.Result
	Summary map[string]adjacency.Row
}

// Adjacency reprocesses the corpus utterance-by-utterance for
// cross-utterance transitions. minVocative thresholds the summary;
// zero means the default.
func (k *Kinvoc) Adjacency(ctx context.Context, root string, minVocative int) (*AdjacencyResult, error) {
	res, stats, err := adjacency.Analyze(root, k.cls)
	if err != nil {
		return nil, err
	}
	// The file-level walk leaves the utterance count to the visitor.
	stats.Utterances = res.Utterances
	summary := adjacency.Summarize(res, k.lex, minVocative)

	run := k.newRun(root, 0, stats)
	if k.store != nil {
		if err := k.store.SaveRun(ctx, run); err != nil {
			return nil, err
		}
		terms := make([]string, 0, len(res.Terms))
		for term := range res.Terms {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		rows := make([]store.AdjacencyRow, len(terms))
		for i, term := range terms {
			tr := res.Terms[term]
			rows[i] = store.AdjacencyRow{
				Term:           term,
				VocUtterances:  tr.VocTotal,
				VocThenBare:    tr.VocThenBare,
				VocThenDet:     tr.VocThenDet,
				VocThenVoc:     tr.VocThenVoc,
				VocThenAbsent:  tr.VocThenNone,
				BareUtterances: tr.BareTotal,
				BareAfterVoc:   tr.BarePrecededByVoc,
			}
		}
		if err := k.store.UpsertAdjacency(ctx, run.ID, rows); err != nil {
			return nil, err
		}
	}

	return &AdjacencyResult{
		Run:     RunInfo{ID: run.ID, Stats: stats},
		Result:  res,
		Summary: summary,
	}, nil
}

// SampleResult is one QC sampling pass over a corpus.
type SampleResult struct {
	Run    RunInfo
	Sample *sample.Result
}

// Sample draws the stratified QC reservoirs. The instance's heuristic
// overrides the one in opts so the sample always reflects the
// classifier under audit.
func (k *Kinvoc) Sample(ctx context.Context, root string, opts sample.Options) (*SampleResult, error) {
	opts.Heuristic = k.cls.Heuristic()
	res, stats, err := sample.Collect(root, k.lex, opts)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = sample.DefaultSeed
	}
	run := k.newRun(root, seed, stats)
	if k.store != nil {
		if err := k.store.SaveRun(ctx, run); err != nil {
			return nil, err
		}
		var recs []store.SampleRecord
		for _, key := range sample.Strata {
			for _, rec := range res.Samples[key] {
				recs = append(recs, store.SampleRecord{
					ID:        rec.ID,
					Stratum:   rec.Stratum,
					Term:      rec.Term,
					Class:     rec.Class,
					Category:  rec.Category,
					File:      rec.File,
					LineNo:    rec.LineNo,
					Speaker:   rec.Speaker,
					Utterance: rec.Utterance,
					Marked:    rec.Marked,
				})
			}
		}
		if err := k.store.UpsertSamples(ctx, run.ID, recs); err != nil {
			return nil, err
		}
	}

	return &SampleResult{
		Run:    RunInfo{ID: run.ID, Stats: stats},
		Sample: res,
	}, nil
}

// Sensitivity reruns the classification under every heuristic variant.
func (k *Kinvoc) Sensitivity(root string) ([]corpus.SensitivityRow, error) {
	return corpus.Sensitivity(root, k.lex)
}

// Frequency computes the surface and lemma frequency profile.
func (k *Kinvoc) Frequency(root string) (*corpus.Frequency, corpus.WalkStats, error) {
	return corpus.AnalyzeFrequency(root, k.lex)
}

// Coverage reports per-file morphological tier coverage.
func (k *Kinvoc) Coverage(root string, th corpus.CoverageThresholds) (*corpus.Coverage, corpus.WalkStats, error) {
	return corpus.AnalyzeCoverage(root, k.lex, th)
}
