package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Accumulator aggregates classified occurrences into per-term totals.
// All fields are plain sums, so per-file accumulators can be merged in
// any order and produce identical results.
type Accumulator struct {
	Vocative      map[string]int
	VocChild      map[string]int
	VocAdult      map[string]int
	Argument      map[string]int
	ArgBare       map[string]int
	ArgDetermined map[string]int
	TitleExcluded map[string]int // title+name detections among arguments
	SurfaceTotal  int            // non-noise surface words, the per-million denominator
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Vocative:      make(map[string]int),
		VocChild:      make(map[string]int),
		VocAdult:      make(map[string]int),
		Argument:      make(map[string]int),
		ArgBare:       make(map[string]int),
		ArgDetermined: make(map[string]int),
		TitleExcluded: make(map[string]int),
	}
}

// AddUtterance folds one utterance's occurrences into the totals and
// advances the surface-word denominator.
func (a *Accumulator) AddUtterance(u chat.Utterance, occs []classify.Occurrence) {
	for _, w := range chat.Words(u.Text) {
		if !lexicon.IsNoise(w) {
			a.SurfaceTotal++
		}
	}

	child := u.IsChild()
	for _, occ := range occs {
		if occ.Label == classify.LabelVocative {
			a.Vocative[occ.Term]++
			if child {
				a.VocChild[occ.Term]++
			} else {
				a.VocAdult[occ.Term]++
			}
		} else {
			a.Argument[occ.Term]++
			if occ.Label == classify.LabelDetermined {
				a.ArgDetermined[occ.Term]++
			} else {
				a.ArgBare[occ.Term]++
			}
		}
		if occ.TitleName {
			a.TitleExcluded[occ.Term]++
		}
	}
}

// Merge folds another accumulator into this one.
func (a *Accumulator) Merge(other *Accumulator) {
	mergeCounts(a.Vocative, other.Vocative)
	mergeCounts(a.VocChild, other.VocChild)
	mergeCounts(a.VocAdult, other.VocAdult)
	mergeCounts(a.Argument, other.Argument)
	mergeCounts(a.ArgBare, other.ArgBare)
	mergeCounts(a.ArgDetermined, other.ArgDetermined)
	mergeCounts(a.TitleExcluded, other.TitleExcluded)
	a.SurfaceTotal += other.SurfaceTotal
}

func mergeCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

// TermCounts is one row of the vocative/argument table.
type TermCounts struct {
	Term          string
	Vocative      int
	VocChild      int
	VocAdult      int
	Argument      int
	ArgBare       int
	ArgDetermined int
}

// TermRows returns one row per lexicon term in canonical order,
// including zero rows, so downstream tables always cover the full
// inventory.
func (a *Accumulator) TermRows(lex *lexicon.Lexicon) []TermCounts {
	terms := lex.Terms()
	rows := make([]TermCounts, len(terms))
	for i, term := range terms {
		rows[i] = TermCounts{
			Term:          term,
			Vocative:      a.Vocative[term],
			VocChild:      a.VocChild[term],
			VocAdult:      a.VocAdult[term],
			Argument:      a.Argument[term],
			ArgBare:       a.ArgBare[term],
			ArgDetermined: a.ArgDetermined[term],
		}
	}
	return rows
}

// WriteTSV writes the per-term count table: raw counts plus per-million
// rates against the surface-word total. A zero denominator yields zero
// rates, never an error.
func (a *Accumulator) WriteTSV(w io.Writer, lex *lexicon.Lexicon) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{
		"term",
		"vocative_count", "vocative_per_million",
		"voc_chi_count", "voc_chi_per_million",
		"voc_adu_count", "voc_adu_per_million",
		"argument_count", "argument_per_million",
		"arg_bare_count", "arg_bare_per_million",
		"arg_det_count", "arg_det_per_million",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range a.TermRows(lex) {
		record := []string{
			r.Term,
			itoa(r.Vocative), perMillion(r.Vocative, a.SurfaceTotal),
			itoa(r.VocChild), perMillion(r.VocChild, a.SurfaceTotal),
			itoa(r.VocAdult), perMillion(r.VocAdult, a.SurfaceTotal),
			itoa(r.Argument), perMillion(r.Argument, a.SurfaceTotal),
			itoa(r.ArgBare), perMillion(r.ArgBare, a.SurfaceTotal),
			itoa(r.ArgDetermined), perMillion(r.ArgDetermined, a.SurfaceTotal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExcludedTitleCount is one term's title+name exclusion tally.
type ExcludedTitleCount struct {
	Term  string
	Count int
}

// ExcludedTitleCounts returns the title+name exclusion tallies, most
// frequent first.
func (a *Accumulator) ExcludedTitleCounts() []ExcludedTitleCount {
	out := make([]ExcludedTitleCount, 0, len(a.TitleExcluded))
	for term, n := range a.TitleExcluded {
		out = append(out, ExcludedTitleCount{Term: term, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Analyze classifies every utterance under root and returns the
// accumulated counts.
func Analyze(root string, cls *classify.Classifier) (*Accumulator, WalkStats, error) {
	acc := NewAccumulator()
	stats, err := WalkUtterances(root, func(_ File, u chat.Utterance) error {
		acc.AddUtterance(u, cls.Classify(u))
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return acc, stats, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

// perMillion formats count/total scaled to one million with two
// decimals; zero when the denominator is zero.
func perMillion(count, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(count)/float64(total)*1e6)
}
