// Package sample draws stratified reservoir samples of classified
// kinship occurrences for manual quality-control review. Strata cross
// the vocative/argument split with a two-way category split (parent
// terms versus everything else), so the later confusion analysis gets
// balanced evidence for both audited categories without holding the
// full occurrence stream in memory.
package sample

import (
	crand "crypto/rand"
	"encoding/csv"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/corpus"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Sampling defaults.
const (
	DefaultSize = 50
	DefaultSeed = 20260131
)

// Strata enumerates the reservoir keys in report order.
var Strata = []string{"parent_voc", "parent_arg", "extended_voc", "extended_arg"}

// Record is one sampled occurrence, carrying everything a reviewer
// needs to judge the label without reopening the transcript.
type Record struct {
	ID        string // ULID, the handle annotations refer back to
	Stratum   string
	Term      string
	Class     string // vocative or argument
	Category  string // parent or extended
	File      string // transcript path relative to the corpus root
	LineNo    int
	Speaker   string
	Utterance string
	Marked    string // full token sequence with [[..]] around the occurrence
}

// Options tune a sampling run. Zero values take the defaults: 50
// records per stratum, the fixed default seed, and the default
// classification heuristic.
type Options struct {
	Size      int
	Seed      int64
	Heuristic classify.Heuristic
}

// Result holds the reservoirs plus how many occurrences each stratum
// saw in total.
type Result struct {
	Samples map[string][]Record
	Seen    map[string]int
}

// Collect classifies every utterance under root and reservoir-samples
// the kinship occurrences per stratum. A single seeded generator
// drives all four reservoirs, so a fixed seed plus the walker's stable
// file order pins the exact sample.
func Collect(root string, lex *lexicon.Lexicon, opts Options) (*Result, corpus.WalkStats, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	cls := classify.New(lex, opts.Heuristic)
	rng := rand.New(rand.NewSource(opts.Seed))
	entropy := ulid.Monotonic(crand.Reader, 0)

	res := &Result{
		Samples: make(map[string][]Record, len(Strata)),
		Seen:    make(map[string]int, len(Strata)),
	}
	for _, key := range Strata {
		res.Samples[key] = []Record{}
		res.Seen[key] = 0
	}

	stats, err := corpus.WalkUtterances(root, func(f corpus.File, u chat.Utterance) error {
		occs := cls.Classify(u)
		if len(occs) == 0 {
			return nil
		}
		tokens := chat.Tokenize(u.Text)
		for _, occ := range occs {
			cat, suffix, class := "extended", "arg", "argument"
			if lex.Category(occ.Term) == lexicon.Parent {
				cat = "parent"
			}
			if occ.Label == classify.LabelVocative {
				suffix, class = "voc", "vocative"
			}
			key := cat + "_" + suffix
			res.add(rng, key, Record{
				ID:        ulid.MustNew(ulid.Now(), entropy).String(),
				Stratum:   key,
				Term:      occ.Term,
				Class:     class,
				Category:  cat,
				File:      f.Rel,
				LineNo:    u.Line,
				Speaker:   u.Speaker,
				Utterance: strings.TrimSpace(u.Text),
				Marked:    markTokens(tokens, occ.StartToken, occ.EndToken),
			}, opts.Size)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return res, stats, nil
}

// add implements per-stratum reservoir sampling: records append while
// the reservoir has room; afterwards the Nth occurrence claims a
// uniformly random slot with probability k/N.
func (r *Result) add(rng *rand.Rand, key string, rec Record, k int) {
	r.Seen[key]++
	n := r.Seen[key]
	s := r.Samples[key]
	if len(s) < k {
		r.Samples[key] = append(s, rec)
		return
	}
	if j := rng.Intn(n); j < k {
		s[j] = rec
	}
}

// markTokens renders the utterance's token sequence with the
// occurrence span wrapped in double brackets.
func markTokens(tokens []chat.Token, start, end int) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if i >= start && i <= end {
			parts[i] = "[[" + tok.Surface + "]]"
		} else {
			parts[i] = tok.Surface
		}
	}
	return strings.Join(parts, " ")
}

// WriteTSV writes the annotation sheet, strata in fixed order.
func (r *Result) WriteTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{
		"stratum", "term", "class", "category", "file",
		"line_no", "speaker", "utterance", "tokens_marked",
	}); err != nil {
		return err
	}
	for _, key := range Strata {
		for _, rec := range r.Samples[key] {
			record := []string{
				rec.Stratum, rec.Term, rec.Class, rec.Category, rec.File,
				strconv.Itoa(rec.LineNo), rec.Speaker, rec.Utterance, rec.Marked,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
