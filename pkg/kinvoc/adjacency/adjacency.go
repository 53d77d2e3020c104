// Package adjacency measures cross-utterance transitions of kinship
// terms: how often a vocative use in one utterance is followed by a
// bare or determined argument use of the same term in the next, and
// how often a bare argument was set up by a vocative in the utterance
// before. These transition rates probe whether bare argument use
// spreads from vocative contexts within conversational turns.
package adjacency

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/corpus"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Transitions holds one term's cross-utterance tallies. The four
// VocThen counters partition vocative utterances that have a
// successor; follower labels are resolved bare first, then determined,
// then vocative, so a successor carrying several uses of the term
// lands in exactly one bucket.
type Transitions struct {
	VocTotal          int // utterances containing the term as vocative
	VocThenBare       int
	VocThenDet        int
	VocThenVoc        int
	VocThenNone       int
	BareTotal         int // utterances containing the term as bare argument
	BarePrecededByVoc int
	BareNotPreceded   int
}

// Result is a corpus-wide transition count set.
type Result struct {
	Terms      map[string]*Transitions
	Utterances int // all utterances seen, the chaining baseline denominator
}

func (r *Result) term(t string) *Transitions {
	tr := r.Terms[t]
	if tr == nil {
		tr = &Transitions{}
		r.Terms[t] = tr
	}
	return tr
}

// labels reduces one utterance's occurrences to per-label term sets.
// Within a single utterance a term is counted at most once per label.
type labels struct {
	voc  map[string]bool
	bare map[string]bool
	det  map[string]bool
}

func labelsOf(occs []classify.Occurrence) labels {
	l := labels{
		voc:  make(map[string]bool),
		bare: make(map[string]bool),
		det:  make(map[string]bool),
	}
	for _, occ := range occs {
		switch occ.Label {
		case classify.LabelVocative:
			l.voc[occ.Term] = true
		case classify.LabelDetermined:
			l.det[occ.Term] = true
		default:
			l.bare[occ.Term] = true
		}
	}
	return l
}

// Analyze classifies every utterance under root once and counts
// transitions between consecutive utterances of the same transcript.
// Utterance adjacency never crosses a file boundary. A nil classifier
// gets the default lexicon and heuristic.
func Analyze(root string, cls *classify.Classifier) (*Result, corpus.WalkStats, error) {
	if cls == nil {
		cls = classify.New(nil, classify.HeuristicDefault)
	}
	res := &Result{Terms: make(map[string]*Transitions)}

	stats, err := corpus.Walk(root, func(f corpus.File) error {
		utts := f.Utterances()
		res.Utterances += len(utts)

		seq := make([]labels, len(utts))
		for i, u := range utts {
			seq[i] = labelsOf(cls.Classify(u))
		}

		for i, l := range seq {
			for t := range l.voc {
				res.term(t).VocTotal++
			}
			for t := range l.bare {
				res.term(t).BareTotal++
			}

			if i > 0 {
				for t := range l.bare {
					if seq[i-1].voc[t] {
						res.term(t).BarePrecededByVoc++
					} else {
						res.term(t).BareNotPreceded++
					}
				}
			}

			if i+1 < len(seq) {
				next := seq[i+1]
				for t := range l.voc {
					tr := res.term(t)
					switch {
					case next.bare[t]:
						tr.VocThenBare++
					case next.det[t]:
						tr.VocThenDet++
					case next.voc[t]:
						tr.VocThenVoc++
					default:
						tr.VocThenNone++
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return res, stats, nil
}

// Row is one summary line: a term or a category aggregate.
type Row struct {
	VocativeUtterances  int     `json:"vocative_utterances"`
	VocFollowedByBare   int     `json:"voc_followed_by_bare_arg"`
	VocFollowedByDet    int     `json:"voc_followed_by_det_arg"`
	VocFollowedByVoc    int     `json:"voc_followed_by_voc"`
	VocFollowedByAbsent int     `json:"voc_followed_by_absent"`
	PctVocThenBare      float64 `json:"pct_voc_then_bare"`
	BareArgUtterances   int     `json:"bare_arg_utterances"`
	BarePrecededByVoc   int     `json:"bare_preceded_by_voc"`
	PctBareAfterVoc     float64 `json:"pct_bare_after_voc"`
}

func rowOf(tr Transitions) Row {
	r := Row{
		VocativeUtterances:  tr.VocTotal,
		VocFollowedByBare:   tr.VocThenBare,
		VocFollowedByDet:    tr.VocThenDet,
		VocFollowedByVoc:    tr.VocThenVoc,
		VocFollowedByAbsent: tr.VocThenNone,
		BareArgUtterances:   tr.BareTotal,
		BarePrecededByVoc:   tr.BarePrecededByVoc,
	}
	if tr.VocTotal > 0 {
		r.PctVocThenBare = round1(100 * float64(tr.VocThenBare) / float64(tr.VocTotal))
	}
	if tr.BareTotal > 0 {
		r.PctBareAfterVoc = round1(100 * float64(tr.BarePrecededByVoc) / float64(tr.BareTotal))
	}
	return r
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Summarize builds the reporting table: one row per term whose
// vocative total reaches minVoc (20 when minVoc <= 0), plus PARENT and
// GRANDPARENT aggregate rows, which are always present.
func Summarize(res *Result, lex *lexicon.Lexicon, minVoc int) map[string]Row {
	if lex == nil {
		lex = lexicon.Default()
	}
	if minVoc <= 0 {
		minVoc = 20
	}

	out := make(map[string]Row)
	for _, term := range lex.Terms() {
		tr := res.Terms[term]
		if tr == nil || tr.VocTotal < minVoc {
			continue
		}
		out[term] = rowOf(*tr)
	}

	for _, agg := range []struct {
		key string
		cat lexicon.Category
	}{
		{"PARENT", lexicon.Parent},
		{"GRANDPARENT", lexicon.Grandparent},
	} {
		var sum Transitions
		for _, term := range lex.Terms() {
			if lex.Category(term) != agg.cat {
				continue
			}
			tr := res.Terms[term]
			if tr == nil {
				continue
			}
			sum.VocTotal += tr.VocTotal
			sum.VocThenBare += tr.VocThenBare
			sum.VocThenDet += tr.VocThenDet
			sum.VocThenVoc += tr.VocThenVoc
			sum.VocThenNone += tr.VocThenNone
			sum.BareTotal += tr.BareTotal
			sum.BarePrecededByVoc += tr.BarePrecededByVoc
		}
		out[agg.key] = rowOf(sum)
	}
	return out
}

// WriteJSON writes the summary as indented JSON. Keys come out in
// Go's sorted map order.
func WriteJSON(w io.Writer, summary map[string]Row) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ChainThresholds tune the chaining report. Zero values take defaults:
// at least 20 vocative utterances and a lift of at least 1.
type ChainThresholds struct {
	MinVocative int
	MinLift     float64
}

// ChainRow scores one term's vocative repetition. Lift compares the
// voc-then-voc rate among vocative utterances with a successor against
// the term's baseline rate of appearing vocatively in any utterance; a
// lift well above 1 means vocative calls cluster in runs.
type ChainRow struct {
	Term          string
	VocUtterances int
	VocThenVoc    int
	FollowRate    float64
	Baseline      float64
	Lift          float64
}

// ChainLift ranks terms by vocative chaining lift, strongest first.
func ChainLift(res *Result, th ChainThresholds) []ChainRow {
	if th.MinVocative == 0 {
		th.MinVocative = 20
	}
	if th.MinLift == 0 {
		th.MinLift = 1
	}

	var rows []ChainRow
	for term, tr := range res.Terms {
		if tr.VocTotal < th.MinVocative || res.Utterances == 0 {
			continue
		}
		followed := tr.VocThenBare + tr.VocThenDet + tr.VocThenVoc + tr.VocThenNone
		if followed == 0 {
			continue
		}
		followRate := float64(tr.VocThenVoc) / float64(followed)
		baseline := float64(tr.VocTotal) / float64(res.Utterances)
		if baseline == 0 {
			continue
		}
		lift := followRate / baseline
		if lift < th.MinLift {
			continue
		}
		rows = append(rows, ChainRow{
			Term:          term,
			VocUtterances: tr.VocTotal,
			VocThenVoc:    tr.VocThenVoc,
			FollowRate:    followRate,
			Baseline:      baseline,
			Lift:          lift,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Lift != rows[j].Lift {
			return rows[i].Lift > rows[j].Lift
		}
		return rows[i].Term < rows[j].Term
	})
	return rows
}

// WriteChainTSV writes chaining rows as a tab-separated table, one
// term per line in the order ChainLift ranked them.
func WriteChainTSV(w io.Writer, rows []ChainRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{"term", "voc_utterances", "voc_then_voc", "follow_rate", "baseline", "lift"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Term,
			strconv.Itoa(r.VocUtterances),
			strconv.Itoa(r.VocThenVoc),
			strconv.FormatFloat(r.FollowRate, 'f', 4, 64),
			strconv.FormatFloat(r.Baseline, 'f', 4, 64),
			strconv.FormatFloat(r.Lift, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
