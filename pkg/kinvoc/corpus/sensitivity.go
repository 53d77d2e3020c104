package corpus

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// SensitivityRow is one line of the heuristic sensitivity table. Level
// is "term" or "category"; Label names the term, the category, or
// "all" for the corpus-wide row.
type SensitivityRow struct {
	Heuristic string
	Level     string
	Label     string
	Vocative  int
	Argument  int
	Percent   float64 // vocative share of vocative+argument
}

// Sensitivity reruns the full classification once per heuristic
// variant and tabulates how the vocative/argument split shifts. Rows
// come out per heuristic in variant order: every lexicon term, then the
// three categories, then the corpus-wide total.
func Sensitivity(root string, lex *lexicon.Lexicon) ([]SensitivityRow, error) {
	if lex == nil {
		lex = lexicon.Default()
	}

	var rows []SensitivityRow
	for _, h := range classify.Heuristics {
		cls := classify.New(lex, h)
		voc := make(map[string]int)
		arg := make(map[string]int)

		_, err := WalkUtterances(root, func(_ File, u chat.Utterance) error {
			for _, occ := range cls.Classify(u) {
				if occ.Label == classify.LabelVocative {
					voc[occ.Term]++
				} else {
					arg[occ.Term]++
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("sensitivity pass %s: %w", h, err)
		}

		for _, term := range lex.Terms() {
			rows = append(rows, sensitivityRow(h.String(), "term", term, voc[term], arg[term]))
		}

		catVoc := make(map[lexicon.Category]int)
		catArg := make(map[lexicon.Category]int)
		allVoc, allArg := 0, 0
		for _, term := range lex.Terms() {
			cat := lex.Category(term)
			catVoc[cat] += voc[term]
			catArg[cat] += arg[term]
			allVoc += voc[term]
			allArg += arg[term]
		}
		for _, cat := range []lexicon.Category{lexicon.Parent, lexicon.Grandparent, lexicon.Extended} {
			rows = append(rows, sensitivityRow(h.String(), "category", string(cat), catVoc[cat], catArg[cat]))
		}
		rows = append(rows, sensitivityRow(h.String(), "category", "all", allVoc, allArg))
	}
	return rows, nil
}

func sensitivityRow(heuristic, level, label string, voc, arg int) SensitivityRow {
	pct := 0.0
	if voc+arg > 0 {
		pct = float64(voc) / float64(voc+arg) * 100
	}
	return SensitivityRow{
		Heuristic: heuristic,
		Level:     level,
		Label:     label,
		Vocative:  voc,
		Argument:  arg,
		Percent:   pct,
	}
}

// WriteSensitivityTSV writes the sensitivity table.
func WriteSensitivityTSV(w io.Writer, rows []SensitivityRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{
		"heuristic", "level", "label",
		"vocative_count", "argument_count", "vocative_percent",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Heuristic, r.Level, r.Label,
			itoa(r.Vocative), itoa(r.Argument),
			fmt.Sprintf("%.2f", r.Percent),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
