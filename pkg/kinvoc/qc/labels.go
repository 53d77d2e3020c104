// Package qc reconciles manual review verdicts with classifier output,
// turning an annotated sample sheet into the per-category confusion
// matrices that uncertainty propagation consumes.
package qc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/stats"
)

// Normalized label values.
const (
	LabelVocative  = "vocative"
	LabelArgument  = "argument"
	LabelAmbiguous = "ambiguous"
)

var ambiguousForms = map[string]bool{
	"ambig":     true,
	"ambiguous": true,
	"uncertain": true,
}

// NormalizeLabel maps a free-form review verdict onto the three values
// reconciliation understands. The ambiguous spellings are matched
// before the prefix rules, so "ambiguous" never reads as an argument
// label. Anything unrecognized normalizes to the empty string.
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case ambiguousForms[s]:
		return LabelAmbiguous
	case strings.HasPrefix(s, "v"):
		return LabelVocative
	case strings.HasPrefix(s, "a"):
		return LabelArgument
	}
	return ""
}

// AmbiguousPolicy decides what a reviewer's "ambiguous" verdict counts
// as when building confusion matrices.
type AmbiguousPolicy int

const (
	// PolicyDrop discards ambiguous rows.
	PolicyDrop AmbiguousPolicy = iota
	// PolicyVocative counts ambiguous verdicts as vocative.
	PolicyVocative
	// PolicyArgument counts ambiguous verdicts as argument.
	PolicyArgument
)

func (p AmbiguousPolicy) String() string {
	switch p {
	case PolicyVocative:
		return "voc"
	case PolicyArgument:
		return "arg"
	default:
		return "drop"
	}
}

// ParseAmbiguousPolicy maps a configuration name to its policy. The
// empty string selects drop.
func ParseAmbiguousPolicy(name string) (AmbiguousPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "drop":
		return PolicyDrop, nil
	case "voc", "vocative":
		return PolicyVocative, nil
	case "arg", "argument":
		return PolicyArgument, nil
	}
	return PolicyDrop, fmt.Errorf("unknown ambiguous policy %q: %w", name, internalerr.ErrInvalidConfig)
}

// LabelColumns names the annotated sheet's columns. Zero values take
// the sampler's output header plus the conventional review column.
type LabelColumns struct {
	Pred string // classifier label, default "class"
	True string // reviewer verdict, default "manual_label"
	Cat  string // category, default "category"
}

func (c LabelColumns) withDefaults() LabelColumns {
	if c.Pred == "" {
		c.Pred = "class"
	}
	if c.True == "" {
		c.True = "manual_label"
	}
	if c.Cat == "" {
		c.Cat = "category"
	}
	return c
}

// ConfusionFromLabels reads an annotated sample sheet and builds one
// confusion matrix per audited category. Both audited categories are
// always present in the result, zero-valued when unobserved.
//
// Rows are skipped when the category falls outside parent/extended,
// when either label fails to normalize, or, under the drop policy,
// when the verdict is ambiguous. The policy applies to the reviewer's
// verdict only; an ambiguous classifier label has no matrix cell and
// is always skipped.
func ConfusionFromLabels(path string, cols LabelColumns, policy AmbiguousPolicy) (map[string]stats.Confusion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("labels %s: read header: %w", path, err)
	}
	cols = cols.withDefaults()
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var pi, ti, ci int
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{cols.Pred, &pi},
		{cols.True, &ti},
		{cols.Cat, &ci},
	} {
		i, ok := col[c.name]
		if !ok {
			return nil, fmt.Errorf("labels %s: missing column %q: %w", path, c.name, internalerr.ErrInvalidInput)
		}
		*c.dst = i
	}

	conf := map[string]stats.Confusion{"parent": {}, "extended": {}}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("labels %s: %w", path, err)
		}
		if pi >= len(rec) || ti >= len(rec) || ci >= len(rec) {
			continue
		}
		cat := strings.ToLower(strings.TrimSpace(rec[ci]))
		if cat != "parent" && cat != "extended" {
			continue
		}
		pred := NormalizeLabel(rec[pi])
		truth := NormalizeLabel(rec[ti])
		if truth == LabelAmbiguous {
			switch policy {
			case PolicyVocative:
				truth = LabelVocative
			case PolicyArgument:
				truth = LabelArgument
			default:
				continue
			}
		}
		if (pred != LabelVocative && pred != LabelArgument) ||
			(truth != LabelVocative && truth != LabelArgument) {
			continue
		}
		m := conf[cat]
		switch {
		case pred == LabelVocative && truth == LabelVocative:
			m.TP++
		case pred == LabelVocative:
			m.FP++
		case truth == LabelVocative:
			m.FN++
		default:
			m.TN++
		}
		conf[cat] = m
	}
	return conf, nil
}
