package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// DefaultMinArg is the argument-count floor a term must clear before
// its percentages enter the correlation. Rare terms produce unstable
// percentages that would dominate the rank statistics.
const DefaultMinArg = 50

// minArgThresholds are the fixed robustness sweep for the correlation
// report.
var minArgThresholds = []int{25, 50, 100}

// CountsRow is one term's totals from a counts table.
type CountsRow struct {
	Term     string
	Vocative int
	Argument int
	ArgBare  int
	ArgDet   int
	VocChild int
}

// LoadCounts reads a tab-separated counts table and returns the rows
// whose term is a known kinship lexeme. The term, vocative_count, and
// argument_count columns are required; the bare/determined/child
// splits default to zero when their columns are absent.
func LoadCounts(path string, lex *lexicon.Lexicon) ([]CountsRow, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("counts %s: read header: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"term", "vocative_count", "argument_count"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("counts %s: missing column %q: %w", path, required, internalerr.ErrInvalidInput)
		}
	}

	field := func(rec []string, name string) (int, error) {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(rec[i]))
	}

	var rows []CountsRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("counts %s: %w", path, err)
		}
		term := strings.ToLower(strings.TrimSpace(rec[col["term"]]))
		if !lex.IsTerm(term) {
			continue
		}
		row := CountsRow{Term: term}
		for _, c := range []struct {
			name string
			dst  *int
		}{
			{"vocative_count", &row.Vocative},
			{"argument_count", &row.Argument},
			{"arg_bare_count", &row.ArgBare},
			{"arg_det_count", &row.ArgDet},
			{"voc_chi_count", &row.VocChild},
		} {
			v, err := field(rec, c.name)
			if err != nil {
				return nil, fmt.Errorf("counts %s: term %s: bad %s: %w", path, term, c.name, internalerr.ErrInvalidInput)
			}
			*c.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TermPoint is one point of the vocative/bare scatter.
type TermPoint struct {
	Term     string
	Category lexicon.Category
	VocPct   float64
	BarePct  float64
	Arg      int
}

func pointOf(term string, cat lexicon.Category, voc, arg, bare, det int) TermPoint {
	p := TermPoint{Term: term, Category: cat, Arg: arg}
	if voc+arg > 0 {
		p.VocPct = float64(voc) / float64(voc+arg) * 100
	}
	if bare+det > 0 {
		p.BarePct = float64(bare) / float64(bare+det) * 100
	}
	return p
}

// Points filters rows to correlation-eligible terms: argument count at
// least minArg (the default floor when minArg <= 0) and a nonzero
// bare+determined split. Row order is preserved, which keeps the
// bootstrap stream reproducible.
func Points(rows []CountsRow, lex *lexicon.Lexicon, minArg int) []TermPoint {
	if lex == nil {
		lex = lexicon.Default()
	}
	if minArg <= 0 {
		minArg = DefaultMinArg
	}
	var pts []TermPoint
	for _, r := range rows {
		if r.Argument < minArg || r.ArgBare+r.ArgDet == 0 {
			continue
		}
		pts = append(pts, pointOf(r.Term, lex.Category(r.Term), r.Vocative, r.Argument, r.ArgBare, r.ArgDet))
	}
	return pts
}

// ClusterPoints collapses morphological variants into family clusters
// before filtering, the robustness check against one family's variant
// richness driving the correlation. Cluster sums draw on all rows,
// unfiltered; the minArg floor applies to the summed cluster.
func ClusterPoints(rows []CountsRow, lex *lexicon.Lexicon, minArg int) []TermPoint {
	if lex == nil {
		lex = lexicon.Default()
	}
	if minArg <= 0 {
		minArg = DefaultMinArg
	}
	byTerm := make(map[string]CountsRow, len(rows))
	for _, r := range rows {
		byTerm[r.Term] = r
	}

	var pts []TermPoint
	for _, cl := range lex.Clusters() {
		var voc, arg, bare, det int
		for _, m := range cl.Members {
			r, ok := byTerm[strings.ToLower(m)]
			if !ok {
				continue
			}
			voc += r.Vocative
			arg += r.Argument
			bare += r.ArgBare
			det += r.ArgDet
		}
		if arg < minArg || bare+det == 0 {
			continue
		}
		pts = append(pts, pointOf(cl.Name, lex.ClusterCategory(cl), voc, arg, bare, det))
	}
	return pts
}

// Estimate is one rho with its bootstrap interval and sample size. Rho
// is nil when the correlation was undefined for the input.
type Estimate struct {
	Rho  *float64 `json:"rho"`
	CILo float64  `json:"ci_lo"`
	CIHi float64  `json:"ci_hi"`
	N    int      `json:"n"`
}

func estimate(pts []TermPoint, draws int, seed int64) Estimate {
	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i] = p.VocPct
		y[i] = p.BarePct
	}
	est := Estimate{N: len(pts)}
	if rho, ok := Spearman(x, y); ok {
		est.Rho = &rho
	}
	if lo, hi, ok := BootstrapCI(x, y, draws, seed); ok {
		est.CILo = lo
		est.CIHi = hi
	}
	return est
}

// Robustness carries the two stability checks reported alongside the
// headline estimate.
type Robustness struct {
	FamilyClusters    Estimate            `json:"family_clusters"`
	MinArgSensitivity map[string]Estimate `json:"min_arg_sensitivity"`
}

// CorrelationReport is the full correlation analysis output.
type CorrelationReport struct {
	NTerms         int        `json:"n_terms"`
	MinArg         int        `json:"min_arg"`
	SpearmanRho    *float64   `json:"spearman_rho"`
	CILo           float64    `json:"ci_lo"`
	CIHi           float64    `json:"ci_hi"`
	BootstrapDraws int        `json:"bootstrap_draws"`
	Robustness     Robustness `json:"robustness"`

	// Terms are the filtered scatter points behind the headline
	// estimate, for rendering or inspection. Not part of the JSON
	// report.
	Terms []TermPoint `json:"-"`
}

// CorrelateOptions tune the correlation run. Zero values take the
// defaults: min-arg 50, 10000 bootstrap draws, the fixed bootstrap
// seed.
type CorrelateOptions struct {
	MinArg int
	Draws  int
	Seed   int64
}

// Correlate estimates the rank correlation between per-term vocative
// percentage and bare-argument percentage, with a bootstrap interval
// and two robustness checks: family-cluster collapsing and a min-arg
// threshold sweep. Every estimate reuses the same draw count and seed.
func Correlate(rows []CountsRow, lex *lexicon.Lexicon, opts CorrelateOptions) *CorrelationReport {
	if lex == nil {
		lex = lexicon.Default()
	}
	if opts.MinArg <= 0 {
		opts.MinArg = DefaultMinArg
	}
	if opts.Draws <= 0 {
		opts.Draws = DefaultBootstrapDraws
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultBootstrapSeed
	}

	pts := Points(rows, lex, opts.MinArg)
	main := estimate(pts, opts.Draws, opts.Seed)

	sweep := make(map[string]Estimate, len(minArgThresholds))
	for _, th := range minArgThresholds {
		sweep[strconv.Itoa(th)] = estimate(Points(rows, lex, th), opts.Draws, opts.Seed)
	}

	return &CorrelationReport{
		NTerms:         len(pts),
		MinArg:         opts.MinArg,
		SpearmanRho:    main.Rho,
		CILo:           main.CILo,
		CIHi:           main.CIHi,
		BootstrapDraws: opts.Draws,
		Robustness: Robustness{
			FamilyClusters:    estimate(ClusterPoints(rows, lex, opts.MinArg), opts.Draws, opts.Seed),
			MinArgSensitivity: sweep,
		},
		Terms: pts,
	}
}

// WriteJSON writes the report as indented JSON.
func (r *CorrelationReport) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
