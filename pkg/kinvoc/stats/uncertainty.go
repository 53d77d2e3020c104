package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

// Uncertainty propagation defaults.
const (
	DefaultPropagateDraws = 20000
	DefaultPropagateSeed  = 20260131
)

// Confusion is a manual-review confusion matrix for one category:
// occurrences the classifier called vocative that really were (TP) or
// were not (FP), and occurrences it called argument that really were
// vocative (FN) or argument (TN).
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TN int `json:"tn"`
}

// ParseConfusion parses a "tp,fp,fn,tn" count string.
func ParseConfusion(s string) (Confusion, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Confusion{}, fmt.Errorf("confusion %q: want tp,fp,fn,tn: %w", s, internalerr.ErrInvalidInput)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Confusion{}, fmt.Errorf("confusion %q: %w", s, internalerr.ErrInvalidInput)
		}
		vals[i] = n
	}
	return Confusion{TP: vals[0], FP: vals[1], FN: vals[2], TN: vals[3]}, nil
}

// ObservedCounts are corpus-level vocative and argument totals for one
// category.
type ObservedCounts struct {
	Voc int `json:"voc"`
	Arg int `json:"arg"`
}

// ObservedFromRows aggregates per-term counts into per-category totals
// keyed the way Propagate expects ("parent", "grandparent",
// "extended"). A nil lexicon falls back to the default one.
func ObservedFromRows(rows []CountsRow, lex *lexicon.Lexicon) map[string]ObservedCounts {
	if lex == nil {
		lex = lexicon.Default()
	}
	out := make(map[string]ObservedCounts, 3)
	for _, r := range rows {
		cat := string(lex.Category(r.Term))
		oc := out[cat]
		oc.Voc += r.Vocative
		oc.Arg += r.Argument
		out[cat] = oc
	}
	return out
}

// Prior is a symmetric-form Beta prior.
type Prior struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// PropagateOptions tune a propagation run. Zero values take the
// defaults: 20000 draws, the fixed default seed, and a flat Beta(1,1)
// prior.
type PropagateOptions struct {
	Draws int
	Seed  int64
	Prior Prior
}

// Settings echoes the effective options into the report.
type Settings struct {
	Draws int   `json:"draws"`
	Seed  int64 `json:"seed"`
	Prior Prior `json:"prior"`
}

// Float marshals like an ordinary float64 but renders infinities as
// the strings "inf" and "-inf", which JSON numbers cannot carry. The
// between-category rate ratio is infinite whenever the extended rate
// draws to zero.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	}
	return json.Marshal(v)
}

// Summary describes one posterior sample: mean, median, and the
// central 95% interval.
type Summary struct {
	Mean   Float `json:"mean"`
	Median Float `json:"median"`
	Q025   Float `json:"q025"`
	Q975   Float `json:"q975"`
}

func summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	s := append([]float64(nil), samples...)
	sort.Float64s(s)
	n := len(s)
	var sum float64
	for _, v := range s {
		sum += v
	}
	return Summary{
		Mean:   Float(sum / float64(n)),
		Median: Float(s[n/2]),
		Q025:   Float(s[int(0.025*float64(n-1))]),
		Q975:   Float(s[int(0.975*float64(n-1))]),
	}
}

// CategoryPosterior holds one category's posterior summaries: the
// positive predictive value of the vocative label, the false omission
// rate among argument labels, and the implied true vocative rate.
type CategoryPosterior struct {
	PPV  Summary `json:"ppv_summary"`
	FOV  Summary `json:"fov_summary"`
	Rate Summary `json:"true_voc_rate_summary"`
}

// Contrast summarizes the parent-minus-extended difference and the
// parent/extended ratio across paired draws.
type Contrast struct {
	Diff  Summary `json:"diff_summary"`
	Ratio Summary `json:"ratio_summary"`
}

// Posterior collects the per-category posteriors. A category absent
// from the confusion input stays nil; the contrast requires both.
type Posterior struct {
	Parent   *CategoryPosterior `json:"parent,omitempty"`
	Extended *CategoryPosterior `json:"extended,omitempty"`
	Contrast *Contrast          `json:"contrast,omitempty"`
}

// Result is one uncertainty-propagation run: the settings it ran
// under, its inputs, and the posterior summaries. Per-draw rate
// samples are retained for WriteSamplesTSV.
type Result struct {
	Settings  Settings                  `json:"settings"`
	Observed  map[string]ObservedCounts `json:"observed_counts"`
	Confusion map[string]Confusion      `json:"confusion_counts"`
	Posterior Posterior                 `json:"posterior_summary"`

	parentRates   []float64
	extendedRates []float64
}

// Propagate models classifier precision (PPV of the vocative label)
// and omission (vocative share among argument labels) as Beta
// posteriors per category, then reweights the observed corpus totals
// under each posterior draw to estimate the true vocative rate. The
// parent category is simulated before extended on a single generator,
// so a fixed seed pins every draw. Only parent and extended carry
// confusion data; grandparent totals pass through unaudited.
func Propagate(observed map[string]ObservedCounts, conf map[string]Confusion, opts PropagateOptions) *Result {
	if opts.Draws <= 0 {
		opts.Draws = DefaultPropagateDraws
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultPropagateSeed
	}
	if opts.Prior == (Prior{}) {
		opts.Prior = Prior{A: 1, B: 1}
	}

	obs := make(map[string]ObservedCounts, len(observed)+3)
	for k, v := range observed {
		obs[k] = v
	}
	for _, cat := range []string{"parent", "extended", "grandparent"} {
		if _, ok := obs[cat]; !ok {
			obs[cat] = ObservedCounts{}
		}
	}

	res := &Result{
		Settings:  Settings{Draws: opts.Draws, Seed: opts.Seed, Prior: opts.Prior},
		Observed:  obs,
		Confusion: conf,
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, cat := range []string{"parent", "extended"} {
		c, ok := conf[cat]
		if !ok {
			continue
		}
		ppvA := opts.Prior.A + float64(c.TP)
		ppvB := opts.Prior.B + float64(c.FP)
		fovA := opts.Prior.A + float64(c.FN)
		fovB := opts.Prior.B + float64(c.TN)

		o := obs[cat]
		total := float64(o.Voc + o.Arg)

		ppvs := make([]float64, opts.Draws)
		fovs := make([]float64, opts.Draws)
		rates := make([]float64, opts.Draws)
		for d := 0; d < opts.Draws; d++ {
			ppv := Beta(rng, ppvA, ppvB)
			fov := Beta(rng, fovA, fovB)
			trueVoc := float64(o.Voc)*ppv + float64(o.Arg)*fov
			rate := 0.0
			if total > 0 {
				rate = trueVoc / total
			}
			ppvs[d] = ppv
			fovs[d] = fov
			rates[d] = rate
		}

		cp := &CategoryPosterior{PPV: summarize(ppvs), FOV: summarize(fovs), Rate: summarize(rates)}
		if cat == "parent" {
			res.Posterior.Parent = cp
			res.parentRates = rates
		} else {
			res.Posterior.Extended = cp
			res.extendedRates = rates
		}
	}

	if res.Posterior.Parent != nil && res.Posterior.Extended != nil {
		diff := make([]float64, opts.Draws)
		ratio := make([]float64, opts.Draws)
		for i := range diff {
			p, e := res.parentRates[i], res.extendedRates[i]
			diff[i] = p - e
			if e > 0 {
				ratio[i] = p / e
			} else {
				ratio[i] = math.Inf(1)
			}
		}
		res.Posterior.Contrast = &Contrast{Diff: summarize(diff), Ratio: summarize(ratio)}
	}
	return res
}

// WriteJSON writes the run report as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteSamplesTSV writes the paired per-draw rate samples with their
// difference and ratio, one row per draw. Both categories must have
// been simulated; otherwise only the header comes out.
func (r *Result) WriteSamplesTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{"draw", "parent_rate", "extended_rate", "diff", "ratio"}); err != nil {
		return err
	}

	n := len(r.parentRates)
	if len(r.extendedRates) < n {
		n = len(r.extendedRates)
	}
	for i := 0; i < n; i++ {
		p, e := r.parentRates[i], r.extendedRates[i]
		ratio := math.Inf(1)
		if e > 0 {
			ratio = p / e
		}
		rec := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.6f", p),
			fmt.Sprintf("%.6f", e),
			fmt.Sprintf("%.6f", p-e),
			formatRatio(ratio),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.6f", v)
}
