package corpus

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestWalkSortedOrder(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"b/two.cha":  "*CHI:\thi .\n",
		"a/one.cha":  "*CHI:\thi .\n",
		"notes.txt":  "not a transcript",
		"c/deep.CHA": "*CHI:\thi .\n", // wrong case, not picked up
	})

	var seen []string
	stats, err := Walk(root, func(f File) error {
		seen = append(seen, f.Rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("stats.Files = %d, want 2", stats.Files)
	}
	want := []string{filepath.Join("a", "one.cha"), filepath.Join("b", "two.cha")}
	if len(seen) != 2 || seen[0] != want[0] || seen[1] != want[1] {
		t.Errorf("visit order = %v, want %v", seen, want)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	if _, err := Walk("/nonexistent/corpus", func(File) error { return nil }); err == nil {
		t.Error("Walk on missing root should fail")
	}
}

func TestWalkVisitError(t *testing.T) {
	root := writeCorpus(t, map[string]string{"one.cha": "*CHI:\thi .\n"})

	boom := errors.New("boom")
	_, err := Walk(root, func(File) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Walk err = %v, want the visitor's error", err)
	}
}

func TestWalkUtterancesStats(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"one.cha": "@UTF8\n*CHI:\thi .\n*MOT\n*MOT:\thello .\n",
	})

	var n int
	stats, err := WalkUtterances(root, func(_ File, u chat.Utterance) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatalf("WalkUtterances failed: %v", err)
	}
	if n != 2 || stats.Utterances != 2 {
		t.Errorf("utterances = %d (stats %d), want 2", n, stats.Utterances)
	}
	if stats.MalformedLines != 1 {
		t.Errorf("stats.MalformedLines = %d, want 1", stats.MalformedLines)
	}
}

const countFixtureA = `@UTF8
*CHI:	mommy .
%mor:	n|mommy .
*MOT:	tell mommy about it .
%mor:	v|tell n|mommy prep|about pro|it .
*MOT:	my mom is here .
*MOT:	Aunt Sarah is coming .
%mor:	n|aunt n:prop|Sarah aux|be part|come&PRESP .
@End
`

const countFixtureB = `*MOT:	xxx look , grandma , xxx .
*CHI:	where grandma go ?
`

func TestAnalyze(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"a.cha": countFixtureA,
		"b.cha": countFixtureB,
	})

	acc, stats, err := Analyze(root, classify.New(nil, classify.HeuristicDefault))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.Files != 2 || stats.Utterances != 6 {
		t.Errorf("stats = %+v, want 2 files, 6 utterances", stats)
	}

	checks := []struct {
		name string
		m    map[string]int
		term string
		want int
	}{
		{"Vocative mommy", acc.Vocative, "mommy", 1},
		{"VocChild mommy", acc.VocChild, "mommy", 1},
		{"VocAdult mommy", acc.VocAdult, "mommy", 0},
		{"ArgBare mommy", acc.ArgBare, "mommy", 1},
		{"Vocative grandma", acc.Vocative, "grandma", 1},
		{"VocAdult grandma", acc.VocAdult, "grandma", 1},
		{"ArgBare grandma", acc.ArgBare, "grandma", 1},
		{"ArgDetermined mom", acc.ArgDetermined, "mom", 1},
		{"ArgDetermined aunt", acc.ArgDetermined, "aunt", 1},
		{"TitleExcluded aunt", acc.TitleExcluded, "aunt", 1},
	}
	for _, c := range checks {
		if got := c.m[c.term]; got != c.want {
			t.Errorf("%s = %d, want %d", c.name, got, c.want)
		}
	}

	// 13 non-noise surface words in a.cha, 5 in b.cha.
	if acc.SurfaceTotal != 18 {
		t.Errorf("SurfaceTotal = %d, want 18", acc.SurfaceTotal)
	}
}

func TestAccumulatorMerge(t *testing.T) {
	u := chat.Utterance{Speaker: "CHI", Text: "\tmommy ."}
	occs := []classify.Occurrence{{Term: "mommy", Label: classify.LabelVocative}}

	a := NewAccumulator()
	a.AddUtterance(u, occs)
	b := NewAccumulator()
	b.AddUtterance(u, occs)
	b.AddUtterance(u, occs)

	a.Merge(b)
	if a.Vocative["mommy"] != 3 {
		t.Errorf("merged Vocative = %d, want 3", a.Vocative["mommy"])
	}
	if a.SurfaceTotal != 3 {
		t.Errorf("merged SurfaceTotal = %d, want 3", a.SurfaceTotal)
	}
}

func TestWriteTSV(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"a.cha": countFixtureA,
		"b.cha": countFixtureB,
	})
	acc, _, err := Analyze(root, classify.New(nil, classify.HeuristicDefault))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var buf bytes.Buffer
	if err := acc.WriteTSV(&buf, lexicon.Default()); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+53 {
		t.Fatalf("got %d lines, want header + 53 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "term\tvocative_count\tvocative_per_million") {
		t.Errorf("unexpected header: %q", lines[0])
	}

	// mommy: 1 vocative (child), 1 bare argument; denominator 18.
	wantMommy := "mommy\t1\t55555.56\t1\t55555.56\t0\t0.00\t1\t55555.56\t1\t55555.56\t0\t0.00"
	found := false
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "mommy\t") {
			found = true
			if line != wantMommy {
				t.Errorf("mommy row = %q, want %q", line, wantMommy)
			}
		}
	}
	if !found {
		t.Error("mommy row missing from TSV")
	}
}

func TestExcludedTitleCounts(t *testing.T) {
	acc := NewAccumulator()
	acc.TitleExcluded["aunt"] = 3
	acc.TitleExcluded["uncle"] = 7
	acc.TitleExcluded["grandma"] = 3

	got := acc.ExcludedTitleCounts()
	want := []ExcludedTitleCount{{"uncle", 7}, {"aunt", 3}, {"grandma", 3}}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSensitivity(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"one.cha": "*MOT:\tmommy .\n*MOT:\tMommy come here .\n*MOT:\ttell mommy .\n",
	})

	rows, err := Sensitivity(root, nil)
	if err != nil {
		t.Fatalf("Sensitivity failed: %v", err)
	}

	// Per heuristic: 53 term rows, 3 category rows, one "all" row.
	if len(rows) != 3*(53+3+1) {
		t.Fatalf("got %d rows, want %d", len(rows), 3*(53+3+1))
	}
	if rows[0].Heuristic != "default" || rows[0].Level != "term" || rows[0].Label != "mom" {
		t.Errorf("rows[0] = %+v, want default/term/mom", rows[0])
	}

	byKey := make(map[string]SensitivityRow)
	for _, r := range rows {
		byKey[r.Heuristic+"/"+r.Level+"/"+r.Label] = r
	}

	tests := []struct {
		key      string
		voc, arg int
	}{
		// default: standalone counts, initial does not
		{"default/term/mommy", 1, 2},
		// strict: comma adjacency only
		{"strict/term/mommy", 0, 3},
		{"strict/category/all", 0, 3},
		// loose: utterance-initial counts too
		{"loose/term/mommy", 2, 1},
		{"loose/category/parent", 2, 1},
	}
	for _, tt := range tests {
		r, ok := byKey[tt.key]
		if !ok {
			t.Errorf("row %s missing", tt.key)
			continue
		}
		if r.Vocative != tt.voc || r.Argument != tt.arg {
			t.Errorf("%s = %d voc / %d arg, want %d / %d",
				tt.key, r.Vocative, r.Argument, tt.voc, tt.arg)
		}
	}

	wantPct := float64(2) / float64(3) * 100
	if got := byKey["loose/term/mommy"].Percent; got != wantPct {
		t.Errorf("loose mommy percent = %v, want %v", got, wantPct)
	}

	var buf bytes.Buffer
	if err := WriteSensitivityTSV(&buf, rows); err != nil {
		t.Fatalf("WriteSensitivityTSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), "loose\tterm\tmommy\t2\t1\t66.67") {
		t.Error("TSV missing formatted loose/mommy row")
	}
}

func TestAnalyzeFrequency(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"one.cha": "*MOT:\tthe grandmas and the teachers .\n" +
			"%mor:\tdet|the n|grandma-PL coord|and det|the n|teach&dv-AGT-PL .\n" +
			"*CHI:\tgrand ma loves the dog .\n",
	})

	freq, stats, err := AnalyzeFrequency(root, nil)
	if err != nil {
		t.Fatalf("AnalyzeFrequency failed: %v", err)
	}
	if stats.Files != 1 {
		t.Errorf("stats.Files = %d, want 1", stats.Files)
	}

	if freq.SurfaceTotal != 10 {
		t.Errorf("SurfaceTotal = %d, want 10", freq.SurfaceTotal)
	}
	if freq.LemmaTotal != 5 {
		t.Errorf("LemmaTotal = %d, want 5", freq.LemmaTotal)
	}

	surface := []struct {
		term string
		want int
	}{
		{"grandma", 2}, // plural fold + compound collapse
		{"the", 3},
		{"and", 1},
		{"teacher", 1}, // plural fold onto the non-kin noun
		{"dog", 0},     // not tracked
	}
	for _, tt := range surface {
		if got := freq.Surface[tt.term]; got != tt.want {
			t.Errorf("Surface[%q] = %d, want %d", tt.term, got, tt.want)
		}
	}

	lemma := []struct {
		term string
		want int
	}{
		{"grandma", 1}, // grandma-PL suffix dropped
		{"teacher", 1}, // teach&dv-AGT folded to the agentive
		{"the", 2},
		{"and", 1},
	}
	for _, tt := range lemma {
		if got := freq.Lemma[tt.term]; got != tt.want {
			t.Errorf("Lemma[%q] = %d, want %d", tt.term, got, tt.want)
		}
	}

	var buf bytes.Buffer
	if err := freq.WriteTSV(&buf, lexicon.Default()); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+53+10+6 {
		t.Fatalf("got %d lines, want header + 69 rows", len(lines))
	}
	if !strings.Contains(buf.String(), "teacher\tnon-kin\t1\t100000.00\t1\t200000.00") {
		t.Error("TSV missing teacher row with per-million rates")
	}
}

func TestAnalyzeCoverage(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"with.cha": "*CHI:\tgrandma .\n%mor:\tn|grandma .\n",
		"without.cha": "*MOT:\tAunt Sarah is coming .\n" +
			"*MOT:\tsee aunt now .\n",
	})

	cov, _, err := AnalyzeCoverage(root, nil, CoverageThresholds{MinShare: 0.9, MinUtterances: 1})
	if err != nil {
		t.Fatalf("AnalyzeCoverage failed: %v", err)
	}

	if cov.Files != 2 || cov.FilesWithMor != 1 {
		t.Errorf("files = %d/%d with mor, want 2/1", cov.Files, cov.FilesWithMor)
	}
	if cov.Utterances != 3 || cov.UtterancesWithMor != 1 {
		t.Errorf("utterances = %d/%d with mor, want 3/1", cov.Utterances, cov.UtterancesWithMor)
	}

	g := cov.Terms["grandma"]
	if g == nil || g.WithMor != 1 || g.WithoutMor != 0 {
		t.Errorf("grandma coverage = %+v, want 1 with mor", g)
	}
	a := cov.Terms["aunt"]
	if a == nil || a.WithoutMor != 2 || a.CapFollowing != 1 {
		t.Errorf("aunt coverage = %+v, want 2 without mor, 1 capitalized successor", a)
	}

	if len(cov.Flagged) != 1 {
		t.Fatalf("flagged = %v, want only the uncovered file", cov.Flagged)
	}
	f := cov.Flagged[0]
	if f.Rel != "without.cha" || !f.Reason.NoMor || !f.Reason.LowShare || f.Reason.Share != 0 {
		t.Errorf("flagged file = %+v, want without.cha with NoMor", f)
	}

	var buf bytes.Buffer
	if err := cov.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"files_with_mor": 1`,
		`"cap_following": 1`,
		`"file": "without.cha"`,
		`"no_mor": true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s:\n%s", want, out)
		}
	}
}
