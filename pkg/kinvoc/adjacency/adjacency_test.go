package adjacency

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
)

const fixtureOne = `*MOT:	Mommy , look !
*CHI:	mommy went home .
*MOT:	mommy .
*CHI:	mommy .
*MOT:	my mommy is nice .
*CHI:	where did daddy go ?
`

const fixtureTwo = `*MOT:	daddy .
`

func fixtureCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"one.cha": fixtureOne,
		"two.cha": fixtureTwo,
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestAnalyzeTransitions(t *testing.T) {
	res, stats, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("stats.Files = %d, want 2", stats.Files)
	}
	if res.Utterances != 7 {
		t.Errorf("Utterances = %d, want 7", res.Utterances)
	}

	m := res.Terms["mommy"]
	if m == nil {
		t.Fatal("no transitions recorded for mommy")
	}
	want := Transitions{
		VocTotal:          3,
		VocThenBare:       1, // comma vocative, then "mommy went home"
		VocThenDet:        1, // standalone, then "my mommy is nice"
		VocThenVoc:        1, // standalone, then standalone
		VocThenNone:       0,
		BareTotal:         1,
		BarePrecededByVoc: 1,
		BareNotPreceded:   0,
	}
	if *m != want {
		t.Errorf("mommy transitions = %+v, want %+v", *m, want)
	}

	d := res.Terms["daddy"]
	if d == nil {
		t.Fatal("no transitions recorded for daddy")
	}
	// The bare daddy follows a non-daddy utterance; the file-two
	// vocative has no successor, so no VocThen bucket moves.
	if d.VocTotal != 1 || d.BareNotPreceded != 1 || d.VocThenNone != 0 {
		t.Errorf("daddy transitions = %+v", *d)
	}
}

func TestSummarize(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	sum := Summarize(res, nil, 1)
	row, ok := sum["mommy"]
	if !ok {
		t.Fatal("summary missing mommy row")
	}
	if row.VocativeUtterances != 3 || row.VocFollowedByBare != 1 {
		t.Errorf("mommy row = %+v", row)
	}
	if row.PctVocThenBare != 33.3 {
		t.Errorf("pct_voc_then_bare = %v, want 33.3", row.PctVocThenBare)
	}
	if row.PctBareAfterVoc != 100.0 {
		t.Errorf("pct_bare_after_voc = %v, want 100.0", row.PctBareAfterVoc)
	}

	parent, ok := sum["PARENT"]
	if !ok {
		t.Fatal("summary missing PARENT aggregate")
	}
	if parent.VocativeUtterances != 4 {
		t.Errorf("PARENT vocative utterances = %d, want 4", parent.VocativeUtterances)
	}

	// Aggregates appear even when no term clears the threshold.
	gp, ok := sum["GRANDPARENT"]
	if !ok {
		t.Fatal("summary missing GRANDPARENT aggregate")
	}
	if gp.VocativeUtterances != 0 || gp.PctVocThenBare != 0 {
		t.Errorf("GRANDPARENT row = %+v, want zeros", gp)
	}
}

func TestSummarizeDefaultThreshold(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	sum := Summarize(res, lexicon.Default(), 0)
	if len(sum) != 2 {
		t.Errorf("got %d rows, want only the two aggregates", len(sum))
	}
}

func TestWriteJSON(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, Summarize(res, nil, 1)); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"vocative_utterances": 3`) {
		t.Errorf("JSON missing mommy vocative count:\n%s", out)
	}
	if !strings.Contains(out, `"pct_voc_then_bare": 33.3`) {
		t.Errorf("JSON missing rounded percentage:\n%s", out)
	}
	if strings.Index(out, `"GRANDPARENT"`) > strings.Index(out, `"mommy"`) {
		t.Error("JSON keys not in sorted order")
	}
}

func TestChainLift(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	rows := ChainLift(res, ChainThresholds{MinVocative: 1, MinLift: 0.1})
	if len(rows) != 1 {
		t.Fatalf("got %d chain rows, want 1: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.Term != "mommy" || r.VocThenVoc != 1 {
		t.Errorf("chain row = %+v", r)
	}
	wantFollow := float64(1) / float64(3)
	wantBase := float64(3) / float64(7)
	if r.FollowRate != wantFollow || r.Baseline != wantBase {
		t.Errorf("rates = %v / %v, want %v / %v", r.FollowRate, r.Baseline, wantFollow, wantBase)
	}
	if r.Lift != wantFollow/wantBase {
		t.Errorf("lift = %v, want %v", r.Lift, wantFollow/wantBase)
	}
}

func TestWriteChainTSV(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var buf bytes.Buffer
	rows := ChainLift(res, ChainThresholds{MinVocative: 1, MinLift: 0.1})
	if err := WriteChainTSV(&buf, rows); err != nil {
		t.Fatalf("WriteChainTSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row:\n%s", len(lines), buf.String())
	}
	if lines[0] != "term\tvoc_utterances\tvoc_then_voc\tfollow_rate\tbaseline\tlift" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "mommy\t3\t1\t0.3333\t0.4286\t0.78" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestChainLiftDefaultThresholds(t *testing.T) {
	res, _, err := Analyze(fixtureCorpus(t), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	// Nothing reaches 20 vocative utterances here.
	if rows := ChainLift(res, ChainThresholds{}); len(rows) != 0 {
		t.Errorf("got %d rows, want none under default thresholds", len(rows))
	}
}
