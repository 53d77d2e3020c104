package sample

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

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

// fixtureCorpus yields one occurrence per parent stratum and two per
// extended stratum, at known lines.
func fixtureCorpus(t *testing.T) string {
	t.Helper()
	return writeCorpus(t, map[string]string{
		"a/morning.cha": "@UTF8\n" +
			"@Begin\n" +
			"*MOT:\tMommy , look !\n" +
			"*CHI:\twhere did grandma go ?\n" +
			"*MOT:\tmy mom is here .\n" +
			"*FAT:\tUncle Bob came by .\n" +
			"%mor:\tn|uncle n:prop|Bob v|come adv|by .\n" +
			"@End\n",
		"b/evening.cha": "@Begin\n" +
			"*CHI:\tgrandpa .\n" +
			"*MOT:\tgrand ma , hi .\n" +
			"@End\n",
	})
}

func TestCollectStrata(t *testing.T) {
	root := fixtureCorpus(t)
	res, stats, err := Collect(root, nil, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("stats.Files = %d, want 2", stats.Files)
	}

	for _, key := range Strata {
		if _, ok := res.Samples[key]; !ok {
			t.Errorf("Samples missing stratum %q", key)
		}
	}
	wantSeen := map[string]int{
		"parent_voc": 1, "parent_arg": 1,
		"extended_voc": 2, "extended_arg": 2,
	}
	for key, want := range wantSeen {
		if got := res.Seen[key]; got != want {
			t.Errorf("Seen[%s] = %d, want %d", key, got, want)
		}
	}

	pv := res.Samples["parent_voc"]
	if len(pv) != 1 {
		t.Fatalf("parent_voc has %d records, want 1", len(pv))
	}
	rec := pv[0]
	if rec.Term != "mommy" || rec.Class != "vocative" || rec.Category != "parent" {
		t.Errorf("parent_voc record = %q/%s/%s", rec.Term, rec.Class, rec.Category)
	}
	if rec.File != filepath.Join("a", "morning.cha") {
		t.Errorf("File = %q", rec.File)
	}
	if rec.LineNo != 3 {
		t.Errorf("LineNo = %d, want 3", rec.LineNo)
	}
	if rec.Speaker != "MOT" {
		t.Errorf("Speaker = %q, want MOT", rec.Speaker)
	}
	if rec.Utterance != "Mommy , look !" {
		t.Errorf("Utterance = %q", rec.Utterance)
	}
	if rec.Marked != "[[Mommy]] , look !" {
		t.Errorf("Marked = %q", rec.Marked)
	}
}

// Grandparent terms audit alongside aunts and uncles, not parents.
func TestCollectGrandparentStratum(t *testing.T) {
	root := fixtureCorpus(t)
	res, _, err := Collect(root, nil, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	ev := res.Samples["extended_voc"]
	if len(ev) != 2 {
		t.Fatalf("extended_voc has %d records, want 2", len(ev))
	}
	if ev[0].Term != "grandpa" || ev[0].LineNo != 2 {
		t.Errorf("first extended_voc = %q at line %d", ev[0].Term, ev[0].LineNo)
	}
	if ev[1].Term != "grandma" {
		t.Errorf("second extended_voc term = %q, want grandma", ev[1].Term)
	}
	// Compound halves are bracketed individually.
	if ev[1].Marked != "[[grand]] [[ma]] , hi ." {
		t.Errorf("compound Marked = %q", ev[1].Marked)
	}

	ea := res.Samples["extended_arg"]
	if len(ea) != 2 {
		t.Fatalf("extended_arg has %d records, want 2", len(ea))
	}
	if ea[0].Term != "grandma" || ea[0].Marked != "where did [[grandma]] go ?" {
		t.Errorf("extended_arg[0] = %q marked %q", ea[0].Term, ea[0].Marked)
	}
	if ea[1].Term != "uncle" || ea[1].Class != "argument" {
		t.Errorf("extended_arg[1] = %q/%s", ea[1].Term, ea[1].Class)
	}
}

// A stream of exactly k occurrences in a stratum must come back intact
// and in order, whatever the seed.
func TestCollectExactFit(t *testing.T) {
	root := fixtureCorpus(t)
	res, _, err := Collect(root, nil, Options{Size: 2, Seed: 7})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	ev := res.Samples["extended_voc"]
	if len(ev) != 2 {
		t.Fatalf("extended_voc has %d records, want 2", len(ev))
	}
	if ev[0].Term != "grandpa" || ev[1].Term != "grandma" {
		t.Errorf("exact-fit stratum reordered: %q, %q", ev[0].Term, ev[1].Term)
	}
	if res.Seen["extended_voc"] != 2 {
		t.Errorf("Seen = %d, want 2", res.Seen["extended_voc"])
	}
}

func TestCollectCapsReservoir(t *testing.T) {
	root := fixtureCorpus(t)
	res, _, err := Collect(root, nil, Options{Size: 1})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	ea := res.Samples["extended_arg"]
	if len(ea) != 1 {
		t.Fatalf("extended_arg has %d records, want 1", len(ea))
	}
	if ea[0].Term != "grandma" && ea[0].Term != "uncle" {
		t.Errorf("sampled term %q is not from the stream", ea[0].Term)
	}
	if res.Seen["extended_arg"] != 2 {
		t.Errorf("Seen = %d, want 2 despite the cap", res.Seen["extended_arg"])
	}
}

func TestCollectDeterministic(t *testing.T) {
	root := fixtureCorpus(t)
	a, _, err := Collect(root, nil, Options{Size: 1, Seed: 99})
	if err != nil {
		t.Fatalf("first Collect failed: %v", err)
	}
	b, _, err := Collect(root, nil, Options{Size: 1, Seed: 99})
	if err != nil {
		t.Fatalf("second Collect failed: %v", err)
	}

	for _, key := range Strata {
		ra, rb := a.Samples[key], b.Samples[key]
		if len(ra) != len(rb) {
			t.Fatalf("stratum %s sizes differ: %d vs %d", key, len(ra), len(rb))
		}
		for i := range ra {
			// ULIDs are minted fresh each run; everything else must agree.
			if ra[i].Term != rb[i].Term || ra[i].File != rb[i].File || ra[i].LineNo != rb[i].LineNo {
				t.Errorf("stratum %s record %d differs: %+v vs %+v", key, i, ra[i], rb[i])
			}
		}
	}
}

func TestCollectRecordIDs(t *testing.T) {
	root := fixtureCorpus(t)
	res, _, err := Collect(root, nil, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, key := range Strata {
		for _, rec := range res.Samples[key] {
			if len(rec.ID) != 26 {
				t.Errorf("ID %q has length %d, want 26", rec.ID, len(rec.ID))
			}
			if seen[rec.ID] {
				t.Errorf("duplicate ID %q", rec.ID)
			}
			seen[rec.ID] = true
		}
	}
	if len(seen) != 6 {
		t.Errorf("minted %d IDs, want 6", len(seen))
	}
}

func TestCollectCustomLexicon(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"solo.cha": "*CHI:\tnana .\n",
	})
	lex, err := lexicon.New(lexicon.Data{Terms: []string{"nana"}})
	if err != nil {
		t.Fatalf("lexicon.New failed: %v", err)
	}
	res, _, err := Collect(root, lex, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	ev := res.Samples["extended_voc"]
	if len(ev) != 1 || ev[0].Term != "nana" {
		t.Fatalf("extended_voc = %+v, want one nana record", ev)
	}
}

func TestWriteTSV(t *testing.T) {
	root := fixtureCorpus(t)
	res, _, err := Collect(root, nil, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	var buf bytes.Buffer
	if err := res.WriteTSV(&buf); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want header plus 6 records", len(lines))
	}
	wantHeader := "stratum\tterm\tclass\tcategory\tfile\tline_no\tspeaker\tutterance\ttokens_marked"
	if lines[0] != wantHeader {
		t.Errorf("header = %q", lines[0])
	}

	morning := filepath.Join("a", "morning.cha")
	wantRow := "parent_voc\tmommy\tvocative\tparent\t" + morning +
		"\t3\tMOT\tMommy , look !\t[[Mommy]] , look !"
	if lines[1] != wantRow {
		t.Errorf("row = %q\nwant  %q", lines[1], wantRow)
	}

	// Strata stay in fixed order regardless of collection interleaving.
	wantOrder := []string{"parent_voc", "parent_arg", "extended_voc", "extended_voc", "extended_arg", "extended_arg"}
	for i, want := range wantOrder {
		if !strings.HasPrefix(lines[i+1], want+"\t") {
			t.Errorf("line %d starts with %q, want stratum %s", i+1, lines[i+1], want)
		}
	}
}

func TestWriteTSVEmpty(t *testing.T) {
	res := &Result{
		Samples: map[string][]Record{},
		Seen:    map[string]int{},
	}
	var buf bytes.Buffer
	if err := res.WriteTSV(&buf); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("empty result wrote %d lines, want header only", got)
	}
}
