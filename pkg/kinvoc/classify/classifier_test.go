package classify

import (
	"errors"
	"testing"

	"github.com/lexfield/kinvoc/pkg/kinvoc/chat"
	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
)

func utt(text string) chat.Utterance {
	return chat.Utterance{Speaker: "MOT", Text: text}
}

func uttMor(text, mor string) chat.Utterance {
	u := utt(text)
	u.Mor = chat.ParseMorTier(mor)
	return u
}

// one asserts exactly one occurrence and returns it.
func one(t *testing.T, occs []Occurrence) Occurrence {
	t.Helper()
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1: %v", len(occs), occs)
	}
	return occs[0]
}

func TestClassifyLabels(t *testing.T) {
	c := New(nil, HeuristicDefault)

	tests := []struct {
		name string
		text string
		term string
		want Label
	}{
		{"standalone call", "\tmommy .", "mommy", LabelVocative},
		{"standalone with discourse", "\they Grandma .", "grandma", LabelVocative},
		{"standalone two terms", "\tmommy daddy !", "mommy", LabelVocative},
		{"comma offset mid utterance", "\tlook , mommy , a dog .", "mommy", LabelVocative},
		{"comma before only", "\tI see you , mommy .", "mommy", LabelVocative},
		{"bare argument", "\ttell mommy about it .", "mommy", LabelBare},
		{"determiner", "\tmy mom is here .", "mom", LabelDetermined},
		{"self genitive", "\twhere is mommy's shoe ?", "mommy", LabelDetermined},
		{"preceding genitive", "\tthat is Billy's mom .", "mom", LabelDetermined},
		{"plural after determiner", "\tthe grandmas are here .", "grandma", LabelDetermined},
		{"noise ignored for standalone", "\txxx mommy xxx .", "mommy", LabelVocative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := one(t, c.Classify(utt(tt.text)))
			if occ.Term != tt.term {
				t.Errorf("Term = %q, want %q", occ.Term, tt.term)
			}
			if occ.Label != tt.want {
				t.Errorf("Label = %q, want %q", occ.Label, tt.want)
			}
		})
	}
}

func TestClassifyNoKinship(t *testing.T) {
	c := New(nil, HeuristicDefault)

	for _, text := range []string{"\tthe dog barks .", "\tmas .", "\txxx .", ""} {
		if occs := c.Classify(utt(text)); occs != nil {
			t.Errorf("Classify(%q) = %v, want nil", text, occs)
		}
	}
}

func TestClassifyCoordination(t *testing.T) {
	c := New(nil, HeuristicDefault)

	occs := c.Classify(utt("\tmy mom and dad are gone ."))
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2: %v", len(occs), occs)
	}
	if occs[0].Term != "mom" || occs[0].Label != LabelDetermined {
		t.Errorf("occs[0] = %+v, want determined mom", occs[0])
	}
	// "dad" inherits the determiner through "my mom and".
	if occs[1].Term != "dad" || occs[1].Label != LabelDetermined {
		t.Errorf("occs[1] = %+v, want determined dad", occs[1])
	}

	// Without the determiner up front the coordinated term stays bare.
	occs = c.Classify(utt("\tsaw mom and dad today ."))
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2: %v", len(occs), occs)
	}
	if occs[1].Label != LabelBare {
		t.Errorf("uncoordinated dad = %+v, want bare", occs[1])
	}
}

func TestClassifyCompound(t *testing.T) {
	c := New(nil, HeuristicDefault)

	occ := one(t, c.Classify(utt("\tgrand ma , come here .")))
	if occ.Term != "grandma" {
		t.Errorf("Term = %q, want collapsed 'grandma'", occ.Term)
	}
	if occ.Label != LabelVocative {
		t.Errorf("Label = %q, want vocative (comma after span)", occ.Label)
	}
	if occ.StartToken != 0 || occ.EndToken != 1 {
		t.Errorf("span = [%d,%d], want [0,1]", occ.StartToken, occ.EndToken)
	}

	occ = one(t, c.Classify(utt("\tI saw grand ma there .")))
	if occ.Term != "grandma" || occ.Label != LabelBare {
		t.Errorf("occurrence = %+v, want bare grandma", occ)
	}
}

func TestClassifyTokenSpans(t *testing.T) {
	c := New(nil, HeuristicDefault)

	// Tokens: look , mommy , a dog .
	occ := one(t, c.Classify(utt("\tlook , mommy , a dog .")))
	if occ.StartToken != 2 || occ.EndToken != 2 {
		t.Errorf("span = [%d,%d], want [2,2]", occ.StartToken, occ.EndToken)
	}
}

func TestClassifyTitleName(t *testing.T) {
	c := New(nil, HeuristicDefault)

	// Tier confirms a following proper noun: determined, flagged.
	occ := one(t, c.Classify(uttMor(
		"\tAunt Sarah is coming .",
		"\tn|aunt n:prop|Sarah aux|be part|come&PRESP .",
	)))
	if occ.Label != LabelDetermined || !occ.TitleName {
		t.Errorf("occurrence = %+v, want determined with TitleName", occ)
	}

	// No tier: degrades to surface-only and the same form stays bare.
	occ = one(t, c.Classify(utt("\tAunt Sarah is coming .")))
	if occ.Label != LabelBare || occ.TitleName {
		t.Errorf("occurrence without tier = %+v, want plain bare", occ)
	}

	// Core parent terms never take the override.
	occ = one(t, c.Classify(uttMor(
		"\tsee mommy Sarah .",
		"\tv|see n|mommy n:prop|Sarah .",
	)))
	if occ.Label != LabelBare || occ.TitleName {
		t.Errorf("parent-term occurrence = %+v, want bare without TitleName", occ)
	}
}

func TestClassifyTitleNameDrift(t *testing.T) {
	c := New(nil, HeuristicDefault)

	// The clitic "I'll" expands to two tier entries, shifting alignment
	// by one; the window search still lands on the right entry.
	occ := one(t, c.Classify(uttMor(
		"\tI'll see aunt Sarah .",
		"\tpro|I~mod|will v|see n|aunt n:prop|Sarah .",
	)))
	if occ.Label != LabelDetermined || !occ.TitleName {
		t.Errorf("occurrence = %+v, want determined with TitleName despite drift", occ)
	}
}

func TestClassifyDeterminerBeatsTitleName(t *testing.T) {
	c := New(nil, HeuristicDefault)

	// Both patterns present: label comes from the determiner, the
	// title+name detection is still recorded.
	occ := one(t, c.Classify(uttMor(
		"\tmy aunt Sarah .",
		"\tdet:poss|my n|aunt n:prop|Sarah .",
	)))
	if occ.Label != LabelDetermined {
		t.Errorf("Label = %q, want determined", occ.Label)
	}
	if !occ.TitleName {
		t.Error("TitleName = false, want true even when the determiner decides")
	}
}

func TestClassifyHeuristics(t *testing.T) {
	tests := []struct {
		name      string
		heuristic Heuristic
		text      string
		want      Label
	}{
		{"strict rejects standalone", HeuristicStrict, "\tmommy .", LabelBare},
		{"strict accepts comma", HeuristicStrict, "\tmommy , look .", LabelVocative},
		{"default rejects initial", HeuristicDefault, "\tMommy come here .", LabelBare},
		{"loose accepts initial", HeuristicLoose, "\tMommy come here .", LabelVocative},
		{"loose initial skips discourse", HeuristicLoose, "\they Mommy come here .", LabelVocative},
		{"loose keeps non-initial bare", HeuristicLoose, "\tcome here Mommy now .", LabelBare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil, tt.heuristic)
			occ := one(t, c.Classify(utt(tt.text)))
			if occ.Label != tt.want {
				t.Errorf("Label = %q, want %q", occ.Label, tt.want)
			}
		})
	}
}

func TestParseHeuristic(t *testing.T) {
	tests := []struct {
		name string
		want Heuristic
	}{
		{"default", HeuristicDefault},
		{"", HeuristicDefault},
		{"strict", HeuristicStrict},
		{"loose", HeuristicLoose},
	}
	for _, tt := range tests {
		h, err := ParseHeuristic(tt.name)
		if err != nil || h != tt.want {
			t.Errorf("ParseHeuristic(%q) = %v, %v, want %v", tt.name, h, err, tt.want)
		}
	}

	if _, err := ParseHeuristic("fuzzy"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("ParseHeuristic('fuzzy') err = %v, want ErrInvalidConfig", err)
	}
}

func TestLabelIsArgument(t *testing.T) {
	if LabelVocative.IsArgument() {
		t.Error("vocative should not be an argument")
	}
	if !LabelBare.IsArgument() || !LabelDetermined.IsArgument() {
		t.Error("bare and determined are arguments")
	}
}
