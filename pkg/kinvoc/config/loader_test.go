package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/qc"
)

func TestLoaderDefaults(t *testing.T) {
	loader := &Loader{}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !comp.Lexicon.IsTerm("mommy") {
		t.Error("default lexicon should know mommy")
	}
	if comp.Heuristic != classify.HeuristicDefault {
		t.Errorf("Heuristic = %v, want default", comp.Heuristic)
	}
	if comp.Ambiguous != qc.PolicyDrop {
		t.Errorf("Ambiguous = %v, want drop", comp.Ambiguous)
	}
	if comp.Classifier == nil || comp.Classifier.Lexicon() != comp.Lexicon {
		t.Error("classifier not built over the loaded lexicon")
	}
	if comp.Analysis != DefaultAnalysis() {
		t.Errorf("Analysis = %+v, want defaults", comp.Analysis)
	}
}

func TestLoaderLexiconOverride(t *testing.T) {
	path := writeFile(t, "lexicon.yaml", "terms:\n  - nana\n  - mima\n")

	loader := &Loader{LexiconPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !comp.Lexicon.IsTerm("mima") {
		t.Error("override term missing")
	}
	if comp.Lexicon.IsTerm("mommy") {
		t.Error("terms list should replace the inventory")
	}
}

func TestLoaderAnalysisApplied(t *testing.T) {
	path := writeFile(t, "analysis.yaml", "heuristic: strict\nambiguous: voc\n")

	loader := &Loader{AnalysisPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Heuristic != classify.HeuristicStrict {
		t.Errorf("Heuristic = %v, want strict", comp.Heuristic)
	}
	if comp.Classifier.Heuristic() != classify.HeuristicStrict {
		t.Error("classifier not built with the configured heuristic")
	}
	if comp.Ambiguous != qc.PolicyVocative {
		t.Errorf("Ambiguous = %v, want voc", comp.Ambiguous)
	}
}

func TestLoaderRejectsBadNames(t *testing.T) {
	cases := []string{
		"heuristic: fuzzy\n",
		"ambiguous: coinflip\n",
		"min_arg: -3\n",
	}
	for _, content := range cases {
		loader := &Loader{AnalysisPath: writeFile(t, "analysis.yaml", content)}
		if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("config %q: Load() = %v, want ErrInvalidConfig", content, err)
		}
	}
}

func TestLoaderMissingFiles(t *testing.T) {
	loader := &Loader{AnalysisPath: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := loader.Load(); err == nil {
		t.Error("missing analysis file should fail")
	}

	loader = &Loader{LexiconPath: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := loader.Load(); err == nil {
		t.Error("missing lexicon file should fail")
	}
}

func TestLoaderInvalidLexicon(t *testing.T) {
	// A term in both category sets is a configuration error.
	content := "parent_terms:\n  - mom\ngrandparent_terms:\n  - mom\n"
	loader := &Loader{LexiconPath: writeFile(t, "lexicon.yaml", content)}
	if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Load() = %v, want ErrInvalidConfig", err)
	}
}
