package config

import (
	"fmt"

	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/lexicon"
	"github.com/lexfield/kinvoc/pkg/kinvoc/qc"
)

// Loader loads configuration files and constructs components
type Loader struct {
	LexiconPath  string
	AnalysisPath string
}

// Components holds the loaded configuration components
type Components struct {
	Lexicon    *lexicon.Lexicon
	Classifier *classify.Classifier
	Analysis   Analysis
	Heuristic  classify.Heuristic
	Ambiguous  qc.AmbiguousPolicy
}

// Load reads the configuration files and returns initialized
// components. Missing paths fall back to built-in defaults; invalid
// settings fail here, before any corpus work starts.
func (l *Loader) Load() (*Components, error) {
	analysis := DefaultAnalysis()
	if l.AnalysisPath != "" {
		a, err := LoadAnalysis(l.AnalysisPath)
		if err != nil {
			return nil, fmt.Errorf("load analysis config: %w", err)
		}
		analysis = a
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}
	heuristic, err := classify.ParseHeuristic(analysis.Heuristic)
	if err != nil {
		return nil, err
	}
	ambiguous, err := qc.ParseAmbiguousPolicy(analysis.Ambiguous)
	if err != nil {
		return nil, err
	}

	lex := lexicon.Default()
	if l.LexiconPath != "" {
		lex, err = lexicon.FromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
	}

	return &Components{
		Lexicon:    lex,
		Classifier: classify.New(lex, heuristic),
		Analysis:   analysis,
		Heuristic:  heuristic,
		Ambiguous:  ambiguous,
	}, nil
}
