// Package config loads the YAML analysis settings shared by the
// command-line tools and assembles them, together with any lexicon
// override, into ready-to-use components.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/sample"
	"github.com/lexfield/kinvoc/pkg/kinvoc/stats"
)

// Analysis is the shared settings block for analysis runs. Seed 0
// means every operation uses its own fixed default seed, which keeps
// published runs reproducible without a config file.
type Analysis struct {
	CorpusRoot     string  `yaml:"corpus_root"`
	Heuristic      string  `yaml:"heuristic"`
	MinArg         int     `yaml:"min_arg"`
	MinVocative    int     `yaml:"min_vocative"`
	BootstrapDraws int     `yaml:"bootstrap_draws"`
	PosteriorDraws int     `yaml:"posterior_draws"`
	Seed           int64   `yaml:"seed"`
	PriorA         float64 `yaml:"prior_a"`
	PriorB         float64 `yaml:"prior_b"`
	SampleSize     int     `yaml:"sample_size"`
	Ambiguous      string  `yaml:"ambiguous"`
	StorePath      string  `yaml:"store_path"`
}

// DefaultAnalysis returns the settings the published results use.
func DefaultAnalysis() Analysis {
	return Analysis{
		Heuristic:      "default",
		MinArg:         stats.DefaultMinArg,
		MinVocative:    20,
		BootstrapDraws: stats.DefaultBootstrapDraws,
		PosteriorDraws: stats.DefaultPropagateDraws,
		PriorA:         1,
		PriorB:         1,
		SampleSize:     sample.DefaultSize,
		Ambiguous:      "drop",
	}
}

// LoadAnalysis loads an analysis settings file over the defaults, so a
// file only needs to spell out the settings it changes.
func LoadAnalysis(path string) (Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Analysis{}, err
	}

	a := DefaultAnalysis()
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return Analysis{}, fmt.Errorf("analysis %s: %w", path, err)
	}
	return a, nil
}

// Validate checks the numeric ranges. The heuristic and ambiguous
// names are validated by their parsers when the settings are put to
// use.
func (a Analysis) Validate() error {
	if a.MinArg < 0 {
		return fmt.Errorf("min_arg %d is negative: %w", a.MinArg, internalerr.ErrInvalidConfig)
	}
	if a.MinVocative < 0 {
		return fmt.Errorf("min_vocative %d is negative: %w", a.MinVocative, internalerr.ErrInvalidConfig)
	}
	if a.BootstrapDraws < 0 {
		return fmt.Errorf("bootstrap_draws %d is negative: %w", a.BootstrapDraws, internalerr.ErrInvalidConfig)
	}
	if a.PosteriorDraws < 0 {
		return fmt.Errorf("posterior_draws %d is negative: %w", a.PosteriorDraws, internalerr.ErrInvalidConfig)
	}
	if a.SampleSize < 0 {
		return fmt.Errorf("sample_size %d is negative: %w", a.SampleSize, internalerr.ErrInvalidConfig)
	}
	if a.PriorA <= 0 || a.PriorB <= 0 {
		return fmt.Errorf("beta prior (%g, %g) must be positive: %w", a.PriorA, a.PriorB, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Prior returns the configured Beta prior.
func (a Analysis) Prior() stats.Prior {
	return stats.Prior{A: a.PriorA, B: a.PriorB}
}
