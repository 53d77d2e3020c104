package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/corpus"
)

var (
	coverageOut           string
	coverageMinShare      float64
	coverageMinUtterances int
)

// coverageCmd represents the coverage command
var coverageCmd = &cobra.Command{
	Use:   "coverage <corpus-root>",
	Short: "Diagnose %mor tier coverage across the corpus",
	Long: `Coverage measures how much of the corpus carries a %mor tier. The
title+name exclusion only operates where the tier exists, so kinship
occurrences in uncovered files inflate the bare-argument rate; this
report bounds that risk and flags files below the coverage thresholds.

Example:
  kinvoc coverage ./corpora/Eng-NA
  kinvoc coverage ./corpora/Eng-NA --min-share 0.8 --out coverage.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverage,
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringVar(&coverageOut, "out", "", "output JSON path (default stdout)")
	coverageCmd.Flags().Float64Var(&coverageMinShare, "min-share", 0.5, "flag files whose tier share falls below this")
	coverageCmd.Flags().IntVar(&coverageMinUtterances, "min-utterances", 20, "only consider files with at least this many utterances")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	comp, err := components()
	if err != nil {
		return err
	}

	cov, stats, err := corpus.AnalyzeCoverage(args[0], comp.Lexicon, corpus.CoverageThresholds{
		MinShare:      coverageMinShare,
		MinUtterances: coverageMinUtterances,
	})
	if err != nil {
		return err
	}
	logf("%d of %d files carry a tier, %d flagged",
		cov.FilesWithMor, stats.Files, len(cov.Flagged))

	w, err := outWriter(coverageOut)
	if err != nil {
		return err
	}
	defer w.Close()
	return cov.WriteJSON(w)
}
