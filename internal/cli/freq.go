package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/corpus"
)

var freqOut string

// freqCmd represents the freq command
var freqCmd = &cobra.Command{
	Use:   "freq <corpus-root>",
	Short: "Per-term surface and lemma frequency profile",
	Long: `Freq counts surface tokens and %mor lemmas for every kinship term,
a non-kin occupational benchmark set, and a function-word benchmark,
with per-million rates over both denominators.

Example:
  kinvoc freq ./corpora/Eng-NA --out freq.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runFreq,
}

func init() {
	rootCmd.AddCommand(freqCmd)

	freqCmd.Flags().StringVar(&freqOut, "out", "", "output TSV path (default stdout)")
}

func runFreq(cmd *cobra.Command, args []string) error {
	comp, err := components()
	if err != nil {
		return err
	}

	freq, stats, err := corpus.AnalyzeFrequency(args[0], comp.Lexicon)
	if err != nil {
		return err
	}
	logf("%d files, %d surface tokens, %d lemmas",
		stats.Files, freq.SurfaceTotal, freq.LemmaTotal)

	w, err := outWriter(freqOut)
	if err != nil {
		return err
	}
	defer w.Close()
	return freq.WriteTSV(w, comp.Lexicon)
}
