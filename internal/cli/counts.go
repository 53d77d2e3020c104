package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var countsOut string

// countsCmd represents the counts command
var countsCmd = &cobra.Command{
	Use:   "counts <corpus-root>",
	Short: "Classify kinship occurrences and write per-term counts",
	Long: `Counts walks every .cha transcript under the corpus root, classifies
each kinship-term occurrence as vocative or argument (bare or
determined), and writes the per-term table with per-million rates.

Title+name sequences (Uncle Bob) are excluded wherever the transcript
carries a %mor tier. With a store configured, the pass is recorded as
a run and the table is persisted under its ID.

Example:
  kinvoc counts ./corpora/Eng-NA
  kinvoc counts ./corpora/Eng-NA --out counts.tsv --store runs.db
  kinvoc counts ./corpora/Eng-NA --heuristic strict`,
	Args: cobra.ExactArgs(1),
	RunE: runCounts,
}

func init() {
	rootCmd.AddCommand(countsCmd)

	countsCmd.Flags().StringVar(&countsOut, "out", "", "output TSV path (default stdout)")
}

func runCounts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	k, _, err := newFacade(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	res, err := k.Counts(ctx, args[0])
	if err != nil {
		return err
	}
	logf("run %s: %d files, %d utterances, %d skipped",
		res.Run.ID, res.Run.Stats.Files, res.Run.Stats.Utterances, res.Run.Stats.SkippedFiles)

	w, err := outWriter(countsOut)
	if err != nil {
		return err
	}
	defer w.Close()
	return res.Counts.WriteTSV(w, k.Lexicon())
}
