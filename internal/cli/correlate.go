package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/stats"
)

var (
	correlateOut    string
	correlateMinArg int
	correlateDraws  int
	correlateSeed   int64
)

// correlateCmd represents the correlate command
var correlateCmd = &cobra.Command{
	Use:   "correlate <counts-tsv>",
	Short: "Rank correlation between vocative and bare-argument rates",
	Long: `Correlate reads a per-term counts table (from kinvoc counts) and
estimates the Spearman correlation between vocative percentage and
bare-argument percentage across terms, with a seeded bootstrap
interval. Two robustness checks ride along: collapsing terms into
family clusters and sweeping the argument-count floor.

Example:
  kinvoc correlate counts.tsv
  kinvoc correlate counts.tsv --min-arg 100 --out correlation.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrelate,
}

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&correlateOut, "out", "", "output JSON path (default stdout)")
	correlateCmd.Flags().IntVar(&correlateMinArg, "min-arg", 0, "argument-count floor per term (0 = analysis setting)")
	correlateCmd.Flags().IntVar(&correlateDraws, "draws", 0, "bootstrap draws (0 = analysis setting)")
	correlateCmd.Flags().Int64Var(&correlateSeed, "seed", 0, "bootstrap seed (0 = fixed default)")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	comp, err := components()
	if err != nil {
		return err
	}

	rows, err := stats.LoadCounts(args[0], comp.Lexicon)
	if err != nil {
		return err
	}

	opts := stats.CorrelateOptions{
		MinArg: comp.Analysis.MinArg,
		Draws:  comp.Analysis.BootstrapDraws,
		Seed:   comp.Analysis.Seed,
	}
	if correlateMinArg != 0 {
		opts.MinArg = correlateMinArg
	}
	if correlateDraws != 0 {
		opts.Draws = correlateDraws
	}
	if correlateSeed != 0 {
		opts.Seed = correlateSeed
	}

	rep := stats.Correlate(rows, comp.Lexicon, opts)
	logf("%d terms above the floor, %d bootstrap draws", rep.NTerms, rep.BootstrapDraws)

	w, err := outWriter(correlateOut)
	if err != nil {
		return err
	}
	defer w.Close()
	return rep.WriteJSON(w)
}
