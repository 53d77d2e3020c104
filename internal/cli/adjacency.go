package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/adjacency"
)

var (
	adjacencyOut      string
	adjacencyChainOut string
	adjacencyMinVoc   int
	adjacencyMinLift  float64
)

// adjacencyCmd represents the adjacency command
var adjacencyCmd = &cobra.Command{
	Use:   "adjacency <corpus-root>",
	Short: "Cross-utterance transition rates for kinship terms",
	Long: `Adjacency tracks what follows a vocative use of a term in the next
utterance (bare argument, determined argument, another vocative, or
nothing) and how often a bare argument was set up by a vocative in the
utterance before. The summary keeps terms above the vocative floor
plus PARENT and GRANDPARENT aggregates.

With --chain-out, terms whose voc-then-voc repetition exceeds their
baseline vocative rate are ranked by lift in a second table.

Example:
  kinvoc adjacency ./corpora/Eng-NA --out adjacency.json
  kinvoc adjacency ./corpora/Eng-NA --min-vocative 10 --chain-out chain.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runAdjacency,
}

func init() {
	rootCmd.AddCommand(adjacencyCmd)

	adjacencyCmd.Flags().StringVar(&adjacencyOut, "out", "", "summary JSON path (default stdout)")
	adjacencyCmd.Flags().StringVar(&adjacencyChainOut, "chain-out", "", "optional chaining-lift TSV path")
	adjacencyCmd.Flags().IntVar(&adjacencyMinVoc, "min-vocative", 0, "vocative floor for summary rows (0 = analysis setting)")
	adjacencyCmd.Flags().Float64Var(&adjacencyMinLift, "min-lift", 1, "minimum lift for chaining rows")
}

func runAdjacency(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	k, comp, err := newFacade(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	minVoc := adjacencyMinVoc
	if minVoc == 0 {
		minVoc = comp.Analysis.MinVocative
	}

	res, err := k.Adjacency(ctx, args[0], minVoc)
	if err != nil {
		return err
	}
	logf("run %s: %d utterances, %d terms in summary",
		res.Run.ID, res.Result.Utterances, len(res.Summary))

	w, err := outWriter(adjacencyOut)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := adjacency.WriteJSON(w, res.Summary); err != nil {
		return err
	}

	if adjacencyChainOut == "" {
		return nil
	}
	rows := adjacency.ChainLift(res.Result, adjacency.ChainThresholds{
		MinVocative: minVoc,
		MinLift:     adjacencyMinLift,
	})
	logf("%d terms above chaining thresholds", len(rows))
	cw, err := outWriter(adjacencyChainOut)
	if err != nil {
		return err
	}
	defer cw.Close()
	return adjacency.WriteChainTSV(cw, rows)
}
