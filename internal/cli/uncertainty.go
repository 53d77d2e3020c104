package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/qc"
	"github.com/lexfield/kinvoc/pkg/kinvoc/stats"
)

var (
	uncertaintyOut        string
	uncertaintySamplesOut string
	uncertaintyLabels     string
	uncertaintyParent     string
	uncertaintyExtended   string
	uncertaintyDraws      int
	uncertaintySeed       int64
	uncertaintyPriorA     float64
	uncertaintyPriorB     float64
	uncertaintyAmbiguous  string
)

// uncertaintyCmd represents the uncertainty command
var uncertaintyCmd = &cobra.Command{
	Use:   "uncertainty <counts-tsv>",
	Short: "Propagate classification error through the headline rates",
	Long: `Uncertainty combines observed per-category counts with a manual-review
confusion matrix: Beta posteriors over the classifier's precision and
recall are sampled and pushed through the observed counts, yielding
credible intervals for the corrected vocative rates, their difference,
and their ratio.

The confusion matrix comes from a reviewed label sheet (--labels, the
output of kinvoc annotate after review) or from explicit tp,fp,fn,tn
counts (--parent / --extended). One of the two is required.

Example:
  kinvoc uncertainty counts.tsv --labels reviewed.tsv
  kinvoc uncertainty counts.tsv --parent 90,5,3,102 --extended 40,2,6,52
  kinvoc uncertainty counts.tsv --labels reviewed.tsv --samples-out draws.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runUncertainty,
}

func init() {
	rootCmd.AddCommand(uncertaintyCmd)

	uncertaintyCmd.Flags().StringVar(&uncertaintyOut, "out", "", "output JSON path (default stdout)")
	uncertaintyCmd.Flags().StringVar(&uncertaintySamplesOut, "samples-out", "", "optional per-draw samples TSV path")
	uncertaintyCmd.Flags().StringVar(&uncertaintyLabels, "labels", "", "reviewed label sheet TSV")
	uncertaintyCmd.Flags().StringVar(&uncertaintyParent, "parent", "", "parent confusion counts as tp,fp,fn,tn")
	uncertaintyCmd.Flags().StringVar(&uncertaintyExtended, "extended", "", "extended confusion counts as tp,fp,fn,tn")
	uncertaintyCmd.Flags().IntVar(&uncertaintyDraws, "draws", 0, "posterior draws (0 = analysis setting)")
	uncertaintyCmd.Flags().Int64Var(&uncertaintySeed, "seed", 0, "posterior seed (0 = fixed default)")
	uncertaintyCmd.Flags().Float64Var(&uncertaintyPriorA, "prior-a", 0, "Beta prior alpha (0 = analysis setting)")
	uncertaintyCmd.Flags().Float64Var(&uncertaintyPriorB, "prior-b", 0, "Beta prior beta (0 = analysis setting)")
	uncertaintyCmd.Flags().StringVar(&uncertaintyAmbiguous, "ambiguous", "", "ambiguous verdict policy: drop, vocative, or argument")
}

func runUncertainty(cmd *cobra.Command, args []string) error {
	comp, err := components()
	if err != nil {
		return err
	}

	rows, err := stats.LoadCounts(args[0], comp.Lexicon)
	if err != nil {
		return err
	}
	observed := stats.ObservedFromRows(rows, comp.Lexicon)

	conf, err := confusionFromFlags(comp.Ambiguous)
	if err != nil {
		return err
	}

	opts := stats.PropagateOptions{
		Draws: comp.Analysis.PosteriorDraws,
		Seed:  comp.Analysis.Seed,
		Prior: comp.Analysis.Prior(),
	}
	if uncertaintyDraws != 0 {
		opts.Draws = uncertaintyDraws
	}
	if uncertaintySeed != 0 {
		opts.Seed = uncertaintySeed
	}
	if uncertaintyPriorA > 0 {
		opts.Prior.A = uncertaintyPriorA
	}
	if uncertaintyPriorB > 0 {
		opts.Prior.B = uncertaintyPriorB
	}

	res := stats.Propagate(observed, conf, opts)
	logf("%d posterior draws with prior Beta(%g, %g)", opts.Draws, opts.Prior.A, opts.Prior.B)

	w, err := outWriter(uncertaintyOut)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := res.WriteJSON(w); err != nil {
		return err
	}

	if uncertaintySamplesOut == "" {
		return nil
	}
	sw, err := outWriter(uncertaintySamplesOut)
	if err != nil {
		return err
	}
	defer sw.Close()
	return res.WriteSamplesTSV(sw)
}

// confusionFromFlags resolves the confusion matrices from whichever
// source the flags name. Auditing nothing would silently reproduce the
// raw rates, so having no source at all is an error.
func confusionFromFlags(policy qc.AmbiguousPolicy) (map[string]stats.Confusion, error) {
	switch {
	case uncertaintyLabels != "":
		if uncertaintyAmbiguous != "" {
			p, err := qc.ParseAmbiguousPolicy(uncertaintyAmbiguous)
			if err != nil {
				return nil, err
			}
			policy = p
		}
		return qc.ConfusionFromLabels(uncertaintyLabels, qc.LabelColumns{}, policy)
	case uncertaintyParent != "" || uncertaintyExtended != "":
		conf := make(map[string]stats.Confusion, 2)
		if uncertaintyParent != "" {
			c, err := stats.ParseConfusion(uncertaintyParent)
			if err != nil {
				return nil, fmt.Errorf("parent confusion: %w", err)
			}
			conf["parent"] = c
		}
		if uncertaintyExtended != "" {
			c, err := stats.ParseConfusion(uncertaintyExtended)
			if err != nil {
				return nil, fmt.Errorf("extended confusion: %w", err)
			}
			conf["extended"] = c
		}
		return conf, nil
	default:
		return nil, fmt.Errorf("uncertainty needs --labels or --parent/--extended confusion counts: %w", internalerr.ErrInvalidConfig)
	}
}
