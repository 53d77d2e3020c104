package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/sample"
)

var (
	sampleOut  string
	sampleSize int
	sampleSeed int64
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample <corpus-root>",
	Short: "Draw a stratified QC sample for manual review",
	Long: `Sample reservoir-samples classified kinship occurrences into four
strata (parent/extended crossed with vocative/argument) and writes the
review sheet. A fixed seed plus the walker's stable file order pins
the exact sample, so reviewers can be sent the same sheet twice.

With a store configured the records are persisted under the run ID,
ready for verdicts filed through the store.

Example:
  kinvoc sample ./corpora/Eng-NA --out review.tsv
  kinvoc sample ./corpora/Eng-NA --size 100 --seed 7 --store runs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVar(&sampleOut, "out", "", "output TSV path (default stdout)")
	sampleCmd.Flags().IntVar(&sampleSize, "size", 0, "records per stratum (0 = analysis setting)")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "sampling seed (0 = fixed default)")
}

func runSample(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	k, comp, err := newFacade(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	opts := sample.Options{Size: comp.Analysis.SampleSize, Seed: comp.Analysis.Seed}
	if sampleSize != 0 {
		opts.Size = sampleSize
	}
	if sampleSeed != 0 {
		opts.Seed = sampleSeed
	}

	res, err := k.Sample(ctx, args[0], opts)
	if err != nil {
		return err
	}
	for _, key := range sample.Strata {
		logf("%s: %d sampled of %d seen", key, len(res.Sample.Samples[key]), res.Sample.Seen[key])
	}

	w, err := outWriter(sampleOut)
	if err != nil {
		return err
	}
	defer w.Close()
	return res.Sample.WriteTSV(w)
}
