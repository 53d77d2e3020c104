package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/internal/llm"
	"github.com/lexfield/kinvoc/pkg/kinvoc/sample"
)

var (
	annotateOut     string
	annotateSize    int
	annotateSeed    int64
	annotateModel   string
	annotateBaseURL string
	annotateTimeout time.Duration
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <corpus-root>",
	Short: "Draft first-pass labels for a QC sample with an LLM",
	Long: `Annotate draws the same stratified sample as kinvoc sample, asks an
OpenAI-compatible endpoint for a vocative/argument/ambiguous verdict
on each occurrence, and writes the sheet with the drafts prefilled in
the manual_label column. Reviewers correct the drafts before the sheet
feeds a confusion matrix; drafts never reach the store on their own.

Requires the OPENAI_API_KEY environment variable.

Example:
  kinvoc annotate ./corpora/Eng-NA --out draft.tsv
  kinvoc annotate ./corpora/Eng-NA --model gpt-4o --base-url http://localhost:8080/v1`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&annotateOut, "out", "", "output TSV path (default stdout)")
	annotateCmd.Flags().IntVar(&annotateSize, "size", 0, "records per stratum (0 = analysis setting)")
	annotateCmd.Flags().Int64Var(&annotateSeed, "seed", 0, "sampling seed (0 = fixed default)")
	annotateCmd.Flags().StringVar(&annotateModel, "model", "", "model name (default gpt-4o-mini)")
	annotateCmd.Flags().StringVar(&annotateBaseURL, "base-url", "", "OpenAI-compatible endpoint base URL")
	annotateCmd.Flags().DurationVar(&annotateTimeout, "timeout", 30*time.Second, "per-request timeout")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	ann, err := llm.New(llm.Config{
		APIKey:  apiKey,
		BaseURL: annotateBaseURL,
		Model:   annotateModel,
		Timeout: annotateTimeout,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	k, comp, err := newFacade(ctx)
	if err != nil {
		return err
	}
	defer k.Close()

	opts := sample.Options{Size: comp.Analysis.SampleSize, Seed: comp.Analysis.Seed}
	if annotateSize != 0 {
		opts.Size = annotateSize
	}
	if annotateSeed != 0 {
		opts.Seed = annotateSeed
	}

	res, err := k.Sample(ctx, args[0], opts)
	if err != nil {
		return err
	}
	var recs []sample.Record
	for _, key := range sample.Strata {
		recs = append(recs, res.Sample.Samples[key]...)
	}
	logf("annotating %d sampled occurrences with %s", len(recs), ann.Model())

	annotations, annErr := ann.AnnotateAll(ctx, recs)
	labels := make(map[string]string, len(annotations))
	for _, a := range annotations {
		labels[a.ID] = a.Label
	}

	w, err := outWriter(annotateOut)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := writeDraftSheet(w, recs, labels); err != nil {
		return err
	}
	// Drafts collected before a failure still land in the sheet; the
	// failure surfaces after the write.
	return annErr
}

func writeDraftSheet(w io.Writer, recs []sample.Record, labels map[string]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{
		"id", "stratum", "term", "class", "category", "file",
		"line_no", "speaker", "utterance", "tokens_marked", "manual_label",
	}); err != nil {
		return err
	}
	for _, rec := range recs {
		record := []string{
			rec.ID, rec.Stratum, rec.Term, rec.Class, rec.Category, rec.File,
			strconv.Itoa(rec.LineNo), rec.Speaker, rec.Utterance, rec.Marked,
			labels[rec.ID],
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
