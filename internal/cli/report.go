package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store"
)

var (
	reportOut     string
	reportRun     string
	reportTable   string
	reportStratum string
	reportLimit   int
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recorded runs or re-render a run's stored tables",
	Long: `Report reads the results store. Without --run it lists recorded runs,
newest first. With --run it re-renders one of the run's stored tables:
counts, adjacency, or samples (the samples table includes any manual
verdicts filed since the run).

Example:
  kinvoc report --store runs.db
  kinvoc report --store runs.db --run 01J... --table counts
  kinvoc report --store runs.db --run 01J... --table samples --stratum parent_voc`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportOut, "out", "", "output TSV path (default stdout)")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "run ID to render")
	reportCmd.Flags().StringVar(&reportTable, "table", "counts", "table to render: counts, adjacency, or samples")
	reportCmd.Flags().StringVar(&reportStratum, "stratum", "", "restrict the samples table to one stratum")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "max runs to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	comp, err := components()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, comp)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("report needs a results store; set --store or store_path: %w", internalerr.ErrInvalidConfig)
	}
	defer st.Close()

	w, err := outWriter(reportOut)
	if err != nil {
		return err
	}
	defer w.Close()

	if reportRun == "" {
		runs, err := st.ListRuns(ctx, reportLimit)
		if err != nil {
			return err
		}
		return writeRunsTSV(w, runs)
	}

	if _, ok, err := st.GetRun(ctx, reportRun); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("run %s: %w", reportRun, internalerr.ErrNotFound)
	}

	switch reportTable {
	case "counts":
		rows, err := st.GetTermCounts(ctx, reportRun)
		if err != nil {
			return err
		}
		return writeStoredCountsTSV(w, rows)
	case "adjacency":
		rows, err := st.GetAdjacency(ctx, reportRun)
		if err != nil {
			return err
		}
		return writeStoredAdjacencyTSV(w, rows)
	case "samples":
		recs, err := st.GetSamples(ctx, reportRun, reportStratum)
		if err != nil {
			return err
		}
		return writeStoredSamplesTSV(w, recs)
	default:
		return fmt.Errorf("unknown table %q (want counts, adjacency, or samples): %w", reportTable, internalerr.ErrInvalidInput)
	}
}

func writeRunsTSV(w io.Writer, runs []store.Run) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{
		"id", "created_at", "corpus_root", "heuristic", "seed", "files", "utterances", "notes",
	}); err != nil {
		return err
	}
	for _, r := range runs {
		record := []string{
			r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.CorpusRoot, r.Heuristic,
			strconv.FormatInt(r.Seed, 10), strconv.Itoa(r.Files), strconv.Itoa(r.Utterances), r.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeStoredCountsTSV(w io.Writer, rows []store.TermCount) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{
		"term", "vocative", "voc_chi", "voc_adu", "argument", "arg_bare", "arg_det",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Term, strconv.Itoa(r.Vocative), strconv.Itoa(r.VocChild), strconv.Itoa(r.VocAdult),
			strconv.Itoa(r.Argument), strconv.Itoa(r.ArgBare), strconv.Itoa(r.ArgDet),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeStoredAdjacencyTSV(w io.Writer, rows []store.AdjacencyRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{
		"term", "voc_utterances", "voc_then_bare", "voc_then_det", "voc_then_voc",
		"voc_then_absent", "bare_utterances", "bare_after_voc",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Term, strconv.Itoa(r.VocUtterances), strconv.Itoa(r.VocThenBare),
			strconv.Itoa(r.VocThenDet), strconv.Itoa(r.VocThenVoc), strconv.Itoa(r.VocThenAbsent),
			strconv.Itoa(r.BareUtterances), strconv.Itoa(r.BareAfterVoc),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeStoredSamplesTSV(w io.Writer, recs []store.SampleRecord) error {
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
			strconv.Itoa(rec.LineNo), rec.Speaker, rec.Utterance, rec.Marked, rec.Manual,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
