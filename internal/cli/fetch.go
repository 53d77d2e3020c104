package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexfield/kinvoc/internal/fetch"
)

var (
	fetchTimeout  time.Duration
	fetchUA       string
	fetchMaxBytes int64
	fetchRate     float64
	fetchBurst    int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <index-url> <dest-dir>",
	Short: "Mirror corpus archives from a CHILDES index page",
	Long: `Fetch reads an index page, extracts the .zip archive links on the
same host, and downloads each into the destination directory. The
mirror honors robots.txt (including crawl delays), rate-limits per
host, and skips archives already on disk, so an interrupted run can
simply be rerun.

Example:
  kinvoc fetch https://childes.talkbank.org/data/Eng-NA/ ./corpora/Eng-NA
  kinvoc fetch https://childes.talkbank.org/data/Eng-NA/ ./corpora/Eng-NA --rate 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", fetch.DefaultTimeout, "per-request timeout")
	fetchCmd.Flags().StringVar(&fetchUA, "ua", fetch.DefaultUserAgent, "HTTP User-Agent")
	fetchCmd.Flags().Int64Var(&fetchMaxBytes, "max-bytes", fetch.DefaultMaxBytes, "max archive bytes to accept")
	fetchCmd.Flags().Float64Var(&fetchRate, "rate", fetch.DefaultRate, "requests per second per host")
	fetchCmd.Flags().IntVar(&fetchBurst, "burst", fetch.DefaultBurst, "rate limiter burst")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	m := fetch.NewMirror(
		fetch.NewFetcher(fetchTimeout, fetchUA, fetchMaxBytes),
		fetch.NewRobots(fetchUA, fetchTimeout),
		fetch.NewLimiter(fetchRate, fetchBurst),
	)

	rep, err := m.Run(ctx, args[0], args[1])
	if rep != nil {
		for _, f := range rep.Files {
			switch {
			case f.Err != "":
				log.Printf("%s: %s: %s", f.Name, f.Status, f.Err)
			case f.Status == fetch.StatusDenied:
				log.Printf("%s: denied by robots.txt", f.Name)
			default:
				logf("%s: %s (%d bytes)", f.Name, f.Status, f.Bytes)
			}
		}
		log.Printf("discovered %d: %d downloaded, %d skipped, %d denied, %d failed",
			rep.Discovered, rep.Downloaded, rep.Skipped, rep.Denied, rep.Failed)
	}
	if err != nil {
		return err
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%d of %d archives failed", rep.Failed, rep.Discovered)
	}
	return nil
}
