// Package cli wires the analysis pipeline into a cobra command tree.
// Flags, KINVOC_* environment variables, and an optional .kinvoc.yaml
// feed the same viper keys, so scripted and interactive runs resolve
// settings identically.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexfield/kinvoc/pkg/kinvoc"
	"github.com/lexfield/kinvoc/pkg/kinvoc/classify"
	"github.com/lexfield/kinvoc/pkg/kinvoc/config"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store/sqlite"
)

var (
	cfgFile      string
	analysisPath string
	lexiconPath  string
	storePath    string
	heuristicArg string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kinvoc",
	Short: "Kinship-term vocative analysis over CHILDES transcripts",
	Long: `Kinvoc mines CHAT transcripts for kinship-term usage: how often terms
like mommy or grandma appear as vocatives versus bare or determined
arguments, how those uses chain across utterances, and how robust the
resulting correlations are to classification error.

Runs are reproducible: fixed seeds, stable file order, and an optional
SQLite store that records every pass over a corpus.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	log.SetFlags(0)
	log.SetPrefix("kinvoc: ")
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kinvoc v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .kinvoc.yaml, then $HOME/.kinvoc.yaml)")
	rootCmd.PersistentFlags().StringVar(&analysisPath, "analysis", "", "analysis settings YAML (defaults match the published runs)")
	rootCmd.PersistentFlags().StringVar(&lexiconPath, "lexicon", "", "lexicon override YAML")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite results store (empty disables persistence)")
	rootCmd.PersistentFlags().StringVar(&heuristicArg, "heuristic", "", "classification heuristic: strict, default, or loose")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	for _, name := range []string{"analysis", "lexicon", "store", "heuristic", "verbose"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search the working directory first, then home
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kinvoc")
	}

	// Read in environment variables that match KINVOC_*
	viper.SetEnvPrefix("KINVOC")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// components resolves the lexicon, heuristic, and analysis settings
// from the bound keys. The heuristic flag wins over the analysis file,
// so a quick robustness check never needs a config edit.
func components() (*config.Components, error) {
	loader := &config.Loader{
		LexiconPath:  viper.GetString("lexicon"),
		AnalysisPath: viper.GetString("analysis"),
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if name := viper.GetString("heuristic"); name != "" && name != comp.Analysis.Heuristic {
		h, err := classify.ParseHeuristic(name)
		if err != nil {
			return nil, err
		}
		comp.Heuristic = h
		comp.Classifier = classify.New(comp.Lexicon, h)
	}
	return comp, nil
}

// openStore opens the results store when one is configured. The flag
// and environment win over the analysis file; an empty path means no
// persistence.
func openStore(ctx context.Context, comp *config.Components) (store.Store, error) {
	path := viper.GetString("store")
	if path == "" {
		path = comp.Analysis.StorePath
	}
	if path == "" {
		return nil, nil
	}
	return sqlite.OpenSQLite(ctx, path)
}

// newFacade builds the pipeline facade from the resolved settings. The
// returned components carry the analysis knobs commands still need.
func newFacade(ctx context.Context) (*kinvoc.Kinvoc, *config.Components, error) {
	comp, err := components()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(ctx, comp)
	if err != nil {
		return nil, nil, err
	}
	return kinvoc.New(kinvoc.Options{
		Lexicon:   comp.Lexicon,
		Heuristic: comp.Heuristic,
		Store:     st,
	}), comp, nil
}

// outWriter opens the output target. Empty or "-" means stdout, which
// must not be closed.
func outWriter(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// logf prints a progress line when --verbose is set.
func logf(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
