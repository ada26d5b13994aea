package main

import (
	"fmt"
	"os"

	"github.com/julianopadua/documentation-helper/internal/config"
	"github.com/julianopadua/documentation-helper/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	force   bool
	reset   bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Generate per-file Markdown documentation for a source tree",
	Long: `docgen walks a source tree, synthesizes per-file Markdown documentation
through a configurable LLM backend, and caches results by content hash so
re-runs only pay for what changed.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg.Force = force
		cfg.Reset = reset

		if err := logging.Initialize(logging.DefaultConfig(verbose, cfg.Paths.LogDir)); err != nil {
			logger.WithError(err).Warn("failed to initialize run log file, continuing with stdout only")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docgen.yaml or ./.docgen/docgen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "ignore the content-addressed cache and regenerate everything")
	rootCmd.PersistentFlags().BoolVar(&reset, "reset", false, "remove the generated src/ tree, INDEX.md, and state dir under the configured output root before running")

	rootCmd.SetVersionTemplate(`docgen {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(validateConfigCmd)
}
