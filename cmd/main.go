package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/config"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "land-area",
	Short: "Estimate land area from a walked GPS perimeter",
	Long: `Walk the boundary of a plot, record the GPS fixes, and estimate the
enclosed area in square meters, acres and guntha.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (default config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(areaCmd, walkCmd, serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}

	logger, err = config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", zap.String("file", configFile))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
