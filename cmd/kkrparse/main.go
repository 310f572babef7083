// Command kkrparse parses the output of KKR runs and writes KKR input
// decks.
package main

import (
	"fmt"
	"os"

	"github.com/kkrtools/kkr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Flags
var (
	configFile string
	verbose    bool
)

var (
	logger *zap.Logger
	conf   kkr.Config
)

var rootCmd = &cobra.Command{
	Use:   "kkrparse",
	Short: "Parse KKR output and write KKR input",
	Long: `kkrparse reads the files a KKR run leaves in its directory and
prints the parsed record, or writes an inputcard from a structure
and a set of keyword values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if configFile == "" {
			conf = kkr.DefaultConfig()
			return nil
		}
		conf, err = kkr.LoadConfig(configFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"TOML file with parser settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log at debug level")
	rootCmd.AddCommand(parseCmd, inputcardCmd, check2DCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
