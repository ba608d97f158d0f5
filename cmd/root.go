package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
	devMode bool
)

var rootCmd = &cobra.Command{
	Use:   "diligence-cli",
	Short: "Peer benchmarking for fintech due diligence",
	Long:  "Indexes a fintech company corpus, retrieves statistical peer groups, benchmarks target companies against industry cohorts and flags anomalous metrics.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if devMode {
			cfg.Log.Level = "debug"
			cfg.Log.Format = "console"
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "console logging at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
