package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pilab-dev/fitlink/config"
	"github.com/pilab-dev/fitlink/log"
	"github.com/spf13/cobra"
)

const appName = "fitlink"

var (
	cfgFile   string
	cfg       *config.ServerConfig
	appLogger log.Logger
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "fitlink links user accounts to fitness-tracking providers",
	Long:          `fitlink runs the OAuth handshake with fitness providers (Strava, Polar, ...), stores the resulting connections and keeps their sync history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded

		appLogger = log.Setup(cfg.LogLevel, cfg.LogPretty)
		appLogger.Info(cmd.Context(), "Configuration loaded", log.Fields{
			"command":             cmd.Name(),
			"http_port":           cfg.HTTPPort,
			"storage_driver":      cfg.Storage.Driver,
			"state_ledger_driver": cfg.StateLedger.Driver,
			"mongo_db_name":       cfg.Mongo.DBName,
			"log_level":           cfg.LogLevel,
		})

		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if appLogger != nil {
			appLogger.Error(ctx, "Command failed", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is /etc/%[1]s/config.yaml, $HOME/.%[1]s/config.yaml or ./config.yaml)", appName))

	rootCmd.AddCommand(serveCmd, workerCmd, enqueueSyncsCmd)
}
