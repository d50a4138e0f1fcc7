// Package cli is the garagesite command line: the web server plus a couple of
// operator tools around it.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"garagesite/pkg/config"
	"garagesite/pkg/logging"
)

// app is what PersistentPreRunE prepares for every subcommand.
type app struct {
	envFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "garagesite",
		Short: "Garage door repair site: pages, lead capture and schema markup",
		Long: `garagesite serves the business's marketing pages and the lead capture API.

Configuration comes from the environment (optionally a .env file); the
business details come from the YAML profile at BUSINESS_PROFILE_PATH.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error loading %s file: %v\n", a.envFile, err)
			}
			a.cfg = config.LoadConfig()
			if a.verbose {
				a.cfg.LogLevel = "debug"
			}

			logger, err := logging.New(a.cfg.LogLevel, a.cfg.Env)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newSchemaCmd(a))
	rootCmd.AddCommand(newLeadCmd())
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
