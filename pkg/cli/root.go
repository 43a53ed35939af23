// Package cli wires configuration, storage and transports into the holocron
// command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/logging"
)

// app is the state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	version    string
	configFile string

	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds the holocron command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "holocron",
		Short: "Holocron serves the Star Wars universe over REST and GraphQL",
		Long: `Holocron stores planets, films, characters and species in PostgreSQL,
imports them from a SWAPI-compatible source and serves them over REST and
GraphQL.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", config.DefaultConfigPath, "YAML config file (optional)")

	root.AddCommand(newVersionCommand(a))
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newPopulateCommand(a))
	root.AddCommand(newMigrateCommand(a))

	return root
}

// setup loads config and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// version must work without a valid config
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.LoadFrom(a.configFile, a.version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
