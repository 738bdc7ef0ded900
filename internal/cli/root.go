// Package cli provides the rowcursor command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/rowcursor/internal/config"
	"github.com/koustreak/rowcursor/internal/connect"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/logger"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries the resolved settings from the root command to subcommands.
type app struct {
	cfgFile string
	driver  string
	dsn     string

	cfg *config.Config
	log *logger.Logger
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rowcursor",
		Short: "Run parameterised SQL against SQLite, MySQL or PostgreSQL",
		Long: `rowcursor prepares a statement on a single connection, binds typed
arguments to its ? slots and prints the affected rows or the result set.

Arguments are written as int:5, float:1.5, text:abc, blob:<hex> or null.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.driver, "driver", "", "database driver: sqlite, mysql, postgres")
	rootCmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "connection string, overrides the config file")

	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "mysql", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newQueryCmd(a))
	rootCmd.AddCommand(newExecCmd(a))
	rootCmd.AddCommand(newCountCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// load resolves file, environment and flag settings, in rising precedence.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.driver != "" {
		cfg.Database.Driver = database.Driver(a.driver)
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Log.Output = cmd.ErrOrStderr()
	a.cfg = cfg
	a.log = logger.New(&cfg.Log)
	cmd.SetContext(a.log.WithContext(cmd.Context()))
	return nil
}

// withConn opens a connection for one command run.
func (a *app) withConn(ctx context.Context, fn func(database.Connection) error) error {
	return database.WithConnection(func() (database.Connection, error) {
		return connect.Open(ctx, &a.cfg.Database, logger.FromContext(ctx))
	}, fn)
}
