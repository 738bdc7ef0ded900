package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/rowcursor/internal/connect"
	"github.com/koustreak/rowcursor/internal/database"
	"github.com/koustreak/rowcursor/internal/errs"
)

type execOptions struct {
	args   []string
	insert bool
	script bool
}

func newExecCmd(a *app) *cobra.Command {
	opts := &execOptions{}

	cmd := &cobra.Command{
		Use:   "exec SQL",
		Short: "Run a statement that returns no rows",
		Long: `Run an INSERT, UPDATE, DELETE or DDL statement.

By default the number of affected rows is printed; --insert prints the id of
the inserted row instead. --script runs several ;-separated statements without
binding.`,
		Example: `  rowcursor exec "UPDATE users SET active = ? WHERE id = ?" --arg int:0 --arg int:7
  rowcursor exec "INSERT INTO users(name) VALUES (?)" --arg text:ann --insert
  rowcursor exec --script "CREATE TABLE a(x); CREATE TABLE b(y)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.script && (opts.insert || len(opts.args) > 0) {
				return errs.New(errs.ErrKindInvalidInput, "--script takes no --arg or --insert")
			}
			values, err := parseArgs(opts.args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			return a.withConn(ctx, func(conn database.Connection) error {
				if opts.script {
					if err := conn.Exec(ctx, args[0]); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(w, "OK")
					return nil
				}

				return database.WithStatement(ctx, conn, args[0], func(stmt database.Statement) error {
					if err := database.BindAll(stmt, values...); err != nil {
						return err
					}
					if opts.insert {
						id, err := stmt.ExecuteInsert(ctx)
						if err != nil {
							return err
						}
						_, _ = fmt.Fprintf(w, "last insert id: %d\n", id)
						return nil
					}
					n, err := stmt.ExecuteUpdateDelete(ctx)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(w, "%d rows affected\n", n)
					return nil
				})
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.args, "arg", "a", nil, "typed bind argument, repeatable")
	cmd.Flags().BoolVar(&opts.insert, "insert", false, "print the inserted row id")
	cmd.Flags().BoolVar(&opts.script, "script", false, "run an unparameterised multi-statement script")

	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	var rawArgs []string

	cmd := &cobra.Command{
		Use:     "count SQL",
		Short:   "Print the integer in the first column of the first row",
		Example: `  rowcursor count "SELECT count(*) FROM users WHERE age > ?" --arg int:30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseArgs(rawArgs)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.withConn(ctx, func(conn database.Connection) error {
				n, err := database.LongForQuery(ctx, conn, args[0], values...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&rawArgs, "arg", "a", nil, "typed bind argument, repeatable")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending goose migrations",
		Long: `Apply every pending goose migration and print the resulting schema
version. The directory defaults to database.migrations_dir from the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir != "" {
				a.cfg.Database.MigrationsDir = dir
			}
			if a.cfg.Database.MigrationsDir == "" {
				return errs.New(errs.ErrKindInvalidInput, "no migrations directory: pass --dir or set database.migrations_dir")
			}
			ctx := cmd.Context()
			return a.withConn(ctx, func(conn database.Connection) error {
				v := connect.MigrationVersion(conn)
				a.log.Infof("migrations in %s applied", a.cfg.Database.MigrationsDir)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory")
	return cmd
}
