package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/confirmation"
	"experiment-setup/internal/database"
	apperrors "experiment-setup/internal/errors"
	"experiment-setup/internal/display"

	"github.com/spf13/cobra"
)

func newListBackupsCommand(opts *rootOptions) *cobra.Command {
	var (
		start   string
		end     string
		pattern string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list-backups",
		Short: "List backup files, optionally filtered by date and name",
		Long: `List the backup files in the configured backup store, oldest first.

--start and --end accept YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS in the configured
location. Both bounds are inclusive; a date-only --end covers that whole day.
--regex takes a pattern wrapped in slashes and must match the start of the file
name without its backup extension.

Examples:
  # Backups taken in March 2023
  experiment-setup list-backups --start 2023-03-01 --end 2023-03-31

  # Backups whose name starts with 50_Percent, as JSON
  experiment-setup list-backups --regex '/50_Percent/' --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := display.ParseOutputFormat(format)
			if err != nil {
				return apperrors.NewParseError("invalid --format", err)
			}

			rt, err := opts.newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			criteria, err := backup.ParseCriteria(start, end, pattern, rt.location)
			if err != nil {
				return err
			}

			ctx, stop := rt.commandContext(cmd)
			defer stop()

			store, err := opts.deps.openStore(ctx, rt.config.Backup.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			descs, err := store.List(ctx)
			if err != nil {
				return err
			}

			matched := backup.Filter(descs, criteria)
			rt.logger.WithFields(map[string]interface{}{
				"store":   store.Location(),
				"total":   len(descs),
				"matched": len(matched),
			}).Debug("Listed backups")

			return rt.display.PrintBackups(matched, outputFormat, rt.location)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "earliest backup timestamp (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
	cmd.Flags().StringVar(&end, "end", "", "latest backup timestamp, inclusive (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
	cmd.Flags().StringVar(&pattern, "regex", "", "file name pattern wrapped in slashes, e.g. /50_Percent/")
	cmd.Flags().StringVar(&format, "format", string(display.FormatText), "output format (text, json, yaml)")

	return cmd
}

func newRestoreFromBackupCommand(opts *rootOptions) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "restore-from-backup <filename>",
		Short: "Restore the database from a backup file",
		Long: `Restore the database by executing the SQL script held in a backup file.

A relative filename is looked up in the configured backup store; an absolute
path is read from the local disk. .gz, .lz4, .zst and .enc layers are removed
before the script runs. You are asked to type 'yes' before anything changes.

The whole script is sent to the server in one statement batch, so the decoded
backup must fit within the server's max_allowed_packet (64MB by default).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return apperrors.NewParseError(fmt.Sprintf("expected the following\n> %s <filename>", cmd.CommandPath()), nil)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := rt.commandContext(cmd)
			defer stop()

			passphrase, err := rt.config.Backup.Passphrase()
			if err != nil {
				return apperrors.NewConfigError("invalid backup configuration", err)
			}

			store, err := opts.deps.openStore(ctx, rt.config.Backup.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			var (
				svc *database.Service
				db  *sql.DB
			)
			executor := backup.ScriptExecutorFunc(func(ctx context.Context, script string) error {
				return svc.ExecScript(ctx, db, script)
			})
			restorer := backup.NewRestorer(store, backup.NewDecoder(passphrase), executor, rt.logger)

			confirmer := confirmation.NewConfirmationServiceWithIO(opts.stdin, opts.stdout, opts.deps.isInteractive(), rt.display.Colors())
			confirmed, err := confirmer.ConfirmRestore(ctx, restorer.Target(args[0]), assumeYes)
			if err != nil {
				return err
			}
			if !confirmed {
				rt.display.Info(confirmation.DeclinedMessage)
				return nil
			}

			script, err := restorer.Load(ctx, args[0])
			if err != nil {
				return err
			}

			svc = opts.deps.newDatabaseService(rt.logger)
			db, err = svc.Connect(ctx, rt.config.Database, true)
			if err != nil {
				return err
			}
			defer svc.Close(db)

			if err := restorer.Execute(ctx, args[0], script); err != nil {
				return err
			}

			rt.display.Success(fmt.Sprintf("Restored database from %s", restorer.Target(args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "restore without asking for confirmation")
	return cmd
}
