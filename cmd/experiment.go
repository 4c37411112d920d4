package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"experiment-setup/internal/database"
	apperrors "experiment-setup/internal/errors"
	"experiment-setup/internal/experiment"

	"github.com/spf13/cobra"
)

// experimentFileArgs accepts the config file as a positional argument or through -f/--file
func experimentFileArgs(file *string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) > 1:
			return apperrors.NewParseError(fmt.Sprintf("expected one config file, got %d arguments", len(args)), nil)
		case len(args) == 1 && *file != "" && args[0] != *file:
			return apperrors.NewParseError("config file given both as argument and --file", nil)
		case len(args) == 0 && *file == "":
			return apperrors.NewParseError(fmt.Sprintf("expected the following\n> %s <filename>", cmd.CommandPath()), nil)
		}
		if len(args) == 1 {
			*file = args[0]
		}
		return nil
	}
}

func newNewExperimentCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "new-experiment <filename>",
		Short: "Create an experiment from a config file",
		Long: `Create an experiment record and its parameters from a TOML (.toml) or
YAML (.yaml, .yml) config file. Everything is inserted in one transaction.

Example config (TOML):
  [info]
  UserDefinedID = "ratio_sweep"
  Name = "Ratio sweep"
  Owner = "lab"

  [parameters]
  ratio = 0.5
  runs = 10
  verbose = true`,
		Args: experimentFileArgs(&file),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := experiment.Load(file)
			if err != nil {
				return err
			}

			return opts.withDatabase(cmd, false, func(ctx context.Context, rt *runtime, svc *database.Service, db *sql.DB) error {
				id, err := experiment.NewRepository(db, rt.logger).Create(ctx, cfg)
				if err != nil {
					return err
				}
				rt.display.Success(fmt.Sprintf("Created experiment %q (id %d)", cfg.Name(), id))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "experiment config file")
	return cmd
}

func newDeleteExperimentCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "delete-experiment <filename>",
		Short: "Delete the experiment described by a config file",
		Long: `Delete the experiment whose UserDefinedID is given in the config file,
together with its parameters, in one transaction.`,
		Args: experimentFileArgs(&file),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := experiment.Load(file)
			if err != nil {
				return err
			}

			return opts.withDatabase(cmd, false, func(ctx context.Context, rt *runtime, svc *database.Service, db *sql.DB) error {
				if err := experiment.NewRepository(db, rt.logger).Delete(ctx, cfg.Name()); err != nil {
					return err
				}
				rt.display.Success(fmt.Sprintf("Deleted experiment %q", cfg.Name()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "experiment config file")
	return cmd
}

// withDatabase loads the runtime, opens the invocation's connection and closes both after fn
func (o *rootOptions) withDatabase(cmd *cobra.Command, multiStatements bool, fn func(ctx context.Context, rt *runtime, svc *database.Service, db *sql.DB) error) error {
	rt, err := o.newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := rt.commandContext(cmd)
	defer stop()

	svc := o.deps.newDatabaseService(rt.logger)
	db, err := svc.Connect(ctx, rt.config.Database, multiStatements)
	if err != nil {
		return err
	}
	defer svc.Close(db)

	return fn(ctx, rt, svc, db)
}
