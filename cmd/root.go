package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"experiment-setup/internal/backup"
	"experiment-setup/internal/config"
	"experiment-setup/internal/confirmation"
	"experiment-setup/internal/database"
	apperrors "experiment-setup/internal/errors"
	"experiment-setup/internal/display"
	"experiment-setup/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dependencies are the constructors commands use to reach external systems
type dependencies struct {
	newDatabaseService func(logger *logging.Logger) *database.Service
	openStore          func(ctx context.Context, cfg backup.StorageConfig) (backup.Store, error)
	isInteractive      func() bool
}

func defaultDependencies() dependencies {
	return dependencies{
		newDatabaseService: database.NewService,
		openStore:          backup.NewStore,
		isInteractive: func() bool {
			return confirmation.IsInteractive(os.Stdin)
		},
	}
}

// rootOptions holds the global flags and I/O of one command tree
type rootOptions struct {
	cfgFile   string
	verbose   bool
	quiet     bool
	logFile   string
	noColor   bool
	storage   string
	backupDir string

	v       *viper.Viper
	initErr error

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	deps   dependencies
}

// runtime is what a command needs once configuration is loaded
type runtime struct {
	config   *config.Config
	logger   *logging.Logger
	display  display.DisplayService
	location *time.Location
}

// commandContext is cancelled on SIGINT or SIGTERM and carries the invocation's correlation id
func (r *runtime) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := logging.CreateContextWithCorrelationID(cmd.Context(), r.logger.CorrelationID())
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func (r *runtime) Close() {
	if err := r.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	opts := newRootOptions(os.Stdin, os.Stdout, os.Stderr, defaultDependencies())
	if err := NewRootCommand(opts).Execute(); err != nil {
		opts.printError(err)
		os.Exit(1)
	}
}

func newRootOptions(stdin io.Reader, stdout, stderr io.Writer, deps dependencies) *rootOptions {
	return &rootOptions{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		deps:   deps,
	}
}

// NewRootCommand builds the command tree
func NewRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "experiment-setup",
		Short: "Manage experiment records and database backups",
		Long: `experiment-setup creates and deletes experiment records in a MySQL database
and lists or restores the database backups kept in a backup store.

Examples:
  # Create an experiment from a TOML or YAML file
  experiment-setup new-experiment my_experiment.toml

  # Delete the experiment described by the same file
  experiment-setup delete-experiment -f my_experiment.toml

  # List March 2023 backups whose name starts with B
  experiment-setup list-backups --start 2023-03-01 --end 2023-03-31 --regex '/B.*/'

  # Restore one of them
  experiment-setup restore-from-backup B_2023-03-01.bak.gz`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose && opts.quiet {
				return apperrors.NewParseError("--verbose and --quiet flags are mutually exclusive", nil)
			}
			opts.initConfig()
			return nil
		},
	}

	rootCmd.SetIn(opts.stdin)
	rootCmd.SetOut(opts.stdout)
	rootCmd.SetErr(opts.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/"+config.ConfigName+".yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	flags.StringVar(&opts.storage, "storage", "", "backup storage provider override (local, s3, azure, gcs)")
	flags.StringVar(&opts.backupDir, "backup-dir", "", "local backup directory override")

	opts.v.BindPFlag("log.file", flags.Lookup("log-file"))
	opts.v.BindPFlag("backup.storage.provider", flags.Lookup("storage"))
	opts.v.BindPFlag("backup.storage.local.base_path", flags.Lookup("backup-dir"))

	rootCmd.AddCommand(newNewExperimentCommand(opts))
	rootCmd.AddCommand(newDeleteExperimentCommand(opts))
	rootCmd.AddCommand(newListBackupsCommand(opts))
	rootCmd.AddCommand(newRestoreFromBackupCommand(opts))
	rootCmd.AddCommand(createVersionCommand(opts))
	rootCmd.AddCommand(createConfigCommand(opts))

	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func (o *rootOptions) initConfig() {
	config.ConfigureEnv(o.v)
	config.SetDefaults(o.v)

	if o.cfgFile != "" {
		// Use config file from the flag.
		o.v.SetConfigFile(o.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			o.v.AddConfigPath(home)
		}
		o.v.AddConfigPath(".")
		o.v.SetConfigType("yaml")
		o.v.SetConfigName(config.ConfigName)
	}

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile != "" || !errors.As(err, &notFound) {
			o.initErr = apperrors.NewConfigError("failed to read config file", err)
		}
	}
}

// newRuntime loads the configuration and builds the logger and display
func (o *rootOptions) newRuntime() (*runtime, error) {
	if o.initErr != nil {
		return nil, o.initErr
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Backup.LoadLocation()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level, o.verbose, o.quiet),
		Output:  o.stderr,
		Format:  cfg.Log.Format,
		LogFile: cfg.Log.File,
	})
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create logger", err)
	}

	if used := o.v.ConfigFileUsed(); used != "" {
		logger.WithField("config_file", used).Debug("Using config file")
	}

	return &runtime{
		config:   cfg,
		logger:   logger,
		display:  o.newDisplay(),
		location: location,
	}, nil
}

func (o *rootOptions) newDisplay() display.DisplayService {
	return display.NewDisplayService(&display.DisplayConfig{
		ColorEnabled: !o.noColor,
		QuietMode:    o.quiet,
		Writer:       o.stdout,
		ErrWriter:    o.stderr,
	})
}

// printError writes the single "Error: ..." line for a failed command
func (o *rootOptions) printError(err error) {
	display.NewDisplayService(&display.DisplayConfig{
		ColorEnabled: !o.noColor,
		Writer:       o.stdout,
		ErrWriter:    o.stderr,
	}).Error(apperrors.FormatUserError(err))
}

// Version information (set by main package)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
	goVersion = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, bt, gc, gv string) {
	version = v
	buildTime = bt
	gitCommit = gc
	goVersion = gv
}

// createVersionCommand creates the version subcommand
func createVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  "Print the version information for experiment-setup",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "experiment-setup version %s\n", version)
			fmt.Fprintf(out, "Built: %s\n", buildTime)
			fmt.Fprintf(out, "Commit: %s\n", gitCommit)
			fmt.Fprintf(out, "Go version: %s\n", goVersion)
		},
	}
}

// createConfigCommand creates the config subcommand for generating sample config
func createConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Generate a sample configuration file",
		Long: `Generate a sample configuration file that can be used with the --config flag.

Examples:
  # Write the sample to the default location and edit it
  experiment-setup config > ~/.experiment-setup.yaml`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig)
		},
	}
}
