package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/process-engine-kernel/config"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigFile string
	Output     string

	openRuntime RuntimeOpener
}

// NewRootCommand creates the enginectl root command. A nil opener selects OpenRuntime.
func NewRootCommand(opener RuntimeOpener) *cobra.Command {
	if opener == nil {
		opener = OpenRuntime
	}

	opts := &RootOptions{openRuntime: opener}

	cmd := &cobra.Command{
		Use:   "enginectl",
		Short: "Operate the process engine persistence kernel",
		Long: `enginectl runs process engine commands against the configured PostgreSQL database.

Configuration is read from the optional --config YAML file, ENGINE_* environment variables
(e.g. ENGINE_POSTGRES__DSN) and the postgres flags below, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains([]string{outputText, outputJSON}, opts.Output) {
				return fmt.Errorf("invalid output %q: must be %s or %s", opts.Output, outputText, outputJSON)
			}

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "YAML config file")
	flags.StringVarP(&opts.Output, "output", "o", outputText, "output format (text|json)")
	flags.String("postgres-dsn", "", "PostgreSQL connection string")
	flags.String("postgres-replica-dsn", "", "PostgreSQL read replica connection string (pgx driver only)")
	flags.String("postgres-driver", config.DriverPGX, "database driver (pgx|sql|sqlx)")

	cmd.AddCommand(NewVariablesCommand(opts))
	cmd.AddCommand(NewDeploymentCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// withRuntime loads the configuration, opens the Runtime and runs fn with it.
func withRuntime(cmd *cobra.Command, opts *RootOptions, fn func(cmd *cobra.Command, runtime *Runtime) error) error {
	cfg, err := config.Load(opts.ConfigFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	runtime, err := opts.openRuntime(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer runtime.Close()

	return fn(cmd, runtime)
}
