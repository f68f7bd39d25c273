package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the "schema" command group.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the DDL for the configured table names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, rootOpts, func(cmd *cobra.Command, runtime *Runtime) error {
				statements := runtime.Engine.SchemaStatements()

				return writeResult(cmd.OutOrStdout(), rootOpts.Output, statements, func() string {
					return strings.Join(statements, ";\n\n") + ";"
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, rootOpts, func(cmd *cobra.Command, runtime *Runtime) error {
				if err := runtime.Engine.ApplySchema(cmd.Context()); err != nil {
					return err
				}

				statements := runtime.Engine.SchemaStatements()

				return writeResult(cmd.OutOrStdout(), rootOpts.Output, map[string]int{"applied": len(statements)}, func() string {
					return fmt.Sprintf("applied %d statements", len(statements))
				})
			})
		},
	})

	return cmd
}
