package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/commandexecutor"
	"github.com/AntonStoeckl/process-engine-kernel/features/command/setdeploymentcategory"
)

// DeploymentOptions holds the flags of the deployment commands.
type DeploymentOptions struct {
	*RootOptions

	MaxAttempts int
}

// NewDeploymentCommand creates the "deployment" command group.
func NewDeploymentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Manage deployments",
	}

	cmd.AddCommand(newSetCategoryCommand(rootOpts))

	return cmd
}

func newSetCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeploymentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set-category <deployment-id> [category]",
		Short: "Set or clear the category of a deployment",
		Long: `Set the category of a deployment. Without a category, the category is cleared.

Concurrent updates of the same deployment are retried with backoff.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deploymentID := args[0]

			category := ""
			if len(args) == 2 {
				category = args[1]
			}

			return withRuntime(cmd, opts.RootOptions, func(cmd *cobra.Command, runtime *Runtime) error {
				_, err := commandexecutor.ExecuteWithRetry(
					cmd.Context(),
					runtime.Executor,
					func() engine.Command[engine.Void] {
						return setdeploymentcategory.BuildCommand(deploymentID, category)
					},
					commandexecutor.WithMaxAttempts(opts.MaxAttempts),
				)
				if err != nil {
					return err
				}

				result := map[string]string{"deploymentId": deploymentID, "category": category}

				return writeResult(cmd.OutOrStdout(), opts.Output, result, func() string {
					return fmt.Sprintf("deployment %s: category set to %q", deploymentID, category)
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 5, "attempts on concurrent modification")

	return cmd
}
