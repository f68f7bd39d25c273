package setdeploymentcategory

import (
	"context"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	commandType = "SetDeploymentCategory"
)

// Command sets the category of a deployment. An empty Category clears it.
type Command struct {
	engine.Lifecycle

	DeploymentID string
	Category     string
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(deploymentID string, category string) *Command {
	return &Command{
		DeploymentID: deploymentID,
		Category:     category,
	}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c *Command) CommandType() string {
	return commandType
}

func (c *Command) Execute(ctx context.Context, commandContext engine.CommandContext) (engine.Void, error) {
	if err := c.Begin(); err != nil {
		return engine.Void{}, err
	}

	if c.DeploymentID == "" {
		return engine.Void{}, c.Fail(engine.NewInvalidArgumentError("deployment id is null"))
	}

	c.Advance(engine.StateResolving)

	deployment, err := commandContext.Deployments().FindDeploymentByID(ctx, c.DeploymentID)
	if err != nil {
		return engine.Void{}, c.Fail(err)
	}

	if deployment == nil {
		return engine.Void{}, c.Fail(engine.NewNotFoundError(engine.KindDeployment, c.DeploymentID))
	}

	c.Advance(engine.StateEffecting)

	deployment.Category = c.Category

	if err = commandContext.Deployments().UpdateDeployment(ctx, deployment); err != nil {
		return engine.Void{}, c.Fail(err)
	}

	c.Advance(engine.StateEventDispatch)

	event := engine.BuildEntityEvent(engine.EventTypeEntityUpdated, deployment)
	if err = commandContext.EventDispatcher().Dispatch(ctx, event); err != nil {
		return engine.Void{}, c.Fail(err)
	}

	c.Complete()

	return engine.Void{}, nil
}
