package getrenderedstartform

import (
	"context"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	commandType = "GetRenderedStartForm"
)

// Command renders the start form of a process definition.
// An empty FormEngineName selects the configured default form engine.
type Command struct {
	engine.Lifecycle

	ProcessDefinitionID string
	FormEngineName      string
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(processDefinitionID string, formEngineName string) *Command {
	return &Command{
		ProcessDefinitionID: processDefinitionID,
		FormEngineName:      formEngineName,
	}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c *Command) CommandType() string {
	return commandType
}

// ReadOnly implements engine.ReadOnlyCommand.
func (c *Command) ReadOnly() bool {
	return true
}

// Execute returns the rendered form, or nil if the process definition has no start form.
func (c *Command) Execute(ctx context.Context, commandContext engine.CommandContext) (any, error) {
	if err := c.Begin(); err != nil {
		return nil, err
	}

	if c.ProcessDefinitionID == "" {
		return nil, c.Fail(engine.NewInvalidArgumentError("process definition id is null"))
	}

	c.Advance(engine.StateResolving)

	processDefinition, err := commandContext.ProcessDefinitions().FindDeployedProcessDefinitionByID(ctx, c.ProcessDefinitionID)
	if err != nil {
		return nil, c.Fail(err)
	}

	if processDefinition == nil {
		return nil, c.Fail(engine.NewNotFoundError(engine.KindProcessDefinition, c.ProcessDefinitionID))
	}

	startFormHandler := processDefinition.StartFormHandler
	if startFormHandler == nil {
		c.Complete()
		return nil, nil
	}

	formEngine, ok := commandContext.Configuration().FormEngine(c.FormEngineName)
	if !ok {
		return nil, c.Fail(engine.NewConfigurationError(
			"no form engine '%s' defined in process engine configuration", c.FormEngineName,
		))
	}

	c.Advance(engine.StateEffecting)

	startForm, err := startFormHandler.CreateStartFormData(ctx, processDefinition)
	if err != nil {
		return nil, c.Fail(err)
	}

	rendered, err := formEngine.RenderStartForm(ctx, startForm)
	if err != nil {
		return nil, c.Fail(err)
	}

	c.Complete()

	return rendered, nil
}
