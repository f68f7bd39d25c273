package engine

import "context"

// StartFormData describes the start form of a process definition.
type StartFormData struct {
	FormKey           string
	DeploymentID      string
	ProcessDefinition *ProcessDefinition
}

// StartFormHandler creates the start form data of a process definition.
type StartFormHandler interface {
	CreateStartFormData(ctx context.Context, processDefinition *ProcessDefinition) (StartFormData, error)
}

// FormEngine renders forms. Implementations live outside the kernel.
type FormEngine interface {
	Name() string
	RenderStartForm(ctx context.Context, startForm StartFormData) (any, error)
}

// DefaultStartFormHandler creates start form data from a declared form key.
type DefaultStartFormHandler struct {
	FormKey string
}

// CreateStartFormData implements StartFormHandler.
func (h DefaultStartFormHandler) CreateStartFormData(
	_ context.Context,
	processDefinition *ProcessDefinition,
) (StartFormData, error) {

	return StartFormData{
		FormKey:           h.FormKey,
		DeploymentID:      processDefinition.DeploymentID,
		ProcessDefinition: processDefinition,
	}, nil
}
