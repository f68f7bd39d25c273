package engine

// CommandContext is the handle a running command gets for one unit of work.
// It is owned by the dispatcher, borrowed by exactly one command and never shared across goroutines.
type CommandContext interface {
	Deployments() DeploymentEntityManager
	ProcessDefinitions() ProcessDefinitionRepository
	HistoricVariables() HistoricVariableEntityManager
	Configuration() EngineConfiguration
	EventDispatcher() EventDispatcher
}
