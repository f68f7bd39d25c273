package engine

import (
	"context"
	"time"
)

// EntityKind names the kind of an engine entity, e.g., in NotFoundError and entity events.
type EntityKind string

const (
	KindDeployment        EntityKind = "Deployment"
	KindProcessDefinition EntityKind = "ProcessDefinition"
	KindHistoricVariable  EntityKind = "HistoricVariableInstance"
)

// Entity is implemented by everything the engine persists and reports in events.
type Entity interface {
	EntityKind() EntityKind
	EntityID() string
}

// Deployment groups the resources that were deployed together.
type Deployment struct {
	ID             string
	Name           string
	Category       string
	TenantID       string
	DeploymentTime time.Time
}

func (d *Deployment) EntityKind() EntityKind { return KindDeployment }
func (d *Deployment) EntityID() string       { return d.ID }

// ProcessDefinition is a deployed process definition.
// StartFormHandler is nil when the definition declares no start form.
type ProcessDefinition struct {
	ID               string
	Key              string
	Name             string
	Version          int
	Category         string
	DeploymentID     string
	TenantID         string
	StartFormHandler StartFormHandler
}

func (p *ProcessDefinition) EntityKind() EntityKind { return KindProcessDefinition }
func (p *ProcessDefinition) EntityID() string       { return p.ID }

// DeploymentEntityManager finds and updates deployments.
// FindDeploymentByID returns (nil, nil) when no deployment exists for the id.
type DeploymentEntityManager interface {
	FindDeploymentByID(ctx context.Context, deploymentID string) (*Deployment, error)
	UpdateDeployment(ctx context.Context, deployment *Deployment) error
}

// ProcessDefinitionRepository finds deployed process definitions.
// FindDeployedProcessDefinitionByID returns (nil, nil) when no definition exists for the id.
type ProcessDefinitionRepository interface {
	FindDeployedProcessDefinitionByID(ctx context.Context, processDefinitionID string) (*ProcessDefinition, error)
}

// HistoricVariableEntityManager executes historic variable queries.
type HistoricVariableEntityManager interface {
	FindHistoricVariableCountByQueryCriteria(ctx context.Context, query HistoricVariableQuery) (int64, error)
	FindHistoricVariablesByQueryCriteria(ctx context.Context, query HistoricVariableQuery, page Page) ([]*HistoricVariable, error)
}
