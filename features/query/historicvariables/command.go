package historicvariables

import (
	"context"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	countCommandType = "CountHistoricVariables"
	listCommandType  = "ListHistoricVariables"
)

// CountCommand counts the historic variables matching Query.
type CountCommand struct {
	engine.Lifecycle

	Query engine.HistoricVariableQuery
}

// BuildCountCommand creates a new CountCommand with the provided parameters.
func BuildCountCommand(query engine.HistoricVariableQuery) *CountCommand {
	return &CountCommand{Query: query}
}

func (c *CountCommand) CommandType() string {
	return countCommandType
}

func (c *CountCommand) ReadOnly() bool {
	return true
}

func (c *CountCommand) Execute(ctx context.Context, commandContext engine.CommandContext) (int64, error) {
	if err := c.Begin(); err != nil {
		return 0, err
	}

	c.Advance(engine.StateResolving)

	count, err := engine.CountHistoricVariables(ctx, commandContext, c.Query)
	if err != nil {
		return 0, c.Fail(err)
	}

	c.Complete()

	return count, nil
}

// ListCommand lists the page Page of historic variables matching Query.
// Unless the query excludes variable initialization, the returned records are materialized.
type ListCommand struct {
	engine.Lifecycle

	Query engine.HistoricVariableQuery
	Page  engine.Page
}

// BuildListCommand creates a new ListCommand with the provided parameters.
func BuildListCommand(query engine.HistoricVariableQuery, page engine.Page) *ListCommand {
	return &ListCommand{Query: query, Page: page}
}

func (c *ListCommand) CommandType() string {
	return listCommandType
}

func (c *ListCommand) ReadOnly() bool {
	return true
}

func (c *ListCommand) Execute(ctx context.Context, commandContext engine.CommandContext) ([]*engine.HistoricVariable, error) {
	if err := c.Begin(); err != nil {
		return nil, err
	}

	c.Advance(engine.StateResolving)

	variables, err := engine.ListHistoricVariables(ctx, commandContext, c.Query, c.Page)
	if err != nil {
		return nil, c.Fail(err)
	}

	c.Complete()

	return variables, nil
}
