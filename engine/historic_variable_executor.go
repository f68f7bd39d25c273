package engine

import "context"

// CountHistoricVariables counts the historic variables matching the query.
// The query is checked and its value predicate initialized before the entity manager is called.
func CountHistoricVariables(ctx context.Context, commandContext CommandContext, query HistoricVariableQuery) (int64, error) {
	prepared, err := prepareHistoricVariableQuery(commandContext, query)
	if err != nil {
		return 0, err
	}

	return commandContext.HistoricVariables().FindHistoricVariableCountByQueryCriteria(ctx, prepared)
}

// ListHistoricVariables lists one page of historic variables matching the query.
// Unless the query excludes variable initialization, the results are materialized,
// see MaterializeHistoricVariables. On error, no results are returned.
func ListHistoricVariables(
	ctx context.Context,
	commandContext CommandContext,
	query HistoricVariableQuery,
	page Page,
) ([]*HistoricVariable, error) {

	prepared, err := prepareHistoricVariableQuery(commandContext, query)
	if err != nil {
		return nil, err
	}

	variables, err := commandContext.HistoricVariables().FindHistoricVariablesByQueryCriteria(ctx, prepared, page)
	if err != nil {
		return nil, err
	}

	if prepared.ExcludeVariableInitialization() {
		return variables, nil
	}

	if err = MaterializeHistoricVariables(ctx, variables); err != nil {
		return nil, err
	}

	return variables, nil
}

func prepareHistoricVariableQuery(commandContext CommandContext, query HistoricVariableQuery) (HistoricVariableQuery, error) {
	if err := query.CheckQueryOk(); err != nil {
		return query, err
	}

	return query.withInitializedValuePredicate(commandContext.Configuration().VariableTypes())
}
