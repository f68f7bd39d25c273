// Package engine provides the command-execution and query-materialization kernel
// of a process engine's persistence layer.
//
// This package defines commands and the context they run in, the entity manager contracts
// the persistence layer implements, and the historic variable query pipeline:
// criteria building, value predicate initialization, count/list execution and materialization.
//
// Key types:
//   - Command, Lifecycle: single-use operations and their execution state machine
//   - CommandContext: per unit of work access to entity managers, configuration and events
//   - HistoricVariableQuery: immutable, validated criteria built with BuildHistoricVariableQuery
//   - VariableType, VariableTypes: value serialization and the type registry
//   - Materialization: per-record outcome of forcing a variable's value
//   - EventDispatcher: capability for publishing entity events, disabled by a no-op implementation
//
// Common usage pattern:
//
//	query, err := engine.BuildHistoricVariableQuery().
//		ProcessInstanceID("P1").
//		OrderByVariableName().Asc().
//		Finalize()
//	if err != nil {
//		// handle invalid argument
//	}
//
//	page, _ := engine.NewPage(0, 10)
//	variables, err := engine.ListHistoricVariables(ctx, commandContext, query, page)
//	for _, v := range variables {
//		if m := v.Materialization(); m.Cacheable() {
//			// retain m.Value() beyond the unit of work
//		}
//	}
package engine
