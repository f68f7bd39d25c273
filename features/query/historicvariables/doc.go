// Package historicvariables implements the historic variable query commands.
//
// CountCommand counts and ListCommand lists one page of historic variables matching a finalized
// engine.HistoricVariableQuery. Both are read-only and run with eventual consistency.
package historicvariables
