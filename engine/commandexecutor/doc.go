// Package commandexecutor runs engine commands, one unit of work per command.
//
// The executor opens a unit of work from a UnitOfWorkFactory, hands it to the command as its
// engine.CommandContext, and commits on success or rolls back on failure. Read-only commands run with
// eventual consistency, all others with strong consistency.
//
// Commands are single-use, so ExecuteWithRetry takes a constructor and builds a fresh command for
// every attempt. Only engine.ErrConcurrencyConflict is retried.
package commandexecutor
