// Package postgresengine is the PostgreSQL persistence collaborator of the process engine kernel.
//
// An Engine opens one UnitOfWork per command. The UnitOfWork implements engine.CommandContext and
// exposes entity managers for deployments, process definitions and historic variables. All SQL is
// built with goqu using the postgres dialect.
//
// Three database adapters are supported:
//
//	NewEngineFromPGXPool(pool)                      // pgx/v5
//	NewEngineFromPGXPoolAndReplica(primary, replica) // pgx/v5, eventual reads from the replica
//	NewEngineFromSQLDB(db)                           // database/sql, e.g., with lib/pq
//	NewEngineFromSQLX(db)                            // sqlx
//
// The consistency level in the context decides how a unit of work runs. Strong consistency (the
// default) opens a transaction on the primary. Eventual consistency runs without transaction, reads
// from the replica if configured, and rejects updates with ErrReadOnlyUnitOfWork.
//
// Usage:
//
//	pg, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//	uow, err := pg.OpenUnitOfWork(ctx)
//	defer func() { _ = uow.Rollback(ctx) }()
//	count, err := engine.CountHistoricVariables(ctx, uow, query)
//	err = uow.Commit(ctx)
package postgresengine
