package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrApplyingSchemaFailed is returned when one of the schema statements fails.
var ErrApplyingSchemaFailed = errors.New("applying schema failed")

// SchemaStatements returns the DDL statements for the configured table names, in execution order.
// All statements are idempotent.
func (e *Engine) SchemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    name TEXT,
    category TEXT,
    tenant_id TEXT,
    deploy_time TIMESTAMPTZ NOT NULL DEFAULT now()
)`, e.deploymentTableName),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    proc_key TEXT NOT NULL,
    name TEXT,
    version INTEGER NOT NULL,
    category TEXT,
    deployment_id TEXT NOT NULL,
    tenant_id TEXT,
    form_key TEXT
)`, e.processDefinitionTableName),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    process_instance_id TEXT,
    execution_id TEXT,
    task_id TEXT,
    activity_instance_id TEXT,
    name TEXT NOT NULL,
    var_type TEXT,
    revision INTEGER NOT NULL DEFAULT 0,
    text_value TEXT,
    text_value2 TEXT,
    long_value BIGINT,
    double_value DOUBLE PRECISION,
    bytes BYTEA,
    create_time TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_updated_time TIMESTAMPTZ
)`, e.historicVariableTableName),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_process_instance_id_idx ON %[1]s (process_instance_id)`,
			e.historicVariableTableName),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_name_idx ON %[1]s (name)`,
			e.historicVariableTableName),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_task_id_idx ON %[1]s (task_id)`,
			e.historicVariableTableName),
	}
}

// ApplySchema creates the tables and indexes in one transaction on the primary.
func (e *Engine) ApplySchema(ctx context.Context) error {
	observer, ctx := e.observe(ctx, operationApplySchema, metricUpdateDuration, e.historicVariableTableName)

	tx, beginErr := e.db.Begin(ctx)
	if beginErr != nil {
		e.logError(ctx, logMsgBeginFailed, beginErr)
		observer.fail(errorTypeDatabaseBegin)

		return errors.Join(ErrBeginningTransactionFailed, beginErr)
	}

	statements := e.SchemaStatements()
	for _, statement := range statements {
		start := time.Now()
		_, execErr := tx.Exec(ctx, statement)
		e.logSQL(ctx, statement, operationApplySchema, time.Since(start))

		if execErr != nil {
			e.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			observer.fail(errorTypeDatabaseExec)

			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				e.logError(ctx, logMsgRollbackFailed, rollbackErr)
			}

			return errors.Join(ErrApplyingSchemaFailed, execErr)
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		e.logError(ctx, logMsgCommitFailed, commitErr)
		observer.fail(errorTypeDatabaseCommit)

		return errors.Join(ErrCommittingFailed, commitErr)
	}

	observer.succeed(int64(len(statements)))

	return nil
}
