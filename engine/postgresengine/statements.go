package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine/internal/adapters"
)

// runQuery executes a select statement, logging the SQL and failing the observer on error.
func (e *Engine) runQuery(
	ctx context.Context,
	querier adapters.DBQuerier,
	sqlQuery string,
	observer *operationObserver,
) (adapters.DBRows, error) {

	start := time.Now()
	rows, queryErr := querier.Query(ctx, sqlQuery)
	e.logSQL(ctx, sqlQuery, observer.operation, time.Since(start))

	if queryErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.fail(errorTypeDatabaseQuery)

		return nil, errors.Join(engine.ErrQueryingFailed, queryErr)
	}

	return rows, nil
}

// runExec executes a data-modifying statement and returns the number of affected rows.
func (e *Engine) runExec(
	ctx context.Context,
	querier adapters.DBQuerier,
	sqlQuery string,
	observer *operationObserver,
) (int64, error) {

	start := time.Now()
	result, execErr := querier.Exec(ctx, sqlQuery)
	e.logSQL(ctx, sqlQuery, observer.operation, time.Since(start))

	if execErr != nil {
		e.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		observer.fail(errorTypeDatabaseExec)

		return 0, errors.Join(engine.ErrUpdatingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logError(ctx, logMsgRowsAffected, rowsAffectedErr)
		observer.fail(errorTypeRowsAffected)

		return 0, errors.Join(engine.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (e *Engine) buildFailed(ctx context.Context, err error, observer *operationObserver) error {
	e.logError(ctx, logMsgBuildQueryFailed, err, spanAttrOperation, observer.operation)
	observer.fail(errorTypeBuildQuery)

	return errors.Join(engine.ErrBuildingQueryFailed, err)
}

func (e *Engine) scanFailed(ctx context.Context, err error, observer *operationObserver) error {
	e.logError(ctx, logMsgScanRowFailed, err, spanAttrOperation, observer.operation)
	observer.fail(errorTypeRowScan)

	return errors.Join(engine.ErrScanningDBRowFailed, err)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
