package postgresengine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	metricQueryDuration        = "process_engine_query_duration_seconds"
	metricUpdateDuration       = "process_engine_update_duration_seconds"
	metricRowsReturned         = "process_engine_rows_returned"
	metricDatabaseErrors       = "process_engine_database_errors_total"
	metricConcurrencyConflicts = "process_engine_concurrency_conflicts_total"

	operationCountHistoricVariables = "historic_variables_count"
	operationListHistoricVariables  = "historic_variables_list"
	operationFindDeployment         = "deployment_find"
	operationUpdateDeployment       = "deployment_update"
	operationFindProcessDefinition  = "process_definition_find"
	operationBegin                  = "begin"
	operationCommit                 = "commit"
	operationApplySchema            = "schema_apply"

	spanNamePrefix       = "process_engine."
	spanAttrOperation    = "operation"
	spanAttrTable        = "db.table"
	spanAttrRows         = "db.rows"
	spanAttrErrorType    = "error_type"
	spanAttrDurationMS   = "duration_ms"
	spanAttrConsistency  = "consistency"
	labelStatus          = "status"
	labelConflictType    = "conflict_type"
	conflictTypeRevision = "rows_affected"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery      = "build_query"
	errorTypeDatabaseQuery   = "database_query"
	errorTypeDatabaseExec    = "database_exec"
	errorTypeRowScan         = "row_scan"
	errorTypeRowsAffected    = "rows_affected"
	errorTypeUnknownType     = "unknown_variable_type"
	errorTypeConcurrency     = "concurrency_conflict"
	errorTypeDatabaseBegin   = "database_begin"
	errorTypeDatabaseCommit  = "database_commit"
	errorTypeReadOnly        = "read_only"
	errorTypeUnitOfWorkState = "unit_of_work_closed"

	logMsgBuildQueryFailed = "failed to build query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgDBExecFailed     = "database execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgRowsAffected     = "failed to get rows affected count"
	logMsgUnknownType      = "unknown variable type in database row"
	logMsgBeginFailed      = "failed to begin transaction"
	logMsgCommitFailed     = "failed to commit transaction"
	logMsgRollbackFailed   = "failed to roll back transaction"
	logMsgConflict         = "concurrency conflict detected"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgOperation        = "process engine operation: "
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"
	logAttrRowCount        = "row_count"
	logAttrEntityID        = "entity_id"
)

// operationObserver bundles tracing, metrics and operational logging of one database operation.
type operationObserver struct {
	e         *Engine
	ctx       context.Context
	operation string
	metric    string
	span      engine.SpanContext
	start     time.Time
}

// observe starts the span for an operation and returns the context to run it with.
func (e *Engine) observe(
	ctx context.Context,
	operation string,
	metric string,
	table string,
) (*operationObserver, context.Context) {

	spanCtx := ctx
	var span engine.SpanContext

	if e.tracingCollector != nil {
		spanCtx, span = e.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
			spanAttrOperation:   operation,
			spanAttrTable:       table,
			spanAttrConsistency: engine.GetConsistencyLevel(ctx).String(),
		})
	}

	return &operationObserver{
		e:         e,
		ctx:       spanCtx,
		operation: operation,
		metric:    metric,
		span:      span,
		start:     time.Now(),
	}, spanCtx
}

// succeed records the successful operation affecting or returning rows.
func (o *operationObserver) succeed(rows int64, logArgs ...any) {
	duration := time.Since(o.start)

	o.e.recordDuration(o.ctx, o.metric, duration, o.operation, statusSuccess)
	o.e.recordValue(o.ctx, metricRowsReturned, float64(rows), o.operation, statusSuccess)

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	}

	o.e.finishSpan(o.span, statusSuccess, map[string]string{spanAttrRows: strconv.FormatInt(rows, 10)})

	args := append([]any{logAttrRowCount, rows, logAttrDurationMS, toMilliseconds(duration)}, logArgs...)
	o.e.logOperation(o.ctx, o.operation, args...)
}

// fail records the failed operation.
func (o *operationObserver) fail(errorType string) {
	duration := time.Since(o.start)

	o.e.recordDuration(o.ctx, o.metric, duration, o.operation, statusError)
	o.e.recordErrorMetrics(o.ctx, o.operation, errorType)

	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	}

	o.e.finishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// conflict records a concurrency conflict and fails the operation.
func (o *operationObserver) conflict(entityID string) {
	o.e.logOperation(o.ctx, logMsgConflict, spanAttrOperation, o.operation, logAttrEntityID, entityID)

	if o.e.metricsCollector != nil {
		labels := map[string]string{spanAttrOperation: o.operation, labelConflictType: conflictTypeRevision}

		if contextual, ok := o.e.metricsCollector.(engine.ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(o.ctx, metricConcurrencyConflicts, labels)
		} else {
			o.e.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
		}
	}

	o.fail(errorTypeConcurrency)
}

func (e *Engine) finishSpan(span engine.SpanContext, status string, attrs map[string]string) {
	if e.tracingCollector != nil && span != nil {
		e.tracingCollector.FinishSpan(span, status, attrs)
	}
}

func (e *Engine) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextual, ok := e.metricsCollector.(engine.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		e.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (e *Engine) recordValue(ctx context.Context, metric string, value float64, operation, status string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextual, ok := e.metricsCollector.(engine.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
	} else {
		e.metricsCollector.RecordValue(metric, value, labels)
	}
}

func (e *Engine) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: statusError, spanAttrErrorType: errorType}

	if contextual, ok := e.metricsCollector.(engine.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		e.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// logSQL logs SQL statements with execution time at debug level.
func (e *Engine) logSQL(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+operation, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (e *Engine) logOperation(ctx context.Context, operation string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+operation, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+operation, args...)
	}
}

// logError logs error information at error level.
func (e *Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

func (e *Engine) logWarn(ctx context.Context, message string, err error) {
	if e.logger != nil {
		e.logger.Warn(message, logAttrError, err.Error())
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}
