package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

const (
	colID                 = "id"
	colProcessInstanceID  = "process_instance_id"
	colExecutionID        = "execution_id"
	colTaskID             = "task_id"
	colActivityInstanceID = "activity_instance_id"
	colName               = "name"
	colVarType            = "var_type"
	colRevision           = "revision"
	colTextValue          = "text_value"
	colTextValue2         = "text_value2"
	colLongValue          = "long_value"
	colDoubleValue        = "double_value"
	colBytes              = "bytes"
	colCreateTime         = "create_time"
	colLastUpdatedTime    = "last_updated_time"
	funcLower             = "LOWER"
)

var historicVariableColumns = []any{
	colID, colProcessInstanceID, colExecutionID, colTaskID, colActivityInstanceID, colName, colVarType,
	colRevision, colTextValue, colTextValue2, colLongValue, colDoubleValue, colBytes, colCreateTime,
	colLastUpdatedTime,
}

// orderColumns maps query property tokens to columns.
var orderColumns = map[engine.QueryProperty]string{
	engine.QueryPropertyProcessInstanceID: colProcessInstanceID,
	engine.QueryPropertyVariableName:      colName,
}

type historicVariableEntityManager struct {
	uow *UnitOfWork
}

func (m historicVariableEntityManager) FindHistoricVariableCountByQueryCriteria(
	ctx context.Context,
	query engine.HistoricVariableQuery,
) (int64, error) {

	return m.uow.engine.countHistoricVariables(ctx, m.uow, query)
}

func (m historicVariableEntityManager) FindHistoricVariablesByQueryCriteria(
	ctx context.Context,
	query engine.HistoricVariableQuery,
	page engine.Page,
) ([]*engine.HistoricVariable, error) {

	return m.uow.engine.listHistoricVariables(ctx, m.uow, query, page)
}

func (e *Engine) countHistoricVariables(
	ctx context.Context,
	uow *UnitOfWork,
	query engine.HistoricVariableQuery,
) (int64, error) {

	observer, ctx := e.observe(ctx, operationCountHistoricVariables, metricQueryDuration, e.historicVariableTableName)

	if err := uow.checkOpen(); err != nil {
		observer.fail(errorTypeUnitOfWorkState)
		return 0, err
	}

	sqlQuery, buildErr := e.buildHistoricVariableCountQuery(query)
	if buildErr != nil {
		return 0, e.buildFailed(ctx, buildErr, observer)
	}

	rows, queryErr := e.runQuery(ctx, uow.querier, sqlQuery, observer)
	if queryErr != nil {
		return 0, queryErr
	}
	defer e.closeRows(ctx, rows)

	var count int64
	for rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, e.scanFailed(ctx, scanErr, observer)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, e.scanFailed(ctx, rowsErr, observer)
	}

	observer.succeed(1, "count", count)

	return count, nil
}

func (e *Engine) listHistoricVariables(
	ctx context.Context,
	uow *UnitOfWork,
	query engine.HistoricVariableQuery,
	page engine.Page,
) ([]*engine.HistoricVariable, error) {

	observer, ctx := e.observe(ctx, operationListHistoricVariables, metricQueryDuration, e.historicVariableTableName)

	if err := uow.checkOpen(); err != nil {
		observer.fail(errorTypeUnitOfWorkState)
		return nil, err
	}

	sqlQuery, buildErr := e.buildHistoricVariableSelectQuery(query, page)
	if buildErr != nil {
		return nil, e.buildFailed(ctx, buildErr, observer)
	}

	rows, queryErr := e.runQuery(ctx, uow.querier, sqlQuery, observer)
	if queryErr != nil {
		return nil, queryErr
	}
	defer e.closeRows(ctx, rows)

	variables := make([]*engine.HistoricVariable, 0)
	for rows.Next() {
		variable, scanErr := e.scanHistoricVariable(rows.Scan)
		if scanErr != nil {
			if errors.Is(scanErr, engine.ErrUnknownVariableType) {
				e.logError(ctx, logMsgUnknownType, scanErr)
				observer.fail(errorTypeUnknownType)

				return nil, scanErr
			}

			return nil, e.scanFailed(ctx, scanErr, observer)
		}

		variables = append(variables, variable)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, e.scanFailed(ctx, rowsErr, observer)
	}

	observer.succeed(int64(len(variables)))

	return variables, nil
}

func (e *Engine) scanHistoricVariable(scan func(dest ...any) error) (*engine.HistoricVariable, error) {
	var (
		v                                                      engine.HistoricVariable
		processInstanceID, executionID, taskID, activityInstID *string
		varType                                                *string
		lastUpdatedTime                                        *time.Time
	)

	err := scan(
		&v.ID, &processInstanceID, &executionID, &taskID, &activityInstID, &v.Name, &varType,
		&v.Revision, &v.Fields.TextValue, &v.Fields.TextValue2, &v.Fields.LongValue, &v.Fields.DoubleValue,
		&v.Fields.Bytes, &v.CreateTime, &lastUpdatedTime,
	)
	if err != nil {
		return nil, err
	}

	v.ProcessInstanceID = stringOrEmpty(processInstanceID)
	v.ExecutionID = stringOrEmpty(executionID)
	v.TaskID = stringOrEmpty(taskID)
	v.ActivityInstanceID = stringOrEmpty(activityInstID)

	if lastUpdatedTime != nil {
		v.LastUpdatedTime = *lastUpdatedTime
	}

	if varType != nil {
		variableType, ok := e.Configuration().VariableTypes().Resolve(*varType)
		if !ok {
			return nil, errors.Join(engine.ErrUnknownVariableType, fmt.Errorf("type name '%s' of variable %s", *varType, v.ID))
		}

		v.VariableType = variableType
	}

	return &v, nil
}

func (e *Engine) buildHistoricVariableCountQuery(query engine.HistoricVariableQuery) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(e.historicVariableTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(historicVariableConditions(query)...)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}

func (e *Engine) buildHistoricVariableSelectQuery(query engine.HistoricVariableQuery, page engine.Page) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(e.historicVariableTableName).
		Select(historicVariableColumns...).
		Where(historicVariableConditions(query)...)

	for _, ordering := range query.Orderings() {
		column, ok := orderColumns[ordering.Property]
		if !ok {
			return "", fmt.Errorf("unknown query property: %s", ordering.Property)
		}

		if ordering.Direction == engine.Descending {
			selectStmt = selectStmt.OrderAppend(goqu.C(column).Desc())
		} else {
			selectStmt = selectStmt.OrderAppend(goqu.C(column).Asc())
		}
	}

	// a stable tie-breaker keeps pages disjoint
	selectStmt = selectStmt.OrderAppend(goqu.C(colID).Asc())

	if page.HasLimit() {
		selectStmt = selectStmt.Limit(uint(page.MaxResults))
	}

	if page.Offset > 0 {
		selectStmt = selectStmt.Offset(uint(page.Offset))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}

func historicVariableConditions(query engine.HistoricVariableQuery) []exp.Expression {
	conditions := make([]exp.Expression, 0)

	if query.ID() != "" {
		conditions = append(conditions, goqu.C(colID).Eq(query.ID()))
	}

	if query.ProcessInstanceID() != "" {
		conditions = append(conditions, goqu.C(colProcessInstanceID).Eq(query.ProcessInstanceID()))
	}

	if query.TaskID() != "" {
		conditions = append(conditions, goqu.C(colTaskID).Eq(query.TaskID()))
	}

	if query.ExcludeTaskRelated() {
		conditions = append(conditions, goqu.C(colTaskID).IsNull())
	}

	if query.ActivityInstanceID() != "" {
		conditions = append(conditions, goqu.C(colActivityInstanceID).Eq(query.ActivityInstanceID()))
	}

	if query.VariableName() != "" {
		conditions = append(conditions, goqu.C(colName).Eq(query.VariableName()))
	}

	if query.VariableNameLike() != "" {
		conditions = append(conditions, goqu.C(colName).Like(query.VariableNameLike()))
	}

	if predicate, ok := query.ValuePredicate(); ok && predicate.IsInitialized() {
		conditions = append(conditions, valuePredicateCondition(predicate))
	}

	return conditions
}

func valuePredicateCondition(predicate engine.TypedValuePredicate) exp.Expression {
	fields := predicate.Fields()
	typeCondition := goqu.C(colVarType).Eq(predicate.TypeName())

	switch predicate.Operator() {
	case engine.OperatorLike:
		return goqu.And(typeCondition, goqu.C(colTextValue).Like(stringOrEmpty(fields.TextValue)))

	case engine.OperatorLikeIgnoreCase:
		return goqu.And(typeCondition, goqu.Func(funcLower, goqu.C(colTextValue)).Like(stringOrEmpty(fields.TextValue)))
	}

	valueConditions := make([]exp.Expression, 0, 4)

	if fields.TextValue != nil {
		valueConditions = append(valueConditions, goqu.C(colTextValue).Eq(*fields.TextValue))
	}

	if fields.TextValue2 != nil {
		valueConditions = append(valueConditions, goqu.C(colTextValue2).Eq(*fields.TextValue2))
	}

	if fields.LongValue != nil {
		valueConditions = append(valueConditions, goqu.C(colLongValue).Eq(*fields.LongValue))
	}

	if fields.DoubleValue != nil {
		valueConditions = append(valueConditions, goqu.C(colDoubleValue).Eq(*fields.DoubleValue))
	}

	if predicate.Operator() == engine.OperatorNotEquals && len(valueConditions) > 0 {
		return goqu.And(typeCondition, goqu.L("NOT ?", goqu.And(valueConditions...)))
	}

	return goqu.And(append([]exp.Expression{typeCondition}, valueConditions...)...)
}
