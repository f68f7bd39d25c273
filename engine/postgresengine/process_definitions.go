package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine/internal/adapters"
)

const (
	colProcKey      = "proc_key"
	colVersion      = "version"
	colDeploymentID = "deployment_id"
	colFormKey      = "form_key"
)

type processDefinitionRepository struct {
	uow *UnitOfWork
}

func (r processDefinitionRepository) FindDeployedProcessDefinitionByID(
	ctx context.Context,
	processDefinitionID string,
) (*engine.ProcessDefinition, error) {

	if err := r.uow.checkOpen(); err != nil {
		return nil, err
	}

	return r.uow.engine.findProcessDefinitionByID(ctx, r.uow.querier, processDefinitionID)
}

func (e *Engine) findProcessDefinitionByID(
	ctx context.Context,
	querier adapters.DBQuerier,
	processDefinitionID string,
) (*engine.ProcessDefinition, error) {

	observer, ctx := e.observe(ctx, operationFindProcessDefinition, metricQueryDuration, e.processDefinitionTableName)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(e.processDefinitionTableName).
		Select(colID, colProcKey, colName, colVersion, colCategory, colDeploymentID, colTenantID, colFormKey).
		Where(goqu.C(colID).Eq(processDefinitionID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, e.buildFailed(ctx, toSQLErr, observer)
	}

	rows, queryErr := e.runQuery(ctx, querier, sqlQuery, observer)
	if queryErr != nil {
		return nil, queryErr
	}
	defer e.closeRows(ctx, rows)

	var definition *engine.ProcessDefinition
	for rows.Next() {
		var (
			pd                                engine.ProcessDefinition
			name, category, tenantID, formKey *string
		)

		scanErr := rows.Scan(&pd.ID, &pd.Key, &name, &pd.Version, &category, &pd.DeploymentID, &tenantID, &formKey)
		if scanErr != nil {
			return nil, e.scanFailed(ctx, scanErr, observer)
		}

		pd.Name = stringOrEmpty(name)
		pd.Category = stringOrEmpty(category)
		pd.TenantID = stringOrEmpty(tenantID)

		if formKey != nil && *formKey != "" {
			pd.StartFormHandler = engine.DefaultStartFormHandler{FormKey: *formKey}
		}

		definition = &pd
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, e.scanFailed(ctx, rowsErr, observer)
	}

	if definition == nil {
		observer.succeed(0)
		return nil, nil //nolint:nilnil
	}

	observer.succeed(1)

	return definition, nil
}
