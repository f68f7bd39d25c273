package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine/internal/adapters"
)

const (
	colCategory   = "category"
	colTenantID   = "tenant_id"
	colDeployTime = "deploy_time"
)

type deploymentEntityManager struct {
	uow *UnitOfWork
}

func (m deploymentEntityManager) FindDeploymentByID(ctx context.Context, deploymentID string) (*engine.Deployment, error) {
	if err := m.uow.checkOpen(); err != nil {
		return nil, err
	}

	return m.uow.engine.findDeploymentByID(ctx, m.uow.querier, deploymentID)
}

func (m deploymentEntityManager) UpdateDeployment(ctx context.Context, deployment *engine.Deployment) error {
	return m.uow.engine.updateDeployment(ctx, m.uow, deployment)
}

func (e *Engine) findDeploymentByID(
	ctx context.Context,
	querier adapters.DBQuerier,
	deploymentID string,
) (*engine.Deployment, error) {

	observer, ctx := e.observe(ctx, operationFindDeployment, metricQueryDuration, e.deploymentTableName)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(e.deploymentTableName).
		Select(colID, colName, colCategory, colTenantID, colDeployTime).
		Where(goqu.C(colID).Eq(deploymentID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, e.buildFailed(ctx, toSQLErr, observer)
	}

	rows, queryErr := e.runQuery(ctx, querier, sqlQuery, observer)
	if queryErr != nil {
		return nil, queryErr
	}
	defer e.closeRows(ctx, rows)

	var deployment *engine.Deployment
	for rows.Next() {
		var (
			d                        engine.Deployment
			name, category, tenantID *string
		)

		if scanErr := rows.Scan(&d.ID, &name, &category, &tenantID, &d.DeploymentTime); scanErr != nil {
			return nil, e.scanFailed(ctx, scanErr, observer)
		}

		d.Name = stringOrEmpty(name)
		d.Category = stringOrEmpty(category)
		d.TenantID = stringOrEmpty(tenantID)
		deployment = &d
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, e.scanFailed(ctx, rowsErr, observer)
	}

	if deployment == nil {
		observer.succeed(0)
		return nil, nil //nolint:nilnil
	}

	observer.succeed(1)

	return deployment, nil
}

func (e *Engine) updateDeployment(ctx context.Context, uow *UnitOfWork, deployment *engine.Deployment) error {
	observer, ctx := e.observe(ctx, operationUpdateDeployment, metricUpdateDuration, e.deploymentTableName)

	if deployment == nil {
		observer.fail(errorTypeBuildQuery)
		return engine.NewInvalidArgumentError("deployment is null")
	}

	if err := uow.checkWritable(); err != nil {
		if errors.Is(err, ErrReadOnlyUnitOfWork) {
			observer.fail(errorTypeReadOnly)
		} else {
			observer.fail(errorTypeUnitOfWorkState)
		}

		return err
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(e.deploymentTableName).
		Set(goqu.Record{
			colName:     nullableString(deployment.Name),
			colCategory: nullableString(deployment.Category),
			colTenantID: nullableString(deployment.TenantID),
		}).
		Where(goqu.C(colID).Eq(deployment.ID))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return e.buildFailed(ctx, toSQLErr, observer)
	}

	rowsAffected, execErr := e.runExec(ctx, uow.querier, sqlQuery, observer)
	if execErr != nil {
		return execErr
	}

	if rowsAffected < 1 {
		observer.conflict(deployment.ID)
		return errors.Join(engine.ErrConcurrencyConflict, fmt.Errorf("deployment %s", deployment.ID))
	}

	observer.succeed(rowsAffected, logAttrEntityID, deployment.ID)

	return nil
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
