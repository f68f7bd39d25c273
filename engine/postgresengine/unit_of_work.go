package postgresengine

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine/internal/adapters"
)

// UnitOfWork implements engine.CommandContext for exactly one command.
// It must not be shared across goroutines.
type UnitOfWork struct {
	engine      *Engine
	querier     adapters.DBQuerier
	tx          adapters.DBTx
	consistency engine.ConsistencyLevel
	closed      bool
}

func (u *UnitOfWork) Deployments() engine.DeploymentEntityManager {
	return deploymentEntityManager{uow: u}
}

func (u *UnitOfWork) ProcessDefinitions() engine.ProcessDefinitionRepository {
	return processDefinitionRepository{uow: u}
}

func (u *UnitOfWork) HistoricVariables() engine.HistoricVariableEntityManager {
	return historicVariableEntityManager{uow: u}
}

func (u *UnitOfWork) Configuration() engine.EngineConfiguration {
	return u.engine.Configuration()
}

func (u *UnitOfWork) EventDispatcher() engine.EventDispatcher {
	return u.engine.eventDispatcher
}

// Consistency returns the consistency level the unit of work was opened with.
func (u *UnitOfWork) Consistency() engine.ConsistencyLevel {
	return u.consistency
}

// Commit commits the transaction. Without transaction it only closes the unit of work.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}

	u.closed = true

	if u.tx == nil {
		return nil
	}

	if err := u.tx.Commit(ctx); err != nil {
		u.engine.logError(ctx, logMsgCommitFailed, err)
		u.engine.recordErrorMetrics(ctx, operationCommit, errorTypeDatabaseCommit)

		return errors.Join(ErrCommittingFailed, err)
	}

	return nil
}

// Rollback rolls the transaction back. Calling it on a closed unit of work is a no-op,
// so it can be deferred unconditionally.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.closed {
		return nil
	}

	u.closed = true

	if u.tx == nil {
		return nil
	}

	if err := u.tx.Rollback(ctx); err != nil {
		u.engine.logError(ctx, logMsgRollbackFailed, err)

		return errors.Join(ErrRollingBackFailed, err)
	}

	return nil
}

func (u *UnitOfWork) checkOpen() error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}

	return nil
}

func (u *UnitOfWork) checkWritable() error {
	if err := u.checkOpen(); err != nil {
		return err
	}

	if u.tx == nil {
		return ErrReadOnlyUnitOfWork
	}

	return nil
}
