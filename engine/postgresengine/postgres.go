package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine/internal/adapters"
)

const (
	defaultHistoricVariableTableName  = "historic_variables"
	defaultDeploymentTableName        = "deployments"
	defaultProcessDefinitionTableName = "process_definitions"
	dialectPostgres                   = "postgres"
)

var (
	ErrBeginningTransactionFailed = errors.New("beginning transaction failed")
	ErrCommittingFailed           = errors.New("committing transaction failed")
	ErrRollingBackFailed          = errors.New("rolling back transaction failed")
	ErrUnitOfWorkClosed           = errors.New("unit of work is already closed")
	ErrReadOnlyUnitOfWork         = errors.New("unit of work is read-only, it runs with eventual consistency")
	ErrUnsupportedEntityKind      = errors.New("entity kind cannot be resolved by the postgres engine")
)

// Engine is the PostgreSQL persistence collaborator of the kernel.
// It opens units of work which implement engine.CommandContext.
type Engine struct {
	db                         adapters.DBAdapter
	historicVariableTableName  string
	deploymentTableName        string
	processDefinitionTableName string
	configuration              *engine.EngineConfiguration
	eventDispatcher            engine.EventDispatcher
	logger                     engine.Logger
	contextualLogger           engine.ContextualLogger
	metricsCollector           engine.MetricsCollector
	tracingCollector           engine.TracingCollector
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, engine.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromPGXPoolAndReplica creates a new Engine using a primary pgx Pool and a replica Pool.
// Units of work with eventual consistency read from the replica.
func NewEngineFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil || replica == nil {
		return nil, engine.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, engine.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, engine.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	e := &Engine{
		db:                         db,
		historicVariableTableName:  defaultHistoricVariableTableName,
		deploymentTableName:        defaultDeploymentTableName,
		processDefinitionTableName: defaultProcessDefinitionTableName,
		eventDispatcher:            engine.DisabledEventDispatcher(),
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	if e.configuration == nil {
		configuration, err := engine.NewEngineConfiguration(
			engine.WithVariableTypes(engine.NewDefaultVariableTypes(e)),
		)
		if err != nil {
			return nil, err
		}

		e.configuration = &configuration
	}

	return e, nil
}

// Configuration returns the configuration handed to commands.
func (e *Engine) Configuration() engine.EngineConfiguration {
	return *e.configuration
}

// OpenUnitOfWork opens a unit of work for one command.
//
// With engine.StrongConsistency (the default) it starts a transaction on the primary, which the caller
// must end with Commit or Rollback. With engine.EventualConsistency it runs without transaction,
// reads from the replica if one is configured and rejects mutations.
func (e *Engine) OpenUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	consistency := engine.GetConsistencyLevel(ctx)

	if consistency == engine.EventualConsistency {
		return &UnitOfWork{engine: e, querier: e.db, consistency: consistency}, nil
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		e.logError(ctx, logMsgBeginFailed, err)
		e.recordErrorMetrics(ctx, operationBegin, errorTypeDatabaseBegin)

		return nil, errors.Join(ErrBeginningTransactionFailed, err)
	}

	return &UnitOfWork{engine: e, querier: tx, tx: tx, consistency: consistency}, nil
}

// ResolveEntity implements engine.EntityResolver for deployments and process definitions,
// outside any unit of work.
func (e *Engine) ResolveEntity(ctx context.Context, kind engine.EntityKind, id string) (engine.Entity, error) {
	switch kind {
	case engine.KindDeployment:
		deployment, err := e.findDeploymentByID(ctx, e.db, id)
		if deployment == nil || err != nil {
			return nil, err
		}

		return deployment, nil

	case engine.KindProcessDefinition:
		definition, err := e.findProcessDefinitionByID(ctx, e.db, id)
		if definition == nil || err != nil {
			return nil, err
		}

		return definition, nil

	default:
		return nil, errors.Join(ErrUnsupportedEntityKind, fmt.Errorf("kind: %s", kind))
	}
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}
