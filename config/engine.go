package config

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine"
)

// EngineOptions translates the table and event settings into postgresengine options.
// dispatcher is only used when events are enabled.
func (c Config) EngineOptions(dispatcher engine.EventDispatcher) []postgresengine.Option {
	return []postgresengine.Option{
		postgresengine.WithHistoricVariableTableName(c.Tables.HistoricVariables),
		postgresengine.WithDeploymentTableName(c.Tables.Deployments),
		postgresengine.WithProcessDefinitionTableName(c.Tables.ProcessDefinitions),
		postgresengine.WithEventDispatcher(engine.EventDispatcherFor(c.Events.Enabled, dispatcher)),
	}
}

// OpenEngine connects with the configured driver and creates the postgres engine.
// The returned close function releases all connections. options are applied after EngineOptions.
func OpenEngine(
	ctx context.Context,
	c Config,
	dispatcher engine.EventDispatcher,
	options ...postgresengine.Option,
) (*postgresengine.Engine, func(), error) {

	if c.Postgres.DSN == "" {
		return nil, nil, errors.Join(ErrInvalidConfig, errors.New("postgres.dsn must be set"))
	}

	options = append(c.EngineOptions(dispatcher), options...)

	switch c.Postgres.Driver {
	case DriverSQL:
		db, err := OpenSQLDB(ctx, c.Postgres)
		if err != nil {
			return nil, nil, err
		}

		pg, err := postgresengine.NewEngineFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return pg, func() { _ = db.Close() }, nil

	case DriverSQLX:
		db, err := OpenSQLX(ctx, c.Postgres)
		if err != nil {
			return nil, nil, err
		}

		pg, err := postgresengine.NewEngineFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return pg, func() { _ = db.Close() }, nil

	default:
		return openPGXEngine(ctx, c, options)
	}
}

func openPGXEngine(ctx context.Context, c Config, options []postgresengine.Option) (*postgresengine.Engine, func(), error) {
	primary, err := OpenPGXPool(ctx, c.Postgres.DSN, c.Postgres)
	if err != nil {
		return nil, nil, err
	}

	if c.Postgres.ReplicaDSN == "" {
		pg, err := postgresengine.NewEngineFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return nil, nil, err
		}

		return pg, primary.Close, nil
	}

	replica, err := OpenPGXPool(ctx, c.Postgres.ReplicaDSN, c.Postgres)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		primary.Close()
	}

	pg, err := postgresengine.NewEngineFromPGXPoolAndReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return pg, closeAll, nil
}
