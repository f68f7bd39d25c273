package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const sqlDriverName = "postgres"

var ErrConnectingFailed = errors.New("connecting to postgres failed")

// sqlPool is implemented by *sql.DB and *sqlx.DB.
type sqlPool interface {
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	SetConnMaxIdleTime(d time.Duration)
	PingContext(ctx context.Context) error
	Close() error
}

// PGXPoolConfig parses dsn and applies the pool settings. It does not connect.
func PGXPoolConfig(dsn string, c PostgresConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	poolConfig.MaxConns = int32(c.MaxConns) //nolint:gosec
	poolConfig.MinConns = int32(c.MinConns) //nolint:gosec
	poolConfig.MaxConnLifetime = c.MaxConnLifetime
	poolConfig.MaxConnIdleTime = c.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = c.ConnectTimeout

	return poolConfig, nil
}

// OpenPGXPool creates a pgx pool for dsn and pings it.
func OpenPGXPool(ctx context.Context, dsn string, c PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := PGXPoolConfig(dsn, c)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return pool, nil
}

// OpenSQLDB opens a database/sql pool using the lib/pq driver and pings it.
func OpenSQLDB(ctx context.Context, c PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open(sqlDriverName, c.DSN)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if err = configureSQLPool(ctx, db, c); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLX opens a sqlx pool using the lib/pq driver and pings it.
func OpenSQLX(ctx context.Context, c PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqlDriverName, c.DSN)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if err = configureSQLPool(ctx, db, c); err != nil {
		return nil, err
	}

	return db, nil
}

// configureSQLPool applies the pool settings, MinConns becomes the idle connection limit.
func configureSQLPool(ctx context.Context, db sqlPool, c PostgresConfig) error {
	db.SetMaxOpenConns(c.MaxConns)
	db.SetMaxIdleConns(c.MinConns)
	db.SetConnMaxLifetime(c.MaxConnLifetime)
	db.SetConnMaxIdleTime(c.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return errors.Join(ErrConnectingFailed, fmt.Errorf("ping: %w", err))
	}

	return nil
}
