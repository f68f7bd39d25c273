// Package adapters provides database adapter implementations for the PostgreSQL engine.
//
// It supports pgxpool.Pool (optionally with a read replica), sql.DB and sqlx.DB behind
// the DBAdapter interface, including transactions on the primary.
package adapters
