package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/config"
	"github.com/AntonStoeckl/process-engine-kernel/engine"
	. "github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine" //nolint:revive
)

const (
	// DSNEnvVar holds the connection string of the test database. Tests skip when it is not set.
	DSNEnvVar = "ENGINE_TEST_DSN"

	// AdapterEnvVar selects the driver: "pgx" (default), "sql" or "sqlx".
	AdapterEnvVar = "ADAPTER_TYPE"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetEngine() *Engine
	Exec(t testing.TB, query string, args ...any)
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	pg   *Engine
}

func (w *PGXPoolWrapper) GetEngine() *Engine {
	return w.pg
}

func (w *PGXPoolWrapper) Exec(t testing.TB, query string, args ...any) {
	_, err := w.pool.Exec(context.Background(), query, args...)
	require.NoError(t, err, "error in arranging test data")
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db *sql.DB
	pg *Engine
}

func (w *SQLDBWrapper) GetEngine() *Engine {
	return w.pg
}

func (w *SQLDBWrapper) Exec(t testing.TB, query string, args ...any) {
	_, err := w.db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, "error in arranging test data")
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db *sqlx.DB
	pg *Engine
}

func (w *SQLXWrapper) GetEngine() *Engine {
	return w.pg
}

func (w *SQLXWrapper) Exec(t testing.TB, query string, args ...any) {
	_, err := w.db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, "error in arranging test data")
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper for the adapter selected by the environment,
// applies the schema and registers Close as a test cleanup.
func CreateWrapperWithTestConfig(t testing.TB, options ...Option) Wrapper {
	t.Helper()

	dsn := os.Getenv(DSNEnvVar)
	if dsn == "" {
		t.Skipf("%s is not set, skipping postgres integration test", DSNEnvVar)
	}

	ctx := context.Background()
	c := config.PostgresConfig{
		DSN:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
		ConnectTimeout:  5 * time.Second,
	}

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv(AdapterEnvVar)); adapterType {
	case config.DriverPGX, "":
		pool, err := config.OpenPGXPool(ctx, dsn, c)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		pg, err := NewEngineFromPGXPool(pool, options...)
		require.NoError(t, err, "error in arranging test data")
		wrapper = &PGXPoolWrapper{pool: pool, pg: pg}

	case config.DriverSQL:
		db, err := config.OpenSQLDB(ctx, c)
		require.NoError(t, err, "error connecting to DB in test setup")
		pg, err := NewEngineFromSQLDB(db, options...)
		require.NoError(t, err, "error in arranging test data")
		wrapper = &SQLDBWrapper{db: db, pg: pg}

	case config.DriverSQLX:
		db, err := config.OpenSQLX(ctx, c)
		require.NoError(t, err, "error connecting to DB in test setup")
		pg, err := NewEngineFromSQLX(db, options...)
		require.NoError(t, err, "error in arranging test data")
		wrapper = &SQLXWrapper{db: db, pg: pg}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	t.Cleanup(wrapper.Close)
	require.NoError(t, wrapper.GetEngine().ApplySchema(ctx), "error applying the schema in test setup")

	return wrapper
}

// CleanUp truncates the tables of the default table names.
func CleanUp(t testing.TB, wrapper Wrapper) {
	wrapper.Exec(t, "TRUNCATE TABLE historic_variables, deployments, process_definitions")
}

// GivenDeploymentInDB inserts a deployment row.
func GivenDeploymentInDB(t testing.TB, wrapper Wrapper, deployment *engine.Deployment) {
	wrapper.Exec(t,
		`INSERT INTO deployments (id, name, category, tenant_id, deploy_time) VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		deployment.ID, deployment.Name, deployment.Category, deployment.TenantID, deployment.DeploymentTime,
	)
}

// GivenHistoricVariableInDB inserts a historic variable row with its serialized value fields.
func GivenHistoricVariableInDB(t testing.TB, wrapper Wrapper, variable *engine.HistoricVariable) {
	var typeName any
	if variable.VariableType != nil {
		typeName = variable.VariableType.TypeName()
	}

	wrapper.Exec(t,
		`INSERT INTO historic_variables (
    id, process_instance_id, execution_id, task_id, activity_instance_id, name, var_type, revision,
    text_value, text_value2, long_value, double_value, bytes, create_time
) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		variable.ID, variable.ProcessInstanceID, variable.ExecutionID, variable.TaskID, variable.ActivityInstanceID,
		variable.Name, typeName, variable.Revision,
		variable.Fields.TextValue, variable.Fields.TextValue2, variable.Fields.LongValue, variable.Fields.DoubleValue,
		variable.Fields.Bytes, variable.CreateTime,
	)
}
