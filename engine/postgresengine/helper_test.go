package postgresengine_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine"
)

var historicVariableRowColumns = []string{
	"id", "process_instance_id", "execution_id", "task_id", "activity_instance_id", "name", "var_type",
	"revision", "text_value", "text_value2", "long_value", "double_value", "bytes", "create_time",
	"last_updated_time",
}

func givenMockedEngine(t *testing.T, options ...postgresengine.Option) (*postgresengine.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	pg, err := postgresengine.NewEngineFromSQLDB(db, options...)
	require.NoError(t, err, "error in arranging test data")

	return pg, mock
}
