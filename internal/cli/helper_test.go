package cli_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/config"
	"github.com/AntonStoeckl/process-engine-kernel/engine/postgresengine"
	"github.com/AntonStoeckl/process-engine-kernel/internal/cli"
)

var historicVariableRowColumns = []string{
	"id", "process_instance_id", "execution_id", "task_id", "activity_instance_id", "name", "var_type",
	"revision", "text_value", "text_value2", "long_value", "double_value", "bytes", "create_time",
	"last_updated_time",
}

var deploymentRowColumns = []string{"id", "name", "category", "tenant_id", "deploy_time"}

// givenMockedOpener returns a RuntimeOpener creating the engine over sqlmock with the loaded configuration.
func givenMockedOpener(t *testing.T) (cli.RuntimeOpener, sqlmock.Sqlmock, *int) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "error in arranging test data")
	t.Cleanup(func() { _ = db.Close() })

	opened := 0
	opener := func(_ context.Context, cfg config.Config, _ io.Writer) (*cli.Runtime, error) {
		opened++

		pg, err := postgresengine.NewEngineFromSQLDB(db, cfg.EngineOptions(nil)...)
		if err != nil {
			return nil, err
		}

		return cli.NewRuntime(pg)
	}

	return opener, mock, &opened
}

func runCLI(t *testing.T, opener cli.RuntimeOpener, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer

	cmd := cli.NewRootCommand(opener)
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), err
}
