package cli_test

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SchemaPrint_PrintsDDLForConfiguredTables(t *testing.T) {
	// arrange
	t.Setenv("ENGINE_TABLES__DEPLOYMENTS", "act_re_deployment")
	opener, mock, _ := givenMockedOpener(t)

	// act
	stdout, err := runCLI(t, opener, "schema", "print")

	// assert
	require.NoError(t, err)
	assert.Contains(t, stdout, "CREATE TABLE IF NOT EXISTS act_re_deployment (")
	assert.Contains(t, stdout, "CREATE TABLE IF NOT EXISTS historic_variables (")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SchemaApply_RunsAllStatementsInOneTransaction(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)

	mock.ExpectBegin()
	for range 6 {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE`)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	// act
	stdout, err := runCLI(t, opener, "schema", "apply")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "applied 6 statements\n", stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}
