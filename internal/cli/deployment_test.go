package cli_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

func Test_DeploymentSetCategory_UpdatesTheDeployment(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)
	deployTime := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "deployments"`) + `.*` + regexp.QuoteMeta(`"id" = 'd-1'`)).
		WillReturnRows(sqlmock.NewRows(deploymentRowColumns).AddRow("d-1", "invoice", nil, nil, deployTime))
	mock.ExpectExec(
		regexp.QuoteMeta(`UPDATE "deployments" SET`) +
			`.*` + regexp.QuoteMeta(`'finance'`) +
			`.*` + regexp.QuoteMeta(`"id" = 'd-1'`),
	).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// act
	stdout, err := runCLI(t, opener, "deployment", "set-category", "d-1", "finance")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "deployment d-1: category set to \"finance\"\n", stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeploymentSetCategory_RetriesConcurrentModification(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)
	deployTime := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, rowsAffected := range []int64{0, 1} {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "deployments"`)).
			WillReturnRows(sqlmock.NewRows(deploymentRowColumns).AddRow("d-1", "invoice", nil, nil, deployTime))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "deployments"`)).
			WillReturnResult(sqlmock.NewResult(0, rowsAffected))

		if rowsAffected == 0 {
			mock.ExpectRollback()
		} else {
			mock.ExpectCommit()
		}
	}

	// act
	stdout, err := runCLI(t, opener, "deployment", "set-category", "d-1", "finance", "-o", "json")

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"deploymentId": "d-1", "category": "finance"}`, stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeploymentSetCategory_FailsForUnknownDeployment(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "deployments"`)).
		WillReturnRows(sqlmock.NewRows(deploymentRowColumns))
	mock.ExpectRollback()

	// act
	stdout, err := runCLI(t, opener, "deployment", "set-category", "missing", "finance")

	// assert
	require.ErrorIs(t, err, engine.ErrNotFound)
	assert.EqualError(t, err, "no Deployment found for id = 'missing'")
	assert.Empty(t, stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_DeploymentSetCategory_RequiresDeploymentID(t *testing.T) {
	// arrange
	opener, _, opened := givenMockedOpener(t)

	// act
	_, err := runCLI(t, opener, "deployment", "set-category")

	// assert
	assert.Error(t, err)
	assert.Zero(t, *opened)
}
