package cli_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

func Test_VariablesCount_PrintsTheCount(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)

	mock.ExpectQuery(
		regexp.QuoteMeta(`SELECT COUNT(*) FROM "historic_variables"`) +
			`.*` + regexp.QuoteMeta(`"process_instance_id" = 'P1'`) +
			`.*` + regexp.QuoteMeta(`"task_id" IS NULL`),
	).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	// act
	stdout, err := runCLI(t, opener, "variables", "count", "--process-instance-id", "P1", "--exclude-task-variables")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "3\n", stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_VariablesCount_UsesConfiguredTableName(t *testing.T) {
	// arrange
	t.Setenv("ENGINE_TABLES__HISTORIC_VARIABLES", "act_hi_varinst")
	opener, mock, _ := givenMockedOpener(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "act_hi_varinst"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	// act
	stdout, err := runCLI(t, opener, "variables", "count", "-o", "json")

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 0}`, stdout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_VariablesList_PrintsMaterializedVariablesAsJSON(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)
	createTime := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(
		regexp.QuoteMeta(`FROM "historic_variables"`) +
			`.*` + regexp.QuoteMeta(`"var_type" = 'long'`) +
			`.*` + regexp.QuoteMeta(`"long_value" = 100`) +
			`.*` + regexp.QuoteMeta(`ORDER BY "name" DESC, "id" ASC LIMIT 10`),
	).WillReturnRows(sqlmock.NewRows(historicVariableRowColumns).AddRow(
		"var-1", "P1", "P1", nil, nil, "amount", engine.TypeNameLong,
		int64(1), "100", nil, int64(100), nil, nil, createTime, nil,
	))

	// act
	stdout, err := runCLI(t, opener,
		"variables", "list",
		"--value-equals", "amount=100",
		"--order-by", "name:desc",
		"--max-results", "10",
		"-o", "json",
	)

	// assert
	require.NoError(t, err)

	var views []map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(stdout, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "var-1", views[0]["id"])
	assert.Equal(t, "amount", views[0]["name"])
	assert.Equal(t, engine.TypeNameLong, views[0]["type"])
	assert.InDelta(t, 100, views[0]["value"], 0)
	assert.Equal(t, true, views[0]["deserialized"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_VariablesList_SkipValuesLeavesValuesPending(t *testing.T) {
	// arrange
	opener, mock, _ := givenMockedOpener(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "historic_variables"`)).
		WillReturnRows(sqlmock.NewRows(historicVariableRowColumns).AddRow(
			"var-1", "P1", "P1", nil, nil, "customer", engine.TypeNameString,
			int64(1), "acme", nil, nil, nil, nil, time.Now(), nil,
		))

	// act
	stdout, err := runCLI(t, opener, "variables", "list", "--skip-values")

	// assert
	require.NoError(t, err)
	assert.Contains(t, stdout, "customer")
	assert.Contains(t, stdout, "<not deserialized>")
	assert.NotContains(t, stdout, "acme")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_VariablesList_RendersTypedValuePredicates(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		fragment string
	}{
		{name: "quoted number is a string", args: []string{"--value-equals", `amount="100"`}, fragment: `"text_value" = '100'`},
		{name: "boolean", args: []string{"--value-equals", "approved=true"}, fragment: `"var_type" = 'boolean'`},
		{name: "plain string", args: []string{"--value-not-equals", "city=Berlin"}, fragment: `NOT (`},
		{name: "like", args: []string{"--value-like", "city=Ber%"}, fragment: `"text_value" LIKE 'Ber%'`},
		{name: "like ignore case", args: []string{"--value-like-ignore-case", "city=BER%"}, fragment: `LOWER("text_value") LIKE 'ber%'`},
		{name: "ascending by default", args: []string{"--order-by", "process-instance-id"}, fragment: `ORDER BY "process_instance_id" ASC, "id" ASC`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			opener, mock, _ := givenMockedOpener(t)

			mock.ExpectQuery(regexp.QuoteMeta(tc.fragment)).
				WillReturnRows(sqlmock.NewRows(historicVariableRowColumns))

			// act
			_, err := runCLI(t, opener, append([]string{"variables", "list"}, tc.args...)...)

			// assert
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func Test_VariablesList_RejectsInvalidCriteriaBeforeConnecting(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown ordering property", args: []string{"--order-by", "create-time"}},
		{name: "unknown ordering direction", args: []string{"--order-by", "name:up"}},
		{name: "malformed value predicate", args: []string{"--value-equals", "amount"}},
		{name: "negative offset", args: []string{"--offset", "-1"}},
		{name: "like with non-string pattern", args: []string{"--value-like", "amount="}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			opener, _, opened := givenMockedOpener(t)

			// act
			_, err := runCLI(t, opener, append([]string{"variables", "list"}, tc.args...)...)

			// assert
			assert.Error(t, err)
			assert.Zero(t, *opened)
		})
	}
}
