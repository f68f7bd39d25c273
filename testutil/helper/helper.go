package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

func GivenUniqueID(t testing.TB) string {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id.String()
}

func GivenEngineConfiguration(t testing.TB, options ...engine.ConfigurationOption) engine.EngineConfiguration {
	configuration, err := engine.NewEngineConfiguration(options...)
	require.NoError(t, err, "error in arranging test data")

	return configuration
}

func GivenFinalizedQuery(t testing.TB, builder engine.HistoricVariableQueryBuilder) engine.HistoricVariableQuery {
	query, err := builder.Finalize()
	require.NoError(t, err, "error in arranging test data")

	return query
}

func FixtureDeployment(id string) *engine.Deployment {
	return &engine.Deployment{
		ID:             id,
		Name:           "invoice-process",
		Category:       "finance",
		DeploymentTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func FixtureProcessDefinition(id string, deploymentID string, handler engine.StartFormHandler) *engine.ProcessDefinition {
	return &engine.ProcessDefinition{
		ID:               id,
		Key:              "invoice",
		Name:             "Invoice",
		Version:          1,
		DeploymentID:     deploymentID,
		StartFormHandler: handler,
	}
}

// FixtureHistoricVariable serializes value with the type the registry picks for it.
func FixtureHistoricVariable(
	t testing.TB,
	types engine.VariableTypes,
	processInstanceID string,
	name string,
	value any,
) *engine.HistoricVariable {

	variableType, err := types.FindVariableType(value)
	require.NoError(t, err, "error in arranging test data")

	var fields engine.ValueFields
	require.NoError(t, variableType.SetValue(value, &fields), "error in arranging test data")

	return &engine.HistoricVariable{
		ID:                GivenUniqueID(t),
		ProcessInstanceID: processInstanceID,
		ExecutionID:       processInstanceID,
		Name:              name,
		Revision:          1,
		VariableType:      variableType,
		Fields:            fields,
		CreateTime:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// FixtureUntypedHistoricVariable creates a record whose stored type is unknown.
func FixtureUntypedHistoricVariable(t testing.TB, processInstanceID string, name string) *engine.HistoricVariable {
	return &engine.HistoricVariable{
		ID:                GivenUniqueID(t),
		ProcessInstanceID: processInstanceID,
		Name:              name,
		Revision:          1,
	}
}
