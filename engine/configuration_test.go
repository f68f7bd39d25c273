package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

type namedFormEngine string

func (n namedFormEngine) Name() string { return string(n) }

func (n namedFormEngine) RenderStartForm(_ context.Context, startForm engine.StartFormData) (any, error) {
	return string(n) + ":" + startForm.FormKey, nil
}

func Test_NewEngineConfiguration_Defaults(t *testing.T) {
	// act
	configuration, err := engine.NewEngineConfiguration()

	// assert
	require.NoError(t, err)
	require.NotNil(t, configuration.VariableTypes())
	_, ok := configuration.VariableTypes().Resolve(engine.TypeNameEntity)
	assert.True(t, ok)
	_, ok = configuration.FormEngine("")
	assert.False(t, ok)
}

func Test_NewEngineConfiguration_FirstFormEngineIsDefault(t *testing.T) {
	// act
	configuration, err := engine.NewEngineConfiguration(
		engine.WithFormEngine(namedFormEngine("juel")),
		engine.WithFormEngine(namedFormEngine("freemarker")),
	)

	// assert
	require.NoError(t, err)
	defaultEngine, ok := configuration.FormEngine("")
	require.True(t, ok)
	assert.Equal(t, "juel", defaultEngine.Name())
	named, ok := configuration.FormEngine("freemarker")
	require.True(t, ok)
	assert.Equal(t, "freemarker", named.Name())
}

func Test_NewEngineConfiguration_WithDefaultFormEngine(t *testing.T) {
	// act
	configuration, err := engine.NewEngineConfiguration(
		engine.WithFormEngine(namedFormEngine("juel")),
		engine.WithFormEngine(namedFormEngine("freemarker")),
		engine.WithDefaultFormEngine("freemarker"),
	)

	// assert
	require.NoError(t, err)
	defaultEngine, ok := configuration.FormEngine("")
	require.True(t, ok)
	assert.Equal(t, "freemarker", defaultEngine.Name())
}

func Test_NewEngineConfiguration_RejectsNilCollaborators(t *testing.T) {
	_, err := engine.NewEngineConfiguration(engine.WithVariableTypes(nil))
	assert.ErrorIs(t, err, engine.ErrNilVariableTypes)

	_, err = engine.NewEngineConfiguration(engine.WithFormEngine(nil))
	assert.ErrorIs(t, err, engine.ErrNilFormEngine)
}

func Test_NewPage(t *testing.T) {
	page, err := engine.NewPage(0, 10)
	require.NoError(t, err)
	assert.True(t, page.HasLimit())
	assert.False(t, engine.Page{}.HasLimit())

	_, err = engine.NewPage(-1, 10)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
	_, err = engine.NewPage(0, -1)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func Test_ConsistencyLevel_DefaultsToStrong(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, engine.StrongConsistency, engine.GetConsistencyLevel(ctx))
	assert.Equal(t, engine.EventualConsistency, engine.GetConsistencyLevel(engine.WithEventualConsistency(ctx)))
	assert.Equal(t, "eventual", engine.EventualConsistency.String())
}
