package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	. "github.com/AntonStoeckl/process-engine-kernel/testutil/helper" //nolint:revive
)

func givenP1Variables(t *testing.T, types engine.VariableTypes) []*engine.HistoricVariable {
	return []*engine.HistoricVariable{
		FixtureHistoricVariable(t, types, "P1", "amount", int64(100)),
		FixtureHistoricVariable(t, types, "P1", "customer", "acme"),
		FixtureHistoricVariable(t, types, "P1", "deployment", &engine.Deployment{ID: "D1"}),
		FixtureHistoricVariable(t, types, "P1", "deployments", []engine.Entity{&engine.Deployment{ID: "D1"}}),
		FixtureUntypedHistoricVariable(t, "P1", "legacy"),
		FixtureHistoricVariable(t, types, "P2", "amount", int64(5)),
	}
}

func Test_ListHistoricVariables_MaterializesAndFlagsReferenceBackedValues(t *testing.T) {
	// arrange
	ctx := context.Background()
	configuration := GivenEngineConfiguration(t)
	commandContext := NewInMemoryCommandContext(configuration)
	commandContext.HistoricVariableStore.Add(givenP1Variables(t, configuration.VariableTypes())...)
	query := GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery().ProcessInstanceID("P1"))
	page, err := engine.NewPage(0, 10)
	require.NoError(t, err)

	// act
	variables, err := engine.ListHistoricVariables(ctx, commandContext, query, page)

	// assert
	require.NoError(t, err)
	require.Len(t, variables, 5)
	assert.LessOrEqual(t, len(variables), 10)

	for _, v := range variables {
		assert.Equal(t, "P1", v.ProcessInstanceID)

		m := v.Materialization()

		switch v.TypeName() {
		case "":
			assert.False(t, m.IsDeserialized(), "records without type stay untouched")
		case engine.TypeNameEntity, engine.TypeNameEntityList:
			assert.True(t, m.IsDeserialized(), v.Name)
			assert.True(t, m.Cacheable(), v.Name)
		default:
			assert.True(t, m.IsDeserialized(), v.Name)
			assert.False(t, m.Cacheable(), v.Name)
		}
	}
}

func Test_ListHistoricVariables_ExcludeVariableInitializationLeavesResultsPending(t *testing.T) {
	// arrange
	ctx := context.Background()
	configuration := GivenEngineConfiguration(t)
	commandContext := NewInMemoryCommandContext(configuration)
	commandContext.HistoricVariableStore.Add(givenP1Variables(t, configuration.VariableTypes())...)
	query := GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery().
		ProcessInstanceID("P1").
		ExcludeVariableInitialization())

	// act
	variables, err := engine.ListHistoricVariables(ctx, commandContext, query, engine.Page{})

	// assert
	require.NoError(t, err)
	require.NotEmpty(t, variables)

	for _, v := range variables {
		assert.Equal(t, engine.Pending, v.Materialization().State())
		assert.False(t, v.Materialization().Cacheable())
	}
}

func Test_MaterializeHistoricVariables_IsIdempotent(t *testing.T) {
	// arrange
	ctx := context.Background()
	configuration := GivenEngineConfiguration(t)
	variables := givenP1Variables(t, configuration.VariableTypes())

	require.NoError(t, engine.MaterializeHistoricVariables(ctx, variables))
	first := make([]engine.Materialization, 0, len(variables))
	for _, v := range variables {
		first = append(first, v.Materialization())
	}

	// act
	err := engine.MaterializeHistoricVariables(ctx, variables)

	// assert
	require.NoError(t, err)
	for i, v := range variables {
		assert.Equal(t, first[i], v.Materialization())
	}
}

type countingType struct {
	engine.VariableType
	calls int
}

func (c *countingType) GetValue(ctx context.Context, fields engine.ValueFields) (any, error) {
	c.calls++

	return c.VariableType.GetValue(ctx, fields)
}

func Test_MaterializeHistoricVariables_DeserializesEachRecordOnlyOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	configuration := GivenEngineConfiguration(t)
	v := FixtureHistoricVariable(t, configuration.VariableTypes(), "P1", "deployment", &engine.Deployment{ID: "D1"})
	counting := &countingType{VariableType: v.VariableType}
	v.VariableType = counting

	// act
	require.NoError(t, engine.MaterializeHistoricVariables(ctx, []*engine.HistoricVariable{v}))
	require.NoError(t, engine.MaterializeHistoricVariables(ctx, []*engine.HistoricVariable{v}))

	// assert
	assert.Equal(t, 1, counting.calls)
	assert.True(t, v.Materialization().Cacheable())
}

func Test_ListHistoricVariables_FailedMaterializationReturnsNoResults(t *testing.T) {
	// arrange
	ctx := context.Background()
	resolverErr := errors.New("entity store unavailable")
	resolver := engine.EntityResolverFunc(func(context.Context, engine.EntityKind, string) (engine.Entity, error) {
		return nil, resolverErr
	})
	configuration := GivenEngineConfiguration(t, engine.WithVariableTypes(engine.NewDefaultVariableTypes(resolver)))
	commandContext := NewInMemoryCommandContext(configuration)
	commandContext.HistoricVariableStore.Add(givenP1Variables(t, configuration.VariableTypes())...)
	query := GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery().ProcessInstanceID("P1"))

	// act
	variables, err := engine.ListHistoricVariables(ctx, commandContext, query, engine.Page{})

	// assert
	assert.ErrorIs(t, err, resolverErr)
	assert.Nil(t, variables)
}

func Test_MaterializeHistoricVariables_FailureChangesNoRecord(t *testing.T) {
	// arrange
	ctx := context.Background()
	resolverErr := errors.New("entity store unavailable")
	resolver := engine.EntityResolverFunc(func(context.Context, engine.EntityKind, string) (engine.Entity, error) {
		return nil, resolverErr
	})
	types := engine.NewDefaultVariableTypes(resolver)
	variables := []*engine.HistoricVariable{
		FixtureHistoricVariable(t, types, "P1", "amount", int64(1)),
		FixtureHistoricVariable(t, types, "P1", "deployment", &engine.Deployment{ID: "D1"}),
	}

	// act
	err := engine.MaterializeHistoricVariables(ctx, variables)

	// assert
	assert.ErrorIs(t, err, resolverErr)
	assert.False(t, variables[0].Materialization().IsDeserialized())
	assert.False(t, variables[1].Materialization().IsDeserialized())
}

func Test_HistoricVariableQueries_InitializeThePredicateOnceBeforeDelegating(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, cc engine.CommandContext, q engine.HistoricVariableQuery) error
	}{
		{"count", func(ctx context.Context, cc engine.CommandContext, q engine.HistoricVariableQuery) error {
			_, err := engine.CountHistoricVariables(ctx, cc, q)
			return err
		}},
		{"list", func(ctx context.Context, cc engine.CommandContext, q engine.HistoricVariableQuery) error {
			_, err := engine.ListHistoricVariables(ctx, cc, q, engine.Page{})
			return err
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			typesSpy := NewVariableTypesSpy(engine.NewDefaultVariableTypes(nil))
			commandContext := NewInMemoryCommandContext(GivenEngineConfiguration(t, engine.WithVariableTypes(typesSpy)))
			store := commandContext.HistoricVariableStore
			store.Add(FixtureHistoricVariable(t, typesSpy, "P1", "amount", int64(100)))
			findCallsBeforeQuery := typesSpy.FindCalls()

			var lookupsBeforePersistence int
			store.OnQueryFunc = func(engine.HistoricVariableQuery) {
				lookupsBeforePersistence = typesSpy.FindCalls() - findCallsBeforeQuery
			}

			query := GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery().VariableValueEquals("amount", int64(100)))

			// act
			err := tc.run(ctx, commandContext, query)

			// assert
			require.NoError(t, err)
			assert.Equal(t, 1, typesSpy.FindCalls()-findCallsBeforeQuery)
			assert.Equal(t, 1, lookupsBeforePersistence)
			require.Len(t, store.Queries, 1)

			predicate, ok := store.Queries[0].ValuePredicate()
			require.True(t, ok)
			assert.True(t, predicate.IsInitialized())
			assert.Equal(t, engine.TypeNameLong, predicate.TypeName())

			original, _ := query.ValuePredicate()
			assert.False(t, original.IsInitialized(), "caller's query stays uninitialized")
		})
	}
}

func Test_HistoricVariableQueries_ValidationFailsBeforeAnyPersistenceCall(t *testing.T) {
	tests := []struct {
		name  string
		build engine.HistoricVariableQueryBuilder
	}{
		{"ordering_without_direction", engine.BuildHistoricVariableQuery().OrderByVariableName()},
		{"unqueryable_predicate_value", engine.BuildHistoricVariableQuery().VariableValueEquals("raw", []byte("x"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			commandContext := NewInMemoryCommandContext(GivenEngineConfiguration(t))
			query := GivenFinalizedQuery(t, tc.build)

			// act
			_, countErr := engine.CountHistoricVariables(ctx, commandContext, query)
			variables, listErr := engine.ListHistoricVariables(ctx, commandContext, query, engine.Page{})

			// assert
			assert.ErrorIs(t, countErr, engine.ErrInvalidArgument)
			assert.ErrorIs(t, listErr, engine.ErrInvalidArgument)
			assert.Nil(t, variables)
			assert.Zero(t, commandContext.HistoricVariableStore.PersistenceCalls())
		})
	}
}

func Test_HistoricVariableQueries_PropagatePersistenceErrorsUnchanged(t *testing.T) {
	// arrange
	ctx := context.Background()
	persistenceErr := errors.New("connection reset")
	commandContext := NewInMemoryCommandContext(GivenEngineConfiguration(t))
	commandContext.HistoricVariableStore.Err = persistenceErr
	query := GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery())

	// act
	count, countErr := engine.CountHistoricVariables(ctx, commandContext, query)
	variables, listErr := engine.ListHistoricVariables(ctx, commandContext, query, engine.Page{})

	// assert
	assert.Same(t, persistenceErr, countErr)
	assert.Same(t, persistenceErr, listErr)
	assert.Zero(t, count)
	assert.Nil(t, variables)
}

func Test_CountHistoricVariables_CountsMatchingRecords(t *testing.T) {
	// arrange
	ctx := context.Background()
	configuration := GivenEngineConfiguration(t)
	commandContext := NewInMemoryCommandContext(configuration)
	commandContext.HistoricVariableStore.Add(givenP1Variables(t, configuration.VariableTypes())...)

	// act
	all, errAll := engine.CountHistoricVariables(ctx, commandContext,
		GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery()))
	p1Amount, errP1 := engine.CountHistoricVariables(ctx, commandContext,
		GivenFinalizedQuery(t, engine.BuildHistoricVariableQuery().
			ProcessInstanceID("P1").
			VariableValueEquals("amount", int64(100))))

	// assert
	require.NoError(t, errAll)
	require.NoError(t, errP1)
	assert.Equal(t, int64(6), all)
	assert.Equal(t, int64(1), p1Amount)
}
