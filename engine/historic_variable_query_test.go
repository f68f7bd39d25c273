package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

//nolint:funlen
func Test_HistoricVariableQueryBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() engine.HistoricVariableQueryBuilder
		validate func(t *testing.T, q engine.HistoricVariableQuery)
	}{
		{
			name:  "empty_query",
			build: engine.BuildHistoricVariableQuery,
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.Empty(t, q.ProcessInstanceID())
				assert.Empty(t, q.TaskID())
				assert.False(t, q.ExcludeTaskRelated())
				assert.False(t, q.ExcludeVariableInitialization())
				assert.Empty(t, q.Orderings())
				_, hasPredicate := q.ValuePredicate()
				assert.False(t, hasPredicate)
			},
		},
		{
			name: "subject_identifiers",
			build: func() engine.HistoricVariableQueryBuilder {
				return engine.BuildHistoricVariableQuery().
					ID("V1").
					ProcessInstanceID("P1").
					TaskID("T1").
					ActivityInstanceID("A1").
					VariableName("amount")
			},
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.Equal(t, "V1", q.ID())
				assert.Equal(t, "P1", q.ProcessInstanceID())
				assert.Equal(t, "T1", q.TaskID())
				assert.Equal(t, "A1", q.ActivityInstanceID())
				assert.Equal(t, "amount", q.VariableName())
			},
		},
		{
			name: "exclude_flags",
			build: func() engine.HistoricVariableQueryBuilder {
				return engine.BuildHistoricVariableQuery().
					ExcludeTaskVariables().
					ExcludeVariableInitialization().
					VariableNameLike("amo%")
			},
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.True(t, q.ExcludeTaskRelated())
				assert.True(t, q.ExcludeVariableInitialization())
				assert.Equal(t, "amo%", q.VariableNameLike())
			},
		},
		{
			name: "value_predicate_sets_variable_name",
			build: func() engine.HistoricVariableQueryBuilder {
				return engine.BuildHistoricVariableQuery().VariableValueEquals("amount", int64(100))
			},
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.Equal(t, "amount", q.VariableName())
				predicate, ok := q.ValuePredicate()
				require.True(t, ok)
				assert.Equal(t, "amount", predicate.Name())
				assert.Equal(t, int64(100), predicate.Value())
				assert.Equal(t, engine.OperatorEquals, predicate.Operator())
				assert.False(t, predicate.IsInitialized())
			},
		},
		{
			name: "second_value_predicate_replaces_first",
			build: func() engine.HistoricVariableQueryBuilder {
				return engine.BuildHistoricVariableQuery().
					VariableValueEquals("amount", int64(100)).
					VariableValueLikeIgnoreCase("customer", "acme%")
			},
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.Equal(t, "customer", q.VariableName())
				predicate, ok := q.ValuePredicate()
				require.True(t, ok)
				assert.Equal(t, "customer", predicate.Name())
				assert.Equal(t, engine.OperatorLikeIgnoreCase, predicate.Operator())
				assert.False(t, predicate.CaseSensitive())
			},
		},
		{
			name: "orderings_in_call_order",
			build: func() engine.HistoricVariableQueryBuilder {
				return engine.BuildHistoricVariableQuery().
					OrderByProcessInstanceID().Asc().
					OrderByVariableName().Desc()
			},
			validate: func(t *testing.T, q engine.HistoricVariableQuery) {
				assert.Equal(t, []engine.Ordering{
					{Property: engine.QueryPropertyProcessInstanceID, Direction: engine.Ascending},
					{Property: engine.QueryPropertyVariableName, Direction: engine.Descending},
				}, q.Orderings())
				assert.NoError(t, q.CheckQueryOk())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			query, err := tc.build().Finalize()

			// assert
			require.NoError(t, err)
			tc.validate(t, query)
		})
	}
}

func Test_HistoricVariableQueryBuilder_RejectsNullArguments(t *testing.T) {
	tests := []struct {
		name  string
		build func() engine.HistoricVariableQueryBuilder
	}{
		{"process_instance_id", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().ProcessInstanceID("")
		}},
		{"task_id", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().TaskID("")
		}},
		{"variable_name", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().VariableName("")
		}},
		{"variable_name_like", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().VariableNameLike("")
		}},
		{"value_equals_without_name", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().VariableValueEquals("", "x")
		}},
		{"value_equals_without_value", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().VariableValueEquals("amount", nil)
		}},
		{"value_like_without_pattern", func() engine.HistoricVariableQueryBuilder {
			return engine.BuildHistoricVariableQuery().VariableValueLike("customer", "")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			builder := tc.build()

			// assert
			assert.ErrorIs(t, builder.Err(), engine.ErrInvalidArgument)

			var invalidArgument *engine.InvalidArgumentError
			assert.ErrorAs(t, builder.Err(), &invalidArgument)
		})
	}
}

func Test_HistoricVariableQueryBuilder_TaskIDAndExcludeTaskVariablesAreMutuallyExclusive(t *testing.T) {
	t.Run("task_id_after_exclude_task_variables_fails", func(t *testing.T) {
		// act
		builder := engine.BuildHistoricVariableQuery().ExcludeTaskVariables().TaskID("T1")

		// assert
		assert.ErrorIs(t, builder.Err(), engine.ErrInvalidArgument)
		assert.ErrorContains(t, builder.Err(), "cannot use taskId together with excludeTaskVariables")
	})

	t.Run("exclude_task_variables_after_task_id_fails", func(t *testing.T) {
		// act
		builder := engine.BuildHistoricVariableQuery().TaskID("T1").ExcludeTaskVariables()

		// assert
		assert.ErrorIs(t, builder.Err(), engine.ErrInvalidArgument)
		assert.ErrorContains(t, builder.Err(), "cannot use taskId together with excludeTaskVariables")
	})

	t.Run("each_on_a_fresh_builder_never_fails", func(t *testing.T) {
		// act
		withTask := engine.BuildHistoricVariableQuery().TaskID("T1")
		withExclusion := engine.BuildHistoricVariableQuery().ExcludeTaskVariables()

		// assert
		assert.NoError(t, withTask.Err())
		assert.NoError(t, withExclusion.Err())
	})
}

func Test_HistoricVariableQueryBuilder_FirstErrorIsSticky(t *testing.T) {
	// arrange
	failed := engine.BuildHistoricVariableQuery().ProcessInstanceID("")
	firstErr := failed.Err()

	// act
	continued := failed.TaskID("T1").ExcludeTaskVariables().VariableName("")
	query, err := continued.Finalize()

	// assert
	require.Error(t, firstErr)
	assert.Same(t, firstErr, continued.Err())
	assert.Same(t, firstErr, err)
	assert.Empty(t, query.TaskID())
}

func Test_HistoricVariableQueryBuilder_DerivedBuildersDoNotAffectEachOther(t *testing.T) {
	// arrange
	base := engine.BuildHistoricVariableQuery().ProcessInstanceID("P1").OrderByProcessInstanceID().Asc()

	// act
	byName := base.OrderByVariableName().Asc()
	byNameDesc := base.OrderByVariableName().Desc()
	excluded := base.ExcludeTaskVariables()

	// assert
	baseQuery, err := base.Finalize()
	require.NoError(t, err)
	assert.Len(t, baseQuery.Orderings(), 1)
	assert.False(t, baseQuery.ExcludeTaskRelated())

	byNameQuery, err := byName.Finalize()
	require.NoError(t, err)
	byNameDescQuery, err := byNameDesc.Finalize()
	require.NoError(t, err)
	assert.Equal(t, engine.Ascending, byNameQuery.Orderings()[1].Direction)
	assert.Equal(t, engine.Descending, byNameDescQuery.Orderings()[1].Direction)

	// a derived builder may set taskId although a sibling excluded task variables
	assert.NoError(t, base.TaskID("T1").Err())
	assert.Error(t, excluded.TaskID("T1").Err())
}

func Test_HistoricVariableQueryBuilder_DirectionWithoutOrderByFailsImmediately(t *testing.T) {
	// act
	builder := engine.BuildHistoricVariableQuery().Asc()

	// assert
	assert.ErrorIs(t, builder.Err(), engine.ErrInvalidArgument)
	assert.ErrorContains(t, builder.Err(), "call an orderBy method first")
}

func Test_HistoricVariableQuery_CheckQueryOkRejectsOrderingWithoutDirection(t *testing.T) {
	// arrange
	query, err := engine.BuildHistoricVariableQuery().
		OrderByProcessInstanceID().Asc().
		OrderByVariableName().
		Finalize()
	require.NoError(t, err)

	// act
	err = query.CheckQueryOk()

	// assert
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
	assert.ErrorContains(t, err, "call asc() or desc() after using orderByXX()")
	assert.Equal(t, engine.QueryPropertyVariableName, query.PendingOrder())
}

func Test_HistoricVariableQuery_OrderingsReturnsACopy(t *testing.T) {
	// arrange
	query, err := engine.BuildHistoricVariableQuery().OrderByVariableName().Asc().Finalize()
	require.NoError(t, err)

	// act
	orderings := query.Orderings()
	orderings[0].Direction = engine.Descending

	// assert
	assert.Equal(t, engine.Ascending, query.Orderings()[0].Direction)
}
