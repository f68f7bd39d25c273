package engine

import "slices"

// QueryProperty is an ordering token. The persistence collaborator maps it to its own columns.
type QueryProperty string

const (
	QueryPropertyProcessInstanceID QueryProperty = "processInstanceId"
	QueryPropertyVariableName      QueryProperty = "variableName"
)

// Direction is the sort direction of an Ordering.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Ordering is one complete ordering directive.
type Ordering struct {
	Property  QueryProperty
	Direction Direction
}

// HistoricVariableQuery holds validated criteria for historic variable queries.
// It is an immutable value, created with BuildHistoricVariableQuery().
type HistoricVariableQuery struct {
	id                            string
	processInstanceID             string
	taskID                        string
	activityInstanceID            string
	variableName                  string
	variableNameLike              string
	excludeTaskRelated            bool
	excludeVariableInitialization bool
	valuePredicate                TypedValuePredicate
	hasValuePredicate             bool
	orderings                     []Ordering
	pendingOrderProperty          QueryProperty
}

// HistoricVariableQueryBuilder provides a fluent interface for building a HistoricVariableQuery.
//
// Every method returns a new builder, the receiver is never modified.
// The first invalid call records an *InvalidArgumentError which is observable right away via Err();
// all later calls are no-ops. Finalize returns the recorded error or the finished query.
//
// Example usage:
//
//	query, err := engine.BuildHistoricVariableQuery().
//		ProcessInstanceID("P1").
//		VariableValueEquals("amount", int64(100)).
//		OrderByVariableName().Asc().
//		Finalize()
type HistoricVariableQueryBuilder struct {
	query HistoricVariableQuery
	err   error
}

// BuildHistoricVariableQuery creates a new builder without criteria.
func BuildHistoricVariableQuery() HistoricVariableQueryBuilder {
	return HistoricVariableQueryBuilder{}
}

func (b HistoricVariableQueryBuilder) fail(err error) HistoricVariableQueryBuilder {
	b.err = err

	return b
}

// Err returns the first error recorded by an invalid call, if any.
func (b HistoricVariableQueryBuilder) Err() error {
	return b.err
}

// ID restricts the query to the variable with the given id.
func (b HistoricVariableQueryBuilder) ID(id string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if id == "" {
		return b.fail(invalidArgument("id is null"))
	}

	b.query.id = id

	return b
}

// ProcessInstanceID restricts the query to variables of one process instance.
func (b HistoricVariableQueryBuilder) ProcessInstanceID(processInstanceID string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if processInstanceID == "" {
		return b.fail(invalidArgument("processInstanceId is null"))
	}

	b.query.processInstanceID = processInstanceID

	return b
}

// TaskID restricts the query to variables of one task.
func (b HistoricVariableQueryBuilder) TaskID(taskID string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if taskID == "" {
		return b.fail(invalidArgument("taskId is null"))
	}

	if b.query.excludeTaskRelated {
		return b.fail(invalidArgument("cannot use taskId together with excludeTaskVariables"))
	}

	b.query.taskID = taskID

	return b
}

// ActivityInstanceID restricts the query to variables of one activity instance.
func (b HistoricVariableQueryBuilder) ActivityInstanceID(activityInstanceID string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if activityInstanceID == "" {
		return b.fail(invalidArgument("activityInstanceId is null"))
	}

	b.query.activityInstanceID = activityInstanceID

	return b
}

// ExcludeTaskVariables restricts the query to variables that belong to no task.
func (b HistoricVariableQueryBuilder) ExcludeTaskVariables() HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if b.query.taskID != "" {
		return b.fail(invalidArgument("cannot use taskId together with excludeTaskVariables"))
	}

	b.query.excludeTaskRelated = true

	return b
}

// ExcludeVariableInitialization skips materialization of the listed variables' values.
func (b HistoricVariableQueryBuilder) ExcludeVariableInitialization() HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	b.query.excludeVariableInitialization = true

	return b
}

// VariableName restricts the query to variables with the given name.
func (b HistoricVariableQueryBuilder) VariableName(variableName string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if variableName == "" {
		return b.fail(invalidArgument("variableName is null"))
	}

	b.query.variableName = variableName

	return b
}

// VariableNameLike restricts the query to variables whose name matches the pattern, with % as wildcard.
func (b HistoricVariableQueryBuilder) VariableNameLike(variableNameLike string) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if variableNameLike == "" {
		return b.fail(invalidArgument("variableNameLike is null"))
	}

	b.query.variableNameLike = variableNameLike

	return b
}

// VariableValueEquals restricts the query to variables with the given name and value.
// It replaces a previously set value predicate.
func (b HistoricVariableQueryBuilder) VariableValueEquals(variableName string, value any) HistoricVariableQueryBuilder {
	return b.variableValue(variableName, value, OperatorEquals)
}

// VariableValueNotEquals restricts the query to variables with the given name and a different value.
func (b HistoricVariableQueryBuilder) VariableValueNotEquals(variableName string, value any) HistoricVariableQueryBuilder {
	return b.variableValue(variableName, value, OperatorNotEquals)
}

// VariableValueLike restricts the query to string variables matching the pattern, with % as wildcard.
func (b HistoricVariableQueryBuilder) VariableValueLike(variableName string, value string) HistoricVariableQueryBuilder {
	return b.variableValue(variableName, nilIfEmpty(value), OperatorLike)
}

// VariableValueLikeIgnoreCase is the case-insensitive variant of VariableValueLike.
func (b HistoricVariableQueryBuilder) VariableValueLikeIgnoreCase(variableName string, value string) HistoricVariableQueryBuilder {
	return b.variableValue(variableName, nilIfEmpty(value), OperatorLikeIgnoreCase)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func (b HistoricVariableQueryBuilder) variableValue(
	variableName string,
	value any,
	operator QueryOperator,
) HistoricVariableQueryBuilder {

	if b.err != nil {
		return b
	}

	predicate, err := NewTypedValuePredicate(variableName, value, operator)
	if err != nil {
		return b.fail(err)
	}

	b.query.variableName = variableName
	b.query.valuePredicate = predicate
	b.query.hasValuePredicate = true

	return b
}

// OrderByProcessInstanceID orders by process instance id. Asc or Desc must follow.
func (b HistoricVariableQueryBuilder) OrderByProcessInstanceID() HistoricVariableQueryBuilder {
	return b.orderBy(QueryPropertyProcessInstanceID)
}

// OrderByVariableName orders by variable name. Asc or Desc must follow.
func (b HistoricVariableQueryBuilder) OrderByVariableName() HistoricVariableQueryBuilder {
	return b.orderBy(QueryPropertyVariableName)
}

func (b HistoricVariableQueryBuilder) orderBy(property QueryProperty) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	b.query.pendingOrderProperty = property

	return b
}

// Asc completes the pending ordering in ascending direction.
func (b HistoricVariableQueryBuilder) Asc() HistoricVariableQueryBuilder {
	return b.direction(Ascending)
}

// Desc completes the pending ordering in descending direction.
func (b HistoricVariableQueryBuilder) Desc() HistoricVariableQueryBuilder {
	return b.direction(Descending)
}

func (b HistoricVariableQueryBuilder) direction(direction Direction) HistoricVariableQueryBuilder {
	if b.err != nil {
		return b
	}

	if b.query.pendingOrderProperty == "" {
		return b.fail(invalidArgument("call an orderBy method first before specifying a direction"))
	}

	// Clip forces append to copy, builders derived from the receiver must not share the backing array.
	b.query.orderings = append(
		slices.Clip(b.query.orderings),
		Ordering{Property: b.query.pendingOrderProperty, Direction: direction},
	)
	b.query.pendingOrderProperty = ""

	return b
}

// Finalize returns the built query or the first recorded error.
func (b HistoricVariableQueryBuilder) Finalize() (HistoricVariableQuery, error) {
	if b.err != nil {
		return HistoricVariableQuery{}, b.err
	}

	return b.query, nil
}

// CheckQueryOk rejects a query whose last orderBy was not followed by Asc or Desc.
func (q HistoricVariableQuery) CheckQueryOk() error {
	if q.pendingOrderProperty != "" {
		return invalidArgument("invalid query: call asc() or desc() after using orderByXX()")
	}

	return nil
}

// withInitializedValuePredicate returns a copy of the query whose value predicate is initialized.
func (q HistoricVariableQuery) withInitializedValuePredicate(types VariableTypes) (HistoricVariableQuery, error) {
	if !q.hasValuePredicate {
		return q, nil
	}

	initialized, err := q.valuePredicate.Initialize(types)
	if err != nil {
		return q, err
	}

	q.valuePredicate = initialized

	return q, nil
}

func (q HistoricVariableQuery) ID() string                  { return q.id }
func (q HistoricVariableQuery) ProcessInstanceID() string   { return q.processInstanceID }
func (q HistoricVariableQuery) TaskID() string              { return q.taskID }
func (q HistoricVariableQuery) ActivityInstanceID() string  { return q.activityInstanceID }
func (q HistoricVariableQuery) VariableName() string        { return q.variableName }
func (q HistoricVariableQuery) VariableNameLike() string    { return q.variableNameLike }
func (q HistoricVariableQuery) ExcludeTaskRelated() bool    { return q.excludeTaskRelated }
func (q HistoricVariableQuery) PendingOrder() QueryProperty { return q.pendingOrderProperty }

// ExcludeVariableInitialization reports whether listed values stay unmaterialized.
func (q HistoricVariableQuery) ExcludeVariableInitialization() bool {
	return q.excludeVariableInitialization
}

// ValuePredicate returns the value predicate, if one was set.
func (q HistoricVariableQuery) ValuePredicate() (TypedValuePredicate, bool) {
	return q.valuePredicate, q.hasValuePredicate
}

// Orderings returns a copy of the complete ordering directives in the order they were added.
func (q HistoricVariableQuery) Orderings() []Ordering {
	return slices.Clone(q.orderings)
}
