package engine

import "strings"

// QueryOperator is the comparison a TypedValuePredicate applies.
type QueryOperator int

const (
	OperatorEquals QueryOperator = iota
	OperatorNotEquals
	OperatorLike
	OperatorLikeIgnoreCase
)

// String provides a string representation of QueryOperator for logging and debugging.
func (o QueryOperator) String() string {
	switch o {
	case OperatorEquals:
		return "equals"
	case OperatorNotEquals:
		return "not_equals"
	case OperatorLike:
		return "like"
	case OperatorLikeIgnoreCase:
		return "like_ignore_case"
	default:
		return "unknown"
	}
}

// IsLike reports whether the operator is a pattern match.
func (o QueryOperator) IsLike() bool {
	return o == OperatorLike || o == OperatorLikeIgnoreCase
}

// TypedValuePredicate compares a variable's stored value with a raw value.
// It is uninitialized until Initialize resolved the raw value's variable type and serialized it.
type TypedValuePredicate struct {
	name          string
	value         any
	operator      QueryOperator
	caseSensitive bool

	initialized bool
	typeName    string
	fields      ValueFields
}

// NewTypedValuePredicate creates an uninitialized predicate for the named variable.
func NewTypedValuePredicate(name string, value any, operator QueryOperator) (TypedValuePredicate, error) {
	if name == "" {
		return TypedValuePredicate{}, invalidArgument("variableName is null")
	}

	if value == nil {
		return TypedValuePredicate{}, invalidArgument("variableValue is null")
	}

	if operator < OperatorEquals || operator > OperatorLikeIgnoreCase {
		return TypedValuePredicate{}, invalidArgument("unknown query operator %d", operator)
	}

	return TypedValuePredicate{
		name:          name,
		value:         value,
		operator:      operator,
		caseSensitive: operator != OperatorLikeIgnoreCase,
	}, nil
}

// Initialize returns an initialized copy carrying the resolved type name and the serialized value.
// The receiver stays unchanged.
func (p TypedValuePredicate) Initialize(types VariableTypes) (TypedValuePredicate, error) {
	if p.initialized {
		return p, ErrPredicateAlreadyInitialized
	}

	variableType, err := types.FindVariableType(p.value)
	if err != nil {
		return p, err
	}

	switch {
	case variableType.TypeName() == TypeNameBytes:
		return p, invalidArgument("variables of type bytes cannot be used to query")

	case variableType.TypeName() == TypeNameEntityList:
		return p, invalidArgument("entity-list variables cannot be used to query")

	case variableType.TypeName() == TypeNameEntity &&
		p.operator != OperatorEquals && p.operator != OperatorNotEquals:
		return p, invalidArgument("entity variables can only be used with equals or not equals")

	case p.operator.IsLike() && variableType.TypeName() != TypeNameString:
		return p, invalidArgument("only string values can be used with like, got type %s", variableType.TypeName())
	}

	var fields ValueFields
	if err = variableType.SetValue(p.value, &fields); err != nil {
		return p, err
	}

	if !p.caseSensitive && fields.TextValue != nil {
		fields.TextValue = stringPtr(strings.ToLower(*fields.TextValue))
	}

	p.initialized = true
	p.typeName = variableType.TypeName()
	p.fields = fields

	return p, nil
}

func (p TypedValuePredicate) Name() string            { return p.name }
func (p TypedValuePredicate) Value() any              { return p.value }
func (p TypedValuePredicate) Operator() QueryOperator { return p.operator }
func (p TypedValuePredicate) CaseSensitive() bool     { return p.caseSensitive }
func (p TypedValuePredicate) IsInitialized() bool     { return p.initialized }

// TypeName returns the resolved type name, empty before initialization.
func (p TypedValuePredicate) TypeName() string { return p.typeName }

// Fields returns the serialized value, the zero value before initialization.
func (p TypedValuePredicate) Fields() ValueFields { return p.fields }
