package engine

import (
	"context"
	"errors"
	"fmt"
)

// Names of the built-in variable types.
const (
	TypeNameNull       = "null"
	TypeNameString     = "string"
	TypeNameBoolean    = "boolean"
	TypeNameShort      = "short"
	TypeNameInteger    = "integer"
	TypeNameLong       = "long"
	TypeNameDouble     = "double"
	TypeNameDate       = "date"
	TypeNameUUID       = "uuid"
	TypeNameBytes      = "bytes"
	TypeNameEntity     = "entity"
	TypeNameEntityList = "entity-list"
	TypeNameJSON       = "json"
)

var (
	ErrNilVariableType           = errors.New("variable type must not be nil")
	ErrDuplicateVariableTypeName = errors.New("variable type name is already registered")
	ErrVariableTypeIndexInvalid  = errors.New("variable type index is out of range")
)

// ValueFields are the storage slots a variable type serializes a value into.
type ValueFields struct {
	TextValue   *string
	TextValue2  *string
	LongValue   *int64
	DoubleValue *float64
	Bytes       []byte
}

// VariableType serializes values of one kind into ValueFields and back.
//
// IsReferenceBacked reports whether a value is a reference into a store that is only valid during
// the unit of work which loaded it. Materialized values of such types must be retained (cached)
// by the caller, see Materialization.
type VariableType interface {
	TypeName() string
	IsCachable() bool
	IsReferenceBacked() bool
	IsAbleToStore(value any) bool
	SetValue(value any, fields *ValueFields) error
	GetValue(ctx context.Context, fields ValueFields) (any, error)
}

// VariableTypes is the variable type registry.
type VariableTypes interface {
	Resolve(typeName string) (VariableType, bool)
	FindVariableType(value any) (VariableType, error)
}

// DefaultVariableTypes is an ordered VariableTypes registry.
// FindVariableType returns the first registered type able to store a value, so order matters.
// It must not be modified after it was handed to an EngineConfiguration.
type DefaultVariableTypes struct {
	types  []VariableType
	byName map[string]VariableType
}

// NewDefaultVariableTypes creates a registry holding all built-in types.
// The resolver is used by the reference-backed entity types; it may be nil, in which case
// entity values deserialize to EntityReference.
func NewDefaultVariableTypes(resolver EntityResolver) *DefaultVariableTypes {
	r := &DefaultVariableTypes{byName: make(map[string]VariableType)}

	for _, t := range []VariableType{
		NullType{},
		StringType{},
		BooleanType{},
		ShortType{},
		IntegerType{},
		LongType{},
		DoubleType{},
		DateType{},
		UUIDType{},
		BytesType{},
		EntityType{resolver: resolver},
		EntityListType{resolver: resolver},
		JSONType{},
	} {
		_ = r.AddType(t) // built-in names are unique
	}

	return r
}

// AddType appends a type, it is consulted after all previously registered types.
func (r *DefaultVariableTypes) AddType(variableType VariableType) error {
	return r.AddTypeAt(len(r.types), variableType)
}

// AddTypeAt inserts a type at the given index of the lookup order.
func (r *DefaultVariableTypes) AddTypeAt(index int, variableType VariableType) error {
	if variableType == nil {
		return ErrNilVariableType
	}

	if index < 0 || index > len(r.types) {
		return ErrVariableTypeIndexInvalid
	}

	if _, exists := r.byName[variableType.TypeName()]; exists {
		return errors.Join(ErrDuplicateVariableTypeName, fmt.Errorf("type name: %s", variableType.TypeName()))
	}

	r.types = append(r.types, nil)
	copy(r.types[index+1:], r.types[index:])
	r.types[index] = variableType
	r.byName[variableType.TypeName()] = variableType

	return nil
}

// Resolve returns the type registered under typeName.
func (r *DefaultVariableTypes) Resolve(typeName string) (VariableType, bool) {
	t, ok := r.byName[typeName]

	return t, ok
}

// FindVariableType returns the first type that is able to store value.
func (r *DefaultVariableTypes) FindVariableType(value any) (VariableType, error) {
	for _, t := range r.types {
		if t.IsAbleToStore(value) {
			return t, nil
		}
	}

	return nil, invalidArgument("couldn't find a variable type that is able to serialize %v (%T)", value, value)
}

// TypeNames returns the registered type names in lookup order.
func (r *DefaultVariableTypes) TypeNames() []string {
	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, t.TypeName())
	}

	return names
}
