package engine

import (
	"context"
	"time"
)

// MaterializationState tags a Materialization.
type MaterializationState int

const (
	// Pending means the value was not deserialized.
	Pending MaterializationState = iota

	// Deserialized means the value was deserialized and is held by the Materialization.
	Deserialized
)

// Materialization is the per-record outcome of forcing a variable's value.
//
// A Deserialized outcome with Cacheable() == true holds a value of a reference-backed type,
// the caller must retain it since its backing store was only valid in the unit of work that loaded it.
type Materialization struct {
	state     MaterializationState
	value     any
	cacheable bool
}

// DeserializedMaterialization creates a Deserialized outcome.
func DeserializedMaterialization(value any, cacheable bool) Materialization {
	return Materialization{state: Deserialized, value: value, cacheable: cacheable}
}

func (m Materialization) State() MaterializationState { return m.state }
func (m Materialization) IsDeserialized() bool        { return m.state == Deserialized }
func (m Materialization) Value() any                  { return m.value }
func (m Materialization) Cacheable() bool             { return m.cacheable }

// HistoricVariable is a historic variable instance as loaded by a HistoricVariableEntityManager.
// VariableType is nil when the stored type is not known to the registry.
type HistoricVariable struct {
	ID                 string
	ProcessInstanceID  string
	ExecutionID        string
	TaskID             string
	ActivityInstanceID string
	Name               string
	Revision           int
	VariableType       VariableType
	Fields             ValueFields
	CreateTime         time.Time
	LastUpdatedTime    time.Time

	materialization Materialization
}

func (v *HistoricVariable) EntityKind() EntityKind { return KindHistoricVariable }
func (v *HistoricVariable) EntityID() string       { return v.ID }

// Materialization returns the materialization outcome, Pending until MaterializeHistoricVariables ran.
func (v *HistoricVariable) Materialization() Materialization {
	return v.materialization
}

// Value returns the materialized value, or deserializes it on the fly without recording an outcome.
func (v *HistoricVariable) Value(ctx context.Context) (any, error) {
	if v.materialization.IsDeserialized() {
		return v.materialization.value, nil
	}

	if v.VariableType == nil {
		return nil, nil
	}

	return v.VariableType.GetValue(ctx, v.Fields)
}

// TypeName returns the variable type's name, or an empty string if the type is unknown.
func (v *HistoricVariable) TypeName() string {
	if v.VariableType == nil {
		return ""
	}

	return v.VariableType.TypeName()
}

// MaterializeHistoricVariables deserializes the value of every record with a non-nil type and a
// Pending outcome, in order. Values of reference-backed types are marked cacheable.
//
// Records already Deserialized are skipped, so running it twice changes nothing.
// If one record fails, no record is changed and the error is returned.
func MaterializeHistoricVariables(ctx context.Context, variables []*HistoricVariable) error {
	outcomes := make([]Materialization, len(variables))

	for i, v := range variables {
		if v == nil || v.VariableType == nil || v.materialization.IsDeserialized() {
			continue
		}

		value, err := v.VariableType.GetValue(ctx, v.Fields)
		if err != nil {
			return err
		}

		outcomes[i] = DeserializedMaterialization(value, v.VariableType.IsReferenceBacked())
	}

	for i, outcome := range outcomes {
		if outcome.IsDeserialized() {
			variables[i].materialization = outcome
		}
	}

	return nil
}
