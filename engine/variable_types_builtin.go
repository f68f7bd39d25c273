package engine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingValueField is returned when a stored value lacks the field its type reads from.
var ErrMissingValueField = errors.New("stored variable value is missing a field")

func unsupportedValue(typeName string, value any) error {
	return invalidArgument("type %s cannot store %v (%T)", typeName, value, value)
}

func missingField(typeName, field string) error {
	return errors.Join(ErrMissingValueField, errors.New(typeName+": "+field))
}

func stringPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func float64Ptr(f float64) *float64 { return &f }

// NullType stores nil.
type NullType struct{}

func (NullType) TypeName() string             { return TypeNameNull }
func (NullType) IsCachable() bool             { return true }
func (NullType) IsReferenceBacked() bool      { return false }
func (NullType) IsAbleToStore(value any) bool { return value == nil }

func (NullType) SetValue(_ any, fields *ValueFields) error {
	*fields = ValueFields{}

	return nil
}

func (NullType) GetValue(context.Context, ValueFields) (any, error) { return nil, nil }

// StringType stores string values in TextValue.
type StringType struct{}

func (StringType) TypeName() string        { return TypeNameString }
func (StringType) IsCachable() bool        { return true }
func (StringType) IsReferenceBacked() bool { return false }

func (StringType) IsAbleToStore(value any) bool {
	_, ok := value.(string)

	return ok
}

func (t StringType) SetValue(value any, fields *ValueFields) error {
	s, ok := value.(string)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	fields.TextValue = stringPtr(s)

	return nil
}

func (t StringType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.TextValue == nil {
		return nil, missingField(t.TypeName(), "text")
	}

	return *fields.TextValue, nil
}

// BooleanType stores bool values as 1 or 0 in LongValue.
type BooleanType struct{}

func (BooleanType) TypeName() string        { return TypeNameBoolean }
func (BooleanType) IsCachable() bool        { return true }
func (BooleanType) IsReferenceBacked() bool { return false }

func (BooleanType) IsAbleToStore(value any) bool {
	_, ok := value.(bool)

	return ok
}

func (t BooleanType) SetValue(value any, fields *ValueFields) error {
	b, ok := value.(bool)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	if b {
		fields.LongValue = int64Ptr(1)
	} else {
		fields.LongValue = int64Ptr(0)
	}

	return nil
}

func (t BooleanType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.LongValue == nil {
		return nil, missingField(t.TypeName(), "long")
	}

	return *fields.LongValue == 1, nil
}

// ShortType stores int16 values in LongValue and TextValue.
type ShortType struct{}

func (ShortType) TypeName() string        { return TypeNameShort }
func (ShortType) IsCachable() bool        { return true }
func (ShortType) IsReferenceBacked() bool { return false }

func (ShortType) IsAbleToStore(value any) bool {
	_, ok := value.(int16)

	return ok
}

func (t ShortType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.(int16)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	setIntegral(int64(v), fields)

	return nil
}

func (t ShortType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.LongValue == nil {
		return nil, missingField(t.TypeName(), "long")
	}

	return int16(*fields.LongValue), nil
}

// IntegerType stores int and int32 values in LongValue and TextValue. It deserializes to int.
type IntegerType struct{}

func (IntegerType) TypeName() string        { return TypeNameInteger }
func (IntegerType) IsCachable() bool        { return true }
func (IntegerType) IsReferenceBacked() bool { return false }

func (IntegerType) IsAbleToStore(value any) bool {
	switch value.(type) {
	case int, int32:
		return true
	default:
		return false
	}
}

func (t IntegerType) SetValue(value any, fields *ValueFields) error {
	switch v := value.(type) {
	case int:
		setIntegral(int64(v), fields)
	case int32:
		setIntegral(int64(v), fields)
	default:
		return unsupportedValue(t.TypeName(), value)
	}

	return nil
}

func (t IntegerType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.LongValue == nil {
		return nil, missingField(t.TypeName(), "long")
	}

	return int(*fields.LongValue), nil
}

// LongType stores int64 values in LongValue and TextValue.
type LongType struct{}

func (LongType) TypeName() string        { return TypeNameLong }
func (LongType) IsCachable() bool        { return true }
func (LongType) IsReferenceBacked() bool { return false }

func (LongType) IsAbleToStore(value any) bool {
	_, ok := value.(int64)

	return ok
}

func (t LongType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.(int64)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	setIntegral(v, fields)

	return nil
}

func (t LongType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.LongValue == nil {
		return nil, missingField(t.TypeName(), "long")
	}

	return *fields.LongValue, nil
}

func setIntegral(v int64, fields *ValueFields) {
	fields.LongValue = int64Ptr(v)
	fields.TextValue = stringPtr(strconv.FormatInt(v, 10))
}

// DoubleType stores float64 values in DoubleValue.
type DoubleType struct{}

func (DoubleType) TypeName() string        { return TypeNameDouble }
func (DoubleType) IsCachable() bool        { return true }
func (DoubleType) IsReferenceBacked() bool { return false }

func (DoubleType) IsAbleToStore(value any) bool {
	_, ok := value.(float64)

	return ok
}

func (t DoubleType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.(float64)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	fields.DoubleValue = float64Ptr(v)

	return nil
}

func (t DoubleType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.DoubleValue == nil {
		return nil, missingField(t.TypeName(), "double")
	}

	return *fields.DoubleValue, nil
}

// DateType stores time.Time values as unix milliseconds in LongValue. It deserializes to UTC.
type DateType struct{}

func (DateType) TypeName() string        { return TypeNameDate }
func (DateType) IsCachable() bool        { return true }
func (DateType) IsReferenceBacked() bool { return false }

func (DateType) IsAbleToStore(value any) bool {
	_, ok := value.(time.Time)

	return ok
}

func (t DateType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.(time.Time)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	fields.LongValue = int64Ptr(v.UnixMilli())

	return nil
}

func (t DateType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.LongValue == nil {
		return nil, missingField(t.TypeName(), "long")
	}

	return time.UnixMilli(*fields.LongValue).UTC(), nil
}

// UUIDType stores uuid.UUID values in TextValue.
type UUIDType struct{}

func (UUIDType) TypeName() string        { return TypeNameUUID }
func (UUIDType) IsCachable() bool        { return true }
func (UUIDType) IsReferenceBacked() bool { return false }

func (UUIDType) IsAbleToStore(value any) bool {
	_, ok := value.(uuid.UUID)

	return ok
}

func (t UUIDType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.(uuid.UUID)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	fields.TextValue = stringPtr(v.String())

	return nil
}

func (t UUIDType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.TextValue == nil {
		return nil, missingField(t.TypeName(), "text")
	}

	return uuid.Parse(*fields.TextValue)
}

// BytesType stores []byte values in Bytes.
type BytesType struct{}

func (BytesType) TypeName() string        { return TypeNameBytes }
func (BytesType) IsCachable() bool        { return false }
func (BytesType) IsReferenceBacked() bool { return false }

func (BytesType) IsAbleToStore(value any) bool {
	_, ok := value.([]byte)

	return ok
}

func (t BytesType) SetValue(value any, fields *ValueFields) error {
	v, ok := value.([]byte)
	if !ok {
		return unsupportedValue(t.TypeName(), value)
	}

	fields.Bytes = v

	return nil
}

func (BytesType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	return fields.Bytes, nil
}

// JSONType stores JSON objects and arrays (map[string]any, []any) as text.
type JSONType struct{}

func (JSONType) TypeName() string        { return TypeNameJSON }
func (JSONType) IsCachable() bool        { return true }
func (JSONType) IsReferenceBacked() bool { return false }

func (JSONType) IsAbleToStore(value any) bool {
	switch value.(type) {
	case map[string]any, []any, jsoniter.RawMessage:
		return true
	default:
		return false
	}
}

func (t JSONType) SetValue(value any, fields *ValueFields) error {
	if !t.IsAbleToStore(value) {
		return unsupportedValue(t.TypeName(), value)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	fields.TextValue = stringPtr(string(encoded))

	return nil
}

func (t JSONType) GetValue(_ context.Context, fields ValueFields) (any, error) {
	if fields.TextValue == nil {
		return nil, missingField(t.TypeName(), "text")
	}

	var decoded any
	if err := json.UnmarshalFromString(*fields.TextValue, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}
