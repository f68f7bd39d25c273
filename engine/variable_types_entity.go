package engine

import (
	"context"
	"errors"
	"fmt"
)

// ErrEntityNotResolvable is returned when a stored entity reference no longer resolves.
var ErrEntityNotResolvable = errors.New("entity reference could not be resolved")

// EntityResolver loads entities referenced by entity variables.
// ResolveEntity returns (nil, nil) when no entity exists for the id.
type EntityResolver interface {
	ResolveEntity(ctx context.Context, kind EntityKind, id string) (Entity, error)
}

// EntityResolverFunc adapts a function to EntityResolver.
type EntityResolverFunc func(ctx context.Context, kind EntityKind, id string) (Entity, error)

// ResolveEntity calls f.
func (f EntityResolverFunc) ResolveEntity(ctx context.Context, kind EntityKind, id string) (Entity, error) {
	return f(ctx, kind, id)
}

// EntityReference is the unresolved form of an entity variable value.
type EntityReference struct {
	Kind EntityKind
	ID   string
}

func (r EntityReference) EntityKind() EntityKind { return r.Kind }
func (r EntityReference) EntityID() string       { return r.ID }

func resolveReference(ctx context.Context, resolver EntityResolver, kind EntityKind, id string) (Entity, error) {
	if resolver == nil {
		return EntityReference{Kind: kind, ID: id}, nil
	}

	entity, err := resolver.ResolveEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		return nil, errors.Join(ErrEntityNotResolvable, fmt.Errorf("%s with id '%s'", kind, id))
	}

	return entity, nil
}

// EntityType stores a single Entity as a reference: kind in TextValue, id in TextValue2.
// Values are reference-backed.
type EntityType struct {
	resolver EntityResolver
}

func (EntityType) TypeName() string        { return TypeNameEntity }
func (EntityType) IsCachable() bool        { return false }
func (EntityType) IsReferenceBacked() bool { return true }

func (EntityType) IsAbleToStore(value any) bool {
	entity, ok := value.(Entity)

	return ok && entity != nil && entity.EntityID() != ""
}

func (t EntityType) SetValue(value any, fields *ValueFields) error {
	if !t.IsAbleToStore(value) {
		return unsupportedValue(t.TypeName(), value)
	}

	entity := value.(Entity)
	fields.TextValue = stringPtr(string(entity.EntityKind()))
	fields.TextValue2 = stringPtr(entity.EntityID())

	return nil
}

func (t EntityType) GetValue(ctx context.Context, fields ValueFields) (any, error) {
	if fields.TextValue == nil || fields.TextValue2 == nil {
		return nil, missingField(t.TypeName(), "text, text2")
	}

	return resolveReference(ctx, t.resolver, EntityKind(*fields.TextValue), *fields.TextValue2)
}

// EntityListType stores a non-empty list of entities of one kind.
// The kind goes into TextValue, the ids are JSON encoded into Bytes. Values are reference-backed.
type EntityListType struct {
	resolver EntityResolver
}

func (EntityListType) TypeName() string        { return TypeNameEntityList }
func (EntityListType) IsCachable() bool        { return false }
func (EntityListType) IsReferenceBacked() bool { return true }

func (EntityListType) IsAbleToStore(value any) bool {
	entities, ok := value.([]Entity)
	if !ok || len(entities) == 0 {
		return false
	}

	var kind EntityKind
	for i, e := range entities {
		if e == nil || e.EntityID() == "" {
			return false
		}

		if i == 0 {
			kind = e.EntityKind()
		}

		if e.EntityKind() != kind {
			return false
		}
	}

	return true
}

func (t EntityListType) SetValue(value any, fields *ValueFields) error {
	if !t.IsAbleToStore(value) {
		return unsupportedValue(t.TypeName(), value)
	}

	entities := value.([]Entity)
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.EntityID())
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	fields.TextValue = stringPtr(string(entities[0].EntityKind()))
	fields.Bytes = encoded

	return nil
}

func (t EntityListType) GetValue(ctx context.Context, fields ValueFields) (any, error) {
	if fields.TextValue == nil || fields.Bytes == nil {
		return nil, missingField(t.TypeName(), "text, bytes")
	}

	var ids []string
	if err := json.Unmarshal(fields.Bytes, &ids); err != nil {
		return nil, err
	}

	kind := EntityKind(*fields.TextValue)
	entities := make([]Entity, 0, len(ids))
	for _, id := range ids {
		entity, err := resolveReference(ctx, t.resolver, kind, id)
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, nil
}
