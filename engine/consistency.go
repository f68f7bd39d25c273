package engine

import "context"

// ConsistencyLevel tells the persistence collaborator where a unit of work may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary inside a transaction. It is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica without a transaction.
	// The dispatcher uses it for ReadOnlyCommand implementations.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key holding the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "engine.consistency_level"

// WithStrongConsistency returns a context requesting StrongConsistency.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context requesting EventualConsistency.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the ConsistencyLevel, defaulting to StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
