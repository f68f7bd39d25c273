package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("object not found")

	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrCommandAlreadyExecuted is returned when Execute is called a second time on the same command instance.
	ErrCommandAlreadyExecuted = errors.New("command was already executed")

	ErrPredicateAlreadyInitialized = errors.New("typed value predicate is already initialized")
	ErrUnknownVariableType         = errors.New("unknown variable type")
	ErrConcurrencyConflict         = errors.New("concurrency error, no rows were affected")
	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingFailed              = errors.New("querying failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrUpdatingFailed              = errors.New("updating failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrEmptyTableName              = errors.New("table name must not be empty")
	ErrNilEventDispatcher          = errors.New("event dispatcher must not be nil")
)

// InvalidArgumentError reports malformed or mutually exclusive input. It is a caller bug and never retried.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	return ErrInvalidArgument.Error() + ": " + e.Msg
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// NewInvalidArgumentError creates an InvalidArgumentError with a formatted message.
func NewInvalidArgumentError(format string, args ...any) error {
	return invalidArgument(format, args...)
}

// NotFoundError reports that a referenced entity id does not resolve.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for id = '%s'", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the given entity kind and id.
func NewNotFoundError(kind EntityKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConfigurationError reports a named external engine that is not registered.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
