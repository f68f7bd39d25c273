package engine

import "errors"

var (
	// ErrNilVariableTypes is returned when a nil registry is supplied to WithVariableTypes.
	ErrNilVariableTypes = errors.New("variable types must not be nil")

	// ErrNilFormEngine is returned when a nil form engine is supplied to WithFormEngine.
	ErrNilFormEngine = errors.New("form engine must not be nil")
)

// EngineConfiguration holds the engine-wide collaborators a command may need.
// It is built once and read-only afterward.
type EngineConfiguration struct {
	variableTypes         VariableTypes
	formEngines           map[string]FormEngine
	defaultFormEngineName string
}

// ConfigurationOption defines a functional option for configuring EngineConfiguration.
type ConfigurationOption func(*EngineConfiguration) error

// WithVariableTypes replaces the default variable type registry.
func WithVariableTypes(types VariableTypes) ConfigurationOption {
	return func(c *EngineConfiguration) error {
		if types == nil {
			return ErrNilVariableTypes
		}

		c.variableTypes = types

		return nil
	}
}

// WithFormEngine registers a form engine under its name.
// The first registered form engine becomes the default unless WithDefaultFormEngine is used.
func WithFormEngine(formEngine FormEngine) ConfigurationOption {
	return func(c *EngineConfiguration) error {
		if formEngine == nil {
			return ErrNilFormEngine
		}

		c.formEngines[formEngine.Name()] = formEngine

		if c.defaultFormEngineName == "" {
			c.defaultFormEngineName = formEngine.Name()
		}

		return nil
	}
}

// WithDefaultFormEngine sets the name of the form engine used when a command names none.
func WithDefaultFormEngine(name string) ConfigurationOption {
	return func(c *EngineConfiguration) error {
		c.defaultFormEngineName = name
		return nil
	}
}

// NewEngineConfiguration creates an EngineConfiguration.
// Without WithVariableTypes it uses NewDefaultVariableTypes with no entity resolver.
func NewEngineConfiguration(options ...ConfigurationOption) (EngineConfiguration, error) {
	c := EngineConfiguration{
		formEngines: make(map[string]FormEngine),
	}

	for _, option := range options {
		if err := option(&c); err != nil {
			return EngineConfiguration{}, err
		}
	}

	if c.variableTypes == nil {
		c.variableTypes = NewDefaultVariableTypes(nil)
	}

	return c, nil
}

// VariableTypes returns the variable type registry.
func (c EngineConfiguration) VariableTypes() VariableTypes {
	return c.variableTypes
}

// FormEngine looks up a form engine by name. An empty name selects the default form engine.
func (c EngineConfiguration) FormEngine(name string) (FormEngine, bool) {
	if name == "" {
		name = c.defaultFormEngineName
	}

	formEngine, ok := c.formEngines[name]

	return formEngine, ok
}
