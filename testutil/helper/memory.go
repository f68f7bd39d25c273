package helper

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
)

// InMemoryCommandContext is an engine.CommandContext backed by in-memory stores.
type InMemoryCommandContext struct {
	DeploymentStore        *InMemoryDeployments
	ProcessDefinitionStore *InMemoryProcessDefinitions
	HistoricVariableStore  *InMemoryHistoricVariables
	EngineConfiguration    engine.EngineConfiguration
	Dispatcher             engine.EventDispatcher
}

// NewInMemoryCommandContext creates a context with empty stores and a disabled event dispatcher.
func NewInMemoryCommandContext(configuration engine.EngineConfiguration) *InMemoryCommandContext {
	return &InMemoryCommandContext{
		DeploymentStore:        NewInMemoryDeployments(),
		ProcessDefinitionStore: NewInMemoryProcessDefinitions(),
		HistoricVariableStore:  NewInMemoryHistoricVariables(),
		EngineConfiguration:    configuration,
		Dispatcher:             engine.DisabledEventDispatcher(),
	}
}

// WithEventDispatcher replaces the event dispatcher and returns the context.
func (c *InMemoryCommandContext) WithEventDispatcher(dispatcher engine.EventDispatcher) *InMemoryCommandContext {
	c.Dispatcher = dispatcher

	return c
}

func (c *InMemoryCommandContext) Deployments() engine.DeploymentEntityManager {
	return c.DeploymentStore
}

func (c *InMemoryCommandContext) ProcessDefinitions() engine.ProcessDefinitionRepository {
	return c.ProcessDefinitionStore
}

func (c *InMemoryCommandContext) HistoricVariables() engine.HistoricVariableEntityManager {
	return c.HistoricVariableStore
}

func (c *InMemoryCommandContext) Configuration() engine.EngineConfiguration {
	return c.EngineConfiguration
}

func (c *InMemoryCommandContext) EventDispatcher() engine.EventDispatcher {
	return c.Dispatcher
}

// InMemoryDeployments is an engine.DeploymentEntityManager that counts its calls.
type InMemoryDeployments struct {
	mu          sync.Mutex
	deployments map[string]engine.Deployment
	FindCalls   int
	UpdateCalls int
	FindErr     error
	UpdateErr   error
}

func NewInMemoryDeployments(deployments ...*engine.Deployment) *InMemoryDeployments {
	s := &InMemoryDeployments{deployments: make(map[string]engine.Deployment)}
	for _, d := range deployments {
		s.deployments[d.ID] = *d
	}

	return s
}

// Add stores a copy of the deployment.
func (s *InMemoryDeployments) Add(deployment *engine.Deployment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deployments[deployment.ID] = *deployment
}

// Get returns a copy of the stored deployment.
func (s *InMemoryDeployments) Get(id string) (engine.Deployment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deployments[id]

	return d, ok
}

func (s *InMemoryDeployments) FindDeploymentByID(_ context.Context, deploymentID string) (*engine.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FindCalls++

	if s.FindErr != nil {
		return nil, s.FindErr
	}

	d, ok := s.deployments[deploymentID]
	if !ok {
		return nil, nil
	}

	return &d, nil
}

func (s *InMemoryDeployments) UpdateDeployment(_ context.Context, deployment *engine.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.UpdateCalls++

	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	if _, ok := s.deployments[deployment.ID]; !ok {
		return engine.ErrConcurrencyConflict
	}

	s.deployments[deployment.ID] = *deployment

	return nil
}

// InMemoryProcessDefinitions is an engine.ProcessDefinitionRepository.
type InMemoryProcessDefinitions struct {
	mu          sync.Mutex
	definitions map[string]*engine.ProcessDefinition
	FindCalls   int
}

func NewInMemoryProcessDefinitions(definitions ...*engine.ProcessDefinition) *InMemoryProcessDefinitions {
	s := &InMemoryProcessDefinitions{definitions: make(map[string]*engine.ProcessDefinition)}
	for _, d := range definitions {
		s.definitions[d.ID] = d
	}

	return s
}

func (s *InMemoryProcessDefinitions) Add(definition *engine.ProcessDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.definitions[definition.ID] = definition
}

func (s *InMemoryProcessDefinitions) FindDeployedProcessDefinitionByID(
	_ context.Context,
	processDefinitionID string,
) (*engine.ProcessDefinition, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.FindCalls++

	d, ok := s.definitions[processDefinitionID]
	if !ok {
		return nil, nil
	}

	return d, nil
}

// InMemoryHistoricVariables is an engine.HistoricVariableEntityManager that records the queries it receives.
// Every fetch returns fresh copies of the stored records, like a database would.
type InMemoryHistoricVariables struct {
	mu          sync.Mutex
	variables   []engine.HistoricVariable
	Queries     []engine.HistoricVariableQuery
	Pages       []engine.Page
	CountCalls  int
	ListCalls   int
	Err         error
	OnQueryFunc func(query engine.HistoricVariableQuery)
}

func NewInMemoryHistoricVariables(variables ...*engine.HistoricVariable) *InMemoryHistoricVariables {
	s := &InMemoryHistoricVariables{}
	for _, v := range variables {
		s.variables = append(s.variables, *v)
	}

	return s
}

func (s *InMemoryHistoricVariables) Add(variables ...*engine.HistoricVariable) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range variables {
		s.variables = append(s.variables, *v)
	}
}

// PersistenceCalls returns the number of count and list calls.
func (s *InMemoryHistoricVariables) PersistenceCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.CountCalls + s.ListCalls
}

func (s *InMemoryHistoricVariables) FindHistoricVariableCountByQueryCriteria(
	_ context.Context,
	query engine.HistoricVariableQuery,
) (int64, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.CountCalls++
	s.record(query)

	if s.Err != nil {
		return 0, s.Err
	}

	return int64(len(s.matching(query))), nil
}

func (s *InMemoryHistoricVariables) FindHistoricVariablesByQueryCriteria(
	_ context.Context,
	query engine.HistoricVariableQuery,
	page engine.Page,
) ([]*engine.HistoricVariable, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ListCalls++
	s.record(query)
	s.Pages = append(s.Pages, page)

	if s.Err != nil {
		return nil, s.Err
	}

	matching := s.matching(query)

	start := min(page.Offset, len(matching))
	end := len(matching)
	if page.HasLimit() {
		end = min(start+page.MaxResults, len(matching))
	}

	result := make([]*engine.HistoricVariable, 0, end-start)
	for _, v := range matching[start:end] {
		c := v
		result = append(result, &c)
	}

	return result, nil
}

func (s *InMemoryHistoricVariables) record(query engine.HistoricVariableQuery) {
	s.Queries = append(s.Queries, query)

	if s.OnQueryFunc != nil {
		s.OnQueryFunc(query)
	}
}

func (s *InMemoryHistoricVariables) matching(query engine.HistoricVariableQuery) []engine.HistoricVariable {
	var result []engine.HistoricVariable

	for _, v := range s.variables {
		if matches(v, query) {
			result = append(result, v)
		}
	}

	orderings := query.Orderings()
	slices.SortStableFunc(result, func(a, b engine.HistoricVariable) int {
		for _, o := range orderings {
			var c int
			switch o.Property {
			case engine.QueryPropertyProcessInstanceID:
				c = cmp.Compare(a.ProcessInstanceID, b.ProcessInstanceID)
			case engine.QueryPropertyVariableName:
				c = cmp.Compare(a.Name, b.Name)
			}

			if o.Direction == engine.Descending {
				c = -c
			}

			if c != 0 {
				return c
			}
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return result
}

func matches(v engine.HistoricVariable, q engine.HistoricVariableQuery) bool {
	switch {
	case q.ID() != "" && v.ID != q.ID():
		return false
	case q.ProcessInstanceID() != "" && v.ProcessInstanceID != q.ProcessInstanceID():
		return false
	case q.TaskID() != "" && v.TaskID != q.TaskID():
		return false
	case q.ExcludeTaskRelated() && v.TaskID != "":
		return false
	case q.ActivityInstanceID() != "" && v.ActivityInstanceID != q.ActivityInstanceID():
		return false
	case q.VariableName() != "" && v.Name != q.VariableName():
		return false
	case q.VariableNameLike() != "" && !like(v.Name, q.VariableNameLike(), true):
		return false
	}

	predicate, ok := q.ValuePredicate()
	if !ok {
		return true
	}

	return matchesValue(v, predicate)
}

func matchesValue(v engine.HistoricVariable, p engine.TypedValuePredicate) bool {
	if v.TypeName() != p.TypeName() {
		return p.Operator() == engine.OperatorNotEquals
	}

	want := p.Fields()

	switch p.Operator() {
	case engine.OperatorEquals:
		return fieldsEqual(v.Fields, want)
	case engine.OperatorNotEquals:
		return !fieldsEqual(v.Fields, want)
	case engine.OperatorLike, engine.OperatorLikeIgnoreCase:
		if v.Fields.TextValue == nil || want.TextValue == nil {
			return false
		}

		return like(*v.Fields.TextValue, *want.TextValue, p.CaseSensitive())
	default:
		return false
	}
}

func fieldsEqual(a, b engine.ValueFields) bool {
	return ptrEqual(a.TextValue, b.TextValue) &&
		ptrEqual(a.TextValue2, b.TextValue2) &&
		ptrEqual(a.LongValue, b.LongValue) &&
		ptrEqual(a.DoubleValue, b.DoubleValue)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func like(value, pattern string, caseSensitive bool) bool {
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), "%", ".*") + "$"
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	return regexp.MustCompile(expr).MatchString(value)
}
