package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/process-engine-kernel/engine"
	"github.com/AntonStoeckl/process-engine-kernel/engine/commandexecutor"
	"github.com/AntonStoeckl/process-engine-kernel/features/query/historicvariables"
)

// VariablesOptions holds the query flags shared by count and list.
type VariablesOptions struct {
	*RootOptions

	ID                   string
	ProcessInstanceID    string
	TaskID               string
	ActivityInstanceID   string
	Name                 string
	NameLike             string
	ExcludeTaskVariables bool
	ValueEquals          string
	ValueNotEquals       string
	ValueLike            string
	ValueLikeIgnoreCase  string

	OrderBy    []string
	Offset     int
	MaxResults int
	SkipValues bool
}

// NewVariablesCommand creates the "variables" command group.
func NewVariablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variables",
		Short: "Query historic variable instances",
	}

	cmd.AddCommand(newVariablesCountCommand(rootOpts))
	cmd.AddCommand(newVariablesListCommand(rootOpts))

	return cmd
}

func newVariablesCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count historic variables matching the criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := opts.query()
			if err != nil {
				return err
			}

			return withRuntime(cmd, opts.RootOptions, func(cmd *cobra.Command, runtime *Runtime) error {
				count, err := commandexecutor.Execute(cmd.Context(), runtime.Executor, historicvariables.BuildCountCommand(query))
				if err != nil {
					return err
				}

				return writeResult(cmd.OutOrStdout(), opts.Output, map[string]int64{"count": count}, func() string {
					return fmt.Sprint(count)
				})
			})
		},
	}

	addCriteriaFlags(cmd, opts)

	return cmd
}

func newVariablesListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List historic variables matching the criteria",
		Example: `  enginectl variables list --process-instance-id P1 --order-by name:desc --max-results 20
  enginectl variables list --value-equals amount=100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := opts.query()
			if err != nil {
				return err
			}

			page, err := engine.NewPage(opts.Offset, opts.MaxResults)
			if err != nil {
				return err
			}

			return withRuntime(cmd, opts.RootOptions, func(cmd *cobra.Command, runtime *Runtime) error {
				variables, err := commandexecutor.Execute(cmd.Context(), runtime.Executor, historicvariables.BuildListCommand(query, page))
				if err != nil {
					return err
				}

				views := toVariableViews(variables)

				return writeResult(cmd.OutOrStdout(), opts.Output, views, func() string {
					return renderVariables(views)
				})
			})
		},
	}

	addCriteriaFlags(cmd, opts)
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order-by", nil,
		"ordering as property[:asc|:desc], property is name or process-instance-id (repeatable)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of results to skip")
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", 0, "maximum number of results, 0 means no limit")
	cmd.Flags().BoolVar(&opts.SkipValues, "skip-values", false, "do not deserialize variable values")

	return cmd
}

func addCriteriaFlags(cmd *cobra.Command, opts *VariablesOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.ID, "id", "", "variable instance id")
	flags.StringVar(&opts.ProcessInstanceID, "process-instance-id", "", "process instance id")
	flags.StringVar(&opts.TaskID, "task-id", "", "task id")
	flags.StringVar(&opts.ActivityInstanceID, "activity-instance-id", "", "activity instance id")
	flags.StringVar(&opts.Name, "name", "", "variable name")
	flags.StringVar(&opts.NameLike, "name-like", "", "variable name pattern with % as wildcard")
	flags.BoolVar(&opts.ExcludeTaskVariables, "exclude-task-variables", false, "only variables not bound to a task")
	flags.StringVar(&opts.ValueEquals, "value-equals", "", "name=value, value is typed (e.g. 100, true, null, \"100\")")
	flags.StringVar(&opts.ValueNotEquals, "value-not-equals", "", "name=value")
	flags.StringVar(&opts.ValueLike, "value-like", "", "name=pattern, string values only")
	flags.StringVar(&opts.ValueLikeIgnoreCase, "value-like-ignore-case", "", "name=pattern, string values only")
}

// query builds the finalized query from the flags.
func (o *VariablesOptions) query() (engine.HistoricVariableQuery, error) {
	b := engine.BuildHistoricVariableQuery()

	if o.ID != "" {
		b = b.ID(o.ID)
	}

	if o.ProcessInstanceID != "" {
		b = b.ProcessInstanceID(o.ProcessInstanceID)
	}

	if o.TaskID != "" {
		b = b.TaskID(o.TaskID)
	}

	if o.ActivityInstanceID != "" {
		b = b.ActivityInstanceID(o.ActivityInstanceID)
	}

	if o.Name != "" {
		b = b.VariableName(o.Name)
	}

	if o.NameLike != "" {
		b = b.VariableNameLike(o.NameLike)
	}

	if o.ExcludeTaskVariables {
		b = b.ExcludeTaskVariables()
	}

	if o.SkipValues {
		b = b.ExcludeVariableInitialization()
	}

	b, err := o.withValuePredicate(b)
	if err != nil {
		return engine.HistoricVariableQuery{}, err
	}

	for _, ordering := range o.OrderBy {
		if b, err = withOrdering(b, ordering); err != nil {
			return engine.HistoricVariableQuery{}, err
		}
	}

	return b.Finalize()
}

func (o *VariablesOptions) withValuePredicate(b engine.HistoricVariableQueryBuilder) (engine.HistoricVariableQueryBuilder, error) {
	switch {
	case o.ValueEquals != "":
		name, value, err := parseAssignment(o.ValueEquals)
		if err != nil {
			return b, err
		}

		return b.VariableValueEquals(name, parseValue(value)), nil

	case o.ValueNotEquals != "":
		name, value, err := parseAssignment(o.ValueNotEquals)
		if err != nil {
			return b, err
		}

		return b.VariableValueNotEquals(name, parseValue(value)), nil

	case o.ValueLike != "":
		name, pattern, err := parseAssignment(o.ValueLike)
		if err != nil {
			return b, err
		}

		return b.VariableValueLike(name, pattern), nil

	case o.ValueLikeIgnoreCase != "":
		name, pattern, err := parseAssignment(o.ValueLikeIgnoreCase)
		if err != nil {
			return b, err
		}

		return b.VariableValueLikeIgnoreCase(name, pattern), nil

	default:
		return b, nil
	}
}

func withOrdering(b engine.HistoricVariableQueryBuilder, ordering string) (engine.HistoricVariableQueryBuilder, error) {
	property, direction, _ := strings.Cut(ordering, ":")

	switch property {
	case "name":
		b = b.OrderByVariableName()
	case "process-instance-id":
		b = b.OrderByProcessInstanceID()
	default:
		return b, fmt.Errorf("unknown ordering property %q", property)
	}

	switch direction {
	case "", "asc":
		return b.Asc(), nil
	case "desc":
		return b.Desc(), nil
	default:
		return b, fmt.Errorf("unknown ordering direction %q", direction)
	}
}

type variableView struct {
	ID                 string    `json:"id"`
	ProcessInstanceID  string    `json:"processInstanceId,omitempty"`
	ExecutionID        string    `json:"executionId,omitempty"`
	TaskID             string    `json:"taskId,omitempty"`
	ActivityInstanceID string    `json:"activityInstanceId,omitempty"`
	Name               string    `json:"name"`
	Type               string    `json:"type,omitempty"`
	Revision           int       `json:"revision"`
	Value              any       `json:"value"`
	Deserialized       bool      `json:"deserialized"`
	CreateTime         time.Time `json:"createTime"`
}

func toVariableViews(variables []*engine.HistoricVariable) []variableView {
	views := make([]variableView, 0, len(variables))

	for _, v := range variables {
		m := v.Materialization()

		views = append(views, variableView{
			ID:                 v.ID,
			ProcessInstanceID:  v.ProcessInstanceID,
			ExecutionID:        v.ExecutionID,
			TaskID:             v.TaskID,
			ActivityInstanceID: v.ActivityInstanceID,
			Name:               v.Name,
			Type:               v.TypeName(),
			Revision:           v.Revision,
			Value:              m.Value(),
			Deserialized:       m.IsDeserialized(),
			CreateTime:         v.CreateTime,
		})
	}

	return views
}

func renderVariables(views []variableView) string {
	rows := make([]table.Row, 0, len(views))

	for _, v := range views {
		value := "<not deserialized>"
		if v.Deserialized {
			value = fmt.Sprint(v.Value)
		}

		rows = append(rows, table.Row{v.ID, v.ProcessInstanceID, v.Name, v.Type, value})
	}

	var sb strings.Builder
	writeTable(&sb, table.Row{"ID", "Process Instance", "Name", "Type", "Value"}, rows)

	return strings.TrimSuffix(sb.String(), "\n")
}
