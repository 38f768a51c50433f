package commands

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/w3task/internal/app/task"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
)

// NewTaskCommand returns the parent command of the task subcommands.
func NewTaskCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("task", "Manage tasks.")
}

type TaskCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	title       string
	description string
	reward      string
	endDate     string
	authorized  []string
	creator     string
	assignee    string
	metadata    string
}

// NewTaskCreateCommand returns the task create command.
func NewTaskCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskCreateCommand {
	c := &TaskCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a new task.")
	c.Cmd.Flag("title", "Title of the task.").Required().StringVar(&c.title)
	c.Cmd.Flag("description", "Description of the task.").StringVar(&c.description)
	c.Cmd.Flag("reward", "Reward of the task in its smallest unit.").Default("0").StringVar(&c.reward)
	c.Cmd.Flag("end-date", "End date of the task (RFC3339 or YYYY-MM-DD).").StringVar(&c.endDate)
	c.Cmd.Flag("authorized", "Roles that can operate the task (repeatable or comma separated).").StringsVar(&c.authorized)
	c.Cmd.Flag("creator", "Role that created the task, the only one able to complete it.").Required().StringVar(&c.creator)
	c.Cmd.Flag("assignee", "Address of the assignee.").StringVar(&c.assignee)
	c.Cmd.Flag("metadata", "Free form metadata (e.g. an URI).").StringVar(&c.metadata)

	return c
}

func (c TaskCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCreateCommand) Run(ctx context.Context) error {
	reward, err := parseReward(c.reward)
	if err != nil {
		return err
	}

	endDate, err := model.ParseEndDate(c.endDate)
	if err != nil {
		return err
	}

	authorized, err := parseRoleIDs(c.authorized)
	if err != nil {
		return err
	}

	creator, err := model.ParseRoleID(c.creator)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.tasks.CreateTask(ctx, task.CreateTaskRequest{
		Caller:      c.rootCmd.CallerAddress(),
		Title:       c.title,
		Description: c.description,
		Reward:      reward,
		EndDate:     endDate,
		Authorized:  authorized,
		Creator:     creator,
		Assignee:    model.NormalizeAddress(c.assignee),
		Metadata:    c.metadata,
	})
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	return c.rootCmd.Printer().PrintTask(resp.Task)
}

type TaskGetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewTaskGetCommand returns the task get command.
func NewTaskGetCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskGetCommand {
	c := &TaskGetCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("get", "Show a task.")
	c.Cmd.Arg("id", "ID of the task.").Required().StringVar(&c.taskID)

	return c
}

func (c TaskGetCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskGetCommand) Run(ctx context.Context) error {
	id, err := parseTaskID(c.taskID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	t, err := eng.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintTask(*t)
}

type TaskListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	status string
}

// NewTaskListCommand returns the task list command.
func NewTaskListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskListCommand {
	c := &TaskListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List tasks.")
	c.Cmd.Flag("status", "Filter by status (created, progress, review, completed, canceled).").StringVar(&c.status)

	return c
}

func (c TaskListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskListCommand) Run(ctx context.Context) error {
	var filter model.TaskFilter
	if c.status != "" {
		status, err := model.ParseTaskStatus(c.status)
		if err != nil {
			return err
		}
		filter.Status = &status
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	ts, err := eng.tasks.ListTasks(ctx, filter)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintTasks(ts)
}

// Task fields that can be changed.
const (
	taskFieldTitle       = "title"
	taskFieldDescription = "description"
	taskFieldEndDate     = "end-date"
	taskFieldMetadata    = "metadata"
)

type TaskSetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	field   string

	taskID string
	roleID string
	value  string
}

// NewTaskSetCommand returns the command that changes a single field of a task.
func NewTaskSetCommand(rootCmd *RootCommand, parent *kingpin.CmdClause, field string) *TaskSetCommand {
	c := &TaskSetCommand{rootCmd: rootCmd, field: field}

	c.Cmd = parent.Command("set-"+field, fmt.Sprintf("Change the %s of a task.", strings.ReplaceAll(field, "-", " ")))
	c.Cmd.Arg("id", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("role-id", "Role the caller acts as.").Required().StringVar(&c.roleID)
	c.Cmd.Arg("value", "New value.").Required().StringVar(&c.value)

	return c
}

func (c TaskSetCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskSetCommand) Run(ctx context.Context) error {
	req, err := taskRequest(c.rootCmd, c.taskID, c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	var resp *task.TaskResponse
	switch c.field {
	case taskFieldTitle:
		resp, err = eng.tasks.SetTitle(ctx, req, c.value)
	case taskFieldDescription:
		resp, err = eng.tasks.SetDescription(ctx, req, c.value)
	case taskFieldMetadata:
		resp, err = eng.tasks.SetMetadata(ctx, req, c.value)
	case taskFieldEndDate:
		endDate, perr := model.ParseEndDate(c.value)
		if perr != nil {
			return perr
		}
		resp, err = eng.tasks.SetEndDate(ctx, req, endDate)
	default:
		return fmt.Errorf("unknown task field %q", c.field)
	}
	if err != nil {
		return fmt.Errorf("could not set task %s: %w", c.field, err)
	}

	return c.rootCmd.Printer().PrintEvents(resp.Events)
}

// Task lifecycle actions.
const (
	taskActionStart    = "start"
	taskActionReview   = "review"
	taskActionComplete = "complete"
	taskActionCancel   = "cancel"
)

var taskActionHelp = map[string]string{
	taskActionStart:    "Start a created task.",
	taskActionReview:   "Send a task in progress to review.",
	taskActionComplete: "Confirm the completion of a task in review, two different confirmers complete it.",
	taskActionCancel:   "Cancel a task that is not concluded.",
}

type TaskLifecycleCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	action  string

	taskID string
	roleID string
}

// NewTaskLifecycleCommand returns the command that runs a lifecycle action over a task.
func NewTaskLifecycleCommand(rootCmd *RootCommand, parent *kingpin.CmdClause, action string) *TaskLifecycleCommand {
	c := &TaskLifecycleCommand{rootCmd: rootCmd, action: action}

	c.Cmd = parent.Command(action, taskActionHelp[action])
	c.Cmd.Arg("id", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("role-id", "Role the caller acts as.").Required().StringVar(&c.roleID)

	return c
}

func (c TaskLifecycleCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskLifecycleCommand) Run(ctx context.Context) error {
	req, err := taskRequest(c.rootCmd, c.taskID, c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	var resp *task.TaskResponse
	switch c.action {
	case taskActionStart:
		resp, err = eng.tasks.StartTask(ctx, req)
	case taskActionReview:
		resp, err = eng.tasks.ReviewTask(ctx, req)
	case taskActionComplete:
		resp, err = eng.tasks.CompleteTask(ctx, req)
	case taskActionCancel:
		resp, err = eng.tasks.CancelTask(ctx, req)
	default:
		return fmt.Errorf("unknown task action %q", c.action)
	}
	if err != nil {
		return fmt.Errorf("could not %s task: %w", c.action, err)
	}

	if len(resp.Events) == 0 {
		return c.rootCmd.Printer().PrintMessage(fmt.Sprintf("Task %d is %s", resp.Task.ID, resp.Task.Status))
	}
	return c.rootCmd.Printer().PrintEvents(resp.Events)
}

func taskRequest(rootCmd *RootCommand, taskID, roleID string) (task.TaskRequest, error) {
	id, err := parseTaskID(taskID)
	if err != nil {
		return task.TaskRequest{}, err
	}

	role, err := model.ParseRoleID(roleID)
	if err != nil {
		return task.TaskRequest{}, err
	}

	return task.TaskRequest{
		Caller: rootCmd.CallerAddress(),
		TaskID: id,
		RoleID: role,
	}, nil
}

func parseTaskID(s string) (model.TaskID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", s, model.ErrNotValid)
	}
	return model.TaskID(id), nil
}

func parseReward(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}

	r, ok := new(big.Int).SetString(strings.ReplaceAll(s, "_", ""), 10)
	if !ok {
		return nil, fmt.Errorf("invalid reward %q: %w", s, model.ErrNotValid)
	}
	return r, nil
}

// parseRoleIDs parses role IDs from repeated or comma separated values.
func parseRoleIDs(values []string) ([]model.RoleID, error) {
	var ids []model.RoleID
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			id, err := model.ParseRoleID(s)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
