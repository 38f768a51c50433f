package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
)

// NewOperatorCommand returns the parent command of the operator subcommands.
func NewOperatorCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("operator", "Manage the roles allowed to invoke each operation.")
}

type OperatorSetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	operation string
	roleID    string
	revoke    bool
}

// NewOperatorSetCommand returns the operator set command.
func NewOperatorSetCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *OperatorSetCommand {
	c := &OperatorSetCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("set", "Grant an operation to a role (owner only).")
	c.Cmd.Arg("operation", "Operation name (e.g. setTitle) or its 0x ID.").Required().StringVar(&c.operation)
	c.Cmd.Arg("role-id", "ID of the role.").Required().StringVar(&c.roleID)
	c.Cmd.Flag("revoke", "Revoke the operation instead.").BoolVar(&c.revoke)

	return c
}

func (c OperatorSetCommand) Name() string { return c.Cmd.FullCommand() }

func (c OperatorSetCommand) Run(ctx context.Context) error {
	op, roleID, err := parseOperatorArgs(c.operation, c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.operators.SetOperator(ctx, operator.SetOperatorRequest{
		Caller:      c.rootCmd.CallerAddress(),
		OperationID: op,
		RoleID:      roleID,
		Allowed:     !c.revoke,
	})
	if err != nil {
		return fmt.Errorf("could not set operator: %w", err)
	}

	return c.rootCmd.Printer().PrintEvents(resp.Events)
}

type OperatorCheckCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	operation string
	roleID    string
}

// NewOperatorCheckCommand returns the operator check command.
func NewOperatorCheckCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *OperatorCheckCommand {
	c := &OperatorCheckCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("check", "Check if a role can invoke an operation.")
	c.Cmd.Arg("operation", "Operation name (e.g. setTitle) or its 0x ID.").Required().StringVar(&c.operation)
	c.Cmd.Arg("role-id", "ID of the role.").Required().StringVar(&c.roleID)

	return c
}

func (c OperatorCheckCommand) Name() string { return c.Cmd.FullCommand() }

func (c OperatorCheckCommand) Run(ctx context.Context) error {
	op, roleID, err := parseOperatorArgs(c.operation, c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	ok, err := eng.operators.IsOperator(ctx, op, roleID)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintCheck(ok)
}

type OperatorListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewOperatorListCommand returns the operator list command.
func NewOperatorListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *OperatorListCommand {
	c := &OperatorListCommand{rootCmd: rootCmd}
	c.Cmd = parent.Command("list", "List the operator grants.")
	return c
}

func (c OperatorListCommand) Name() string { return c.Cmd.FullCommand() }

func (c OperatorListCommand) Run(ctx context.Context) error {
	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	grants, err := eng.operators.ListOperators(ctx)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintOperators(grants)
}

type OperatorIDsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewOperatorIDsCommand returns the operator ids command.
func NewOperatorIDsCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *OperatorIDsCommand {
	c := &OperatorIDsCommand{rootCmd: rootCmd}
	c.Cmd = parent.Command("ids", "Show the IDs of the known operations.")
	return c
}

func (c OperatorIDsCommand) Name() string { return c.Cmd.FullCommand() }

func (c OperatorIDsCommand) Run(_ context.Context) error {
	return c.rootCmd.Printer().PrintOperations(model.Operations)
}

func parseOperatorArgs(operation, roleID string) (model.OperationID, model.RoleID, error) {
	op, err := model.ResolveOperationID(operation)
	if err != nil {
		return model.OperationID{}, 0, err
	}

	id, err := model.ParseRoleID(roleID)
	if err != nil {
		return model.OperationID{}, 0, err
	}

	return op, id, nil
}
