package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
)

// NewRoleCommand returns the parent command of the role subcommands.
func NewRoleCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("role", "Manage role members.")
}

type RoleSetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	roleID  string
	address string
	revoke  bool
}

// NewRoleSetCommand returns the role set command.
func NewRoleSetCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *RoleSetCommand {
	c := &RoleSetCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("set", "Add an address to a role (owner only).")
	c.Cmd.Arg("role-id", "ID of the role, 0 and 1 are reserved.").Required().StringVar(&c.roleID)
	c.Cmd.Arg("address", "Address of the member.").Required().StringVar(&c.address)
	c.Cmd.Flag("revoke", "Remove the address from the role instead.").BoolVar(&c.revoke)

	return c
}

func (c RoleSetCommand) Name() string { return c.Cmd.FullCommand() }

func (c RoleSetCommand) Run(ctx context.Context) error {
	roleID, err := model.ParseRoleID(c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.roles.SetAuthorization(ctx, role.SetAuthorizationRequest{
		Caller:   c.rootCmd.CallerAddress(),
		RoleID:   roleID,
		Address:  model.NormalizeAddress(c.address),
		IsMember: !c.revoke,
	})
	if err != nil {
		return fmt.Errorf("could not set role member: %w", err)
	}

	return c.rootCmd.Printer().PrintEvents(resp.Events)
}

type RoleCheckCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	roleID  string
	address string
}

// NewRoleCheckCommand returns the role check command.
func NewRoleCheckCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *RoleCheckCommand {
	c := &RoleCheckCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("check", "Check if an address is a member of a role.")
	c.Cmd.Arg("role-id", "ID of the role.").Required().StringVar(&c.roleID)
	c.Cmd.Arg("address", "Address to check.").Required().StringVar(&c.address)

	return c
}

func (c RoleCheckCommand) Name() string { return c.Cmd.FullCommand() }

func (c RoleCheckCommand) Run(ctx context.Context) error {
	roleID, err := model.ParseRoleID(c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	ok, err := eng.roles.IsMember(ctx, roleID, model.NormalizeAddress(c.address))
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintCheck(ok)
}

type RoleMembersCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	roleID string
}

// NewRoleMembersCommand returns the role members command.
func NewRoleMembersCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *RoleMembersCommand {
	c := &RoleMembersCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("members", "List the members of a role.")
	c.Cmd.Arg("role-id", "ID of the role.").Required().StringVar(&c.roleID)

	return c
}

func (c RoleMembersCommand) Name() string { return c.Cmd.FullCommand() }

func (c RoleMembersCommand) Run(ctx context.Context) error {
	roleID, err := model.ParseRoleID(c.roleID)
	if err != nil {
		return err
	}

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	members, err := eng.roles.ListMembers(ctx, roleID)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer().PrintMembers(roleID, members)
}
