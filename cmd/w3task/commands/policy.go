package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/w3task/internal/app/policy"
	"github.com/slok/w3task/internal/events"
	storageio "github.com/slok/w3task/internal/storage/io"
)

// NewPolicyCommand returns the parent command of the policy subcommands.
func NewPolicyCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("policy", "Manage role and operator policies.")
}

type PolicyApplyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file string
}

// NewPolicyApplyCommand returns the policy apply command.
func NewPolicyApplyCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *PolicyApplyCommand {
	c := &PolicyApplyCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("apply", "Apply the role members and operator grants of a YAML policy (owner only).")
	c.Cmd.Arg("file", "Path to the policy YAML file.").Required().StringVar(&c.file)

	return c
}

func (c PolicyApplyCommand) Name() string { return c.Cmd.FullCommand() }

func (c PolicyApplyCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	eng, err := newEngine(ctx, c.rootCmd, events.NoopPublisher)
	if err != nil {
		return err
	}
	defer eng.Close()

	absPath, err := filepath.Abs(c.file)
	if err != nil {
		return fmt.Errorf("could not resolve policy path: %w", err)
	}

	svc, err := policy.NewService(policy.ServiceConfig{
		Repository: storageio.NewPolicyYAMLRepository(os.DirFS(filepath.Dir(absPath))),
		Roles:      eng.roles,
		Operators:  eng.operators,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	resp, err := svc.Apply(ctx, policy.ApplyRequest{
		Caller: c.rootCmd.CallerAddress(),
		Path:   filepath.Base(absPath),
	})
	if err != nil {
		return fmt.Errorf("could not apply policy: %w", err)
	}

	return c.rootCmd.Printer().PrintEvents(resp.Events)
}
