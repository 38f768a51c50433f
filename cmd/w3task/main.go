package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/w3task/cmd/w3task/commands"
	"github.com/slok/w3task/internal/log"
	loglogrus "github.com/slok/w3task/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("w3task", "Permissioned task and bounty engine.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Role subcommands.
	roleCmd := commands.NewRoleCommand(app)
	roleSetCmd := commands.NewRoleSetCommand(rootCmd, roleCmd)
	roleCheckCmd := commands.NewRoleCheckCommand(rootCmd, roleCmd)
	roleMembersCmd := commands.NewRoleMembersCommand(rootCmd, roleCmd)

	// Operator subcommands.
	operatorCmd := commands.NewOperatorCommand(app)
	operatorSetCmd := commands.NewOperatorSetCommand(rootCmd, operatorCmd)
	operatorCheckCmd := commands.NewOperatorCheckCommand(rootCmd, operatorCmd)
	operatorListCmd := commands.NewOperatorListCommand(rootCmd, operatorCmd)
	operatorIDsCmd := commands.NewOperatorIDsCommand(rootCmd, operatorCmd)

	// Task subcommands.
	taskCmd := commands.NewTaskCommand(app)
	taskCreateCmd := commands.NewTaskCreateCommand(rootCmd, taskCmd)
	taskGetCmd := commands.NewTaskGetCommand(rootCmd, taskCmd)
	taskListCmd := commands.NewTaskListCommand(rootCmd, taskCmd)

	policyCmd := commands.NewPolicyCommand(app)
	policyApplyCmd := commands.NewPolicyApplyCommand(rootCmd, policyCmd)

	serveCmd := commands.NewServeCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		roleSetCmd.Name():       roleSetCmd,
		roleCheckCmd.Name():     roleCheckCmd,
		roleMembersCmd.Name():   roleMembersCmd,
		operatorSetCmd.Name():   operatorSetCmd,
		operatorCheckCmd.Name(): operatorCheckCmd,
		operatorListCmd.Name():  operatorListCmd,
		operatorIDsCmd.Name():   operatorIDsCmd,
		taskCreateCmd.Name():    taskCreateCmd,
		taskGetCmd.Name():       taskGetCmd,
		taskListCmd.Name():      taskListCmd,
		policyApplyCmd.Name():   policyApplyCmd,
		serveCmd.Name():         serveCmd,
	}

	// Field setters and lifecycle actions share their command implementation.
	for _, field := range []string{"title", "description", "end-date", "metadata"} {
		cmd := commands.NewTaskSetCommand(rootCmd, taskCmd, field)
		cmds[cmd.Name()] = cmd
	}
	for _, action := range []string{"start", "review", "complete", "cancel"} {
		cmd := commands.NewTaskLifecycleCommand(rootCmd, taskCmd, action)
		cmds[cmd.Name()] = cmd
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Only the server logs by default, the rest of the commands print their
	// result and logging would mix with it. Users can still enable logging with --debug.
	if cmdName != serveCmd.Name() && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(_ context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
