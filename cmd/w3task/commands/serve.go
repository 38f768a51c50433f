package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/httpapi"
	"github.com/slok/w3task/internal/log"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddress string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the HTTP API.")
	c.Cmd.Flag("listen-address", "Address the HTTP API listens on.").Default(":8080").StringVar(&c.listenAddress)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	bus := events.NewBus()
	defer bus.Close()

	eng, err := newEngine(ctx, c.rootCmd, bus)
	if err != nil {
		return err
	}
	defer eng.Close()

	handler, err := httpapi.NewHandler(httpapi.HandlerConfig{
		Roles:     eng.roles,
		Operators: eng.operators,
		Tasks:     eng.tasks,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create HTTP handler: %w", err)
	}

	var g run.Group

	// Context cancellation.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Event log.
	{
		evCh := bus.SubscribeAll(0)
		g.Add(
			func() error {
				for env := range evCh {
					logger.WithValues(log.Kv{"event-id": env.ID}).Infof("Event: %s", env.Event)
				}
				return nil
			},
			func(_ error) {
				bus.Close()
			},
		)
	}

	// HTTP server.
	{
		server := &http.Server{
			Addr:              c.listenAddress,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(
			func() error {
				logger.Infof("HTTP API listening on %s", c.listenAddress)
				err := server.ListenAndServe()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(ctx)
			},
		)
	}

	return g.Run()
}
