package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
	"github.com/slok/w3task/internal/printer"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// FormatTable is the table output format.
	FormatTable = "table"
	// FormatJSON is the JSON output format.
	FormatJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	Owner      string
	Caller     string
	Format     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".w3task", "w3task.db")
	app.Flag("db-path", "Path to the SQLite database file.").Envar("W3TASK_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("owner", "Address of the administrator, without it roles and operators are read only.").StringVar(&c.Owner)
	app.Flag("caller", "Address of the caller, defaults to the owner.").StringVar(&c.Caller)
	app.Flag("format", "Output format.").Default(FormatTable).EnumVar(&c.Format, FormatTable, FormatJSON)

	return c
}

// CallerAddress returns the normalized caller address.
func (r RootCommand) CallerAddress() model.Address {
	if r.Caller == "" {
		return model.NormalizeAddress(r.Owner)
	}
	return model.NormalizeAddress(r.Caller)
}

// Printer returns the printer for the selected output format.
func (r RootCommand) Printer() printer.Printer {
	if r.Format == FormatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}
