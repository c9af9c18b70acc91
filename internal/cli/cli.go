// Package cli implements the seatplan command-line interface: the plan
// server and a set of commands that edit a local floor plan.
package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kirinyoku/seatplan/internal/editor"
	"github.com/kirinyoku/seatplan/internal/gateway"
	"github.com/kirinyoku/seatplan/internal/planner"
)

// =============================================================================
// Constants
// =============================================================================

const (
	appName = "seatplan"

	// serverEnv names the plan server when --server is not given.
	serverEnv = "SEATPLAN_SERVER"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	file   string
	server string
	planID string

	// httpClient is used for the plan server; nil means the gateway default.
	httpClient *http.Client
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slogger returns the CLI logger as a slog.Logger for packages that log
// through the standard interface.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Seatplan lays out tables and guests in a banquet hall",
		Long:         `Seatplan edits a banquet hall floor plan: tables, chairs and guest seating. Plans are kept in a local file and can be shared through the plan server.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.file, "file", "", "local plan file (default ~/.config/seatplan/plan.json)")
	root.PersistentFlags().StringVar(&c.server, "server", os.Getenv(serverEnv), "plan server base URL")
	root.PersistentFlags().StringVar(&c.planID, "plan", "", "shared plan id to open instead of the local file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.planCommand())

	return root
}

// gateway builds the persistence gateway from the global flags.
func (c *CLI) gateway() (*gateway.Gateway, error) {
	local, err := gateway.NewLocalStore(c.file, c.slogger())
	if err != nil {
		return nil, err
	}

	var remote *gateway.RemoteClient
	if c.server != "" {
		remote = gateway.NewRemoteClient(c.server, c.httpClient)
	}

	return gateway.New(local, remote, c.planID), nil
}

// openSession opens the plan the way the planner page does on start.
func (c *CLI) openSession(ctx context.Context) (*editor.Session, *gateway.Gateway, error) {
	gw, err := c.gateway()
	if err != nil {
		return nil, nil, err
	}

	s := editor.Open(ctx, planner.New(nil), gw, c.slogger())
	c.Logger.Debug("plan opened", "source", s.Source(), "tables", len(s.Tables()))

	return s, gw, nil
}
