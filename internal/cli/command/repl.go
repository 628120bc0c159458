package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/linekv/internal/cli/connection"
	"github.com/yndnr/linekv/internal/cli/repl"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start an interactive session",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	mgr := connection.NewManager(flags.Server, flags.Timeout)
	defer mgr.Disconnect()

	return repl.New(mgr, repl.WithIO(c.App.Reader, c.App.Writer)).Run()
}
