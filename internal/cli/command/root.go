package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/linekv/internal/cli/connection"
	"github.com/yndnr/linekv/internal/infra/buildinfo"
)

// DefaultServer is the address used when neither --server nor
// LINEKV_SERVER is set.
const DefaultServer = "127.0.0.1:7070"

// App creates the CLI application. Without a command it starts the
// interactive mode.
func App() *cli.App {
	return &cli.App{
		Name:    "linekv-cli",
		Usage:   "linekv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			PutCommand(),
			ExecCommand(),
			ReplCommand(),
		},
		Action: rootAction,
	}
}

func rootAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	return replAction(c)
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "linekv server address (host:port)",
			EnvVars: []string{"LINEKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and per-request timeout (0 disables)",
			EnvVars: []string{"LINEKV_TIMEOUT"},
			Value:   connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
	}
}

// Dial connects a one-shot client using the global flags.
func Dial(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)
	client := connection.NewClient(flags.Server, flags.Timeout)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}
