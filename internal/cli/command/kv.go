package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/urfave/cli/v2"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under KEY",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("get: expected KEY, got %d arguments", c.NArg())
	}
	key := c.Args().First()
	if err := checkToken("key", key); err != nil {
		return err
	}

	client, err := Dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	value, err := client.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, value)
	return nil
}

// PutCommand returns the put command.
func PutCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Store VALUE under KEY",
		ArgsUsage: "KEY VALUE",
		Action:    putAction,
	}
}

func putAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("put: expected KEY VALUE, got %d arguments", c.NArg())
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	if err := checkToken("key", key); err != nil {
		return err
	}
	if err := checkToken("value", value); err != nil {
		return err
	}

	client, err := Dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Put(key, value); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

// ExecCommand returns the exec command, which sends its arguments as one
// raw request line.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send a raw request line and print the reply",
		ArgsUsage: "WORD...",
		Action:    execAction,
	}
}

func execAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("exec: expected a request line")
	}
	line := strings.Join(c.Args().Slice(), " ")

	client, err := Dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Execute(line)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply)
	return nil
}

// checkToken rejects keys and values the protocol cannot carry in a single
// whitespace-free token.
func checkToken(name, s string) error {
	if s == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s %q must not contain whitespace", name, s)
	}
	return nil
}
