package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/linekv/internal/cli/connection"
)

const prompt = "linekv> "

// Executor sends one request line to the server.
type Executor interface {
	Execute(line string) (string, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	exec      Executor
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory replaces the default ~/.linekv/history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		exec:      exec,
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory()
	}
	return r
}

// Run starts the REPL loop. It returns on exit, quit or end of input, and
// saves the history on the way out.
func (r *REPL) Run() error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}

	err := r.loop()
	if saveErr := r.history.Save(); saveErr != nil {
		fmt.Fprintf(r.output, "warning: save history: %v\n", saveErr)
	}
	return err
}

func (r *REPL) loop() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if err == io.EOF {
				return nil
			}
			continue
		}

		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		r.execute(line)
		if err == io.EOF {
			return nil
		}
	}
}

func (r *REPL) execute(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		r.help(fields[1:])
		return
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return
	}

	reply, err := r.exec.Execute(line)
	var serr *connection.ServerError
	switch {
	case errors.As(err, &serr):
		fmt.Fprintln(r.output, serr.Reply)
	case err != nil:
		fmt.Fprintf(r.output, "Error: %v\n", err)
	default:
		fmt.Fprintln(r.output, reply)
	}
}

func (r *REPL) help(args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no command matches %q\n", prefix)
		return
	}
	for _, cmd := range matches {
		fmt.Fprintf(r.output, "  %s\n", usage[cmd])
	}
}

var usage = map[string]string{
	"GET":     "GET <key>            fetch a value",
	"PUT":     "PUT <key> <value>    store a value",
	"help":    "help [prefix]        list commands",
	"history": "history              show previous lines",
	"exit":    "exit                 leave the shell",
	"quit":    "quit                 leave the shell",
}
