package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for protocol commands and builtins.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"GET", "PUT",
			"help", "history", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix. Matching ignores case
// so "g" suggests "GET".
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if len(prefix) <= len(cmd) && strings.EqualFold(cmd[:len(prefix)], prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
