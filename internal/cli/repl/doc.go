// Package repl provides the interactive mode of linekv-cli.
//
//   - repl.go: read-eval-print loop and builtins
//   - completer.go: command name completion used by "help"
//   - history.go: history persisted under ~/.linekv/history
//
// Lines that are not builtins are sent to the server verbatim.
package repl
