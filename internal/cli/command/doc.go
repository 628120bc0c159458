// Package command provides the linekv-cli command tree.
//
// It uses urfave/cli/v2:
//
//   - root.go: application, global flags, default to interactive mode
//   - kv.go: get, put and exec one-shot commands
//   - repl.go: interactive mode
package command
