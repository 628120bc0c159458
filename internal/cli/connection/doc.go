// Package connection provides the linekv-cli transport.
//
//   - client.go: TCP client for the newline GET/PUT protocol
//   - manager.go: reconnecting wrapper used by the interactive mode
//
// Replies starting with "ERR " are returned as *ServerError so callers can
// tell protocol errors from transport failures.
package connection
