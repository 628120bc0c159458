// Package lineserver provides the newline-delimited key-value server for linekv.
//
// One goroutine runs an edge-triggered, one-shot event loop over every client
// socket; there is no goroutine per connection.
//
//   - codec.go: command line parsing and response lines
//   - conn.go: per-connection inbound accumulator, outbound queue and interest
//   - registry.go: generation-tagged handle table
//   - limiter.go: per-client-IP command rate limiting
//   - server.go: accept, dispatch, apply and re-registration
//
// Supported commands:
//   - GET <key>          -> <value> | ERR not found
//   - PUT <key> <value>  -> OK
//
// Anything else is answered with "ERR invalid command" and the connection
// stays open.
package lineserver
