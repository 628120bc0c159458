// Package main provides the entry point for linekv-cli.
//
// Usage:
//
//	linekv-cli [--server host:port] get KEY
//	linekv-cli [--server host:port] put KEY VALUE
//	linekv-cli [--server host:port] exec GET KEY
//	linekv-cli [--server host:port] [repl]
//
// Without a command the CLI starts an interactive session. The server
// address defaults to $LINEKV_SERVER, then 127.0.0.1:7070.
package main
