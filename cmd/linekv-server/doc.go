// Package main provides the entry point for linekv-server.
//
// The server runs a single event loop that multiplexes every client socket
// and serves the newline GET/PUT protocol from an in-memory map. Optionally
// it also exposes an HTTP admin endpoint with health, readiness and
// Prometheus metrics.
//
// Usage:
//
//	linekv-server [flags]
//	linekv-server -config /etc/linekv/server.yaml
//	linekv-server -listen 0.0.0.0:7070 -admin 127.0.0.1:7071
//
// Every setting can be overridden from the environment with the LINEKV_
// prefix, using "__" between path segments:
//
//	LINEKV_SERVER__LISTEN__ADDR=0.0.0.0:7070
//	LINEKV_LOG__LEVEL=debug
package main
