// Package adminserver provides the HTTP admin endpoint for linekv.
//
// It uses the Go standard library net/http and serves:
//
//   - GET /health: liveness, node id and build version
//   - GET /ready: 503 until the line server is accepting clients
//   - GET /metrics: Prometheus text exposition
//
// The admin endpoint is disabled by default (server.admin.enabled).
package adminserver
