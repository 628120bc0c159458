// Package metric provides Prometheus metrics for linekv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric registry and HTTP handler
//   - collector.go: build and uptime collector
//
// Metrics include:
//
//   - Connection gauges and accept/reject/close counters
//   - Command counters by operation and result
//   - Socket byte counters and poll batch sizes
//   - Store key count
//
// Every Registry owns a private prometheus.Registry, so tests and multiple
// servers in one process never collide. Metrics are exposed at /metrics by the
// admin server.
package metric
