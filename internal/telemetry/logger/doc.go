// Package logger provides structured logging for linekv on top of log/slog.
//
//   - logger.go: Logger interface and construction
//   - level.go: shared level, changed at runtime by SetLevel
//   - output.go: handler and destination (stderr, writer, rotated file)
//   - default.go: package default logger
//   - context.go: admin request IDs
//   - redact.go: masking of stored values and secrets
//
// Stored values are never written to logs, only their size.
package logger
