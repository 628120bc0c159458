package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrInvalidConfig is wrapped by every Verify failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	l := &cfg.Listen
	if err := verifyAddr("server.listen.addr", l.Addr); err != nil {
		return err
	}
	if l.Backlog < 0 {
		return invalid("server.listen.backlog must not be negative")
	}
	if l.MaxConnections < 0 {
		return invalid("server.listen.max_connections must not be negative")
	}
	if l.MaxLineBytes < 16 {
		return invalid("server.listen.max_line_bytes must be at least 16")
	}
	if l.ReadChunkBytes < 1 {
		return invalid("server.listen.read_chunk_bytes must be positive")
	}
	if l.EventBatchSize < 1 {
		return invalid("server.listen.event_batch_size must be positive")
	}
	if l.PollTimeout <= 0 {
		return invalid("server.listen.poll_timeout must be positive")
	}
	if l.MaxReadsPerEvent < 1 {
		return invalid("server.listen.max_reads_per_event must be positive")
	}
	if l.MaxPendingBytes < l.MaxLineBytes {
		return invalid("server.listen.max_pending_bytes must be at least max_line_bytes")
	}

	if cfg.Admin.Enabled {
		if err := verifyAddr("server.admin.addr", cfg.Admin.Addr); err != nil {
			return err
		}
		if cfg.Admin.Addr == l.Addr {
			return invalid("server.admin.addr conflicts with server.listen.addr")
		}
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.CommandsPerSecond < 0 {
		return invalid("limits.commands_per_second must not be negative")
	}
	if cfg.Burst < 0 {
		return invalid("limits.burst must not be negative")
	}
	if cfg.CommandsPerSecond > 0 && cfg.TrackedClients < 1 {
		return invalid("limits.tracked_clients must be positive when rate limiting is enabled")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return invalid(fmt.Sprintf("log.format %q is not one of json, text", cfg.Format))
	}
	if cfg.File != "" && cfg.MaxSizeMB < 1 {
		return invalid("log.max_size_mb must be positive when log.file is set")
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return invalid(name + " is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return invalid(fmt.Sprintf("%s %q: %v", name, addr, err))
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return invalid(fmt.Sprintf("%s %q: invalid port", name, addr))
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
