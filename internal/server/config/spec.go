package config

import "time"

// ServerConfig is the root configuration for linekv-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Limits LimitsSection `koanf:"limits"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	// NodeID names this instance in logs and metrics.
	// If empty, a ULID is generated at startup.
	NodeID string       `koanf:"node_id"`
	Listen ListenConfig `koanf:"listen"`
	Admin  AdminConfig  `koanf:"admin"`
}

// ListenConfig configures the line protocol listener and its event loop.
type ListenConfig struct {
	Addr           string        `koanf:"addr"`
	Backlog        int           `koanf:"backlog"`
	MaxConnections int           `koanf:"max_connections"`
	MaxLineBytes   int           `koanf:"max_line_bytes"`
	ReadChunkBytes int           `koanf:"read_chunk_bytes"`
	EventBatchSize int           `koanf:"event_batch_size"`
	PollTimeout    time.Duration `koanf:"poll_timeout"`

	// MaxReadsPerEvent bounds how long one client can hold the event loop.
	MaxReadsPerEvent int `koanf:"max_reads_per_event"`
	// MaxPendingBytes is the unsent response backlog at which a client
	// stops being read until it catches up.
	MaxPendingBytes int `koanf:"max_pending_bytes"`
}

// AdminConfig configures the HTTP admin endpoint (health, readiness, metrics).
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LimitsSection configures per-client limits.
type LimitsSection struct {
	// CommandsPerSecond is the per-IP command rate. 0 disables limiting.
	CommandsPerSecond int `koanf:"commands_per_second"`
	// Burst is the token bucket depth. 0 uses CommandsPerSecond.
	Burst int `koanf:"burst"`
	// TrackedClients bounds how many client IPs keep a bucket.
	TrackedClients int `koanf:"tracked_clients"`
}

// LogSection configures logging.
type LogSection struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}
