package config

import "time"

// Default configuration values.
const (
	DefaultListenAddr     = "127.0.0.1:7070"
	DefaultAdminAddr      = "127.0.0.1:7071"
	DefaultMaxConnections = 10000
	DefaultMaxLineBytes   = 4 * 1024
	DefaultReadChunkBytes = 4 * 1024
	DefaultEventBatchSize = 256
	DefaultPollTimeout    = 200 * time.Millisecond

	DefaultMaxReadsPerEvent = 16
	DefaultMaxPendingBytes  = 4 << 20

	DefaultTrackedClients = 1024

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 30
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Listen: ListenConfig{
				Addr:           DefaultListenAddr,
				MaxConnections: DefaultMaxConnections,
				MaxLineBytes:   DefaultMaxLineBytes,
				ReadChunkBytes: DefaultReadChunkBytes,
				EventBatchSize: DefaultEventBatchSize,
				PollTimeout:    DefaultPollTimeout,

				MaxReadsPerEvent: DefaultMaxReadsPerEvent,
				MaxPendingBytes:  DefaultMaxPendingBytes,
			},
			Admin: AdminConfig{
				Enabled: false,
				Addr:    DefaultAdminAddr,
			},
		},
		Limits: LimitsSection{
			TrackedClients: DefaultTrackedClients,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}
