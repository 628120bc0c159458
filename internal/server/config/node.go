package config

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ResolveNodeID fills Server.NodeID with a fresh ULID when it is empty and
// returns the effective ID.
func ResolveNodeID(cfg *ServerConfig) string {
	if cfg.Server.NodeID == "" {
		cfg.Server.NodeID = NewNodeID()
	}
	return cfg.Server.NodeID
}

// NewNodeID returns a new lowercase ULID.
func NewNodeID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}
