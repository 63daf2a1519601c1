package batch

import "log/slog"

// Config holds configuration for the Executor.
type Config struct {
	// VersionAttribute is the managed attribute holding the row's version
	// token. Default: "_version"
	VersionAttribute string

	// ModifiedAtAttribute is the managed attribute holding the row's last
	// modification time (RFC 3339). Default: "_modified_at"
	ModifiedAtAttribute string

	// TTLAttribute is the attribute holding the row's expiration as unix
	// seconds. Default: "ttl"
	TTLAttribute string

	// NumShards is the number of affinity buckets per table (or table group).
	// With the default of 1, a batch may reference any keys within one table
	// or group. Higher values model hash-partitioned deployments where a
	// batch must stay within one bucket.
	// Default: 1
	// Max: 256
	NumShards int

	// Logger receives executor diagnostics. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		VersionAttribute:    "_version",
		ModifiedAtAttribute: "_modified_at",
		TTLAttribute:        "ttl",
		NumShards:           1,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.VersionAttribute == "" {
		c.VersionAttribute = "_version"
	}
	if c.ModifiedAtAttribute == "" {
		c.ModifiedAtAttribute = "_modified_at"
	}
	if c.TTLAttribute == "" {
		c.TTLAttribute = "ttl"
	}
	if c.NumShards < 1 {
		c.NumShards = 1
	}
	if c.NumShards > 256 {
		c.NumShards = 256
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
