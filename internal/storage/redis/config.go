package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Match lock settings. LockTTL bounds how long a crashed holder can block
	// a match; holders refresh it while they run.
	LockTTL           time.Duration
	LockWait          time.Duration
	LockRetryInterval time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:               "redis://localhost:6379",
		PoolSize:          10,
		MinIdleConns:      2,
		LockTTL:           10 * time.Second,
		LockWait:          5 * time.Second,
		LockRetryInterval: 10 * time.Millisecond,
	}
}
