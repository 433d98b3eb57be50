package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// NotificationLimit caps each actor's notification mailbox
	NotificationLimit int
	// NotificationTTL expires idle mailboxes; zero keeps them forever
	NotificationTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:               "redis://localhost:6379",
		PoolSize:          10,
		MinIdleConns:      2,
		NotificationLimit: 100,
		NotificationTTL:   24 * time.Hour,
	}
}
