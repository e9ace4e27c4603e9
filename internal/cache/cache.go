// Package cache provides a snapshot cache for raw dataset bodies.
package cache

import "time"

// Cache keeps one body snapshot per source key. Callers store a body only
// after it loaded cleanly.
type Cache interface {
	// Get returns the snapshot stored for key while it is unexpired.
	// An expired snapshot reads as missing.
	Get(key string) ([]byte, bool)

	// Set replaces any snapshot for key and stamps a fresh expiry of ttl.
	Set(key string, data []byte, ttl time.Duration) error

	// Clear drops every snapshot.
	Clear() error

	Close() error
}
