package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
// Used to shield the performer endpoints from redundant re-encoding
// when many consumers poll within the same second.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
