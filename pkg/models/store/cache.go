package store

import "time"

type CacheEntry struct {
	Key        string
	Type       string
	Payload    []byte
	CreatedAt  time.Time
	ExpiresAt  time.Time
	FilterHash string
}
