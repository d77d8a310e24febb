package cache

import (
	"fmt"
	"strings"
)

// Key identifies a cached result: the logical query name and the hash of the filter it ran with.
type Key struct {
	Type string
	Hash string
}

// String is the single-string form used at the persistence boundary.
func (k Key) String() string {
	return k.Type + ":" + k.Hash
}

func (k Key) Validate() error {
	if k.Type == "" || k.Hash == "" {
		return fmt.Errorf("cache key requires both type and hash: %q", k.String())
	}
	if strings.Contains(k.Hash, ":") {
		return fmt.Errorf("cache key hash must not contain ':': %q", k.Hash)
	}
	return nil
}

// ParseKey splits a persisted key at its last ':'. Types may contain ':', hashes may not.
func ParseKey(s string) (Key, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return Key{}, fmt.Errorf("malformed cache key %q", s)
	}
	return Key{Type: s[:idx], Hash: s[idx+1:]}, nil
}
