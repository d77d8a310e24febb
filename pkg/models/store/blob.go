package store

import (
	"errors"
	"time"
)

var ErrBlobNotFound = errors.New("blob not found")

// Blob is a cached document together with its last modification time.
type Blob struct {
	Name       string
	Data       []byte
	ModifiedAt time.Time
}
