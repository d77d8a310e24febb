package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoData    = errors.New("no data")
	ErrBadFilter = errors.New("bad filter")
)

// NoDataError is returned when the rows backing a document are empty. It is user correctable.
type NoDataError struct {
	Document string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data available for %s report with the given filter", e.Document)
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// RenderError marks a defect while drawing charts or tables.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// CacheIOError wraps a failure of the result cache or the document cache.
// It is always recovered where it happens.
type CacheIOError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// AssetLoadError wraps a failure loading an optional rendering asset such as the logo.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load asset %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}
