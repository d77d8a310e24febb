package filecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const documentExt = ".pdf"

// Store keeps rendered documents as files in one directory.
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fsys afero.Fs, dir string) (*Store, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem is nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("cache directory is empty")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &Store{fs: fsys, dir: dir}, nil
}

func NewOsStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

func (s *Store) Read(_ context.Context, name string) (*store.Blob, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &store.Blob{Name: name, Data: data, ModifiedAt: info.ModTime()}, nil
}

func (s *Store) Write(_ context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every cached document and reports how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", s.dir, err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentExt) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := s.fs.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("failed to delete cached document")
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
