package archive

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sightline/sightline/pkg/logger"
	"github.com/sightline/sightline/pkg/pathutil"
)

// LocalStore writes snapshots to a directory, one file per scan run.
type LocalStore struct {
	logger logger.Logger
	dir    string
}

// NewLocalStore creates a directory-backed snapshot store.
func NewLocalStore(dir string) (*LocalStore, error) {
	return NewLocalStoreWithLogger(dir, logger.GetGlobalLogger())
}

// NewLocalStoreWithLogger creates a directory-backed store with a
// custom logger.
func NewLocalStoreWithLogger(dir string, log logger.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalStore{dir: dir, logger: log}, nil
}

// Store writes one snapshot as <dir>/<key>.html.
func (s *LocalStore) Store(_ context.Context, key string, html []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	path, err := pathutil.JoinAndValidate(s.dir, key+".html")
	if err != nil {
		return fmt.Errorf("invalid snapshot path: %w", err)
	}

	if err := os.WriteFile(path, html, 0600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	s.logger.Debug("Snapshot written", "path", path, "bytes", len(html))
	return nil
}

// validateKey rejects keys that would escape the snapshot namespace.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid snapshot key %q", key)
	}
	return nil
}
