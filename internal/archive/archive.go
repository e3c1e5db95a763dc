// Package archive persists rendered page snapshots captured during
// scans, keyed by scan run id.
package archive

import (
	"context"
	"fmt"

	"github.com/sightline/sightline/internal/config"
	"github.com/sightline/sightline/pkg/logger"
)

// Store saves one HTML snapshot per scan run.
type Store interface {
	Store(ctx context.Context, key string, html []byte) error
}

// New builds the configured snapshot store. A disabled archive returns
// nil, which callers treat as "do not archive".
func New(ctx context.Context, cfg config.ArchiveConfig, log logger.Logger) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "local":
		return NewLocalStoreWithLogger(cfg.Local.Dir, log)
	case "s3":
		return NewS3Store(ctx, cfg.S3, log)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
