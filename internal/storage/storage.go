// Package storage keeps uploaded attachments (image files, avatars) in a
// blob store addressed by opaque keys.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"photoshare/internal/config"
)

// Store persists attachment bytes. Open returns common.ErrNotFound for
// unknown keys; Delete of an unknown key is not an error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "local", "":
		return NewFSStore(afero.NewOsFs(), cfg.Path), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// NewKey returns a fresh key of the form prefix/YYYY/MM/DD/<uuid><ext>.
func NewKey(prefix, ext string) string {
	d := time.Now().UTC()
	return path.Join(prefix, fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), uuid.New().String()+ext)
}
