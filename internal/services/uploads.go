package services

import (
	"context"
	"fmt"
	"io"

	"photoshare/internal/common"
	"photoshare/internal/storage"
)

// Upload is an incoming attachment.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

type storedFile struct {
	Key         string
	ContentType string
	Size        int64
}

// storeImageFile sniffs the upload, rejects anything that is not an image
// and writes it under a fresh key below prefix.
func storeImageFile(ctx context.Context, store storage.Store, prefix string, upload Upload) (*storedFile, error) {
	if upload.Body == nil {
		return nil, fmt.Errorf("%w: no file uploaded", common.ErrValidationFailed)
	}
	kind, body, err := storage.DetectImageType(upload.Body)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey(prefix, kind.Extension)
	if err := store.Put(ctx, key, body, upload.Size, kind.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", upload.FileName, err)
	}
	return &storedFile{Key: key, ContentType: kind.ContentType, Size: upload.Size}, nil
}
