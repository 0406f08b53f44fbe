package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"photoshare/internal/common"
)

const sniffLen = 3072

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// ImageType is the sniffed format of an upload.
type ImageType struct {
	ContentType string
	Extension   string
}

// DetectImageType sniffs the head of r. It returns the detected type and a
// reader that yields the full content, sniffed bytes included. Formats other
// than JPEG, PNG and GIF fail with common.ErrValidationFailed.
func DetectImageType(r io.Reader) (ImageType, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ImageType{}, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return ImageType{}, nil, fmt.Errorf("%w: empty file", common.ErrValidationFailed)
	}

	mtype := mimetype.Detect(head)
	if _, ok := allowedImageTypes[mtype.String()]; !ok {
		return ImageType{}, nil, fmt.Errorf("%w: unsupported image format %s", common.ErrValidationFailed, mtype.String())
	}

	return ImageType{ContentType: mtype.String(), Extension: mtype.Extension()},
		io.MultiReader(bytes.NewReader(head), r), nil
}
