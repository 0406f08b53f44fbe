package repositories

import (
	"context"

	"photoshare/internal/models"
)

// ImageRepository defines the interface for image data access.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.Image, error)
	Delete(ctx context.Context, id uint) error
	// Feed returns images owned by userID or by anyone userID follows,
	// newest first. A non-positive limit returns everything.
	Feed(ctx context.Context, userID uint, limit, offset int) ([]models.Image, error)
}
