package repositories

import (
	"context"

	"photoshare/internal/models"
)

// AlbumRepository defines the interface for album data access.
type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetAll(ctx context.Context) ([]models.Album, error)
	// GetByID loads the album together with its images.
	GetByID(ctx context.Context, id uint) (*models.Album, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.Album, error)
	// Delete removes the album and detaches its images.
	Delete(ctx context.Context, id uint) error
}
