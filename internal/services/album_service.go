package services

import (
	"context"
	"fmt"

	"photoshare/internal/common"
	"photoshare/internal/models"
	"photoshare/internal/repositories"
)

// AlbumService handles business logic related to albums.
type AlbumService struct {
	repo repositories.AlbumRepository
}

// NewAlbumService creates a new AlbumService.
func NewAlbumService(repo repositories.AlbumRepository) *AlbumService {
	return &AlbumService{
		repo: repo,
	}
}

// GetAllAlbums retrieves all albums.
func (s *AlbumService) GetAllAlbums(ctx context.Context) ([]models.Album, error) {
	return s.repo.GetAll(ctx)
}

// ListByOwner retrieves the albums of one user.
func (s *AlbumService) ListByOwner(ctx context.Context, userID uint) ([]models.Album, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// GetAlbumByID retrieves a single album with its images.
func (s *AlbumService) GetAlbumByID(ctx context.Context, id uint) (*models.Album, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateAlbum creates an album owned by ownerID. Ownership never comes from
// the request body.
func (s *AlbumService) CreateAlbum(ctx context.Context, ownerID uint, album *models.Album) error {
	album.ID = 0
	album.UserID = ownerID
	album.Images = nil
	return s.repo.Create(ctx, album)
}

// DeleteAlbum deletes an album owned by actorID. Its images are kept.
func (s *AlbumService) DeleteAlbum(ctx context.Context, actorID, id uint) error {
	album, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if album.UserID != actorID {
		return fmt.Errorf("album %d belongs to another user: %w", id, common.ErrUnauthorized)
	}
	return s.repo.Delete(ctx, id)
}
