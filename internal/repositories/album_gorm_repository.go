package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"photoshare/internal/common"
	"photoshare/internal/models"
)

// GORMAlbumRepository is a GORM implementation of AlbumRepository.
type GORMAlbumRepository struct {
	db *gorm.DB
}

// NewGORMAlbumRepository creates a new instance of GORMAlbumRepository.
func NewGORMAlbumRepository(db *gorm.DB) *GORMAlbumRepository {
	return &GORMAlbumRepository{
		db: db,
	}
}

// Create inserts an album. Images are linked separately through images.album_id.
func (r *GORMAlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Omit("Images").Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetAll retrieves every album, newest first.
func (r *GORMAlbumRepository) GetAll(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to get all albums: %w", err)
	}
	return albums, nil
}

// GetByID retrieves an album with its images preloaded, newest first.
func (r *GORMAlbumRepository) GetByID(ctx context.Context, id uint) (*models.Album, error) {
	var album models.Album
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		First(&album, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("album with ID %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get album by ID %d: %w", id, err)
	}
	return &album, nil
}

// ListByOwner retrieves the albums of one user, newest first.
func (r *GORMAlbumRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Album, error) {
	var albums []models.Album
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list albums of user %d: %w", userID, err)
	}
	return albums, nil
}

// Delete removes an album and detaches its images, which are kept.
func (r *GORMAlbumRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Image{}).Where("album_id = ?", id).Update("album_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach images from album %d: %w", id, err)
		}
		res := tx.Delete(&models.Album{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete album: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("album with ID %d not found for deletion: %w", id, common.ErrNotFound)
		}
		return nil
	})
}
