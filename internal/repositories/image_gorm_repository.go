package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"photoshare/internal/common"
	"photoshare/internal/models"
)

// GORMImageRepository is a GORM implementation of ImageRepository.
type GORMImageRepository struct {
	db *gorm.DB
}

// NewGORMImageRepository creates a new instance of GORMImageRepository.
func NewGORMImageRepository(db *gorm.DB) *GORMImageRepository {
	return &GORMImageRepository{
		db: db,
	}
}

// Create creates a new image record in the database.
func (r *GORMImageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID retrieves a single image by its ID from the database.
func (r *GORMImageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("image with ID %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get image by ID %d: %w", id, err)
	}
	return &image, nil
}

// ListByOwner retrieves the images of one user, newest first.
func (r *GORMImageRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Image, error) {
	var images []models.Image
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images of user %d: %w", userID, err)
	}
	return images, nil
}

// Delete deletes an image by its ID from the database.
func (r *GORMImageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Image{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("image with ID %d not found for deletion: %w", id, common.ErrNotFound)
	}
	return nil
}

// Feed selects with a single IN subquery over the follow edges, so an image
// is returned at most once however the owner is reached.
func (r *GORMImageRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]models.Image, error) {
	followed := r.db.Model(&models.Relationship{}).Select("followed_id").Where("follower_id = ?", userID)

	query := r.db.WithContext(ctx).
		Where("user_id IN (?) OR user_id = ?", followed, userID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var images []models.Image
	if err := query.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to build feed for user %d: %w", userID, err)
	}
	return images, nil
}
