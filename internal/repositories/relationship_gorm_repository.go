package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photoshare/internal/common"
	"photoshare/internal/models"
)

// GORMRelationshipRepository is a GORM implementation of RelationshipRepository.
type GORMRelationshipRepository struct {
	db *gorm.DB
}

// NewGORMRelationshipRepository creates a new instance of GORMRelationshipRepository.
func NewGORMRelationshipRepository(db *gorm.DB) *GORMRelationshipRepository {
	return &GORMRelationshipRepository{
		db: db,
	}
}

// Create relies on the unique (follower_id, followed_id) index, so two
// concurrent follows of the same pair still leave a single edge.
func (r *GORMRelationshipRepository) Create(ctx context.Context, followerID, followedID uint) (*models.Relationship, bool, error) {
	rel := models.Relationship{FollowerID: followerID, FollowedID: followedID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create relationship %d->%d: %w", followerID, followedID, res.Error)
	}
	if res.RowsAffected > 0 {
		return &rel, true, nil
	}

	existing, err := r.find(ctx, followerID, followedID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *GORMRelationshipRepository) find(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("relationship %d->%d: %w", followerID, followedID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get relationship %d->%d: %w", followerID, followedID, err)
	}
	return &rel, nil
}

// Delete removes follower->followed.
func (r *GORMRelationshipRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete relationship %d->%d: %w", followerID, followedID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("relationship %d->%d not found for deletion: %w", followerID, followedID, common.ErrNotFound)
	}
	return nil
}

// Exists reports whether follower->followed is stored.
func (r *GORMRelationshipRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check relationship %d->%d: %w", followerID, followedID, err)
	}
	return count > 0, nil
}

// GetByID retrieves a single edge.
func (r *GORMRelationshipRepository) GetByID(ctx context.Context, id uint) (*models.Relationship, error) {
	var rel models.Relationship
	if err := r.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("relationship with ID %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get relationship by ID %d: %w", id, err)
	}
	return &rel, nil
}

// Following lists the users userID follows, oldest edge first.
func (r *GORMRelationshipRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Order("relationships.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list following of user %d: %w", userID, err)
	}
	return users, nil
}

// Followers lists the users following userID, oldest edge first.
func (r *GORMRelationshipRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Order("relationships.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers of user %d: %w", userID, err)
	}
	return users, nil
}

// FollowingIDs returns the IDs of the users userID follows.
func (r *GORMRelationshipRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("follower_id = ?", userID).
		Order("id").
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followed IDs of user %d: %w", userID, err)
	}
	return ids, nil
}
