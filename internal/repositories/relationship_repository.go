package repositories

import (
	"context"

	"photoshare/internal/models"
)

// RelationshipRepository defines the interface for follow-edge data access.
type RelationshipRepository interface {
	// Create inserts follower->followed unless it already exists. It returns
	// the stored edge and whether this call created it.
	Create(ctx context.Context, followerID, followedID uint) (*models.Relationship, bool, error)
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Relationship, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}
