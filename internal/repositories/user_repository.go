package repositories

import (
	"context"

	"photoshare/internal/models"
)

// UserRepository defines the interface for account data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id uint, key, contentType string) error
	// Delete soft-deletes the account and removes its relationships,
	// images and albums in one transaction.
	Delete(ctx context.Context, id uint) error
}
