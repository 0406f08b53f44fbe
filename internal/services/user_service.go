package services

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/models"
	"photoshare/internal/repositories"
	"photoshare/internal/storage"
)

// UserService handles account lookups, avatars and account removal.
type UserService struct {
	users  repositories.UserRepository
	images repositories.ImageRepository
	store  storage.Store
	log    *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, images repositories.ImageRepository, store storage.Store, log *logrus.Logger) *UserService {
	return &UserService{
		users:  users,
		images: images,
		store:  store,
		log:    log,
	}
}

// GetAllUsers retrieves all active users.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.GetAll(ctx)
}

// GetUserByID retrieves a single user.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateAvatar stores a new avatar image and drops the previous one.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, upload Upload) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := storeImageFile(ctx, s.store, "avatars", upload)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, userID, file.Key, file.ContentType); err != nil {
		s.removeBlob(ctx, file.Key)
		return nil, err
	}
	if user.AvatarKey != "" {
		s.removeBlob(ctx, user.AvatarKey)
	}

	user.AvatarKey = file.Key
	user.AvatarContentType = file.ContentType
	user.HasAvatar = true
	return user, nil
}

// OpenAvatar returns a reader over the user's avatar and its content type.
func (s *UserService) OpenAvatar(ctx context.Context, userID uint) (io.ReadCloser, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.AvatarKey == "" {
		return nil, "", fmt.Errorf("avatar of user %d: %w", userID, common.ErrNotFound)
	}
	rc, err := s.store.Open(ctx, user.AvatarKey)
	if err != nil {
		return nil, "", err
	}
	return rc, user.AvatarContentType, nil
}

// DeleteAccount removes the account with its edges, images and albums, then
// the stored files.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	images, err := s.images.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	for _, img := range images {
		s.removeBlob(ctx, img.FileKey)
	}
	if user.AvatarKey != "" {
		s.removeBlob(ctx, user.AvatarKey)
	}
	s.log.WithField("user_id", userID).Info("Account deleted")
	return nil
}

func (s *UserService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).Warnf("Failed to remove blob %s", key)
	}
}
