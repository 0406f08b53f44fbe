package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/models"
	"photoshare/internal/repositories"
	"photoshare/internal/storage"
)

// CreateImageInput carries the descriptive fields of an upload.
type CreateImageInput struct {
	Title   string
	Caption string
	AlbumID *uint
}

// ImageService handles business logic related to images.
type ImageService struct {
	images repositories.ImageRepository
	albums repositories.AlbumRepository
	store  storage.Store
	events EventPublisher
	log    *logrus.Logger
}

// NewImageService creates a new ImageService.
func NewImageService(images repositories.ImageRepository, albums repositories.AlbumRepository, store storage.Store, events EventPublisher, log *logrus.Logger) *ImageService {
	return &ImageService{
		images: images,
		albums: albums,
		store:  store,
		events: events,
		log:    log,
	}
}

// Create stores the uploaded file and records an image owned by ownerID.
func (s *ImageService) Create(ctx context.Context, ownerID uint, input CreateImageInput, upload Upload) (*models.Image, error) {
	if input.AlbumID != nil {
		album, err := s.albums.GetByID(ctx, *input.AlbumID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("%w: album %d does not exist", common.ErrValidationFailed, *input.AlbumID)
			}
			return nil, err
		}
		if album.UserID != ownerID {
			return nil, fmt.Errorf("album %d belongs to another user: %w", album.ID, common.ErrUnauthorized)
		}
	}

	file, err := storeImageFile(ctx, s.store, "images", upload)
	if err != nil {
		return nil, err
	}

	image := &models.Image{
		UserID:      ownerID,
		AlbumID:     input.AlbumID,
		Title:       input.Title,
		Caption:     input.Caption,
		FileKey:     file.Key,
		FileName:    upload.FileName,
		ContentType: file.ContentType,
		FileSize:    file.Size,
	}
	if err := s.images.Create(ctx, image); err != nil {
		s.removeBlob(ctx, file.Key)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"image_id": image.ID, "user_id": ownerID}).Info("Image uploaded")
	publish(s.events, s.log, EventImageUploaded, ImageEvent{ImageID: image.ID, UserID: ownerID})
	return image, nil
}

// GetByID retrieves a single image.
func (s *ImageService) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	return s.images.GetByID(ctx, id)
}

// ListByOwner retrieves the images of one user.
func (s *ImageService) ListByOwner(ctx context.Context, userID uint) ([]models.Image, error) {
	return s.images.ListByOwner(ctx, userID)
}

// Open returns the image record and a reader over its file.
func (s *ImageService) Open(ctx context.Context, id uint) (*models.Image, io.ReadCloser, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, image.FileKey)
	if err != nil {
		return nil, nil, err
	}
	return image, rc, nil
}

// Delete removes an image owned by actorID.
func (s *ImageService) Delete(ctx context.Context, actorID, id uint) error {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if image.UserID != actorID {
		return fmt.Errorf("image %d belongs to another user: %w", id, common.ErrUnauthorized)
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlob(ctx, image.FileKey)

	s.log.WithFields(logrus.Fields{"image_id": id, "user_id": actorID}).Info("Image deleted")
	publish(s.events, s.log, EventImageDeleted, ImageEvent{ImageID: id, UserID: actorID})
	return nil
}

func (s *ImageService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).Warnf("Failed to remove blob %s", key)
	}
}
