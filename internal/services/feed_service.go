package services

import (
	"context"

	"photoshare/internal/models"
	"photoshare/internal/repositories"
)

// Page selects a window of a list. A zero Limit means everything.
type Page struct {
	Limit  int
	Offset int
}

// FeedService assembles home feeds.
type FeedService struct {
	images repositories.ImageRepository
	users  repositories.UserRepository
}

// NewFeedService creates a new FeedService.
func NewFeedService(images repositories.ImageRepository, users repositories.UserRepository) *FeedService {
	return &FeedService{
		images: images,
		users:  users,
	}
}

// Feed returns the images owned by the account itself or by any account it
// follows, newest first.
func (s *FeedService) Feed(ctx context.Context, userID uint, page Page) ([]models.Image, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.images.Feed(ctx, userID, page.Limit, page.Offset)
}
