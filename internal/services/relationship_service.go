package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/models"
	"photoshare/internal/repositories"
)

// RelationshipService maintains the directed follow graph.
type RelationshipService struct {
	rels   repositories.RelationshipRepository
	users  repositories.UserRepository
	events EventPublisher
	log    *logrus.Logger
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(rels repositories.RelationshipRepository, users repositories.UserRepository, events EventPublisher, log *logrus.Logger) *RelationshipService {
	return &RelationshipService{
		rels:   rels,
		users:  users,
		events: events,
		log:    log,
	}
}

// Follow makes actor follow target. Following twice is a no-op that returns
// the existing edge with created == false.
func (s *RelationshipService) Follow(ctx context.Context, actorID, targetID uint) (*models.Relationship, bool, error) {
	if actorID == targetID {
		return nil, false, fmt.Errorf("%w: users cannot follow themselves", common.ErrValidationFailed)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, false, err
	}

	rel, created, err := s.rels.Create(ctx, actorID, targetID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.WithFields(logrus.Fields{"follower_id": actorID, "followed_id": targetID}).Info("User followed")
		publish(s.events, s.log, EventUserFollowed, FollowEvent{FollowerID: actorID, FollowedID: targetID})
	}
	return rel, created, nil
}

// Unfollow removes actor->target, failing with common.ErrNotFound when
// there is no such edge.
func (s *RelationshipService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if err := s.rels.Delete(ctx, actorID, targetID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"follower_id": actorID, "followed_id": targetID}).Info("User unfollowed")
	publish(s.events, s.log, EventUserUnfollowed, FollowEvent{FollowerID: actorID, FollowedID: targetID})
	return nil
}

// IsFollowing reports whether actor follows target.
func (s *RelationshipService) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	return s.rels.Exists(ctx, actorID, targetID)
}

// GetByID retrieves a single edge.
func (s *RelationshipService) GetByID(ctx context.Context, id uint) (*models.Relationship, error) {
	return s.rels.GetByID(ctx, id)
}

// Following lists the accounts userID follows.
func (s *RelationshipService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.rels.Following(ctx, userID)
}

// Followers lists the accounts following userID.
func (s *RelationshipService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.rels.Followers(ctx, userID)
}
