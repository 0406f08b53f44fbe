package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photoshare/internal/common"
	"photoshare/internal/logging"
	"photoshare/internal/models"
	"photoshare/internal/services"
)

func TestRelationshipService_Follow(t *testing.T) {
	ctx := context.Background()
	rels := new(MockRelationshipRepository)
	users := new(MockUserRepository)
	events := new(MockEventPublisher)
	svc := services.NewRelationshipService(rels, users, events, logging.Discard())

	edge := &models.Relationship{ID: 5, FollowerID: 1, FollowedID: 2}

	// New edge publishes an event
	users.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2}, nil)
	rels.On("Create", ctx, uint(1), uint(2)).Return(edge, true, nil).Once()
	events.On("Publish", services.EventUserFollowed, services.FollowEvent{FollowerID: 1, FollowedID: 2}).Return(nil).Once()

	rel, created, err := svc.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, edge, rel)

	// Existing edge is returned untouched and nothing is published
	rels.On("Create", ctx, uint(1), uint(2)).Return(edge, false, nil).Once()
	rel, created, err = svc.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint(5), rel.ID)

	rels.AssertExpectations(t)
	events.AssertExpectations(t)
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRelationshipService_Follow_Rejects(t *testing.T) {
	ctx := context.Background()
	rels := new(MockRelationshipRepository)
	users := new(MockUserRepository)
	svc := services.NewRelationshipService(rels, users, nil, logging.Discard())

	// Self-follow
	_, _, err := svc.Follow(ctx, 3, 3)
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	// Unknown target
	users.On("GetByID", ctx, uint(99)).Return(nil, fmt.Errorf("user with ID 99: %w", common.ErrNotFound)).Once()
	_, _, err = svc.Follow(ctx, 3, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)

	rels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestRelationshipService_Unfollow(t *testing.T) {
	ctx := context.Background()
	rels := new(MockRelationshipRepository)
	events := new(MockEventPublisher)
	svc := services.NewRelationshipService(rels, new(MockUserRepository), events, logging.Discard())

	rels.On("Delete", ctx, uint(1), uint(2)).Return(nil).Once()
	events.On("Publish", services.EventUserUnfollowed, services.FollowEvent{FollowerID: 1, FollowedID: 2}).Return(errors.New("broker down")).Once()

	// A failed publish does not fail the unfollow
	assert.NoError(t, svc.Unfollow(ctx, 1, 2))

	rels.On("Delete", ctx, uint(1), uint(2)).Return(fmt.Errorf("relationship: %w", common.ErrNotFound)).Once()
	assert.ErrorIs(t, svc.Unfollow(ctx, 1, 2), common.ErrNotFound)

	rels.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestRelationshipService_Lists(t *testing.T) {
	ctx := context.Background()
	rels := new(MockRelationshipRepository)
	users := new(MockUserRepository)
	svc := services.NewRelationshipService(rels, users, nil, logging.Discard())

	bob := models.User{ID: 2, Username: "bob"}
	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1}, nil)
	users.On("GetByID", ctx, uint(42)).Return(nil, fmt.Errorf("user: %w", common.ErrNotFound))
	rels.On("Following", ctx, uint(1)).Return([]models.User{bob}, nil)
	rels.On("Followers", ctx, uint(1)).Return([]models.User{}, nil)
	rels.On("Exists", ctx, uint(1), uint(2)).Return(true, nil)

	following, err := svc.Following(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.User{bob}, following)

	followers, err := svc.Followers(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, followers)

	_, err = svc.Following(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Followers(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)

	ok, err := svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}
