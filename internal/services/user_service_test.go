package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photoshare/internal/common"
	"photoshare/internal/logging"
	"photoshare/internal/models"
	"photoshare/internal/services"
	"photoshare/internal/storage"
)

func TestUserService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	fs := afero.NewMemMapFs()
	store := storage.NewFSStore(fs, "/blobs")
	svc := services.NewUserService(users, new(MockImageRepository), store, logging.Discard())

	old := pngBytes(t)
	require.NoError(t, store.Put(ctx, "avatars/old.png", bytes.NewReader(old), int64(len(old)), "image/png"))

	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, AvatarKey: "avatars/old.png"}, nil).Once()
	users.On("UpdateAvatar", ctx, uint(1), mock.AnythingOfType("string"), "image/png").Return(nil).Once()

	user, err := svc.UpdateAvatar(ctx, 1, pngUpload(t))
	require.NoError(t, err)
	assert.True(t, user.HasAvatar)
	assert.NotEqual(t, "avatars/old.png", user.AvatarKey)

	// The previous avatar is gone, the new one is readable
	_, err = store.Open(ctx, "avatars/old.png")
	assert.ErrorIs(t, err, common.ErrNotFound)
	rc, err := store.Open(ctx, user.AvatarKey)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, 1, countFiles(t, fs))
	users.AssertExpectations(t)
}

func TestUserService_UpdateAvatar_RejectsNonImage(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := services.NewUserService(users, new(MockImageRepository), storage.NewFSStore(afero.NewMemMapFs(), "/blobs"), logging.Discard())

	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1}, nil).Once()
	_, err := svc.UpdateAvatar(ctx, 1, services.Upload{FileName: "a.txt", Size: 5, Body: bytes.NewReader([]byte("hello"))})
	assert.ErrorIs(t, err, common.ErrValidationFailed)
	users.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_OpenAvatar(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	store := storage.NewFSStore(afero.NewMemMapFs(), "/blobs")
	svc := services.NewUserService(users, new(MockImageRepository), store, logging.Discard())

	content := pngBytes(t)
	require.NoError(t, store.Put(ctx, "avatars/a.png", bytes.NewReader(content), int64(len(content)), "image/png"))
	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, AvatarKey: "avatars/a.png", AvatarContentType: "image/png"}, nil)
	users.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2}, nil)

	rc, contentType, err := svc.OpenAvatar(ctx, 1)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, content, data)
	assert.Equal(t, "image/png", contentType)

	_, _, err = svc.OpenAvatar(ctx, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	images := new(MockImageRepository)
	fs := afero.NewMemMapFs()
	store := storage.NewFSStore(fs, "/blobs")
	svc := services.NewUserService(users, images, store, logging.Discard())

	content := pngBytes(t)
	for _, key := range []string{"images/1.png", "images/2.png", "avatars/me.png"} {
		require.NoError(t, store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), "image/png"))
	}

	users.On("GetByID", ctx, uint(1)).Return(&models.User{ID: 1, AvatarKey: "avatars/me.png"}, nil).Once()
	images.On("ListByOwner", ctx, uint(1)).Return([]models.Image{{ID: 1, FileKey: "images/1.png"}}, nil).Once()
	users.On("Delete", ctx, uint(1)).Return(nil).Once()

	require.NoError(t, svc.DeleteAccount(ctx, 1))
	assert.Equal(t, 1, countFiles(t, fs)) // images/2.png belongs to someone else

	users.On("GetByID", ctx, uint(5)).Return(nil, fmt.Errorf("user with ID 5: %w", common.ErrNotFound)).Once()
	assert.ErrorIs(t, svc.DeleteAccount(ctx, 5), common.ErrNotFound)

	users.AssertExpectations(t)
	images.AssertExpectations(t)
}
