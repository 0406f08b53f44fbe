package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
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

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t *testing.T) services.Upload {
	content := pngBytes(t)
	return services.Upload{FileName: "cat.png", Size: int64(len(content)), Body: bytes.NewReader(content)}
}

// countFiles counts regular files stored below /blobs.
func countFiles(t *testing.T, fs afero.Fs) int {
	t.Helper()
	n := 0
	err := afero.Walk(fs, "/blobs", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

type imageFixture struct {
	images *MockImageRepository
	albums *MockAlbumRepository
	events *MockEventPublisher
	fs     afero.Fs
	store  *storage.FSStore
	svc    *services.ImageService
}

func newImageFixture() *imageFixture {
	f := &imageFixture{
		images: new(MockImageRepository),
		albums: new(MockAlbumRepository),
		events: new(MockEventPublisher),
		fs:     afero.NewMemMapFs(),
	}
	f.store = storage.NewFSStore(f.fs, "/blobs")
	f.svc = services.NewImageService(f.images, f.albums, f.store, f.events, logging.Discard())
	return f
}

func TestImageService_Create(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	f.images.On("Create", ctx, mock.AnythingOfType("*models.Image")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Image).ID = 10
	}).Return(nil).Once()
	f.events.On("Publish", services.EventImageUploaded, services.ImageEvent{ImageID: 10, UserID: 1}).Return(nil).Once()

	img, err := f.svc.Create(ctx, 1, services.CreateImageInput{Title: "Cat", Caption: "on a mat"}, pngUpload(t))
	require.NoError(t, err)
	assert.Equal(t, uint(10), img.ID)
	assert.Equal(t, uint(1), img.UserID)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "cat.png", img.FileName)
	assert.Contains(t, img.FileKey, "images/")

	rc, err := f.store.Open(ctx, img.FileKey)
	require.NoError(t, err)
	stored, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, pngBytes(t), stored)

	f.images.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestImageService_Create_RejectsNonImage(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	upload := services.Upload{FileName: "notes.txt", Size: 11, Body: bytes.NewReader([]byte("hello world"))}
	_, err := f.svc.Create(ctx, 1, services.CreateImageInput{}, upload)
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	_, err = f.svc.Create(ctx, 1, services.CreateImageInput{}, services.Upload{})
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	assert.Equal(t, 0, countFiles(t, f.fs))
	f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImageService_Create_Album(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	mine, theirs, missing := uint(1), uint(2), uint(3)
	f.albums.On("GetByID", ctx, mine).Return(&models.Album{ID: mine, UserID: 1}, nil)
	f.albums.On("GetByID", ctx, theirs).Return(&models.Album{ID: theirs, UserID: 2}, nil)
	f.albums.On("GetByID", ctx, missing).Return(nil, fmt.Errorf("album: %w", common.ErrNotFound))
	f.images.On("Create", ctx, mock.AnythingOfType("*models.Image")).Return(nil).Once()
	f.events.On("Publish", services.EventImageUploaded, mock.Anything).Return(nil)

	_, err := f.svc.Create(ctx, 1, services.CreateImageInput{AlbumID: &theirs}, pngUpload(t))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = f.svc.Create(ctx, 1, services.CreateImageInput{AlbumID: &missing}, pngUpload(t))
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	img, err := f.svc.Create(ctx, 1, services.CreateImageInput{AlbumID: &mine}, pngUpload(t))
	require.NoError(t, err)
	require.NotNil(t, img.AlbumID)
	assert.Equal(t, mine, *img.AlbumID)
	assert.Equal(t, 1, countFiles(t, f.fs))
}

func TestImageService_Create_RemovesBlobOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	f.images.On("Create", ctx, mock.AnythingOfType("*models.Image")).Return(errors.New("insert failed")).Once()

	_, err := f.svc.Create(ctx, 1, services.CreateImageInput{}, pngUpload(t))
	assert.Error(t, err)
	assert.Equal(t, 0, countFiles(t, f.fs))
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestImageService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	content := pngBytes(t)
	require.NoError(t, f.store.Put(ctx, "images/a.png", bytes.NewReader(content), int64(len(content)), "image/png"))

	f.images.On("GetByID", ctx, uint(1)).Return(&models.Image{ID: 1, UserID: 2, FileKey: "images/a.png"}, nil)
	f.images.On("GetByID", ctx, uint(9)).Return(nil, fmt.Errorf("image with ID 9: %w", common.ErrNotFound))
	f.images.On("Delete", ctx, uint(1)).Return(nil).Once()
	f.events.On("Publish", services.EventImageDeleted, services.ImageEvent{ImageID: 1, UserID: 2}).Return(nil).Once()

	// Missing image
	assert.ErrorIs(t, f.svc.Delete(ctx, 2, 9), common.ErrNotFound)

	// Non-owner
	assert.ErrorIs(t, f.svc.Delete(ctx, 3, 1), common.ErrUnauthorized)
	assert.Equal(t, 1, countFiles(t, f.fs))

	// Owner
	require.NoError(t, f.svc.Delete(ctx, 2, 1))
	assert.Equal(t, 0, countFiles(t, f.fs))

	f.images.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestImageService_Open(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()

	content := pngBytes(t)
	require.NoError(t, f.store.Put(ctx, "images/b.png", bytes.NewReader(content), int64(len(content)), "image/png"))
	f.images.On("GetByID", ctx, uint(4)).Return(&models.Image{ID: 4, FileKey: "images/b.png", ContentType: "image/png"}, nil)
	f.images.On("GetByID", ctx, uint(5)).Return(&models.Image{ID: 5, FileKey: "images/gone.png"}, nil)

	img, rc, err := f.svc.Open(ctx, 4)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, content, data)
	assert.Equal(t, "image/png", img.ContentType)

	_, _, err = f.svc.Open(ctx, 5)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
