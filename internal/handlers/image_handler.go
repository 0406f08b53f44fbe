package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/services"
)

// ImageHandler handles HTTP requests for images.
type ImageHandler struct {
	service  *services.ImageService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(service *services.ImageService, log *logrus.Logger) *ImageHandler {
	return &ImageHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the image routes. The router must already
// require authentication.
func (h *ImageHandler) RegisterRoutes(router fiber.Router) {
	imageRoutes := router.Group("/images")
	imageRoutes.Get("/", h.HandleGetImages)
	imageRoutes.Post("/", h.HandleCreateImage)
	imageRoutes.Get("/:id", h.HandleGetImageByID)
	imageRoutes.Get("/:id/file", h.HandleGetImageFile)
	imageRoutes.Delete("/:id", h.HandleDeleteImage)
}

// CreateImageRequest holds the text fields of an image upload.
type CreateImageRequest struct {
	Title   string `form:"title" validate:"max=255"`
	Caption string `form:"caption" validate:"max=1000"`
	AlbumID string `form:"album_id" validate:"omitempty,numeric"`
}

// HandleGetImages lists the current user's images.
func (h *ImageHandler) HandleGetImages(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	images, err := h.service.ListByOwner(c.UserContext(), me)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve images")
	}
	return c.JSON(images)
}

// HandleGetImageByID retrieves a single image.
func (h *ImageHandler) HandleGetImageByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid image ID")
	}
	image, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("Image with ID %d not found", id))
	}
	return c.JSON(image)
}

// HandleGetImageFile streams the stored file of an image.
func (h *ImageHandler) HandleGetImageFile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid image ID")
	}
	image, rc, err := h.service.Open(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("Image with ID %d not found", id))
	}
	c.Set(fiber.HeaderContentType, image.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", image.FileName))
	return c.SendStream(rc, int(image.FileSize))
}

// HandleCreateImage uploads an image from the multipart "img" field.
func (h *ImageHandler) HandleCreateImage(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	var req CreateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	input := services.CreateImageInput{
		Title:   strings.TrimSpace(req.Title),
		Caption: req.Caption,
	}
	if req.AlbumID != "" {
		albumID, err := strconv.ParseUint(req.AlbumID, 10, 64)
		if err != nil || albumID == 0 {
			err := fmt.Errorf("%w: invalid album_id %q", common.ErrValidationFailed, req.AlbumID)
			return respondError(c, h.log, err, "Invalid album")
		}
		id := uint(albumID)
		input.AlbumID = &id
	}

	fh, err := c.FormFile("img")
	if err != nil {
		err := fmt.Errorf("%w: img file is required", common.ErrValidationFailed)
		return respondError(c, h.log, err, "Invalid image")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err, "Could not read image")
	}
	defer f.Close()

	image, err := h.service.Create(c.UserContext(), me, input, services.Upload{FileName: fh.Filename, Size: fh.Size, Body: f})
	if err != nil {
		return respondError(c, h.log, err, "Could not upload image")
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// HandleDeleteImage deletes an image owned by the current user.
func (h *ImageHandler) HandleDeleteImage(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid image ID")
	}
	if err := h.service.Delete(c.UserContext(), me, id); err != nil {
		return respondError(c, h.log, err, "Could not delete image")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
