package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/models"
	"photoshare/internal/services"
)

// AlbumHandler handles HTTP requests for albums.
type AlbumHandler struct {
	service  *services.AlbumService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewAlbumHandler creates a new AlbumHandler.
func NewAlbumHandler(service *services.AlbumService, log *logrus.Logger) *AlbumHandler {
	return &AlbumHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the album routes. The router must already
// require authentication.
func (h *AlbumHandler) RegisterRoutes(router fiber.Router) {
	albumRoutes := router.Group("/albums")
	albumRoutes.Get("/", h.HandleGetAlbums)
	albumRoutes.Post("/", h.HandleCreateAlbum)
	albumRoutes.Get("/:id", h.HandleGetAlbumByID)
	albumRoutes.Delete("/:id", h.HandleDeleteAlbum)
}

// HandleGetAlbums lists albums, optionally narrowed to ?user_id=.
func (h *AlbumHandler) HandleGetAlbums(c *fiber.Ctx) error {
	var (
		albums []models.Album
		err    error
	)
	if owner := c.QueryInt("user_id"); owner > 0 {
		albums, err = h.service.ListByOwner(c.UserContext(), uint(owner))
	} else {
		albums, err = h.service.GetAllAlbums(c.UserContext())
	}
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve albums")
	}
	return c.JSON(albums)
}

// HandleGetAlbumByID retrieves one album with its images.
func (h *AlbumHandler) HandleGetAlbumByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid album ID")
	}
	album, err := h.service.GetAlbumByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("Album with ID %d not found", id))
	}
	return c.JSON(album)
}

// HandleCreateAlbum creates an album owned by the current user.
func (h *AlbumHandler) HandleCreateAlbum(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	var album models.Album
	if err := c.BodyParser(&album); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(album); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.CreateAlbum(c.UserContext(), me, &album); err != nil {
		return respondError(c, h.log, err, "Could not create album")
	}
	return c.Status(fiber.StatusCreated).JSON(album)
}

// HandleDeleteAlbum deletes an album owned by the current user. Its images
// are kept.
func (h *AlbumHandler) HandleDeleteAlbum(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid album ID")
	}
	if err := h.service.DeleteAlbum(c.UserContext(), me, id); err != nil {
		return respondError(c, h.log, err, "Could not delete album")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
