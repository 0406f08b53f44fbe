package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
)

// UserHandler handles HTTP requests for accounts.
type UserHandler struct {
	users         *services.UserService
	relationships *services.RelationshipService
	images        *services.ImageService
	log           *logrus.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, relationships *services.RelationshipService, images *services.ImageService, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		users:         users,
		relationships: relationships,
		images:        images,
		log:           log,
	}
}

// RegisterRoutes registers the account routes. The router must already
// require authentication.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Put("/me/avatar", h.HandleUpdateAvatar)
	userRoutes.Delete("/me", h.HandleDeleteMe)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Get("/:id/following", h.HandleGetFollowing)
	userRoutes.Get("/:id/followers", h.HandleGetFollowers)
	userRoutes.Get("/:id/images", h.HandleGetUserImages)
	userRoutes.Get("/:id/avatar", h.HandleGetAvatar)
}

// HandleGetUsers lists every active account.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleGetMe returns the current account.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	user, err := h.users.GetUserByID(c.UserContext(), me)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

// HandleGetUser returns one account. The response says whether the current
// user follows it, which drives the follow/unfollow toggle.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid user ID")
	}
	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("User with ID %d not found", id))
	}

	following := false
	if me, ok := middleware.CurrentUserID(c); ok && me != id {
		if following, err = h.relationships.IsFollowing(c.UserContext(), me, id); err != nil {
			return respondError(c, h.log, err, "Could not retrieve user")
		}
	}
	return c.JSON(fiber.Map{
		"user":      user,
		"following": following,
	})
}

// HandleGetFollowing lists the accounts a user follows.
func (h *UserHandler) HandleGetFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid user ID")
	}
	users, err := h.relationships.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve following")
	}
	return c.JSON(users)
}

// HandleGetFollowers lists the accounts following a user.
func (h *UserHandler) HandleGetFollowers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid user ID")
	}
	users, err := h.relationships.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve followers")
	}
	return c.JSON(users)
}

// HandleGetUserImages lists a user's images.
func (h *UserHandler) HandleGetUserImages(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid user ID")
	}
	if _, err := h.users.GetUserByID(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("User with ID %d not found", id))
	}
	images, err := h.images.ListByOwner(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve images")
	}
	return c.JSON(images)
}

// HandleGetAvatar streams a user's avatar.
func (h *UserHandler) HandleGetAvatar(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid user ID")
	}
	rc, contentType, err := h.users.OpenAvatar(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, "Avatar not found")
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(rc)
}

// HandleUpdateAvatar replaces the current user's avatar from the multipart
// "avatar" field.
func (h *UserHandler) HandleUpdateAvatar(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, h.log, fmt.Errorf("%w: avatar file is required", common.ErrValidationFailed), "Invalid avatar")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err, "Could not read avatar")
	}
	defer f.Close()

	user, err := h.users.UpdateAvatar(c.UserContext(), me, services.Upload{FileName: fh.Filename, Size: fh.Size, Body: f})
	if err != nil {
		return respondError(c, h.log, err, "Could not update avatar")
	}
	return c.JSON(user)
}

// HandleDeleteMe removes the current account and ends its session.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	if err := h.users.DeleteAccount(c.UserContext(), me); err != nil {
		return respondError(c, h.log, err, "Could not delete account")
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}
