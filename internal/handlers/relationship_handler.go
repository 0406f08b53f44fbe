package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/services"
)

// RelationshipHandler handles follow and unfollow requests.
type RelationshipHandler struct {
	service  *services.RelationshipService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService, log *logrus.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the relationship routes. The router must already
// require authentication.
func (h *RelationshipHandler) RegisterRoutes(router fiber.Router) {
	relRoutes := router.Group("/relationships")
	relRoutes.Post("/", h.HandleFollow)
	relRoutes.Get("/status", h.HandleStatus)
	relRoutes.Delete("/:id", h.HandleUnfollow)
}

// FollowRequest is the body of POST /relationships.
type FollowRequest struct {
	FollowedID uint `json:"followed_id" form:"followed_id" validate:"required"`
}

// HandleFollow makes the current user follow followed_id. A new edge yields
// 201, an existing one 200.
func (h *RelationshipHandler) HandleFollow(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	var req FollowRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	rel, created, err := h.service.Follow(c.UserContext(), me, req.FollowedID)
	if err != nil {
		return respondError(c, h.log, err, "Could not follow user")
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(rel)
}

// HandleUnfollow deletes the edge with the given id. Only its follower may
// remove it.
func (h *RelationshipHandler) HandleUnfollow(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err, "Invalid relationship ID")
	}

	rel, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err, fmt.Sprintf("Relationship with ID %d not found", id))
	}
	if rel.FollowerID != me {
		err := fmt.Errorf("relationship %d belongs to another user: %w", id, common.ErrUnauthorized)
		return respondError(c, h.log, err, "Could not unfollow user")
	}
	if err := h.service.Unfollow(c.UserContext(), me, rel.FollowedID); err != nil {
		return respondError(c, h.log, err, "Could not unfollow user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleStatus reports whether the current user follows followed_id.
func (h *RelationshipHandler) HandleStatus(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	target, err := strconv.ParseUint(c.Query("followed_id"), 10, 64)
	if err != nil || target == 0 {
		err := fmt.Errorf("%w: followed_id must be a positive integer", common.ErrValidationFailed)
		return respondError(c, h.log, err, "Invalid followed_id")
	}

	following, err := h.service.IsFollowing(c.UserContext(), me, uint(target))
	if err != nil {
		return respondError(c, h.log, err, "Could not check relationship")
	}
	return c.JSON(fiber.Map{
		"following": following,
	})
}
