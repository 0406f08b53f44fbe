package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/services"
)

// FeedHandler serves the current user's home feed.
type FeedHandler struct {
	service *services.FeedService
	log     *logrus.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(service *services.FeedService, log *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the feed route. The router must already require
// authentication.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/feed", h.HandleFeed)
}

// HandleFeed returns the images of the current user and everyone they
// follow, newest first.
func (h *FeedHandler) HandleFeed(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, h.log, err, "Authentication required")
	}
	page := parsePage(c.Query("limit"), c.Query("offset"))

	images, err := h.service.Feed(c.UserContext(), me, page)
	if err != nil {
		return respondError(c, h.log, err, "Could not build feed")
	}
	return c.JSON(images)
}
