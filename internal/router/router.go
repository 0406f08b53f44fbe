// Package router mounts every HTTP route of the service on a Fiber app.
package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/handlers"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
)

// Services are the dependencies of the HTTP handlers.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Relationships *services.RelationshipService
	Feed          *services.FeedService
	Images        *services.ImageService
	Albums        *services.AlbumService
}

// Setup registers the public routes first, then every route behind the
// session check. Routes registered on app before Setup stay public.
func Setup(app *fiber.App, svc Services, log *logrus.Logger) {
	handlers.NewAuthHandler(svc.Auth, svc.Users, log).RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(svc.Auth, log))
	handlers.NewUserHandler(svc.Users, svc.Relationships, svc.Images, log).RegisterRoutes(protected)
	handlers.NewRelationshipHandler(svc.Relationships, log).RegisterRoutes(protected)
	handlers.NewFeedHandler(svc.Feed, log).RegisterRoutes(protected)
	handlers.NewImageHandler(svc.Images, log).RegisterRoutes(protected)
	handlers.NewAlbumHandler(svc.Albums, log).RegisterRoutes(protected)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
			"error":   c.Method() + " " + c.Path(),
		})
	})
}

// ErrorHandler renders errors that escape the handlers (body limit, panics
// caught by recover) in the same shape as handler errors.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{
			"message": "Request failed",
			"error":   err.Error(),
		})
	}
}
