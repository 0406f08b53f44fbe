package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"photoshare/internal/common"
	"photoshare/internal/middleware"
	"photoshare/internal/models"
	"photoshare/internal/services"
	"photoshare/internal/storage"
)

const dateLayout = "2006-01-02"

// AuthHandler handles HTTP requests for signup and sessions.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	validate    *validator.Validate
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    validator.New(),
		log:         log,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/users", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// SignupRequest is the body of POST /users, as JSON or multipart form.
type SignupRequest struct {
	Username             string `json:"username" form:"username" validate:"required,min=3,max=50,alphanum"`
	Email                string `json:"email" form:"email" validate:"required,email,max=255"`
	FirstName            string `json:"first_name" form:"first_name" validate:"max=100"`
	LastName             string `json:"last_name" form:"last_name" validate:"max=100"`
	DateOfBirth          string `json:"dob" form:"dob" validate:"omitempty,datetime=2006-01-02"`
	Password             string `json:"password" form:"password" validate:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// HandleSignup registers a user, stores the optional avatar and opens a
// session.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return badRequest(c, err)
		}
		user.DateOfBirth = &dob
	}

	avatar, err := avatarFile(c)
	if err != nil {
		return respondError(c, h.log, err, "Invalid avatar")
	}
	var upload *services.Upload
	if avatar != nil {
		upload, err = checkedUpload(avatar)
		if err != nil {
			return respondError(c, h.log, err, "Invalid avatar")
		}
		defer closeUpload(*upload)
	}

	if err := h.authService.RegisterUser(c.UserContext(), &user, req.Password); err != nil {
		return respondError(c, h.log, err, "Registration failed")
	}

	if upload != nil {
		updated, err := h.userService.UpdateAvatar(c.UserContext(), user.ID, *upload)
		if err != nil {
			// The account exists already; the client can retry PUT /users/me/avatar.
			h.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to store avatar at signup")
		} else {
			user = *updated
		}
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		return respondError(c, h.log, err, "Could not open session")
	}
	h.setSession(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err, "Authentication failed")
	}
	h.setSession(c, token)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleLogout clears the session cookie. Bearer tokens stay valid until
// they expire.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// avatarFile returns the optional "avatar" part of a multipart signup.
func avatarFile(c *fiber.Ctx) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidationFailed, err)
	}
	if files := form.File["avatar"]; len(files) > 0 {
		return files[0], nil
	}
	return nil, nil
}

// checkedUpload opens fh and rejects it early when it is not an image.
func checkedUpload(fh *multipart.FileHeader) (*services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	if _, _, err := storage.DetectImageType(f); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind upload %s: %w", fh.Filename, err)
	}
	return &services.Upload{FileName: fh.Filename, Size: fh.Size, Body: f}, nil
}

func closeUpload(u services.Upload) {
	if closer, ok := u.Body.(io.Closer); ok {
		closer.Close()
	}
}
