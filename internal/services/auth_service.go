package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"photoshare/internal/common"
	"photoshare/internal/models"
	"photoshare/internal/repositories"
)

// AuthService handles business logic for registration, login and session tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	events     EventPublisher
	log        *logrus.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, events EventPublisher, log *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		events:     events,
		log:        log,
	}
}

// RegisterUser checks that username and email are free, hashes the password
// and saves the user.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User, password string) error {
	if err := s.ensureFree(ctx, user); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordDigest = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Username)
	publish(s.events, s.log, EventUserRegistered, UserEvent{UserID: user.ID, Username: user.Username})
	return nil
}

func (s *AuthService) ensureFree(ctx context.Context, user *models.User) error {
	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	switch {
	case err == nil && existing != nil:
		return fmt.Errorf("username '%s' already taken: %w", user.Username, common.ErrAlreadyExists)
	case err != nil && !errors.Is(err, common.ErrNotFound):
		return err
	}

	existing, err = s.userRepo.GetByEmail(ctx, user.Email)
	switch {
	case err == nil && existing != nil:
		return fmt.Errorf("email '%s' already registered: %w", user.Email, common.ErrAlreadyExists)
	case err != nil && !errors.Is(err, common.ErrNotFound):
		return err
	}
	return nil
}

// Authenticate reports whether password matches the user's stored hash.
func (s *AuthService) Authenticate(user *models.User, password string) bool {
	if user == nil || user.PasswordDigest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(password)) == nil
}

// LoginUser authenticates by email and returns a signed session token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return "", nil, err
		}
		// Do not reveal whether the email exists.
		return "", nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthenticated)
	}
	if !s.Authenticate(user, password) {
		return "", nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthenticated)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenDurat
}

// IssueToken signs an HS256 token identifying the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, common.ErrUnauthenticated)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token: %w", common.ErrUnauthenticated)
}

// SessionUser validates a session token and returns the id of its account.
// Tokens of deleted accounts fail with common.ErrUnauthenticated.
func (s *AuthService) SessionUser(ctx context.Context, tokenString string) (uint, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return 0, err
	}
	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return 0, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, fmt.Errorf("account %d no longer exists: %w", userID, common.ErrUnauthenticated)
		}
		return 0, err
	}
	return userID, nil
}

// UserIDFromClaims extracts the numeric user_id claim.
func UserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	switch v := claims["user_id"].(type) {
	case float64:
		if v >= 1 && v == float64(uint(v)) {
			return uint(v), nil
		}
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err == nil && id > 0 {
			return uint(id), nil
		}
	}
	return 0, fmt.Errorf("invalid token user: %w", common.ErrUnauthenticated)
}
