package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mstress/internal/model"
	"mstress/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles admin and user authentication
type AuthService struct {
	userRepo      repository.UserRepo
	adminEmail    string
	adminPassword string
	jwtSecret     []byte
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepo) *AuthService {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@mstress.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		userRepo:      userRepo,
		adminEmail:    email,
		adminPassword: password,
		jwtSecret:     []byte(secret),
	}
}

// Login validates admin credentials and returns a token
func (s *AuthService) Login(email, password string) (*model.LoginResponse, error) {
	if email != s.adminEmail || password != s.adminPassword {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken("admin", model.RoleAdmin, 0)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token:  token,
		UserID: "admin",
		Role:   model.RoleAdmin,
	}, nil
}

// IssueUserToken mints a session token for an existing active user
func (s *AuthService) IssueUserToken(ctx context.Context, email string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	token, err := s.signToken(user.ID, user.Role, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token:  token,
		UserID: user.ID,
		Role:   user.Role,
	}, nil
}

func (s *AuthService) signToken(userID string, role model.Role, ttl time.Duration) (string, error) {
	claims := &model.UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
