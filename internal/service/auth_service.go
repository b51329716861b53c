package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bolsas/internal/model"
	"bolsas/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid cpf or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles login and token validation
type AuthService struct {
	users     repository.UserRepo
	jwtSecret []byte
	ttl       time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		ttl:       ttl,
	}
}

// Login checks cpf and password and returns a signed token. Unknown cpf and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, cpf, password string) (*model.LoginResponse, error) {
	u, err := s.users.GetByCPF(ctx, digitsOnly(cpf))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token:              token,
		Role:               u.Role,
		RequireNewPassword: u.TemporaryPassword,
	}, nil
}

// IssueToken signs a token for u that expires after the configured TTL
func (s *AuthService) IssueToken(u *model.User) (string, error) {
	now := time.Now()
	claims := &model.UserClaims{
		UserID:   u.ID,
		Role:     u.Role,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
