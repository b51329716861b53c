package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"bolsas/internal/model"
	"bolsas/internal/repository"
)

// RegisterUserInput is the body of an administrator-driven registration
type RegisterUserInput struct {
	FullName         string        `json:"fullName" validate:"required"`
	CPF              string        `json:"cpf" validate:"required,cpf"`
	Email            string        `json:"email" validate:"required,email"`
	EnrollmentNumber string        `json:"enrollmentNumber" validate:"required"`
	Phone            string        `json:"phone" validate:"required,phone"`
	Address          model.Address `json:"address"`
	Password         string        `json:"password" validate:"required,min=6"`
	Role             model.Role    `json:"role" validate:"omitempty,oneof=student staff admin"`
}

// UpdateContactInput holds the only profile fields a user may change
type UpdateContactInput struct {
	Email   string        `json:"email" validate:"required,email"`
	Phone   string        `json:"phone" validate:"required,phone"`
	Address model.Address `json:"address"`
}

// UserService handles registration and profile maintenance
type UserService struct {
	users    repository.UserRepo
	validate *validator.Validate
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{
		users:    users,
		validate: newValidator(),
	}
}

// Register creates a user with a temporary password. Duplicate cpf, email or
// enrollment number yields ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*model.User, error) {
	in.CPF = digitsOnly(in.CPF)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = model.RoleStudent
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindConflict(ctx, in.CPF, in.Email, in.EnrollmentNumber)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		FullName:          strings.TrimSpace(in.FullName),
		CPF:               in.CPF,
		Email:             in.Email,
		EnrollmentNumber:  in.EnrollmentNumber,
		Phone:             in.Phone,
		Address:           in.Address,
		PasswordHash:      hash,
		TemporaryPassword: true,
		Role:              in.Role,
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates an administrator unless a user with that cpf exists.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, in RegisterUserInput) (bool, error) {
	existing, err := s.users.GetByCPF(ctx, digitsOnly(in.CPF))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	in.Role = model.RoleAdmin
	if _, err := s.Register(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a user; students may only read themselves
func (s *UserService) Get(ctx context.Context, actor model.Actor, id string) (*model.User, error) {
	if actor.UserID != id && !actor.Role.IsReviewer() {
		return nil, ErrForbidden
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateContact changes email, phone and address; only the user or an admin may do it
func (s *UserService) UpdateContact(ctx context.Context, actor model.Actor, id string, in UpdateContactInput) (*model.User, error) {
	if actor.UserID != id && actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	if err := s.users.UpdateContact(ctx, id, in.Email, in.Phone, in.Address); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ChangePassword replaces the caller's own password and clears the temporary flag
func (s *UserService) ChangePassword(ctx context.Context, actor model.Actor, id string, req model.ChangePasswordRequest) error {
	if actor.UserID != id {
		return ErrForbidden
	}
	if len(req.NewPassword) < 6 {
		return invalid("newPassword", fieldMessages["min"])
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash, false)
}
