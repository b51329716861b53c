package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims issued on login
type UserClaims struct {
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for login
type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token              string `json:"token"`
	Role               Role   `json:"role"`
	RequireNewPassword bool   `json:"requireNewPassword"`
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID string
	Role   Role
}

// Actor returns the caller identified by the token
func (c *UserClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// ChangePasswordRequest replaces a (possibly temporary) password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
