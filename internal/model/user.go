package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// IsReviewer reports whether the role may review documents and applications
func (r Role) IsReviewer() bool {
	return r == RoleStaff || r == RoleAdmin
}

type Address struct {
	Street     string `json:"street" bson:"street" validate:"required"`
	Number     string `json:"number" bson:"number" validate:"required"`
	Complement string `json:"complement,omitempty" bson:"complement,omitempty"`
	District   string `json:"district" bson:"district" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	State      string `json:"state" bson:"state" validate:"required"`
	Zip        string `json:"zip" bson:"zip" validate:"required,zip"`
}

type User struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	FullName          string    `json:"fullName" bson:"fullName"`
	CPF               string    `json:"cpf" bson:"cpf"`
	Email             string    `json:"email" bson:"email"`
	EnrollmentNumber  string    `json:"enrollmentNumber" bson:"enrollmentNumber"`
	Phone             string    `json:"phone" bson:"phone"`
	Address           Address   `json:"address" bson:"address"`
	PasswordHash      string    `json:"-" bson:"passwordHash"`
	TemporaryPassword bool      `json:"-" bson:"temporaryPassword"`
	Role              Role      `json:"role" bson:"role"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Profile is the subset of a user shown next to applications and documents
type Profile struct {
	ID               string  `json:"id"`
	FullName         string  `json:"fullName"`
	EnrollmentNumber string  `json:"enrollmentNumber"`
	Email            string  `json:"email"`
	CPF              string  `json:"cpf,omitempty"`
	Address          Address `json:"address"`
}

// Profile projects the user onto its public profile
func (u *User) Profile() *Profile {
	return &Profile{
		ID:               u.ID,
		FullName:         u.FullName,
		EnrollmentNumber: u.EnrollmentNumber,
		Email:            u.Email,
		CPF:              u.CPF,
		Address:          u.Address,
	}
}
