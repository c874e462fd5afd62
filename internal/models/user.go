package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
)

type User struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"` // Never expose in JSON
	Role      UserRole  `db:"role" json:"role"`
	Photo     *string   `db:"photo" json:"photo"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is used for customer registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is used for email/password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserUpdateRequest is used for profile updates; nil fields are left unchanged
type UserUpdateRequest struct {
	UserID   string  `json:"user_id" validate:"required"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Photo    *string `json:"photo"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}
