package service

import "errors"

// Validation failures surfaced to handlers as 4xx responses
var (
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrCategoryRequired = errors.New("category is required")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrMissingUser      = errors.New("user is required")
	ErrInvalidOTP       = errors.New("invalid or expired OTP")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)
