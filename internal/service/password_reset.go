package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// userStore is the slice of the user repository the reset flow needs
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// PasswordResetService drives the three-step OTP reset flow: request a code,
// verify it, then consume it with the new password. Codes are single-use and
// expire out of the OTP cache.
type PasswordResetService struct {
	users userStore
	otps  *cache.Store[string]
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(users userStore, otps *cache.Store[string]) *PasswordResetService {
	return &PasswordResetService{
		users: users,
		otps:  otps,
	}
}

// Request issues a fresh code for the account registered under email and
// parks it in the OTP cache. Delivery is an out-of-band concern; here it is
// a logged stub.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	s.otps.Put(email, code)

	// TODO: hook up the mail sender once the SMTP settings land in config
	log.Printf("OTP for %s: %s", email, code)

	return nil
}

// Verify checks a submitted code against the stored one. Expired entries
// are evicted by the cache on access and report as invalid.
func (s *PasswordResetService) Verify(ctx context.Context, email, code string) error {
	stored, ok := s.otps.Get(email)
	if !ok {
		return ErrInvalidOTP
	}

	if stored != code {
		return ErrInvalidOTP
	}

	return nil
}

// Reset re-validates the code, enforces the minimum password length, hashes
// and persists the new password, then deletes the code so it cannot be
// replayed.
func (s *PasswordResetService) Reset(ctx context.Context, email, code, newPassword string) error {
	if err := s.Verify(ctx, email, code); err != nil {
		return err
	}

	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, email, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.otps.Delete(email)

	return nil
}

// generateOTP produces a random six-digit numeric code
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
