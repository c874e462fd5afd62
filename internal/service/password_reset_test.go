package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

type fakeUserStore struct {
	users     map[string]*models.User
	passwords map[string]string
}

func newFakeUserStore(emails ...string) *fakeUserStore {
	f := &fakeUserStore{
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
	}
	for i, email := range emails {
		f.users[email] = &models.User{
			UserID: fmt.Sprintf("U%04d", i+1),
			Email:  email,
		}
	}
	return f
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	if _, ok := f.users[email]; !ok {
		return repository.ErrNotFound
	}
	f.passwords[email] = passwordHash
	return nil
}

func requestOTP(t *testing.T, svc *PasswordResetService, otps *cache.Store[string], email string) string {
	t.Helper()

	require.NoError(t, svc.Request(context.Background(), email))

	code, ok := otps.Get(email)
	require.True(t, ok, "request should park a code in the OTP cache")
	require.Len(t, code, 6)
	return code
}

func TestPasswordResetFlow(t *testing.T) {
	users := newFakeUserStore("amin@example.com")
	otps := cache.New[string](10 * time.Minute)
	svc := NewPasswordResetService(users, otps)

	code := requestOTP(t, svc, otps, "amin@example.com")

	require.NoError(t, svc.Verify(context.Background(), "amin@example.com", code))
	require.NoError(t, svc.Reset(context.Background(), "amin@example.com", code, "newpassword"))

	hash := users.passwords["amin@example.com"]
	require.NotEmpty(t, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword")))
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := NewPasswordResetService(users, cache.New[string](10*time.Minute))

	err := svc.Request(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPasswordResetWrongCode(t *testing.T) {
	users := newFakeUserStore("amin@example.com")
	otps := cache.New[string](10 * time.Minute)
	svc := NewPasswordResetService(users, otps)

	requestOTP(t, svc, otps, "amin@example.com")

	err := svc.Verify(context.Background(), "amin@example.com", "000000x")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	err = svc.Reset(context.Background(), "amin@example.com", "000000x", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Empty(t, users.passwords)
}

func TestPasswordResetShortPassword(t *testing.T) {
	users := newFakeUserStore("amin@example.com")
	otps := cache.New[string](10 * time.Minute)
	svc := NewPasswordResetService(users, otps)

	code := requestOTP(t, svc, otps, "amin@example.com")

	err := svc.Reset(context.Background(), "amin@example.com", code, "abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	// A failed reset must not burn the code.
	_, ok := otps.Get("amin@example.com")
	assert.True(t, ok)
}

func TestPasswordResetSingleUse(t *testing.T) {
	users := newFakeUserStore("amin@example.com")
	otps := cache.New[string](10 * time.Minute)
	svc := NewPasswordResetService(users, otps)

	code := requestOTP(t, svc, otps, "amin@example.com")

	require.NoError(t, svc.Reset(context.Background(), "amin@example.com", code, "firstpass"))

	err := svc.Reset(context.Background(), "amin@example.com", code, "secondpass")
	assert.ErrorIs(t, err, ErrInvalidOTP, "a consumed code must not be replayable")
}
