package service

import (
	"testing"

	"github.com/rajpuc/GoalGrid/internal/config"
	"github.com/rajpuc/GoalGrid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(users ...*model.User) (AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo(users...)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpireHours: 1}
	return NewAuthService(userRepo, cfg), userRepo
}

func TestRegisterSuccess(t *testing.T) {
	svc, userRepo := newAuthFixture()

	resp, err := svc.Register(RegisterRequest{
		FullName: "Alice Example",
		Email:    "Alice@Example.com",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEqual(t, "Str0ng!pass", resp.User.PasswordHash)

	stored, err := userRepo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Str0ng!pass")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(&model.User{ID: "u1", Email: "alice@example.com"})

	_, err := svc.Register(RegisterRequest{
		FullName: "Alice Again",
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterWeakPasswords(t *testing.T) {
	svc, _ := newAuthFixture()

	weak := []string{
		"short1!",     // too short
		"alllower1!",  // no uppercase
		"NoDigits!!",  // no digit
		"NoSymbols11", // no symbol
	}
	for _, password := range weak {
		_, err := svc.Register(RegisterRequest{
			FullName: "Alice",
			Email:    "alice@example.com",
			Password: password,
		})
		assert.ErrorIs(t, err, ErrWeakPassword, "password %q should be rejected", password)
	}
}

func TestRegisterShortFullName(t *testing.T) {
	svc, _ := newAuthFixture()

	for _, name := range []string{"A", "Al", "  Al  "} {
		_, err := svc.Register(RegisterRequest{
			FullName: name,
			Email:    "alice@example.com",
			Password: "Str0ng!pass",
		})
		assert.ErrorIs(t, err, ErrNameTooShort, "name %q should be rejected", name)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	svc, _ := newAuthFixture(&model.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	})

	resp, err := svc.Login(LoginRequest{Email: "alice@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	svc, _ := newAuthFixture(&model.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	})

	_, err = svc.Login(LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Login(LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetMe(t *testing.T) {
	svc, _ := newAuthFixture(&model.User{ID: "u1", FullName: "Alice", Email: "alice@example.com"})

	user, err := svc.GetMe("u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FullName)

	_, err = svc.GetMe("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
