package services

import (
	"context"
	"testing"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/internal/repository"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures outgoing emails instead of hitting SMTP.
type recordingSender struct {
	sent []string
	fail error
}

func (r *recordingSender) Send(to, subject, body string) error {
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, to)
	return nil
}

func newUserService() (*UserService, *repository.MemoryUserStore, *recordingSender) {
	store := repository.NewMemoryUserStore()
	sender := &recordingSender{}
	return NewUserService(store, sender, "http://localhost:3000/verify-email"), store, sender
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:     "Dias Amangeldi",
		Email:    "dias@example.com",
		Password: "Passw0rd",
		Phone:    "+77001234567",
	}
}

func TestRegisterUser(t *testing.T) {
	svc, store, sender := newUserService()

	user, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.False(t, user.IsVerified)
	assert.Empty(t, user.HashedPassword, "password hash must not leave the service")
	assert.True(t, user.NotificationPreferences.Enabled)
	assert.Equal(t, 10.0, user.NotificationPreferences.MaxDistance)
	assert.Equal(t, []string{"dias@example.com"}, sender.sent)

	// The stored hash must not be the plaintext password.
	stored, err := store.GetCredentialsByEmail(context.Background(), "dias@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NotEqual(t, "Passw0rd", stored.HashedPassword)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService()

	_, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), validRegistration())
	var vErr *apperror.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
}

func TestRegisterUserStoreOutage(t *testing.T) {
	svc, store, sender := newUserService()
	store.FailAll = true

	// An unreachable store must surface as such, not as a duplicate
	// email or a silent pass into CreateUser.
	_, err := svc.RegisterUser(context.Background(), validRegistration())
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assert.Empty(t, sender.sent)
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _, _ := newUserService()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"name too short", func(in *RegisterInput) { in.Name = "D" }, "name"},
		{"name with digits", func(in *RegisterInput) { in.Name = "Dias 99" }, "name"},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"password too short", func(in *RegisterInput) { in.Password = "Ab1" }, "password"},
		{"password without digits", func(in *RegisterInput) { in.Password = "Password" }, "password"},
		{"password without uppercase", func(in *RegisterInput) { in.Password = "passw0rd" }, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRegistration()
			tc.mutate(&input)

			_, err := svc.RegisterUser(context.Background(), input)
			var vErr *apperror.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestRegisterUserEmailFailureIsNotFatal(t *testing.T) {
	svc, _, sender := newUserService()
	sender.fail = assert.AnError

	user, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err, "registration must survive a failed verification email")
	assert.False(t, user.IsVerified)
}

func TestAuthenticateUser(t *testing.T) {
	svc, _, _ := newUserService()
	_, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.AuthenticateUser(context.Background(), "dias@example.com", "Passw0rd")
		require.NoError(t, err)
		assert.Equal(t, "dias@example.com", user.Email)
		assert.Empty(t, user.HashedPassword)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.AuthenticateUser(context.Background(), "dias@example.com", "wrong")
		assert.Error(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.AuthenticateUser(context.Background(), "nobody@example.com", "Passw0rd")
		assert.Error(t, err)
	})
}

func TestVerifyEmail(t *testing.T) {
	svc, store, _ := newUserService()
	user, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err)

	stored, err := store.GetCredentialsByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, stored.VerifyToken)

	require.NoError(t, svc.VerifyEmail(context.Background(), stored.VerifyToken))

	verified, err := store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.VerifyToken)

	t.Run("unknown token", func(t *testing.T) {
		assert.Error(t, svc.VerifyEmail(context.Background(), "bogus-token"))
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserService()
	user, err := svc.RegisterUser(context.Background(), validRegistration())
	require.NoError(t, err)

	lat, lon := 43.2389, 76.8897
	name := "Dias A"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name: &name,
		Location: &models.Location{
			Latitude:  &lat,
			Longitude: &lon,
			Address:   "15 Abay Avenue, Almaty",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dias A", updated.Name)
	require.NotNil(t, updated.Location.Latitude)
	assert.Equal(t, 43.2389, *updated.Location.Latitude)

	t.Run("invalid latitude", func(t *testing.T) {
		badLat := 123.0
		_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
			Location: &models.Location{Latitude: &badLat, Longitude: &lon},
		})
		var vErr *apperror.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{})
		var vErr *apperror.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
