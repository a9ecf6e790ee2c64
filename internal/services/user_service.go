package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// UserService encapsulates the business logic for user accounts.
type UserService struct {
	repo          UserStore
	emailSender   EmailSender
	verifyBaseURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, emailSender EmailSender, verifyBaseURL string) *UserService {
	return &UserService{
		repo:          repo,
		emailSender:   emailSender,
		verifyBaseURL: verifyBaseURL,
	}
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// RegisterUser creates a new unverified account and sends a verification
// email. Email delivery is best-effort: a failed send is logged but does
// not fail registration.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		logrus.WithError(err).Error("Duplicate email check failed")
		return nil, err
	}
	if existing != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, apperror.Validation("email", "user already exists")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		HashedPassword: string(hashedPwd),
		Phone:          input.Phone,
		IsVerified:     false,
		VerifyToken:    uuid.NewString(),
		NotificationPreferences: models.NotificationPreferences{
			Enabled:     true,
			MaxDistance: 10,
		},
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	verificationLink := fmt.Sprintf("%s/%s", s.verifyBaseURL, created.VerifyToken)
	body := fmt.Sprintf("Welcome to the Food Sharing Platform!\n\nPlease verify your email by opening the link below:\n%s", verificationLink)
	if err := s.emailSender.Send(created.Email, "Verify Your Email - Food Sharing Platform", body); err != nil {
		logrus.WithError(err).Error("Failed to send verification email")
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered successfully")
	created.HashedPassword = ""
	return created, nil
}

// AuthenticateUser verifies email and password and returns the user when
// the credentials are valid. Unverified users may log in; only listing
// creation requires a verified email.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		logrus.WithField("email", email).Warn("User not found during login")
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid email or password")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	user.HashedPassword = ""
	return user, nil
}

// VerifyEmail marks the account holding this token as verified. Verifying
// an already-verified account is a no-op.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperror.Validation("token", "verification token is required")
	}

	user, err := s.repo.GetUserByVerifyToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token")
	}
	if user.IsVerified {
		return nil
	}

	_, err = s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
	})
	if err != nil {
		return fmt.Errorf("failed to update verification status: %v", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Email verified")
	return nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfileInput carries the profile fields a user may change.
type UpdateProfileInput struct {
	Name                    *string                         `json:"name"`
	Phone                   *string                         `json:"phone"`
	Location                *models.Location                `json:"location"`
	NotificationPreferences *models.NotificationPreferences `json:"notification_preferences"`
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 || len(name) > 50 || !nameRegex.MatchString(name) {
			return nil, apperror.Validation("name", "name must be 2-50 letters")
		}
		fields["name"] = name
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.Location != nil {
		loc := *input.Location
		if loc.HasCoordinates() {
			if *loc.Latitude < -90 || *loc.Latitude > 90 {
				return nil, apperror.Validation("location.latitude", "invalid latitude")
			}
			if *loc.Longitude < -180 || *loc.Longitude > 180 {
				return nil, apperror.Validation("location.longitude", "invalid longitude")
			}
		}
		fields["location"] = loc
	}
	if input.NotificationPreferences != nil {
		prefs := *input.NotificationPreferences
		if prefs.MaxDistance < 0 {
			return nil, apperror.Validation("notification_preferences.max_distance", "max distance cannot be negative")
		}
		fields["notification_preferences"] = prefs
	}
	if len(fields) == 0 {
		return nil, apperror.Validation("updates", "no updatable fields provided")
	}

	return s.repo.UpdateUser(ctx, id, fields)
}

func validateRegisterInput(input RegisterInput) error {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 || len(name) > 50 {
		return apperror.Validation("name", "name must be 2-50 characters")
	}
	if !nameRegex.MatchString(name) {
		return apperror.Validation("name", "name can only contain letters")
	}
	if !emailRegex.MatchString(strings.TrimSpace(input.Email)) {
		return apperror.Validation("email", "invalid email format")
	}
	if len(input.Password) < 6 {
		return apperror.Validation("password", "password must be at least 6 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range input.Password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperror.Validation("password", "password must contain uppercase, lowercase, and number")
	}
	return nil
}
