package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryListingStore is a mutex-guarded in-memory listing store with the
// same transition semantics as ListingRepository. It backs tests and
// local development without a running MongoDB.
type MemoryListingStore struct {
	mu       sync.Mutex
	listings map[primitive.ObjectID]*models.Listing
	order    []primitive.ObjectID // newest first

	// FailAll makes every operation return ErrUnavailable, simulating an
	// unreachable store.
	FailAll bool
}

// NewMemoryListingStore creates an empty in-memory listing store.
func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{
		listings: make(map[primitive.ObjectID]*models.Listing),
	}
}

func (s *MemoryListingStore) CreateListing(_ context.Context, listing *models.Listing) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if listing.Status == "" {
		listing.Status = models.StatusAvailable
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	stored := *listing
	s.listings[listing.ID] = &stored
	s.order = append([]primitive.ObjectID{listing.ID}, s.order...)
	return listing, nil
}

func (s *MemoryListingStore) GetListingByID(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	listing, ok := s.listings[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	copied := *listing
	return &copied, nil
}

func (s *MemoryListingStore) FindAvailable(_ context.Context) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	var listings []models.Listing
	for _, id := range s.order {
		if l := s.listings[id]; l.Status == models.StatusAvailable {
			listings = append(listings, *l)
		}
	}
	return listings, nil
}

// ClaimListing performs the available-to-claimed compare-and-set under
// the store mutex so concurrent claimants see exactly one winner.
func (s *MemoryListingStore) ClaimListing(_ context.Context, id, userID primitive.ObjectID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	listing, ok := s.listings[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	if listing.Status != models.StatusAvailable {
		return nil, apperror.ErrConflict
	}

	claimant := userID
	listing.Status = models.StatusClaimed
	listing.ClaimedBy = &claimant
	listing.UpdatedAt = time.Now()

	copied := *listing
	return &copied, nil
}

func (s *MemoryListingStore) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return 0, apperror.ErrUnavailable
	}

	var count int64
	for _, listing := range s.listings {
		if listing.Status == models.StatusAvailable && listing.ExpiryDateTime.Before(now) {
			listing.Status = models.StatusExpired
			listing.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (s *MemoryListingStore) UpdateListing(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	listing, ok := s.listings[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	// Values arrive pre-coerced by the service layer; a mismatched type
	// is dropped rather than applied.
	for field, value := range fields {
		switch field {
		case "title":
			if v, ok := value.(string); ok {
				listing.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				listing.Description = v
			}
		case "food_type":
			if v, ok := value.(string); ok {
				listing.FoodType = v
			}
		case "quantity":
			if v, ok := value.(string); ok {
				listing.Quantity = v
			}
		case "expiry_date_time":
			if v, ok := value.(time.Time); ok {
				listing.ExpiryDateTime = v
			}
		case "dietary_info":
			if v, ok := value.([]string); ok {
				listing.DietaryInfo = v
			}
		case "allergens":
			if v, ok := value.([]string); ok {
				listing.Allergens = v
			}
		case "pickup_location":
			if v, ok := value.(models.Location); ok {
				listing.PickupLocation = v
			}
		case "images":
			if v, ok := value.([]string); ok {
				listing.Images = v
			}
		}
	}
	listing.UpdatedAt = time.Now()

	copied := *listing
	return &copied, nil
}

func (s *MemoryListingStore) DeleteListing(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return apperror.ErrUnavailable
	}

	if _, ok := s.listings[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(s.listings, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryListingStore) FindByDonor(_ context.Context, donorID primitive.ObjectID) ([]models.Listing, error) {
	return s.findAll(func(l *models.Listing) bool { return l.DonorID == donorID })
}

func (s *MemoryListingStore) FindClaimedBy(_ context.Context, userID primitive.ObjectID) ([]models.Listing, error) {
	return s.findAll(func(l *models.Listing) bool { return l.ClaimedBy != nil && *l.ClaimedBy == userID })
}

func (s *MemoryListingStore) findAll(match func(*models.Listing) bool) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	var listings []models.Listing
	for _, id := range s.order {
		if l := s.listings[id]; match(l) {
			listings = append(listings, *l)
		}
	}
	return listings, nil
}

// MemoryUserStore is the in-memory counterpart of UserRepository.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	// FailAll makes every operation return ErrUnavailable, simulating an
	// unreachable store.
	FailAll bool
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	return user, nil
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	user, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return sanitized(user), nil
}

func (s *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return sanitized(user), nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *MemoryUserStore) GetUserByVerifyToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	for _, user := range s.users {
		if user.VerifyToken != "" && user.VerifyToken == token {
			return sanitized(user), nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *MemoryUserStore) GetCredentialsByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *MemoryUserStore) UpdateUser(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	user, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	for field, value := range fields {
		switch field {
		case "name":
			if v, ok := value.(string); ok {
				user.Name = v
			}
		case "phone":
			if v, ok := value.(string); ok {
				user.Phone = v
			}
		case "location":
			if v, ok := value.(models.Location); ok {
				user.Location = v
			}
		case "is_verified":
			if v, ok := value.(bool); ok {
				user.IsVerified = v
			}
		case "verify_token":
			if v, ok := value.(string); ok {
				user.VerifyToken = v
			}
		case "notification_preferences":
			if v, ok := value.(models.NotificationPreferences); ok {
				user.NotificationPreferences = v
			}
		}
	}
	user.UpdatedAt = time.Now()

	return sanitized(user), nil
}

func (s *MemoryUserStore) FindVerifiedExcept(_ context.Context, except primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, apperror.ErrUnavailable
	}

	var users []models.User
	for _, user := range s.users {
		if user.IsVerified && user.ID != except {
			users = append(users, *sanitized(user))
		}
	}
	return users, nil
}

// sanitized mirrors the mongo projection that hides the password hash.
func sanitized(user *models.User) *models.User {
	copied := *user
	copied.HashedPassword = ""
	return &copied
}
