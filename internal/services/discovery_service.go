package services

import (
	"context"
	"sort"
	"strings"

	"github.com/Dias221467/FoodShare/internal/models"
	"github.com/Dias221467/FoodShare/pkg/geo"
	"github.com/sirupsen/logrus"
)

// Coordinate is a requester's position in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// DiscoveryFilters narrows the feed of available listings.
type DiscoveryFilters struct {
	// FoodType is an exact-match category filter.
	FoodType string
	// Query is a case-insensitive substring match on title or description.
	Query string
	// MaxDistance in kilometers; only applied when a requester coordinate
	// is present.
	MaxDistance *float64
}

// DiscoveryService produces the filtered, distance-ranked read view of
// available listings.
type DiscoveryService struct {
	store ListingStore
}

// NewDiscoveryService creates a new instance of DiscoveryService.
func NewDiscoveryService(store ListingStore) *DiscoveryService {
	return &DiscoveryService{store: store}
}

// Discover returns available listings matching the filters. With a
// requester coordinate each view carries its distance and the result is
// sorted ascending by it; without one the store's newest-first order is
// kept and no distance is computed. Listings without pickup coordinates
// are only dropped when a distance cutoff demands one.
func (s *DiscoveryService) Discover(ctx context.Context, requester *Coordinate, filters DiscoveryFilters) ([]models.ListingView, error) {
	listings, err := s.store.FindAvailable(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch available listings for discovery")
		return nil, err
	}

	views := make([]models.ListingView, 0, len(listings))
	for _, listing := range listings {
		if filters.FoodType != "" && listing.FoodType != filters.FoodType {
			continue
		}
		if filters.Query != "" && !matchesQuery(listing, filters.Query) {
			continue
		}

		view := models.ListingView{Listing: listing}
		if requester != nil && listing.PickupLocation.HasCoordinates() {
			d := geo.DistanceKm(
				requester.Latitude, requester.Longitude,
				*listing.PickupLocation.Latitude, *listing.PickupLocation.Longitude,
			)
			view.Distance = &d
		}

		if requester != nil && filters.MaxDistance != nil {
			if view.Distance == nil || *view.Distance > *filters.MaxDistance {
				continue
			}
		}

		views = append(views, view)
	}

	if requester != nil {
		// Listings without a computable distance sort after the rest,
		// keeping their relative newest-first order.
		sort.SliceStable(views, func(i, j int) bool {
			di, dj := views[i].Distance, views[j].Distance
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	}

	return views, nil
}

func matchesQuery(listing models.Listing, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(listing.Title), q) ||
		strings.Contains(strings.ToLower(listing.Description), q)
}
