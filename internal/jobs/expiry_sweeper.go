package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpiryStore is the slice of the listing store the sweeper mutates.
type ExpiryStore interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpirySweeper transitions overdue available listings to expired.
// Records are never deleted; expiry is a status transition so claim
// history survives.
type ExpirySweeper struct {
	store ExpiryStore
}

// NewExpirySweeper creates a new instance of ExpirySweeper.
func NewExpirySweeper(store ExpiryStore) *ExpirySweeper {
	return &ExpirySweeper{store: store}
}

// Sweep marks every available listing whose expiry passed before now as
// expired and returns the number transitioned. Running it again with the
// same now transitions nothing.
func (s *ExpirySweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.store.MarkExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", err)
	}

	if count > 0 {
		logrus.WithField("count", count).Info("Marked listings as expired")
	}
	return count, nil
}
