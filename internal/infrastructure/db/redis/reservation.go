package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationTTL = 30 * time.Second

// ReservationGuard serializes concurrent enrollment attempts with a
// short-lived Redis lease per (offering, email) pair.
// Key format: enroll:<offering_id>:<email>
type ReservationGuard struct {
	client *redis.Client
}

// NewReservationGuard creates a ReservationGuard wrapping the given client.
func NewReservationGuard(client *redis.Client) *ReservationGuard {
	return &ReservationGuard{client: client}
}

// Acquire takes the lease. A false return means another attempt for the
// same pair is in flight (or just completed). The lease expires on its
// own, so a crashed holder never blocks for long.
func (g *ReservationGuard) Acquire(ctx context.Context, offeringID, email string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(offeringID, email), "1", reservationTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire reservation: %w", err)
	}
	return ok, nil
}

// Release drops the lease early after a rejected attempt.
func (g *ReservationGuard) Release(ctx context.Context, offeringID, email string) error {
	return g.client.Del(ctx, g.key(offeringID, email)).Err()
}

func (g *ReservationGuard) key(offeringID, email string) string {
	return fmt.Sprintf("enroll:%s:%s", offeringID, email)
}
