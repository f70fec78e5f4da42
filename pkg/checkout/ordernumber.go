package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberAttempts = 5
)

// nextOrderNumber allocates a human-readable order number and verifies it is
// not already taken. Collisions are overwhelmingly unlikely, but an order
// number is what support staff key on, so we check anyway.
func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := newOrderNumber()
		count, err := s.orders.CountByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", errors.New("could not allocate a unique order number")
}

func newOrderNumber() string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
