package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
)

type AvailabilityStatus string

const (
	StatusAvailable         AvailabilityStatus = "available"
	StatusOutOfStock        AvailabilityStatus = "out_of_stock"
	StatusInsufficientStock AvailabilityStatus = "insufficient_stock"
	StatusDeleted           AvailabilityStatus = "deleted"
)

// CartLine is one product reference plus requested quantity from a
// client-held cart.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  models.Quantity `json:"quantity"`
}

type Availability struct {
	Status       AvailabilityStatus `json:"status"`
	Message      string             `json:"message"`
	AvailableQty int                `json:"availableQty"`
	RequestedQty int                `json:"requestedQty"`
}

// CheckAvailability classifies every cart line against current inventory.
// It is read-only and reflects committed state at call time; a later
// checkout may still fail if stock moves in between. Results are keyed
// "<productId>-<index>" so duplicate cart lines stay distinct.
func (s *Service) CheckAvailability(ctx context.Context, lines []CartLine) (map[string]Availability, error) {
	results := make(map[string]Availability, len(lines))

	for i, line := range lines {
		requested := int(line.Quantity)
		if requested <= 0 {
			requested = 1
		}
		key := fmt.Sprintf("%s-%d", line.ProductID, i)

		product, err := s.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			results[key] = Availability{
				Status:       StatusDeleted,
				Message:      "this product is no longer available",
				AvailableQty: 0,
				RequestedQty: requested,
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		switch {
		case product.Stock == 0:
			results[key] = Availability{
				Status:       StatusOutOfStock,
				Message:      "out of stock",
				AvailableQty: 0,
				RequestedQty: requested,
			}
		case product.Stock < requested:
			results[key] = Availability{
				Status:       StatusInsufficientStock,
				Message:      fmt.Sprintf("only %d left in stock", product.Stock),
				AvailableQty: product.Stock,
				RequestedQty: requested,
			}
		default:
			results[key] = Availability{
				Status:       StatusAvailable,
				Message:      "available",
				AvailableQty: product.Stock,
				RequestedQty: requested,
			}
		}
	}

	s.logger.Debug("availability check completed", zap.Int("lines", len(lines)))
	return results, nil
}
