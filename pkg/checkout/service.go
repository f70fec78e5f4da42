package checkout

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
)

// ProductStore is the inventory access contract the checkout flow needs.
// Implemented by repository.ProductRepository.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// DecrementStock applies one conditional decrement. It deletes the
	// product when stock hits zero and never lets it go negative.
	DecrementStock(ctx context.Context, id string, qty int) (*models.StockChange, error)
	// RestoreStock compensates a previously applied change.
	RestoreStock(ctx context.Context, change *models.StockChange) error
}

// OrderStore persists completed orders.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (string, error)
	CountByNumber(ctx context.Context, number string) (int64, error)
}

type Service struct {
	products ProductStore
	orders   OrderStore
	logger   *zap.Logger
}

func NewService(products ProductStore, orders OrderStore, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		orders:   orders,
		logger:   logger,
	}
}
