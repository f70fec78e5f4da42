package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
)

const defaultOrderSource = "website"

// CheckoutRequest is the payload a submitted cart produces.
type CheckoutRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`

	Products []RequestItem `json:"products"`

	// Client-declared totals; recomputed values are used as fallback only.
	TotalPrice models.Price `json:"totalPrice"`
	ItemCount  int          `json:"itemCount"`

	Notes       string `json:"notes"`
	OrderSource string `json:"orderSource"`
}

type RequestItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Name        string          `json:"name"`
	Price       models.Price    `json:"price"`
	Quantity    models.Quantity `json:"quantity"`
	ItemTotal   models.Price    `json:"itemTotal"`
	Image       string          `json:"image"`
}

// Confirmation is returned for a committed order. UnfulfilledItems lists
// lines that were persisted into the order without moving any stock because
// their product reference could not be resolved.
type Confirmation struct {
	OrderID          string   `json:"orderId"`
	OrderNumber      string   `json:"orderNumber"`
	TotalPrice       float64  `json:"totalPrice"`
	UnfulfilledItems []string `json:"unfulfilledItems,omitempty"`
}

// PlaceOrder runs the full checkout: validation, per-line inventory
// decrement, order persistence. The inventory work is all-or-nothing; if any
// line fails its stock check, or the order insert fails, every decrement
// already applied for this request is compensated before the error returns.
func (s *Service) PlaceOrder(ctx context.Context, req *CheckoutRequest) (*Confirmation, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, &ValidationError{Message: "name, email and phone are required"}
	}
	if len(req.Products) == 0 {
		return nil, &ValidationError{Message: "order must contain at least one item"}
	}

	var fallbackTotal float64
	for _, item := range req.Products {
		fallbackTotal += float64(item.Price) * float64(item.quantity())
	}

	var applied []*models.StockChange
	var unfulfilled []string

	for _, item := range req.Products {
		if item.ProductID == "" {
			s.logger.Warn("order line has no product reference, no stock moved",
				zap.String("product_name", item.displayName()))
			unfulfilled = append(unfulfilled, item.displayName())
			continue
		}

		change, err := s.products.DecrementStock(ctx, item.ProductID, item.quantity())
		if errors.Is(err, ErrProductNotFound) {
			s.logger.Warn("order line references a missing product, no stock moved",
				zap.String("product_id", item.ProductID),
				zap.String("product_name", item.displayName()))
			unfulfilled = append(unfulfilled, item.displayName())
			continue
		}
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.ProductName = item.displayName()
			s.rollback(ctx, applied)
			return nil, stockErr
		}
		if err != nil {
			s.rollback(ctx, applied)
			return nil, err
		}
		applied = append(applied, change)
	}

	order := s.buildOrder(req, fallbackTotal)

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		s.rollback(ctx, applied)
		return nil, err
	}
	order.OrderNumber = number

	id, err := s.orders.Insert(ctx, order)
	if err != nil {
		s.rollback(ctx, applied)
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", id),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("item_count", order.ItemCount),
		zap.Int("unfulfilled", len(unfulfilled)))

	return &Confirmation{
		OrderID:          id,
		OrderNumber:      order.OrderNumber,
		TotalPrice:       order.TotalPrice,
		UnfulfilledItems: unfulfilled,
	}, nil
}

func (s *Service) buildOrder(req *CheckoutRequest, fallbackTotal float64) *models.Order {
	items := make([]models.OrderItem, 0, len(req.Products))
	for _, item := range req.Products {
		qty := item.quantity()
		lineTotal := float64(item.ItemTotal)
		if lineTotal <= 0 {
			lineTotal = float64(item.Price) * float64(qty)
		}
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.displayName(),
			Price:       float64(item.Price),
			Quantity:    qty,
			ItemTotal:   lineTotal,
			Image:       item.Image,
		})
	}

	totalPrice := float64(req.TotalPrice)
	if totalPrice <= 0 {
		totalPrice = fallbackTotal
	}
	itemCount := req.ItemCount
	if itemCount <= 0 {
		itemCount = len(items)
	}
	source := req.OrderSource
	if source == "" {
		source = defaultOrderSource
	}

	now := time.Now()
	return &models.Order{
		CustomerName:  strings.TrimSpace(req.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.Email)),
		CustomerPhone: strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		Items:         items,
		TotalPrice:    totalPrice,
		ItemCount:     itemCount,
		Notes:         strings.TrimSpace(req.Notes),
		OrderSource:   source,
		Status:        models.StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// rollback compensates decrements applied earlier in the same request, most
// recent first. Failures are logged; there is nothing else to do with them.
func (s *Service) rollback(ctx context.Context, applied []*models.StockChange) {
	for i := len(applied) - 1; i >= 0; i-- {
		if err := s.products.RestoreStock(ctx, applied[i]); err != nil {
			s.logger.Error("failed to restore stock during order rollback",
				zap.String("product_id", applied[i].ProductID),
				zap.Int("quantity", applied[i].Previous-applied[i].NewStock),
				zap.Error(err))
		}
	}
}

func (it *RequestItem) quantity() int {
	if it.Quantity <= 0 {
		return 1
	}
	return int(it.Quantity)
}

func (it *RequestItem) displayName() string {
	if it.ProductName != "" {
		return it.ProductName
	}
	if it.Name != "" {
		return it.Name
	}
	return "unspecified"
}
