package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Stubs ---

type stubCatalog struct {
	listFn   func(ctx context.Context) ([]models.Product, error)
	insertFn func(ctx context.Context, p *models.NewProduct) (*models.Product, error)
	updateFn func(ctx context.Context, id string, fields map[string]interface{}) error
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCatalog) List(ctx context.Context) ([]models.Product, error) {
	return s.listFn(ctx)
}
func (s *stubCatalog) Insert(ctx context.Context, p *models.NewProduct) (*models.Product, error) {
	return s.insertFn(ctx, p)
}
func (s *stubCatalog) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.updateFn(ctx, id, fields)
}
func (s *stubCatalog) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubArchive struct {
	listFn         func(ctx context.Context) ([]models.Order, error)
	updateStatusFn func(ctx context.Context, id string, status models.OrderStatus) error
	deleteFn       func(ctx context.Context, id string) error
}

func (s *stubArchive) List(ctx context.Context) ([]models.Order, error) {
	return s.listFn(ctx)
}
func (s *stubArchive) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *stubArchive) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubCheckout struct {
	placeFn func(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error)
	checkFn func(ctx context.Context, lines []checkout.CartLine) (map[string]checkout.Availability, error)
}

func (s *stubCheckout) PlaceOrder(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error) {
	return s.placeFn(ctx, req)
}
func (s *stubCheckout) CheckAvailability(ctx context.Context, lines []checkout.CartLine) (map[string]checkout.Availability, error) {
	return s.checkFn(ctx, lines)
}

func newTestServer(products ProductCatalog, orders OrderArchive, checkoutSvc CheckoutService) *Server {
	cfg := &config.Config{}
	cfg.Server.Name = "store-api-test"
	return NewServer(cfg, zap.NewNop(), products, orders, checkoutSvc)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	catalog := &stubCatalog{
		listFn: func(ctx context.Context) ([]models.Product, error) {
			return []models.Product{{ID: "p1", Category: models.CategoryShirts, Stock: 3}}, nil
		},
	}
	srv := newTestServer(catalog, &stubArchive{}, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodGet, "/products", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].(map[string]interface{})["id"])
}

func TestCreateProductRequiresTypeAndPrice(t *testing.T) {
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodPost, "/products", map[string]interface{}{
		"type": models.CategoryJackets,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, &stubCheckout{})

	rec, _ := doJSON(t, srv, http.MethodPost, "/products", map[string]interface{}{
		"type":  "Shoes",
		"price": "50",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductAcceptsNumericPrice(t *testing.T) {
	var got *models.NewProduct
	catalog := &stubCatalog{
		insertFn: func(ctx context.Context, p *models.NewProduct) (*models.Product, error) {
			got = p
			return &models.Product{ID: "p1", Category: p.Category, Price: p.Price}, nil
		},
	}
	srv := newTestServer(catalog, &stubArchive{}, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodPost, "/products", map[string]interface{}{
		"type":  models.CategoryShirts,
		"price": 120,
		"qty":   "5",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	require.NotNil(t, got)
	assert.Equal(t, "120", got.Price)
	assert.Equal(t, "5", got.Qty)
}

func TestUpdateProductNotFound(t *testing.T) {
	catalog := &stubCatalog{
		updateFn: func(ctx context.Context, id string, fields map[string]interface{}) error {
			return checkout.ErrProductNotFound
		},
	}
	srv := newTestServer(catalog, &stubArchive{}, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodPut, "/products", map[string]interface{}{
		"id":    "missing",
		"price": "10",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestCreateOrderSuccessEnvelope(t *testing.T) {
	checkoutSvc := &stubCheckout{
		placeFn: func(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error) {
			return &checkout.Confirmation{
				OrderID:     "order-1",
				OrderNumber: "ORD-1700000000000-A1B2C",
				TotalPrice:  25,
			}, nil
		},
	}
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, checkoutSvc)

	rec, body := doJSON(t, srv, http.MethodPost, "/orders", map[string]interface{}{
		"name":     "Amina",
		"email":    "amina@example.com",
		"phone":    "0600000000",
		"products": []map[string]interface{}{{"productId": "p1", "price": 10, "quantity": 2}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "order-1", body["orderId"])
	assert.Equal(t, "ORD-1700000000000-A1B2C", body["orderNumber"])
	assert.Equal(t, 25.0, body["totalPrice"])
	assert.NotContains(t, body, "unfulfilledItems")
}

func TestCreateOrderValidationFailure(t *testing.T) {
	checkoutSvc := &stubCheckout{
		placeFn: func(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error) {
			return nil, &checkout.ValidationError{Message: "name, email and phone are required"}
		},
	}
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, checkoutSvc)

	rec, body := doJSON(t, srv, http.MethodPost, "/orders", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "name, email and phone are required", body["error"])
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	checkoutSvc := &stubCheckout{
		placeFn: func(ctx context.Context, req *checkout.CheckoutRequest) (*checkout.Confirmation, error) {
			return nil, &checkout.InsufficientStockError{
				ProductName: "Jacket", Available: 1, Requested: 4,
			}
		},
	}
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, checkoutSvc)

	rec, body := doJSON(t, srv, http.MethodPost, "/orders", map[string]interface{}{
		"name": "A", "email": "a@b.c", "phone": "1",
		"products": []map[string]interface{}{{"productId": "p1", "quantity": 4}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Jacket")
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodPut, "/orders", map[string]interface{}{
		"id":     "order-1",
		"status": "Lost",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Lost")
}

func TestUpdateOrderStatus(t *testing.T) {
	var gotStatus models.OrderStatus
	archive := &stubArchive{
		updateStatusFn: func(ctx context.Context, id string, status models.OrderStatus) error {
			gotStatus = status
			return nil
		},
	}
	srv := newTestServer(&stubCatalog{}, archive, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodPut, "/orders", map[string]interface{}{
		"id":     "order-1",
		"status": "Shipped",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.StatusShipped, gotStatus)
}

func TestDeleteOrderNotFound(t *testing.T) {
	archive := &stubArchive{
		deleteFn: func(ctx context.Context, id string) error {
			return checkout.ErrOrderNotFound
		},
	}
	srv := newTestServer(&stubCatalog{}, archive, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodDelete, "/orders", map[string]interface{}{"id": "missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestListOrdersIncludesCount(t *testing.T) {
	archive := &stubArchive{
		listFn: func(ctx context.Context) ([]models.Order, error) {
			return []models.Order{{ID: "o1"}, {ID: "o2"}}, nil
		},
	}
	srv := newTestServer(&stubCatalog{}, archive, &stubCheckout{})

	rec, body := doJSON(t, srv, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["count"])
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	checkoutSvc := &stubCheckout{
		checkFn: func(ctx context.Context, lines []checkout.CartLine) (map[string]checkout.Availability, error) {
			return map[string]checkout.Availability{
				"p1-0": {Status: checkout.StatusInsufficientStock, AvailableQty: 3, RequestedQty: 5},
			}, nil
		},
	}
	srv := newTestServer(&stubCatalog{}, &stubArchive{}, checkoutSvc)

	rec, body := doJSON(t, srv, http.MethodPost, "/availability", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "p1", "quantity": 5}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].(map[string]interface{})
	entry := items["p1-0"].(map[string]interface{})
	assert.Equal(t, "insufficient_stock", entry["status"])
	assert.Equal(t, 3.0, entry["availableQty"])
}
