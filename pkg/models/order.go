package models

import (
	"time"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusPreparing  OrderStatus = "Preparing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	StatusProcessing: true,
	StatusConfirmed:  true,
	StatusPreparing:  true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

type Order struct {
	ID            string      `json:"id" bson:"-"`
	OrderNumber   string      `json:"orderNumber" bson:"orderNumber"`
	CustomerName  string      `json:"customerName" bson:"customerName"`
	CustomerEmail string      `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone string      `json:"customerPhone" bson:"customerPhone"`
	Address       string      `json:"address" bson:"address"`
	City          string      `json:"city" bson:"city"`
	PostalCode    string      `json:"postalCode" bson:"postalCode"`
	Items         []OrderItem `json:"products" bson:"products"`
	TotalPrice    float64     `json:"totalPrice" bson:"totalPrice"`
	ItemCount     int         `json:"itemCount" bson:"itemCount"`
	Notes         string      `json:"notes" bson:"notes"`
	OrderSource   string      `json:"orderSource" bson:"orderSource"`
	Status        OrderStatus `json:"status" bson:"status"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem is an immutable snapshot of the product at purchase time.
// Later product edits or deletes never touch it.
type OrderItem struct {
	ProductID   string  `json:"productId" bson:"productId"`
	ProductName string  `json:"productName" bson:"productName"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	ItemTotal   float64 `json:"itemTotal" bson:"itemTotal"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty"`
}
