package model

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderIsEmpty       = errors.New("order must contain at least one product")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return status, nil
	}
	return "", ErrInvalidOrderStatus
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type OrderItem struct {
	ProductID     primitive.ObjectID
	Quantity      int
	SelectedImage string
	SelectedSize  string
	SelectedColor string
}

type Order struct {
	ID              primitive.ObjectID
	Owner           Owner
	FullName        string
	Items           []OrderItem
	OriginalAmount  decimal.Decimal
	ShippingAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	DiscountApplied bool
	DiscountCode    string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	ShippingAddress string
	Email           string
	Phone           string
	City            string
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

type OrderRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	Find(ctx context.Context, id primitive.ObjectID) (*Order, error)
	FindByOwner(ctx context.Context, owner Owner) ([]Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
