package model

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderPlaced struct {
	OrderID         primitive.ObjectID
	Owner           string
	Total           decimal.Decimal
	DiscountApplied bool
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }

type OrderStatusChanged struct {
	OrderID   primitive.ObjectID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }

type OrderDeleted struct {
	OrderID primitive.ObjectID
}

func (e OrderDeleted) Type() string { return "OrderDeleted" }

type StockAdjusted struct {
	ProductID primitive.ObjectID
	Size      string
	Delta     int
}

func (e StockAdjusted) Type() string { return "StockAdjusted" }

type ProductCreated struct {
	ProductID primitive.ObjectID
	Code      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductDeleted struct {
	ProductID primitive.ObjectID
}

func (e ProductDeleted) Type() string { return "ProductDeleted" }

type ReviewSubmitted struct {
	ProductID primitive.ObjectID
	UserID    primitive.ObjectID
	Rating    int
}

func (e ReviewSubmitted) Type() string { return "ReviewSubmitted" }

type DiscountCodeIssued struct {
	Email string
}

func (e DiscountCodeIssued) Type() string { return "DiscountCodeIssued" }

type DiscountCodeRedeemed struct {
	Email string
	Code  string
}

func (e DiscountCodeRedeemed) Type() string { return "DiscountCodeRedeemed" }

type UserRegistered struct {
	UserID   primitive.ObjectID
	Email    string
	Username string
}

func (e UserRegistered) Type() string { return "UserRegistered" }

type UserDeleted struct {
	UserID primitive.ObjectID
}

func (e UserDeleted) Type() string { return "UserDeleted" }

type CampaignSent struct {
	CampaignID     primitive.ObjectID
	RecipientCount int
}

func (e CampaignSent) Type() string { return "CampaignSent" }
