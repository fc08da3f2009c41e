package model

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrDiscountCodeNotFound     = errors.New("invalid discount code")
	ErrDiscountCodeUsed         = errors.New("discount code has already been used")
	ErrDiscountCodeExpired      = errors.New("discount code has expired")
	ErrActiveDiscountCodeExists = errors.New("a discount code has already been issued to this email")
)

const DiscountCodeTTL = 7 * 24 * time.Hour

var discountRate = decimal.NewFromFloat(0.9)

// ApplyDiscount takes ten percent off a subtotal, rounded to cents.
func ApplyDiscount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(discountRate).Round(2)
}

type DiscountCode struct {
	ID        primitive.ObjectID
	Email     string
	Code      string
	IsUsed    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Check reports why the code cannot be redeemed at now, or nil.
func (d *DiscountCode) Check(now time.Time) error {
	if d.IsUsed {
		return ErrDiscountCodeUsed
	}
	if !now.Before(d.ExpiresAt) {
		return ErrDiscountCodeExpired
	}
	return nil
}

type DiscountCodeRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, code *DiscountCode) error
	Update(ctx context.Context, code *DiscountCode) error
	FindByCodeAndEmail(ctx context.Context, code, email string) (*DiscountCode, error)
	FindActiveByEmail(ctx context.Context, email string, now time.Time) (*DiscountCode, error)
}
