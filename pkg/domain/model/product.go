package model

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductCodeTaken     = errors.New("product code already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrSizeRequired         = errors.New("size is required for this product")
	ErrInvalidSize          = errors.New("invalid size selected")
	ErrReviewNotFound       = errors.New("review not found")
	ErrReviewAlreadyExists  = errors.New("you have already reviewed this product")
	ErrInvalidProductImages = errors.New("at least one product image is required")
)

const DefaultProductRating = 4.0

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// StockError reports a line item that asks for more than is available.
type StockError struct {
	Product   string
	Size      string
	Available int
}

func (e *StockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("product %s size %s has only %d units in stock", e.Product, e.Size, e.Available)
	}
	return fmt.Sprintf("product %s has only %d units in stock", e.Product, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type SizeStock struct {
	Size  string
	Stock int
}

type Color struct {
	Name string
	Hex  string
}

type Product struct {
	ID              primitive.ObjectID
	Name            string
	Description     string
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal
	Stock           int
	Sizes           []SizeStock
	Colors          []Color
	Warranty        string
	Highlights      []string
	Images          []string
	Category        primitive.ObjectID
	Subcategories   []primitive.ObjectID
	Brand           string
	Code            string
	Rating          float64
	BgColor         string
	Shipping        decimal.Decimal
	PaymentMethods  []string
	IsNewArrival    bool
	IsBestSeller    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// AvailableStock returns the stock a line item draws from. Sized products
// ignore the flat stock entirely.
func (p *Product) AvailableStock(size string) (int, error) {
	if !p.HasSizes() {
		return p.Stock, nil
	}
	if size == "" {
		return 0, ErrSizeRequired
	}
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, nil
		}
	}
	return 0, ErrInvalidSize
}

// StockSize is the size key a stock adjustment applies to, empty for flat stock.
func (p *Product) StockSize(size string) string {
	if p.HasSizes() {
		return size
	}
	return ""
}

// NormalizeImage keeps the selected image when it belongs to the product and
// falls back to the first product image otherwise.
func (p *Product) NormalizeImage(selected string) string {
	for _, img := range p.Images {
		if img == selected {
			return selected
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return selected
}

// Price is the unit price a customer pays.
func (p *Product) Price() decimal.Decimal {
	if p.DiscountedPrice.IsPositive() {
		return p.DiscountedPrice
	}
	return p.BasePrice
}

type ProductRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Find(ctx context.Context, id primitive.ObjectID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AdjustStock atomically adds delta to the size stock, or the flat stock
	// when size is empty.
	AdjustStock(ctx context.Context, id primitive.ObjectID, size string, delta int) error
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error
}

type Review struct {
	ID        primitive.ObjectID
	UserID    primitive.ObjectID
	ProductID primitive.ObjectID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type ReviewRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, review *Review) error
	FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*Review, error)
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error
}
