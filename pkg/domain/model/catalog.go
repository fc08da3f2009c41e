package model

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameTaken    = errors.New("category name already exists")
	ErrCategoryNotTopLevel  = errors.New("invalid category ID or category is a subcategory")
	ErrCategoryHasChildren  = errors.New("category still has subcategories")
	ErrInvalidSubcategories = errors.New("invalid subcategories or they do not belong to the specified category")
	ErrDealNotFound         = errors.New("deal not found")
	ErrDealExpired          = errors.New("deal has expired")
	ErrDealCodeTaken        = errors.New("deal code already exists")
	ErrNoDealsInCategory    = errors.New("no deals found in this category")
)

type Category struct {
	ID             primitive.ObjectID
	Name           string
	ParentCategory primitive.ObjectID
	Image          string
}

func (c *Category) IsTopLevel() bool {
	return c.ParentCategory.IsZero()
}

type CategoryRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Find(ctx context.Context, id primitive.ObjectID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Deal struct {
	ID            primitive.ObjectID
	Name          string
	Description   string
	OriginalPrice decimal.Decimal
	DealPrice     decimal.Decimal
	Stock         int
	Images        []string
	Category      primitive.ObjectID
	Code          string
	Rating        float64
	ExpiresAt     time.Time
	BgColor       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (d *Deal) IsExpired(now time.Time) bool {
	return d.ExpiresAt.Before(now)
}

type DealRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, deal *Deal) error
	Update(ctx context.Context, deal *Deal) error
	Find(ctx context.Context, id primitive.ObjectID) (*Deal, error)
	FindByCode(ctx context.Context, code string) (*Deal, error)
	// FindActive returns deals expiring at or after now, optionally limited to a category.
	FindActive(ctx context.Context, now time.Time, categoryID primitive.ObjectID) ([]Deal, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
