package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrStockLimitReached    = errors.New("cannot add more: stock limit reached")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
)

// ItemKey identifies a cart or wishlist row. One row exists per key.
type ItemKey struct {
	Owner         Owner
	ProductID     primitive.ObjectID
	SelectedImage string
	SelectedSize  string
}

type CartItem struct {
	ID            primitive.ObjectID
	Owner         Owner
	ProductID     primitive.ObjectID
	SelectedImage string
	SelectedSize  string
	Quantity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CartRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, item *CartItem) error
	Update(ctx context.Context, item *CartItem) error
	FindByKey(ctx context.Context, key ItemKey) (*CartItem, error)
	FindByOwner(ctx context.Context, owner Owner) ([]CartItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, owner Owner) error
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error
}

type WishlistItem struct {
	ID            primitive.ObjectID
	Owner         Owner
	ProductID     primitive.ObjectID
	SelectedImage string
	SelectedSize  string
	CreatedAt     time.Time
}

type WishlistRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, item *WishlistItem) error
	FindByKey(ctx context.Context, key ItemKey) (*WishlistItem, error)
	FindByOwner(ctx context.Context, owner Owner) ([]WishlistItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
