package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

type WishlistService interface {
	// AddToWishlist reports whether a new row was created.
	AddToWishlist(ctx context.Context, key model.ItemKey) ([]WishlistLine, bool, error)
	RemoveFromWishlist(ctx context.Context, key model.ItemKey) ([]WishlistLine, error)
	GetWishlist(ctx context.Context, owner model.Owner) ([]WishlistLine, error)
}

func NewWishlistService(wishlists model.WishlistRepository, products model.ProductRepository) WishlistService {
	return &wishlistService{wishlists: wishlists, products: products}
}

type wishlistService struct {
	wishlists model.WishlistRepository
	products  model.ProductRepository
}

func (s *wishlistService) AddToWishlist(ctx context.Context, key model.ItemKey) ([]WishlistLine, bool, error) {
	if key.Owner.IsZero() {
		return nil, false, model.ErrOwnerRequired
	}
	product, err := s.products.Find(ctx, key.ProductID)
	if err != nil {
		return nil, false, err
	}
	key.SelectedImage = product.NormalizeImage(key.SelectedImage)

	created := false
	_, err = s.wishlists.FindByKey(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrWishlistItemNotFound):
		item := &model.WishlistItem{
			ID:            s.wishlists.NextID(),
			Owner:         key.Owner,
			ProductID:     key.ProductID,
			SelectedImage: key.SelectedImage,
			SelectedSize:  key.SelectedSize,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.wishlists.Create(ctx, item); err != nil {
			return nil, false, err
		}
		created = true
	default:
		return nil, false, err
	}

	lines, err := s.GetWishlist(ctx, key.Owner)
	return lines, created, err
}

func (s *wishlistService) RemoveFromWishlist(ctx context.Context, key model.ItemKey) ([]WishlistLine, error) {
	if key.Owner.IsZero() {
		return nil, model.ErrOwnerRequired
	}
	if product, err := s.products.Find(ctx, key.ProductID); err == nil {
		key.SelectedImage = product.NormalizeImage(key.SelectedImage)
	}
	item, err := s.wishlists.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.wishlists.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.GetWishlist(ctx, key.Owner)
}

func (s *wishlistService) GetWishlist(ctx context.Context, owner model.Owner) ([]WishlistLine, error) {
	if owner.IsZero() {
		return nil, model.ErrOwnerRequired
	}
	items, err := s.wishlists.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	byID, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]WishlistLine, 0, len(items))
	for _, item := range items {
		line := WishlistLine{Item: item}
		if p, ok := byID[item.ProductID.Hex()]; ok {
			p := p
			line.Product = &p
			line.Item.SelectedImage = p.NormalizeImage(item.SelectedImage)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
