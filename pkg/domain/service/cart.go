package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"storefront/pkg/domain/model"
)

type CartService interface {
	AddToCart(ctx context.Context, key model.ItemKey, client Client) ([]CartLine, error)
	// RemoveFromCart decrements the row, or deletes it when removeAll is set
	// or the quantity drops to zero.
	RemoveFromCart(ctx context.Context, key model.ItemKey, removeAll bool) ([]CartLine, error)
	GetCart(ctx context.Context, owner model.Owner) ([]CartLine, error)
	ClearCart(ctx context.Context, owner model.Owner) error
}

func NewCartService(carts model.CartRepository, products model.ProductRepository, analytics AnalyticsService) CartService {
	return &cartService{carts: carts, products: products, analytics: analytics}
}

type cartService struct {
	carts     model.CartRepository
	products  model.ProductRepository
	analytics AnalyticsService
}

func (s *cartService) AddToCart(ctx context.Context, key model.ItemKey, client Client) ([]CartLine, error) {
	if key.Owner.IsZero() {
		return nil, model.ErrOwnerRequired
	}
	if key.SelectedImage == "" {
		return nil, model.NewValidationError("product id and selected image are required")
	}

	product, err := s.products.Find(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasSizes() {
		key.SelectedSize = ""
	}

	available, err := product.AvailableStock(key.SelectedSize)
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		if product.HasSizes() {
			return nil, model.NewValidationError("size %s is out of stock", key.SelectedSize)
		}
		return nil, model.NewValidationError("product is out of stock")
	}

	item, err := s.carts.FindByKey(ctx, key)
	switch {
	case err == nil:
		if item.Quantity+1 > available {
			return nil, model.ErrStockLimitReached
		}
		item.Quantity++
		item.UpdatedAt = time.Now().UTC()
		if err := s.carts.Update(ctx, item); err != nil {
			return nil, err
		}
	case errors.Is(err, model.ErrCartItemNotFound):
		now := time.Now().UTC()
		item = &model.CartItem{
			ID:            s.carts.NextID(),
			Owner:         key.Owner,
			ProductID:     key.ProductID,
			SelectedImage: key.SelectedImage,
			SelectedSize:  key.SelectedSize,
			Quantity:      1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.carts.Create(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	lines, err := loadCartLines(ctx, s.carts, s.products, key.Owner)
	if err != nil {
		return nil, err
	}

	s.trackAddToCart(ctx, key, product, lines, client)
	return lines, nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, key model.ItemKey, removeAll bool) ([]CartLine, error) {
	if key.Owner.IsZero() {
		return nil, model.ErrOwnerRequired
	}

	item, err := s.carts.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if removeAll || item.Quantity <= 1 {
		err = s.carts.Delete(ctx, item.ID)
	} else {
		item.Quantity--
		item.UpdatedAt = time.Now().UTC()
		err = s.carts.Update(ctx, item)
	}
	if err != nil {
		return nil, err
	}

	return loadCartLines(ctx, s.carts, s.products, key.Owner)
}

func (s *cartService) GetCart(ctx context.Context, owner model.Owner) ([]CartLine, error) {
	if owner.IsZero() {
		return nil, model.ErrOwnerRequired
	}
	return loadCartLines(ctx, s.carts, s.products, owner)
}

func (s *cartService) ClearCart(ctx context.Context, owner model.Owner) error {
	if owner.IsZero() {
		return model.ErrOwnerRequired
	}
	return s.carts.DeleteByOwner(ctx, owner)
}

func (s *cartService) trackAddToCart(ctx context.Context, key model.ItemKey, product *model.Product, lines []CartLine, client Client) {
	totalItems := 0
	for _, line := range lines {
		totalItems += line.Item.Quantity
	}

	activity := &model.Activity{
		EventType: model.EventAddToCart,
		Data: map[string]interface{}{
			"product_id":       product.ID.Hex(),
			"product_name":     product.Name,
			"price":            product.Price().InexactFloat64(),
			"selected_image":   product.NormalizeImage(key.SelectedImage),
			"selected_size":    key.SelectedSize,
			"cart_total_items": totalItems,
		},
	}
	if id, ok := key.Owner.UserID(); ok {
		activity.UserID = id
	} else if gid, ok := key.Owner.GuestID(); ok {
		activity.GuestID = gid
	}

	s.analytics.Track(ctx, activity, client)
}
