package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

// CartLine is a cart row with its product. Product is nil when the product
// no longer exists.
type CartLine struct {
	Item    model.CartItem
	Product *model.Product
}

type WishlistLine struct {
	Item    model.WishlistItem
	Product *model.Product
}

func loadCartLines(ctx context.Context, carts model.CartRepository, products model.ProductRepository, owner model.Owner) ([]CartLine, error) {
	items, err := carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	byID, err := productsByID(ctx, products, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		line := CartLine{Item: item}
		if p, ok := byID[item.ProductID.Hex()]; ok {
			p := p
			line.Product = &p
			line.Item.SelectedImage = p.NormalizeImage(item.SelectedImage)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func productsByID(ctx context.Context, products model.ProductRepository, ids []primitive.ObjectID) (map[string]model.Product, error) {
	result := make(map[string]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	found, err := products.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		result[p.ID.Hex()] = p
	}
	return result, nil
}
