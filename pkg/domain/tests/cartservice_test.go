package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func setupCart(t *testing.T) (service.CartService, *mockProductRepository, *mockCartRepository, *mockActivityRepository) {
	t.Helper()
	products := newMockProductRepository()
	carts := &mockCartRepository{}
	activities := &mockActivityRepository{}
	analytics := service.NewAnalyticsService(activities, newMockUserRepository(), carts, products, nil, &syncQueue{})
	return service.NewCartService(carts, products, analytics), products, carts, activities
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cartService, products, _, activities := setupCart(t)
		p := addProduct(t, products, func(p *model.Product) { p.Stock = 2 })
		key := model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID, SelectedImage: "lamp-side.jpg"}

		lines, err := cartService.AddToCart(ctx, key, service.Client{})
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 1, lines[0].Item.Quantity)
		require.NotNil(t, lines[0].Product)
		assert.Equal(t, p.Name, lines[0].Product.Name)

		lines, err = cartService.AddToCart(ctx, key, service.Client{})
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Item.Quantity)

		_, err = cartService.AddToCart(ctx, key, service.Client{})
		assert.ErrorIs(t, err, model.ErrStockLimitReached)

		tracked := activities.ofType(model.EventAddToCart)
		require.Len(t, tracked, 2)
		assert.Equal(t, "guest-1", tracked[1].GuestID)
		assert.Equal(t, 2, tracked[1].Data["cart_total_items"])
		assert.Equal(t, "lamp-side.jpg", tracked[1].Data["selected_image"])
	})

	t.Run("Separate rows per image", func(t *testing.T) {
		cartService, products, _, _ := setupCart(t)
		p := addProduct(t, products, nil)
		owner := model.RegisteredOwner(primitive.NewObjectID())

		_, err := cartService.AddToCart(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg"}, service.Client{})
		require.NoError(t, err)
		lines, err := cartService.AddToCart(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "lamp-side.jpg"}, service.Client{})
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("Sized product", func(t *testing.T) {
		cartService, products, _, _ := setupCart(t)
		p := addProduct(t, products, func(p *model.Product) {
			p.Sizes = []model.SizeStock{{Size: "S", Stock: 0}, {Size: "M", Stock: 1}}
		})
		key := model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID, SelectedImage: "lamp-front.jpg"}

		_, err := cartService.AddToCart(ctx, key, service.Client{})
		assert.ErrorIs(t, err, model.ErrSizeRequired)

		key.SelectedSize = "XL"
		_, err = cartService.AddToCart(ctx, key, service.Client{})
		assert.ErrorIs(t, err, model.ErrInvalidSize)

		key.SelectedSize = "S"
		_, err = cartService.AddToCart(ctx, key, service.Client{})
		var validationErr *model.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "size S is out of stock", validationErr.Message)

		key.SelectedSize = "M"
		lines, err := cartService.AddToCart(ctx, key, service.Client{})
		require.NoError(t, err)
		assert.Equal(t, "M", lines[0].Item.SelectedSize)
	})

	t.Run("Out of stock", func(t *testing.T) {
		cartService, products, carts, _ := setupCart(t)
		p := addProduct(t, products, func(p *model.Product) { p.Stock = 0 })

		_, err := cartService.AddToCart(ctx, model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID, SelectedImage: "lamp-front.jpg"}, service.Client{})
		var validationErr *model.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Empty(t, carts.items)
	})

	t.Run("Missing owner or image", func(t *testing.T) {
		cartService, products, _, _ := setupCart(t)
		p := addProduct(t, products, nil)

		_, err := cartService.AddToCart(ctx, model.ItemKey{ProductID: p.ID, SelectedImage: "lamp-front.jpg"}, service.Client{})
		assert.ErrorIs(t, err, model.ErrOwnerRequired)

		_, err = cartService.AddToCart(ctx, model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID}, service.Client{})
		var validationErr *model.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("Tracking failure does not fail the add", func(t *testing.T) {
		cartService, products, carts, activities := setupCart(t)
		activities.createErr = errors.New("connection reset")
		p := addProduct(t, products, nil)

		lines, err := cartService.AddToCart(ctx, model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID, SelectedImage: "lamp-front.jpg"}, service.Client{IP: "203.0.113.9"})
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Len(t, carts.items, 1)
		assert.Empty(t, activities.ofType(model.EventAddToCart))
	})

	t.Run("Unknown product", func(t *testing.T) {
		cartService, _, _, _ := setupCart(t)
		_, err := cartService.AddToCart(ctx, model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: primitive.NewObjectID(), SelectedImage: "x.jpg"}, service.Client{})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	cartService, products, _, _ := setupCart(t)
	p := addProduct(t, products, nil)
	key := model.ItemKey{Owner: model.GuestOwner("guest-1"), ProductID: p.ID, SelectedImage: "lamp-front.jpg"}
	for i := 0; i < 3; i++ {
		_, err := cartService.AddToCart(ctx, key, service.Client{})
		require.NoError(t, err)
	}

	t.Run("Decrements", func(t *testing.T) {
		lines, err := cartService.RemoveFromCart(ctx, key, false)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Item.Quantity)
	})

	t.Run("Remove all", func(t *testing.T) {
		lines, err := cartService.RemoveFromCart(ctx, key, true)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("Missing row", func(t *testing.T) {
		_, err := cartService.RemoveFromCart(ctx, key, false)
		assert.ErrorIs(t, err, model.ErrCartItemNotFound)
	})
}

func TestGetCartDropsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	cartService, products, _, _ := setupCart(t)
	p := addProduct(t, products, nil)
	owner := model.GuestOwner("guest-1")
	_, err := cartService.AddToCart(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg"}, service.Client{})
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, p.ID))

	lines, err := cartService.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Product)

	require.NoError(t, cartService.ClearCart(ctx, owner))
	lines, err = cartService.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = cartService.GetCart(ctx, model.Owner{})
	assert.ErrorIs(t, err, model.ErrOwnerRequired)
}

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	products := newMockProductRepository()
	wishlists := &mockWishlistRepository{}
	wishlistService := service.NewWishlistService(wishlists, products)
	p := addProduct(t, products, nil)
	owner := model.RegisteredOwner(primitive.NewObjectID())

	t.Run("Add normalizes image", func(t *testing.T) {
		lines, created, err := wishlistService.AddToWishlist(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "not-a-product-image.jpg"})
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, lines, 1)
		assert.Equal(t, "lamp-front.jpg", lines[0].Item.SelectedImage)
	})

	t.Run("Add is idempotent", func(t *testing.T) {
		lines, created, err := wishlistService.AddToWishlist(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Len(t, lines, 1)
	})

	t.Run("Remove", func(t *testing.T) {
		lines, err := wishlistService.RemoveFromWishlist(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "missing.jpg"})
		require.NoError(t, err)
		assert.Empty(t, lines)

		_, err = wishlistService.RemoveFromWishlist(ctx, model.ItemKey{Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg"})
		assert.ErrorIs(t, err, model.ErrWishlistItemNotFound)
	})

	t.Run("Owner required", func(t *testing.T) {
		_, _, err := wishlistService.AddToWishlist(ctx, model.ItemKey{ProductID: p.ID})
		assert.ErrorIs(t, err, model.ErrOwnerRequired)
	})
}
