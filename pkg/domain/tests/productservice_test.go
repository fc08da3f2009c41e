package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type productFixture struct {
	service    service.ProductService
	products   *mockProductRepository
	reviews    *mockReviewRepository
	categories *mockCategoryRepository
	carts      *mockCartRepository
	users      *mockUserRepository
	dispatcher *mockEventDispatcher
	category   *model.Category
	child      *model.Category
}

func setupProducts(t *testing.T) *productFixture {
	t.Helper()
	f := &productFixture{
		products:   newMockProductRepository(),
		reviews:    &mockReviewRepository{},
		categories: newMockCategoryRepository(),
		carts:      &mockCartRepository{},
		users:      newMockUserRepository(),
		dispatcher: &mockEventDispatcher{},
	}
	f.service = service.NewProductService(f.products, f.reviews, f.categories, f.carts, f.users, f.dispatcher)

	ctx := context.Background()
	f.category = &model.Category{ID: f.categories.NextID(), Name: "Lighting"}
	f.child = &model.Category{ID: f.categories.NextID(), Name: "Desk Lamps", ParentCategory: f.category.ID}
	require.NoError(t, f.categories.Create(ctx, f.category))
	require.NoError(t, f.categories.Create(ctx, f.child))
	return f
}

func (f *productFixture) input() service.ProductInput {
	return service.ProductInput{
		Name:            "Arc Lamp",
		BasePrice:       decimal.NewFromInt(80),
		DiscountedPrice: decimal.NewFromInt(60),
		Shipping:        decimal.NewFromInt(4),
		Stock:           5,
		Images:          []string{"arc.jpg"},
		Category:        f.category.ID,
		Subcategories:   []primitive.ObjectID{f.child.ID},
		Brand:           "Lumen",
		Code:            "ARC-1",
		PaymentMethods:  []string{"cod", "card"},
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	f := setupProducts(t)

	t.Run("Success", func(t *testing.T) {
		product, err := f.service.CreateProduct(ctx, f.input())
		require.NoError(t, err)
		assert.Equal(t, model.DefaultProductRating, product.Rating)
		assert.Equal(t, "#FFFFFF", product.BgColor)

		stored, err := f.products.Find(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "ARC-1", stored.Code)

		require.Len(t, f.dispatcher.events, 1)
		event, ok := f.dispatcher.events[0].(model.ProductCreated)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
	})

	t.Run("Fail on duplicate code", func(t *testing.T) {
		f.dispatcher.Reset()
		_, err := f.service.CreateProduct(ctx, f.input())
		assert.ErrorIs(t, err, model.ErrProductCodeTaken)
		assert.Empty(t, f.dispatcher.events)
	})

	t.Run("Fail on subcategory as category", func(t *testing.T) {
		input := f.input()
		input.Code = "ARC-2"
		input.Category = f.child.ID
		input.Subcategories = nil
		_, err := f.service.CreateProduct(ctx, input)
		assert.ErrorIs(t, err, model.ErrCategoryNotTopLevel)

		input.Category = primitive.NewObjectID()
		_, err = f.service.CreateProduct(ctx, input)
		assert.ErrorIs(t, err, model.ErrCategoryNotTopLevel)
	})

	t.Run("Fail on foreign subcategory", func(t *testing.T) {
		input := f.input()
		input.Code = "ARC-3"
		input.Subcategories = []primitive.ObjectID{primitive.NewObjectID()}
		_, err := f.service.CreateProduct(ctx, input)
		assert.ErrorIs(t, err, model.ErrInvalidSubcategories)
	})

	t.Run("Fail on missing images", func(t *testing.T) {
		input := f.input()
		input.Code = "ARC-4"
		input.Images = nil
		_, err := f.service.CreateProduct(ctx, input)
		assert.ErrorIs(t, err, model.ErrInvalidProductImages)
	})

	t.Run("Fail on invalid fields", func(t *testing.T) {
		cases := map[string]func(in *service.ProductInput){
			"missing name":        func(in *service.ProductInput) { in.Name = " " },
			"discount over base":  func(in *service.ProductInput) { in.DiscountedPrice = decimal.NewFromInt(90) },
			"zero price":          func(in *service.ProductInput) { in.BasePrice = decimal.Zero },
			"negative shipping":   func(in *service.ProductInput) { in.Shipping = decimal.NewFromInt(-1) },
			"no payment methods":  func(in *service.ProductInput) { in.PaymentMethods = nil },
			"bad color":           func(in *service.ProductInput) { in.BgColor = "white" },
			"negative size stock": func(in *service.ProductInput) { in.Sizes = []model.SizeStock{{Size: "M", Stock: -1}} },
		}
		for name, mutate := range cases {
			input := f.input()
			input.Code = "ARC-X"
			mutate(&input)
			_, err := f.service.CreateProduct(ctx, input)
			var validationErr *model.ValidationError
			assert.True(t, errors.As(err, &validationErr), name)
		}
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := setupProducts(t)
	product, err := f.service.CreateProduct(ctx, f.input())
	require.NoError(t, err)
	other := f.input()
	other.Code = "ARC-9"
	_, err = f.service.CreateProduct(ctx, other)
	require.NoError(t, err)

	t.Run("Success keeping own code", func(t *testing.T) {
		input := service.ProductInputFrom(product)
		input.Stock = 42
		updated, err := f.service.UpdateProduct(ctx, product.ID, input)
		require.NoError(t, err)
		assert.Equal(t, 42, updated.Stock)
		assert.Equal(t, "ARC-1", updated.Code)
	})

	t.Run("Fail on code of another product", func(t *testing.T) {
		input := service.ProductInputFrom(product)
		input.Code = "ARC-9"
		_, err := f.service.UpdateProduct(ctx, product.ID, input)
		assert.ErrorIs(t, err, model.ErrProductCodeTaken)
	})

	t.Run("Fail on unknown product", func(t *testing.T) {
		_, err := f.service.UpdateProduct(ctx, primitive.NewObjectID(), f.input())
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	f := setupProducts(t)
	product, err := f.service.CreateProduct(ctx, f.input())
	require.NoError(t, err)
	owner := model.GuestOwner("guest-1")
	require.NoError(t, f.carts.Create(ctx, &model.CartItem{ID: f.carts.NextID(), Owner: owner, ProductID: product.ID, SelectedImage: "arc.jpg", Quantity: 1}))
	require.NoError(t, f.reviews.Create(ctx, &model.Review{ID: f.reviews.NextID(), ProductID: product.ID, UserID: primitive.NewObjectID(), Rating: 5}))
	f.dispatcher.Reset()

	require.NoError(t, f.service.DeleteProduct(ctx, product.ID))
	assert.Empty(t, f.products.store)
	assert.Empty(t, f.carts.items)
	assert.Empty(t, f.reviews.reviews)
	require.Len(t, f.dispatcher.events, 1)
	_, ok := f.dispatcher.events[0].(model.ProductDeleted)
	assert.True(t, ok)

	err = f.service.DeleteProduct(ctx, product.ID)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	f := setupProducts(t)
	product, err := f.service.CreateProduct(ctx, f.input())
	require.NoError(t, err)

	first := &model.User{ID: f.users.NextID(), Username: "first", Email: "first@example.com"}
	second := &model.User{ID: f.users.NextID(), Username: "second", Email: "second@example.com"}
	require.NoError(t, f.users.Create(ctx, first))
	require.NoError(t, f.users.Create(ctx, second))

	t.Run("Success updates average rating", func(t *testing.T) {
		_, err := f.service.SubmitReview(ctx, product.ID, first.ID, 5, "Bright and sturdy")
		require.NoError(t, err)
		_, err = f.service.SubmitReview(ctx, product.ID, second.ID, 2, "Too dim")
		require.NoError(t, err)

		stored, err := f.products.Find(ctx, product.ID)
		require.NoError(t, err)
		assert.InDelta(t, 3.5, stored.Rating, 0.0001)

		reviews, err := f.service.ListReviews(ctx, product.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
		assert.Len(t, f.dispatcher.ofType("ReviewSubmitted"), 2)
	})

	t.Run("Fail on second review", func(t *testing.T) {
		_, err := f.service.SubmitReview(ctx, product.ID, first.ID, 4, "Changed my mind")
		assert.ErrorIs(t, err, model.ErrReviewAlreadyExists)
	})

	t.Run("Fail on invalid input", func(t *testing.T) {
		var validationErr *model.ValidationError
		_, err := f.service.SubmitReview(ctx, product.ID, first.ID, 6, "Great lamp")
		assert.True(t, errors.As(err, &validationErr))
		_, err = f.service.SubmitReview(ctx, product.ID, first.ID, 4, "ok")
		assert.True(t, errors.As(err, &validationErr))
		_, err = f.service.SubmitReview(ctx, product.ID, first.ID, 4, strings.Repeat("a", 501))
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("Fail on unknown user or product", func(t *testing.T) {
		_, err := f.service.SubmitReview(ctx, product.ID, primitive.NewObjectID(), 4, "Nice lamp")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		_, err = f.service.SubmitReview(ctx, primitive.NewObjectID(), first.ID, 4, "Nice lamp")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestListProductsByCategory(t *testing.T) {
	ctx := context.Background()
	f := setupProducts(t)
	_, err := f.service.CreateProduct(ctx, f.input())
	require.NoError(t, err)
	input := f.input()
	input.Code = "ARC-2"
	input.Subcategories = nil
	_, err = f.service.CreateProduct(ctx, input)
	require.NoError(t, err)

	byParent, err := f.service.ListByCategory(ctx, f.category.ID)
	require.NoError(t, err)
	assert.Len(t, byParent, 2)

	byChild, err := f.service.ListByCategory(ctx, f.child.ID)
	require.NoError(t, err)
	require.Len(t, byChild, 1)
	assert.Equal(t, "ARC-1", byChild[0].Code)
}
