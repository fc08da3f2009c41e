package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type orderFixture struct {
	service    service.OrderService
	orders     *mockOrderRepository
	products   *mockProductRepository
	carts      *mockCartRepository
	discounts  *mockDiscountRepository
	activities *mockActivityRepository
	notifier   *mockNotifier
	dispatcher *mockEventDispatcher
}

func setupOrders(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:     newMockOrderRepository(),
		products:   newMockProductRepository(),
		carts:      &mockCartRepository{},
		discounts:  &mockDiscountRepository{},
		activities: &mockActivityRepository{},
		notifier:   newMockNotifier(),
		dispatcher: &mockEventDispatcher{},
	}
	analytics := service.NewAnalyticsService(f.activities, newMockUserRepository(), f.carts, f.products, nil, &syncQueue{})
	discounts := service.NewDiscountService(f.discounts, f.notifier, f.dispatcher)
	f.service = service.NewOrderService(f.orders, f.products, f.carts, discounts, analytics, f.notifier, f.dispatcher)
	return f
}

func addProduct(t *testing.T, repo *mockProductRepository, mutate func(p *model.Product)) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:              repo.NextID(),
		Name:            "Desk Lamp",
		BasePrice:       decimal.NewFromInt(120),
		DiscountedPrice: decimal.NewFromInt(100),
		Stock:           10,
		Images:          []string{"lamp-front.jpg", "lamp-side.jpg"},
		Brand:           "Lumen",
		Code:            "LMP-" + primitive.NewObjectID().Hex()[18:],
		Shipping:        decimal.NewFromInt(5),
		PaymentMethods:  []string{"cod"},
		Rating:          model.DefaultProductRating,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func orderInput(owner model.Owner, items ...model.OrderItem) service.PlaceOrderInput {
	return service.PlaceOrderInput{
		Owner:           owner,
		FullName:        "Amina Khan",
		Email:           "amina@example.com",
		Phone:           "03001234567",
		ShippingAddress: "12 Canal Road",
		City:            "Lahore",
		Items:           items,
	}
}

func stockOf(t *testing.T, repo *mockProductRepository, id primitive.ObjectID) int {
	t.Helper()
	p, err := repo.Find(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		owner := model.GuestOwner("guest-1")
		require.NoError(t, f.carts.Create(ctx, &model.CartItem{ID: f.carts.NextID(), Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg", Quantity: 3}))

		order, err := f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{
			ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg",
		}), service.Client{})
		require.NoError(t, err)

		assert.Equal(t, 7, stockOf(t, f.products, p.ID))
		assert.True(t, decimal.NewFromInt(300).Equal(order.TotalAmount.Sub(order.ShippingAmount)))
		assert.True(t, decimal.NewFromInt(15).Equal(order.ShippingAmount))
		assert.True(t, decimal.NewFromInt(315).Equal(order.OriginalAmount))
		assert.Equal(t, model.StatusPending, order.Status)
		assert.Equal(t, model.PaymentCompleted, order.PaymentStatus)
		assert.False(t, order.DiscountApplied)

		lines, err := f.carts.FindByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, lines)

		require.Len(t, f.dispatcher.ofType("OrderPlaced"), 1)
		require.Len(t, f.notifier.orders, 1)
		tracked := f.activities.ofType(model.EventOrderPlaced)
		require.Len(t, tracked, 1)
		assert.Equal(t, "guest-1", tracked[0].GuestID)
		assert.Equal(t, "Amina Khan", tracked[0].UserDisplay)
	})

	t.Run("Insufficient stock after earlier order", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		owner := model.GuestOwner("guest-1")

		_, err := f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg"}), service.Client{})
		require.NoError(t, err)

		_, err = f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{ProductID: p.ID, Quantity: 8, SelectedImage: "lamp-front.jpg"}), service.Client{})
		require.ErrorIs(t, err, model.ErrInsufficientStock)
		var stockErr *model.StockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 7, stockErr.Available)
		assert.Equal(t, 7, stockOf(t, f.products, p.ID))
		assert.Len(t, f.orders.store, 1)
	})

	t.Run("Sized product draws from size stock", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, func(p *model.Product) {
			p.Stock = 0
			p.Sizes = []model.SizeStock{{Size: "M", Stock: 2}, {Size: "L", Stock: 4}}
		})
		owner := model.RegisteredOwner(primitive.NewObjectID())

		_, err := f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{ProductID: p.ID, Quantity: 1, SelectedImage: "lamp-front.jpg"}), service.Client{})
		require.ErrorIs(t, err, model.ErrSizeRequired)

		_, err = f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg", SelectedSize: "M"}), service.Client{})
		require.ErrorIs(t, err, model.ErrInsufficientStock)

		_, err = f.service.PlaceOrder(ctx, orderInput(owner, model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg", SelectedSize: "L"}), service.Client{})
		require.NoError(t, err)

		stored, err := f.products.Find(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.SizeStock{{Size: "M", Stock: 2}, {Size: "L", Stock: 1}}, stored.Sizes)
	})

	t.Run("Discount code", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, func(p *model.Product) {
			p.DiscountedPrice = decimal.RequireFromString("33.33")
			p.Shipping = decimal.NewFromInt(2)
		})
		now := time.Now().UTC()
		require.NoError(t, f.discounts.Create(ctx, &model.DiscountCode{
			ID: f.discounts.NextID(), Email: "amina@example.com", Code: "ABCD1234", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}))

		input := orderInput(model.GuestOwner("guest-1"), model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg"})
		input.Email = "Amina@Example.com"
		input.DiscountCode = " abcd1234 "
		order, err := f.service.PlaceOrder(ctx, input, service.Client{})
		require.NoError(t, err)

		// 99.99 * 0.9 = 89.991, rounded to 89.99, plus 6 shipping
		assert.True(t, decimal.RequireFromString("95.99").Equal(order.TotalAmount), order.TotalAmount.String())
		assert.True(t, decimal.RequireFromString("105.99").Equal(order.OriginalAmount))
		assert.True(t, order.DiscountApplied)
		assert.Equal(t, "ABCD1234", order.DiscountCode)
		assert.True(t, f.discounts.codes[0].IsUsed)

		_, err = f.service.PlaceOrder(ctx, input, service.Client{})
		require.ErrorIs(t, err, model.ErrDiscountCodeUsed)
		assert.Equal(t, 7, stockOf(t, f.products, p.ID))
	})

	t.Run("Unknown discount code", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		input := orderInput(model.GuestOwner("guest-1"), model.OrderItem{ProductID: p.ID, Quantity: 1, SelectedImage: "lamp-front.jpg"})
		input.DiscountCode = "NOPE"

		_, err := f.service.PlaceOrder(ctx, input, service.Client{})
		require.ErrorIs(t, err, model.ErrDiscountCodeNotFound)
		assert.Empty(t, f.orders.store)
		assert.Equal(t, 10, stockOf(t, f.products, p.ID))
	})

	t.Run("Lines for the same product share stock", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, func(p *model.Product) { p.Stock = 5 })
		owner := model.GuestOwner("guest-1")

		_, err := f.service.PlaceOrder(ctx, orderInput(owner,
			model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg"},
			model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-side.jpg"},
		), service.Client{})
		require.ErrorIs(t, err, model.ErrInsufficientStock)
		var stockErr *model.StockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 5, stockErr.Available)
		assert.Equal(t, 5, stockOf(t, f.products, p.ID))
		assert.Empty(t, f.orders.store)

		_, err = f.service.PlaceOrder(ctx, orderInput(owner,
			model.OrderItem{ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg"},
			model.OrderItem{ProductID: p.ID, Quantity: 2, SelectedImage: "lamp-side.jpg"},
		), service.Client{})
		require.NoError(t, err)
		assert.Equal(t, 0, stockOf(t, f.products, p.ID))
	})

	t.Run("Sizes of one product are counted separately", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, func(p *model.Product) {
			p.Stock = 0
			p.Sizes = []model.SizeStock{{Size: "M", Stock: 2}, {Size: "L", Stock: 2}}
		})

		_, err := f.service.PlaceOrder(ctx, orderInput(model.GuestOwner("guest-1"),
			model.OrderItem{ProductID: p.ID, Quantity: 2, SelectedImage: "lamp-front.jpg", SelectedSize: "M"},
			model.OrderItem{ProductID: p.ID, Quantity: 2, SelectedImage: "lamp-front.jpg", SelectedSize: "L"},
		), service.Client{})
		require.NoError(t, err)

		stored, err := f.products.Find(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.SizeStock{{Size: "M", Stock: 0}, {Size: "L", Stock: 0}}, stored.Sizes)
	})

	t.Run("Side effect failures do not fail the order", func(t *testing.T) {
		f := setupOrders(t)
		failure := errors.New("connection reset")
		f.activities.createErr = failure
		f.carts.deleteErr = failure
		f.dispatcher.err = failure
		sender := &mockMailSender{err: failure}
		notifier := service.NewNotifier(sender, &syncQueue{full: true}, service.NotifierConfig{AdminEmail: "admin@example.com"})
		analytics := service.NewAnalyticsService(f.activities, newMockUserRepository(), f.carts, f.products, nil, &syncQueue{full: true})
		orders := service.NewOrderService(f.orders, f.products, f.carts, service.NewDiscountService(f.discounts, notifier, f.dispatcher), analytics, notifier, f.dispatcher)

		p := addProduct(t, f.products, nil)
		owner := model.GuestOwner("guest-1")
		require.NoError(t, f.carts.Create(ctx, &model.CartItem{ID: f.carts.NextID(), Owner: owner, ProductID: p.ID, SelectedImage: "lamp-front.jpg", Quantity: 2}))

		order, err := orders.PlaceOrder(ctx, orderInput(owner, model.OrderItem{
			ProductID: p.ID, Quantity: 2, SelectedImage: "lamp-front.jpg",
		}), service.Client{IP: "203.0.113.9"})
		require.NoError(t, err)
		require.NotNil(t, order)

		assert.Equal(t, 8, stockOf(t, f.products, p.ID))
		assert.Len(t, f.orders.store, 1)
		assert.Len(t, f.dispatcher.ofType("OrderPlaced"), 1)
		assert.Empty(t, f.activities.ofType(model.EventOrderPlaced))
		assert.Empty(t, sender.sent)
	})

	t.Run("Validation", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		item := model.OrderItem{ProductID: p.ID, Quantity: 1, SelectedImage: "lamp-front.jpg"}
		owner := model.GuestOwner("guest-1")

		_, err := f.service.PlaceOrder(ctx, orderInput(model.Owner{}, item), service.Client{})
		assert.ErrorIs(t, err, model.ErrOwnerRequired)

		_, err = f.service.PlaceOrder(ctx, orderInput(owner), service.Client{})
		assert.ErrorIs(t, err, model.ErrOrderIsEmpty)

		cases := map[string]func(in *service.PlaceOrderInput){
			"missing address": func(in *service.PlaceOrderInput) { in.ShippingAddress = " " },
			"invalid email":   func(in *service.PlaceOrderInput) { in.Email = "amina.example.com" },
			"short phone":     func(in *service.PlaceOrderInput) { in.Phone = "030012345" },
			"foreign phone":   func(in *service.PlaceOrderInput) { in.Phone = "+4915112345678" },
			"missing image":   func(in *service.PlaceOrderInput) { in.Items[0].SelectedImage = "" },
			"zero quantity":   func(in *service.PlaceOrderInput) { in.Items[0].Quantity = 0 },
		}
		for name, mutate := range cases {
			input := orderInput(owner, item)
			mutate(&input)
			_, err := f.service.PlaceOrder(ctx, input, service.Client{})
			var validationErr *model.ValidationError
			assert.True(t, errors.As(err, &validationErr), name)
		}

		input := orderInput(owner, item)
		input.Phone = "+923001234567"
		_, err = f.service.PlaceOrder(ctx, input, service.Client{})
		assert.NoError(t, err)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	place := func(t *testing.T, f *orderFixture) (*model.Product, *model.Order) {
		p := addProduct(t, f.products, nil)
		order, err := f.service.PlaceOrder(ctx, orderInput(model.GuestOwner("guest-1"), model.OrderItem{
			ProductID: p.ID, Quantity: 3, SelectedImage: "lamp-front.jpg",
		}), service.Client{})
		require.NoError(t, err)
		return p, order
	}

	t.Run("Cancel restores stock and reopening takes it again", func(t *testing.T) {
		f := setupOrders(t)
		p, order := place(t, f)
		f.dispatcher.Reset()

		updated, err := f.service.UpdateStatus(ctx, order.ID, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, updated.Status)
		assert.Equal(t, 10, stockOf(t, f.products, p.ID))

		_, err = f.service.UpdateStatus(ctx, order.ID, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, 10, stockOf(t, f.products, p.ID))

		_, err = f.service.UpdateStatus(ctx, order.ID, "processing")
		require.NoError(t, err)
		assert.Equal(t, 7, stockOf(t, f.products, p.ID))

		changes := f.dispatcher.ofType("OrderStatusChanged")
		require.Len(t, changes, 2)
		assert.Equal(t, model.OrderStatusChanged{OrderID: order.ID, OldStatus: model.StatusPending, NewStatus: model.StatusCancelled}, changes[0])
	})

	t.Run("Delivered timestamp is set once", func(t *testing.T) {
		f := setupOrders(t)
		_, order := place(t, f)

		delivered, err := f.service.UpdateStatus(ctx, order.ID, "delivered")
		require.NoError(t, err)
		require.NotNil(t, delivered.DeliveredAt)
		first := *delivered.DeliveredAt

		_, err = f.service.UpdateStatus(ctx, order.ID, "shipped")
		require.NoError(t, err)
		again, err := f.service.UpdateStatus(ctx, order.ID, "delivered")
		require.NoError(t, err)
		assert.Equal(t, first, *again.DeliveredAt)
	})

	t.Run("Invalid status", func(t *testing.T) {
		f := setupOrders(t)
		_, order := place(t, f)

		_, err := f.service.UpdateStatus(ctx, order.ID, "lost")
		assert.ErrorIs(t, err, model.ErrInvalidOrderStatus)
	})

	t.Run("Unknown order", func(t *testing.T) {
		f := setupOrders(t)
		_, err := f.service.UpdateStatus(ctx, primitive.NewObjectID(), "shipped")
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Active order returns stock", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		order, err := f.service.PlaceOrder(ctx, orderInput(model.GuestOwner("guest-1"), model.OrderItem{ProductID: p.ID, Quantity: 4, SelectedImage: "lamp-side.jpg"}), service.Client{})
		require.NoError(t, err)
		assert.Equal(t, 6, stockOf(t, f.products, p.ID))

		require.NoError(t, f.service.DeleteOrder(ctx, order.ID))
		assert.Equal(t, 10, stockOf(t, f.products, p.ID))
		assert.Len(t, f.dispatcher.ofType("OrderDeleted"), 1)

		_, err = f.service.GetOrder(ctx, order.ID)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Cancelled order is not restocked twice", func(t *testing.T) {
		f := setupOrders(t)
		p := addProduct(t, f.products, nil)
		order, err := f.service.PlaceOrder(ctx, orderInput(model.GuestOwner("guest-1"), model.OrderItem{ProductID: p.ID, Quantity: 4, SelectedImage: "lamp-side.jpg"}), service.Client{})
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, order.ID, "cancelled")
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteOrder(ctx, order.ID))
		assert.Equal(t, 10, stockOf(t, f.products, p.ID))
	})
}

func TestMyOrders(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	p := addProduct(t, f.products, nil)
	userID := primitive.NewObjectID()

	_, err := f.service.PlaceOrder(ctx, orderInput(model.RegisteredOwner(userID), model.OrderItem{ProductID: p.ID, Quantity: 1, SelectedImage: "lamp-front.jpg"}), service.Client{})
	require.NoError(t, err)
	_, err = f.service.PlaceOrder(ctx, orderInput(model.GuestOwner("guest-9"), model.OrderItem{ProductID: p.ID, Quantity: 1, SelectedImage: "lamp-front.jpg"}), service.Client{})
	require.NoError(t, err)

	mine, err := f.service.MyOrders(ctx, model.RegisteredOwner(userID))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := f.service.MyOrders(ctx, model.Owner{})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := f.service.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
