package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(?:\+92\d{10}|\d{11})$`)
)

type PlaceOrderInput struct {
	Owner           model.Owner
	UserDisplay     string
	FullName        string
	Email           string
	Phone           string
	ShippingAddress string
	City            string
	Items           []model.OrderItem
	DiscountCode    string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput, client Client) (*model.Order, error)
	MyOrders(ctx context.Context, owner model.Owner) ([]model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID primitive.ObjectID) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*model.Order, error)
	DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error
}

func NewOrderService(
	orders model.OrderRepository,
	products model.ProductRepository,
	carts model.CartRepository,
	discounts DiscountService,
	analytics AnalyticsService,
	notifier Notifier,
	dispatcher EventDispatcher,
) OrderService {
	return &orderService{
		orders:     orders,
		products:   products,
		carts:      carts,
		discounts:  discounts,
		analytics:  analytics,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

type orderService struct {
	orders     model.OrderRepository
	products   model.ProductRepository
	carts      model.CartRepository
	discounts  DiscountService
	analytics  AnalyticsService
	notifier   Notifier
	dispatcher EventDispatcher
}

func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput, client Client) (*model.Order, error) {
	if err := validateOrderInput(&input); err != nil {
		return nil, err
	}

	// Every line is checked before anything is written.
	byID := make(map[string]model.Product, len(input.Items))
	// Lines for the same product and size draw from one stock counter.
	requested := make(map[string]int, len(input.Items))
	subtotal, shipping := decimal.Zero, decimal.Zero
	for i := range input.Items {
		item := &input.Items[i]
		product, err := s.products.Find(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.HasSizes() {
			item.SelectedSize = ""
		}
		available, err := product.AvailableStock(item.SelectedSize)
		if err != nil {
			return nil, err
		}
		key := product.ID.Hex() + "/" + item.SelectedSize
		requested[key] += item.Quantity
		if available < requested[key] {
			return nil, &model.StockError{Product: product.Name, Size: item.SelectedSize, Available: available}
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(product.Price().Mul(qty))
		shipping = shipping.Add(product.Shipping.Mul(qty))
		byID[product.ID.Hex()] = *product
	}

	finalSubtotal := subtotal
	var discountCode string
	if strings.TrimSpace(input.DiscountCode) != "" {
		discount, err := s.discounts.Redeem(ctx, input.Email, input.DiscountCode)
		if err != nil {
			return nil, err
		}
		finalSubtotal = model.ApplyDiscount(subtotal)
		discountCode = discount.Code
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:              s.orders.NextID(),
		Owner:           input.Owner,
		FullName:        input.FullName,
		Items:           input.Items,
		OriginalAmount:  subtotal.Add(shipping),
		ShippingAmount:  shipping,
		TotalAmount:     finalSubtotal.Add(shipping),
		DiscountApplied: discountCode != "",
		DiscountCode:    discountCode,
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentCompleted,
		ShippingAddress: input.ShippingAddress,
		Email:           input.Email,
		Phone:           input.Phone,
		City:            input.City,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := s.adjustStock(ctx, item, -item.Quantity); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"orderID":   order.ID.Hex(),
				"productID": item.ProductID.Hex(),
			}).Error("failed to decrement stock")
		}
	}

	if err := s.carts.DeleteByOwner(ctx, order.Owner); err != nil {
		log.WithError(err).WithField("owner", order.Owner.String()).Warn("failed to clear cart after order")
	}

	_ = s.dispatcher.Dispatch(model.OrderPlaced{
		OrderID:         order.ID,
		Owner:           order.Owner.String(),
		Total:           order.TotalAmount,
		DiscountApplied: order.DiscountApplied,
	})
	s.notifier.SendOrderConfirmation(order, byID)
	s.trackOrderPlaced(ctx, order, input.UserDisplay, byID, client)
	return order, nil
}

func (s *orderService) MyOrders(ctx context.Context, owner model.Owner) ([]model.Order, error) {
	if owner.IsZero() {
		return []model.Order{}, nil
	}
	return s.orders.FindByOwner(ctx, owner)
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.FindAll(ctx)
}

func (s *orderService) GetOrder(ctx context.Context, orderID primitive.ObjectID) (*model.Order, error) {
	return s.orders.Find(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*model.Order, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	newStatus, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	switch {
	case newStatus == model.StatusCancelled && oldStatus != model.StatusCancelled:
		if err := s.adjustItems(ctx, order, 1); err != nil {
			return nil, err
		}
	case oldStatus == model.StatusCancelled && newStatus != model.StatusCancelled:
		if err := s.adjustItems(ctx, order, -1); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order.Status = newStatus
	if newStatus == model.StatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if oldStatus != newStatus {
		_ = s.dispatcher.Dispatch(model.OrderStatusChanged{OrderID: order.ID, OldStatus: oldStatus, NewStatus: newStatus})
	}
	return order, nil
}

// DeleteOrder removes the order and returns its units to stock unless a
// cancellation already returned them.
func (s *orderService) DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsCancelled() {
		if err := s.adjustItems(ctx, order, 1); err != nil {
			return err
		}
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OrderDeleted{OrderID: orderID})
	return nil
}

func (s *orderService) adjustItems(ctx context.Context, order *model.Order, sign int) error {
	for _, item := range order.Items {
		if err := s.adjustStock(ctx, item, sign*item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) adjustStock(ctx context.Context, item model.OrderItem, delta int) error {
	if err := s.products.AdjustStock(ctx, item.ProductID, item.SelectedSize, delta); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.StockAdjusted{ProductID: item.ProductID, Size: item.SelectedSize, Delta: delta})
	return nil
}

func (s *orderService) trackOrderPlaced(ctx context.Context, order *model.Order, userDisplay string, byID map[string]model.Product, client Client) {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		entry := map[string]interface{}{
			"product_id":     item.ProductID.Hex(),
			"selected_image": item.SelectedImage,
			"quantity":       item.Quantity,
		}
		if p, ok := byID[item.ProductID.Hex()]; ok {
			entry["product_name"] = p.Name
			entry["selected_image"] = p.NormalizeImage(item.SelectedImage)
		}
		items = append(items, entry)
	}

	if userDisplay == "" {
		userDisplay = order.FullName
	}
	activity := &model.Activity{
		UserDisplay: userDisplay,
		EventType:   model.EventOrderPlaced,
		URL:         client.Referer,
		Data: map[string]interface{}{
			"order_id":     order.ID.Hex(),
			"order_city":   order.City,
			"products":     items,
			"total_amount": order.TotalAmount.InexactFloat64(),
		},
		Meta: map[string]interface{}{"server_logged": true},
	}
	if id, ok := order.Owner.UserID(); ok {
		activity.UserID = id
	} else if gid, ok := order.Owner.GuestID(); ok {
		activity.GuestID = gid
	}
	s.analytics.Track(ctx, activity, client)
}

func validateOrderInput(input *PlaceOrderInput) error {
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	switch {
	case input.Owner.IsZero():
		return model.ErrOwnerRequired
	case len(input.Items) == 0:
		return model.ErrOrderIsEmpty
	case strings.TrimSpace(input.ShippingAddress) == "":
		return model.NewValidationError("shipping address is required")
	case input.Email == "":
		return model.NewValidationError("email address is required")
	case input.Phone == "":
		return model.NewValidationError("phone number is required")
	case strings.TrimSpace(input.FullName) == "":
		return model.NewValidationError("full name is required")
	case !emailPattern.MatchString(input.Email):
		return model.NewValidationError("invalid email address")
	case !phonePattern.MatchString(input.Phone):
		return model.NewValidationError("invalid phone number. Provide 11-digit local number or +92XXXXXXXXXX")
	}
	for _, item := range input.Items {
		if item.ProductID.IsZero() || item.Quantity < 1 || item.SelectedImage == "" {
			return model.NewValidationError("each product must have product_id, quantity, and selected_image")
		}
	}
	return nil
}
