package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type orderItemJSON struct {
	ProductID     string `json:"product_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gte=1"`
	SelectedImage string `json:"selected_image,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
	SelectedColor string `json:"selected_color,omitempty"`
}

type createOrderRequest struct {
	Products        []orderItemJSON `json:"products" validate:"required,min=1,dive"`
	FullName        string          `json:"full_name" validate:"required"`
	Email           string          `json:"order_email" validate:"required"`
	Phone           string          `json:"phone_number" validate:"required"`
	ShippingAddress string          `json:"shipping_address" validate:"required"`
	City            string          `json:"city"`
	GuestID         string          `json:"guestId"`
	DiscountCode    string          `json:"discount_code"`
	UserDisplay     string          `json:"user_display"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderResponse struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user_id,omitempty"`
	GuestID         string          `json:"guest_id,omitempty"`
	FullName        string          `json:"full_name"`
	Products        []orderItemJSON `json:"products"`
	OriginalAmount  float64         `json:"original_amount"`
	ShippingAmount  float64         `json:"shipping_amount"`
	TotalAmount     float64         `json:"total_amount"`
	DiscountApplied bool            `json:"discount_applied"`
	DiscountCode    string          `json:"discount_code,omitempty"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	ShippingAddress string          `json:"shipping_address"`
	Email           string          `json:"order_email"`
	Phone           string          `json:"phone_number"`
	City            string          `json:"city"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	userID, guestID := ownerJSON(o.Owner)
	items := make([]orderItemJSON, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemJSON{
			ProductID:     item.ProductID.Hex(),
			Quantity:      item.Quantity,
			SelectedImage: item.SelectedImage,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	return orderResponse{
		ID:              o.ID.Hex(),
		UserID:          userID,
		GuestID:         guestID,
		FullName:        o.FullName,
		Products:        items,
		OriginalAmount:  o.OriginalAmount.InexactFloat64(),
		ShippingAmount:  o.ShippingAmount.InexactFloat64(),
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		DiscountApplied: o.DiscountApplied,
		DiscountCode:    o.DiscountCode,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		Email:           o.Email,
		Phone:           o.Phone,
		City:            o.City,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toOrderResponse(&orders[i]))
	}
	return result
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := ownerFrom(r, req.GuestID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]model.OrderItem, 0, len(req.Products))
	for _, p := range req.Products {
		productID, err := parseObjectID(p.ProductID, "product id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		items = append(items, model.OrderItem{
			ProductID:     productID,
			Quantity:      p.Quantity,
			SelectedImage: p.SelectedImage,
			SelectedSize:  p.SelectedSize,
			SelectedColor: p.SelectedColor,
		})
	}
	order, err := h.services.Orders.PlaceOrder(r.Context(), service.PlaceOrderInput{
		Owner:           owner,
		UserDisplay:     req.UserDisplay,
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		City:            req.City,
		Items:           items,
		DiscountCode:    req.DiscountCode,
	}, clientFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFrom(r, r.URL.Query().Get("guestId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := h.services.Orders.MyOrders(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.services.Orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseObjectID(mux.Vars(r)["id"], "order id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.services.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseObjectID(mux.Vars(r)["id"], "order id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.services.Orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseObjectID(mux.Vars(r)["id"], "order id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Orders.DeleteOrder(r.Context(), orderID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Order deleted successfully")
}
