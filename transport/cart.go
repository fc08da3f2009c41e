package transport

import (
	"net/http"
	"time"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type itemRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	SelectedImage string `json:"selected_image"`
	SelectedSize  string `json:"selected_size"`
	GuestID       string `json:"guestId"`
	RemoveAll     bool   `json:"removeAll"`
}

func (req *itemRequest) key(r *http.Request) (model.ItemKey, error) {
	owner, err := ownerFrom(r, req.GuestID)
	if err != nil {
		return model.ItemKey{}, err
	}
	productID, err := parseObjectID(req.ProductID, "product id")
	if err != nil {
		return model.ItemKey{}, err
	}
	return model.ItemKey{
		Owner:         owner,
		ProductID:     productID,
		SelectedImage: req.SelectedImage,
		SelectedSize:  req.SelectedSize,
	}, nil
}

type cartItemResponse struct {
	ID            string           `json:"_id"`
	UserID        string           `json:"user_id,omitempty"`
	GuestID       string           `json:"guest_id,omitempty"`
	Product       *productResponse `json:"product_id"`
	SelectedImage string           `json:"selected_image"`
	SelectedSize  string           `json:"selected_size,omitempty"`
	Quantity      int              `json:"quantity"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type wishlistItemResponse struct {
	ID            string           `json:"_id"`
	UserID        string           `json:"user_id,omitempty"`
	GuestID       string           `json:"guest_id,omitempty"`
	Product       *productResponse `json:"product_id"`
	SelectedImage string           `json:"selected_image"`
	SelectedSize  string           `json:"selected_size,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func ownerJSON(owner model.Owner) (userID, guestID string) {
	if id, ok := owner.UserID(); ok {
		return id.Hex(), ""
	}
	guestID, _ = owner.GuestID()
	return "", guestID
}

func toCartResponse(lines []service.CartLine) []cartItemResponse {
	result := make([]cartItemResponse, 0, len(lines))
	for _, line := range lines {
		userID, guestID := ownerJSON(line.Item.Owner)
		item := cartItemResponse{
			ID:            line.Item.ID.Hex(),
			UserID:        userID,
			GuestID:       guestID,
			SelectedImage: line.Item.SelectedImage,
			SelectedSize:  line.Item.SelectedSize,
			Quantity:      line.Item.Quantity,
			CreatedAt:     line.Item.CreatedAt,
		}
		if line.Product != nil {
			p := toProductResponse(line.Product)
			item.Product = &p
		}
		result = append(result, item)
	}
	return result
}

func toWishlistResponse(lines []service.WishlistLine) []wishlistItemResponse {
	result := make([]wishlistItemResponse, 0, len(lines))
	for _, line := range lines {
		userID, guestID := ownerJSON(line.Item.Owner)
		item := wishlistItemResponse{
			ID:            line.Item.ID.Hex(),
			UserID:        userID,
			GuestID:       guestID,
			SelectedImage: line.Item.SelectedImage,
			SelectedSize:  line.Item.SelectedSize,
			CreatedAt:     line.Item.CreatedAt,
		}
		if line.Product != nil {
			p := toProductResponse(line.Product)
			item.Product = &p
		}
		result = append(result, item)
	}
	return result
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	key, err := req.key(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.services.Carts.AddToCart(r.Context(), key, clientFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(lines))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFrom(r, r.URL.Query().Get("guestId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.services.Carts.GetCart(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(lines))
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	key, err := req.key(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.services.Carts.RemoveFromCart(r.Context(), key, req.RemoveAll)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(lines))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFrom(r, r.URL.Query().Get("guestId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Carts.ClearCart(r.Context(), owner); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared successfully")
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	key, err := req.key(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, created, err := h.services.Wishlists.AddToWishlist(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toWishlistResponse(lines))
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	key, err := req.key(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.services.Wishlists.RemoveFromWishlist(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistResponse(lines))
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerFrom(r, r.URL.Query().Get("guestId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines, err := h.services.Wishlists.GetWishlist(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistResponse(lines))
}
