package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type sizeJSON struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type colorJSON struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// productRequest serves both create and partial update, so every field is optional.
type productRequest struct {
	Name            *string          `json:"product_name"`
	Description     *string          `json:"product_description"`
	BasePrice       *decimal.Decimal `json:"product_base_price"`
	DiscountedPrice *decimal.Decimal `json:"product_discounted_price"`
	Stock           *int             `json:"product_stock" validate:"omitempty,gte=0"`
	Sizes           *[]sizeJSON      `json:"sizes"`
	Colors          *[]colorJSON     `json:"colors"`
	Warranty        *string          `json:"warranty"`
	Highlights      *[]string        `json:"highlights"`
	Images          *[]string        `json:"product_images"`
	Category        *string          `json:"category"`
	Subcategories   *[]string        `json:"subcategories"`
	Brand           *string          `json:"brand_name"`
	Code            *string          `json:"product_code"`
	Rating          *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	BgColor         *string          `json:"bg_color"`
	Shipping        *decimal.Decimal `json:"shipping"`
	Payment         *[]string        `json:"payment"`
	IsNewArrival    *bool            `json:"isNewArrival"`
	IsBestSeller    *bool            `json:"isBestSeller"`
}

func (req *productRequest) applyTo(input *service.ProductInput) error {
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.BasePrice != nil {
		input.BasePrice = *req.BasePrice
	}
	if req.DiscountedPrice != nil {
		input.DiscountedPrice = *req.DiscountedPrice
	}
	if req.Stock != nil {
		input.Stock = *req.Stock
	}
	if req.Sizes != nil {
		input.Sizes = make([]model.SizeStock, 0, len(*req.Sizes))
		for _, s := range *req.Sizes {
			input.Sizes = append(input.Sizes, model.SizeStock{Size: s.Size, Stock: s.Stock})
		}
	}
	if req.Colors != nil {
		input.Colors = make([]model.Color, 0, len(*req.Colors))
		for _, c := range *req.Colors {
			input.Colors = append(input.Colors, model.Color{Name: c.Name, Hex: c.Hex})
		}
	}
	if req.Warranty != nil {
		input.Warranty = *req.Warranty
	}
	if req.Highlights != nil {
		input.Highlights = *req.Highlights
	}
	if req.Images != nil {
		input.Images = *req.Images
	}
	if req.Category != nil {
		id, err := parseObjectID(*req.Category, "category")
		if err != nil {
			return err
		}
		input.Category = id
	}
	if req.Subcategories != nil {
		ids, err := parseObjectIDs(*req.Subcategories, "subcategory")
		if err != nil {
			return err
		}
		input.Subcategories = ids
	}
	if req.Brand != nil {
		input.Brand = *req.Brand
	}
	if req.Code != nil {
		input.Code = *req.Code
	}
	if req.Rating != nil {
		input.Rating = *req.Rating
	}
	if req.BgColor != nil {
		input.BgColor = *req.BgColor
	}
	if req.Shipping != nil {
		input.Shipping = *req.Shipping
	}
	if req.Payment != nil {
		input.PaymentMethods = *req.Payment
	}
	if req.IsNewArrival != nil {
		input.IsNewArrival = *req.IsNewArrival
	}
	if req.IsBestSeller != nil {
		input.IsBestSeller = *req.IsBestSeller
	}
	return nil
}

type productResponse struct {
	ID              string      `json:"_id"`
	Name            string      `json:"product_name"`
	Description     string      `json:"product_description"`
	BasePrice       float64     `json:"product_base_price"`
	DiscountedPrice float64     `json:"product_discounted_price"`
	Stock           int         `json:"product_stock"`
	Sizes           []sizeJSON  `json:"sizes"`
	Colors          []colorJSON `json:"colors"`
	Warranty        string      `json:"warranty"`
	Highlights      []string    `json:"highlights"`
	Images          []string    `json:"product_images"`
	Category        string      `json:"category"`
	Subcategories   []string    `json:"subcategories"`
	Brand           string      `json:"brand_name"`
	Code            string      `json:"product_code"`
	Rating          float64     `json:"rating"`
	BgColor         string      `json:"bg_color"`
	Shipping        float64     `json:"shipping"`
	Payment         []string    `json:"payment"`
	IsNewArrival    bool        `json:"isNewArrival"`
	IsBestSeller    bool        `json:"isBestSeller"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func toProductResponse(p *model.Product) productResponse {
	sizes := make([]sizeJSON, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		sizes = append(sizes, sizeJSON{Size: s.Size, Stock: s.Stock})
	}
	colors := make([]colorJSON, 0, len(p.Colors))
	for _, c := range p.Colors {
		colors = append(colors, colorJSON{Name: c.Name, Hex: c.Hex})
	}
	return productResponse{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		BasePrice:       p.BasePrice.InexactFloat64(),
		DiscountedPrice: p.DiscountedPrice.InexactFloat64(),
		Stock:           p.Stock,
		Sizes:           sizes,
		Colors:          colors,
		Warranty:        p.Warranty,
		Highlights:      nonNil(p.Highlights),
		Images:          nonNil(p.Images),
		Category:        optionalHex(p.Category),
		Subcategories:   hexIDs(p.Subcategories),
		Brand:           p.Brand,
		Code:            p.Code,
		Rating:          p.Rating,
		BgColor:         p.BgColor,
		Shipping:        p.Shipping.InexactFloat64(),
		Payment:         nonNil(p.PaymentMethods),
		IsNewArrival:    p.IsNewArrival,
		IsBestSeller:    p.IsBestSeller,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product) []productResponse {
	result := make([]productResponse, 0, len(products))
	for i := range products {
		result = append(result, toProductResponse(&products[i]))
	}
	return result
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type reviewResponse struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewResponse(r *model.Review) reviewResponse {
	return reviewResponse{
		ID:        r.ID.Hex(),
		UserID:    r.UserID.Hex(),
		ProductID: r.ProductID.Hex(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.services.Products.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseObjectID(mux.Vars(r)["id"], "product id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.services.Products.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseObjectID(mux.Vars(r)["categoryId"], "category id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	products, err := h.services.Products.ListByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input := service.ProductInput{}
	if err := req.applyTo(&input); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.services.Products.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseObjectID(mux.Vars(r)["id"], "product id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	current, err := h.services.Products.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	input := service.ProductInputFrom(current)
	if err := req.applyTo(&input); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.services.Products.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseObjectID(mux.Vars(r)["id"], "product id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Products.DeleteProduct(r.Context(), productID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	productID, err := parseObjectID(mux.Vars(r)["productId"], "product id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.services.Products.SubmitReview(r.Context(), productID, userID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := parseObjectID(mux.Vars(r)["productId"], "product id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.services.Products.ListReviews(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, toReviewResponse(&reviews[i]))
	}
	writeJSON(w, http.StatusOK, result)
}
