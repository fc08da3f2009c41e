package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type categoryRequest struct {
	Name           string `json:"name" validate:"required"`
	ParentCategory string `json:"parent_category"`
	Image          string `json:"image"`
}

func (req *categoryRequest) input() (service.CategoryInput, error) {
	input := service.CategoryInput{Name: req.Name, Image: req.Image}
	if req.ParentCategory != "" {
		id, err := parseObjectID(req.ParentCategory, "parent category")
		if err != nil {
			return input, err
		}
		input.ParentCategory = id
	}
	return input, nil
}

type categoryResponse struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	ParentCategory string `json:"parent_category,omitempty"`
	Image          string `json:"image,omitempty"`
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:             c.ID.Hex(),
		Name:           c.Name,
		ParentCategory: optionalHex(c.ParentCategory),
		Image:          c.Image,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.services.Categories.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, toCategoryResponse(&categories[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getCategoryByName(w http.ResponseWriter, r *http.Request) {
	category, err := h.services.Categories.GetCategoryByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseObjectID(mux.Vars(r)["id"], "category id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.services.Categories.GetCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.services.Categories.CreateCategory(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseObjectID(mux.Vars(r)["id"], "category id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.services.Categories.UpdateCategory(r.Context(), categoryID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseObjectID(mux.Vars(r)["id"], "category id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Categories.DeleteCategory(r.Context(), categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}

type dealRequest struct {
	Name          *string          `json:"deal_name"`
	Description   *string          `json:"deal_description"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	DealPrice     *decimal.Decimal `json:"deal_price"`
	Stock         *int             `json:"deal_stock" validate:"omitempty,gte=0"`
	Images        *[]string        `json:"deal_images"`
	Category      *string          `json:"category"`
	Code          *string          `json:"deal_code"`
	Rating        *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ExpiresAt     *time.Time       `json:"deal_expiry"`
	BgColor       *string          `json:"bg_color"`
}

func (req *dealRequest) applyTo(input *service.DealInput) error {
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.OriginalPrice != nil {
		input.OriginalPrice = *req.OriginalPrice
	}
	if req.DealPrice != nil {
		input.DealPrice = *req.DealPrice
	}
	if req.Stock != nil {
		input.Stock = *req.Stock
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
	if req.Code != nil {
		input.Code = *req.Code
	}
	if req.Rating != nil {
		input.Rating = *req.Rating
	}
	if req.ExpiresAt != nil {
		input.ExpiresAt = *req.ExpiresAt
	}
	if req.BgColor != nil {
		input.BgColor = *req.BgColor
	}
	return nil
}

type dealResponse struct {
	ID            string    `json:"_id"`
	Name          string    `json:"deal_name"`
	Description   string    `json:"deal_description"`
	OriginalPrice float64   `json:"original_price"`
	DealPrice     float64   `json:"deal_price"`
	Stock         int       `json:"deal_stock"`
	Images        []string  `json:"deal_images"`
	Category      string    `json:"category"`
	Code          string    `json:"deal_code"`
	Rating        float64   `json:"rating"`
	ExpiresAt     time.Time `json:"deal_expiry"`
	BgColor       string    `json:"bg_color"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toDealResponse(d *model.Deal) dealResponse {
	return dealResponse{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		OriginalPrice: d.OriginalPrice.InexactFloat64(),
		DealPrice:     d.DealPrice.InexactFloat64(),
		Stock:         d.Stock,
		Images:        nonNil(d.Images),
		Category:      optionalHex(d.Category),
		Code:          d.Code,
		Rating:        d.Rating,
		ExpiresAt:     d.ExpiresAt,
		BgColor:       d.BgColor,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDealResponses(deals []model.Deal) []dealResponse {
	result := make([]dealResponse, 0, len(deals))
	for i := range deals {
		result = append(result, toDealResponse(&deals[i]))
	}
	return result
}

func (h *Handler) listDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.services.Deals.ListActiveDeals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponses(deals))
}

func (h *Handler) getDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := parseObjectID(mux.Vars(r)["id"], "deal id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	deal, err := h.services.Deals.GetDeal(r.Context(), dealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(deal))
}

func (h *Handler) listDealsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseObjectID(mux.Vars(r)["categoryId"], "category id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	deals, err := h.services.Deals.ListByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponses(deals))
}

func (h *Handler) createDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input := service.DealInput{}
	if err := req.applyTo(&input); err != nil {
		writeError(w, r, err)
		return
	}
	deal, err := h.services.Deals.CreateDeal(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDealResponse(deal))
}

func (h *Handler) updateDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := parseObjectID(mux.Vars(r)["id"], "deal id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// expired deals stay editable, so the lookup skips the expiry check
	current, err := h.services.Deals.FindDeal(r.Context(), dealID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	input := service.DealInputFrom(current)
	if err := req.applyTo(&input); err != nil {
		writeError(w, r, err)
		return
	}
	deal, err := h.services.Deals.UpdateDeal(r.Context(), dealID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(deal))
}

func (h *Handler) deleteDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := parseObjectID(mux.Vars(r)["id"], "deal id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Deals.DeleteDeal(r.Context(), dealID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Deal deleted successfully")
}
