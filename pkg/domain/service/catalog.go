package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

type CategoryInput struct {
	Name           string
	ParentCategory primitive.ObjectID
	Image          string
}

type CategoryService interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, categoryID primitive.ObjectID, input CategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, categoryID primitive.ObjectID) (*model.Category, error)
	// GetCategoryByName accepts a name or a hyphenated slug.
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, categoryID primitive.ObjectID) error
}

func NewCategoryService(categories model.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

type categoryService struct {
	categories model.CategoryRepository
}

func (s *categoryService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := s.validate(ctx, primitive.NilObjectID, &input); err != nil {
		return nil, err
	}
	category := &model.Category{
		ID:             s.categories.NextID(),
		Name:           input.Name,
		ParentCategory: input.ParentCategory,
		Image:          input.Image,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID primitive.ObjectID, input CategoryInput) (*model.Category, error) {
	category, err := s.categories.Find(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if input.ParentCategory == categoryID {
		return nil, model.NewValidationError("a category cannot be its own parent")
	}
	if err := s.validate(ctx, categoryID, &input); err != nil {
		return nil, err
	}
	category.Name = input.Name
	category.ParentCategory = input.ParentCategory
	category.Image = input.Image
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID primitive.ObjectID) (*model.Category, error) {
	return s.categories.Find(ctx, categoryID)
}

func (s *categoryService) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	category, err := s.categories.FindByName(ctx, name)
	if errors.Is(err, model.ErrCategoryNotFound) && strings.Contains(name, "-") {
		return s.categories.FindByName(ctx, strings.ReplaceAll(name, "-", " "))
	}
	return category, err
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID primitive.ObjectID) error {
	if _, err := s.categories.Find(ctx, categoryID); err != nil {
		return err
	}
	children, err := s.categories.FindChildren(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return model.ErrCategoryHasChildren
	}
	return s.categories.Delete(ctx, categoryID)
}

func (s *categoryService) validate(ctx context.Context, categoryID primitive.ObjectID, input *CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return model.NewValidationError("category name is required")
	}

	existing, err := s.categories.FindByName(ctx, input.Name)
	switch {
	case err == nil && existing.ID != categoryID:
		return model.ErrCategoryNameTaken
	case err != nil && !errors.Is(err, model.ErrCategoryNotFound):
		return err
	}

	if input.ParentCategory.IsZero() {
		return nil
	}
	parent, err := s.categories.Find(ctx, input.ParentCategory)
	if err != nil {
		return err
	}
	if !parent.IsTopLevel() {
		return model.ErrCategoryNotTopLevel
	}
	return nil
}

type DealInput struct {
	Name          string
	Description   string
	OriginalPrice decimal.Decimal
	DealPrice     decimal.Decimal
	Stock         int
	Images        []string
	Category      primitive.ObjectID
	Code          string
	Rating        float64
	ExpiresAt     time.Time
	BgColor       string
}

func DealInputFrom(d *model.Deal) DealInput {
	return DealInput{
		Name:          d.Name,
		Description:   d.Description,
		OriginalPrice: d.OriginalPrice,
		DealPrice:     d.DealPrice,
		Stock:         d.Stock,
		Images:        d.Images,
		Category:      d.Category,
		Code:          d.Code,
		Rating:        d.Rating,
		ExpiresAt:     d.ExpiresAt,
		BgColor:       d.BgColor,
	}
}

type DealService interface {
	CreateDeal(ctx context.Context, input DealInput) (*model.Deal, error)
	UpdateDeal(ctx context.Context, dealID primitive.ObjectID, input DealInput) (*model.Deal, error)
	// GetDeal fails with ErrDealExpired once the deal is past its expiry.
	GetDeal(ctx context.Context, dealID primitive.ObjectID) (*model.Deal, error)
	FindDeal(ctx context.Context, dealID primitive.ObjectID) (*model.Deal, error)
	ListActiveDeals(ctx context.Context) ([]model.Deal, error)
	ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]model.Deal, error)
	DeleteDeal(ctx context.Context, dealID primitive.ObjectID) error
}

func NewDealService(deals model.DealRepository, categories model.CategoryRepository) DealService {
	return &dealService{deals: deals, categories: categories}
}

type dealService struct {
	deals      model.DealRepository
	categories model.CategoryRepository
}

func (s *dealService) CreateDeal(ctx context.Context, input DealInput) (*model.Deal, error) {
	if err := s.validate(ctx, primitive.NilObjectID, &input); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	deal := &model.Deal{ID: s.deals.NextID(), CreatedAt: now}
	applyDealInput(deal, input)
	if deal.Rating == 0 {
		deal.Rating = model.DefaultProductRating
	}
	deal.UpdatedAt = now
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *dealService) UpdateDeal(ctx context.Context, dealID primitive.ObjectID, input DealInput) (*model.Deal, error) {
	deal, err := s.deals.Find(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, dealID, &input); err != nil {
		return nil, err
	}
	applyDealInput(deal, input)
	deal.UpdatedAt = time.Now().UTC()
	if err := s.deals.Update(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *dealService) GetDeal(ctx context.Context, dealID primitive.ObjectID) (*model.Deal, error) {
	deal, err := s.deals.Find(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.IsExpired(time.Now().UTC()) {
		return nil, model.ErrDealExpired
	}
	return deal, nil
}

func (s *dealService) FindDeal(ctx context.Context, dealID primitive.ObjectID) (*model.Deal, error) {
	return s.deals.Find(ctx, dealID)
}

func (s *dealService) ListActiveDeals(ctx context.Context) ([]model.Deal, error) {
	return s.deals.FindActive(ctx, time.Now().UTC(), primitive.NilObjectID)
}

func (s *dealService) ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]model.Deal, error) {
	deals, err := s.deals.FindActive(ctx, time.Now().UTC(), categoryID)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, model.ErrNoDealsInCategory
	}
	return deals, nil
}

func (s *dealService) DeleteDeal(ctx context.Context, dealID primitive.ObjectID) error {
	if _, err := s.deals.Find(ctx, dealID); err != nil {
		return err
	}
	return s.deals.Delete(ctx, dealID)
}

func (s *dealService) validate(ctx context.Context, dealID primitive.ObjectID, input *DealInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	if input.BgColor == "" {
		input.BgColor = defaultBgColor
	}

	switch {
	case input.Name == "" || input.Description == "" || input.Code == "" || input.Category.IsZero() || input.ExpiresAt.IsZero():
		return model.NewValidationError("please provide all required fields")
	case len(input.Images) == 0:
		return model.NewValidationError("at least one deal image is required")
	case !input.OriginalPrice.IsPositive() || !input.DealPrice.IsPositive():
		return model.NewValidationError("prices must be valid positive numbers")
	case input.DealPrice.GreaterThan(input.OriginalPrice):
		return model.NewValidationError("deal price cannot be higher than original price")
	case input.Stock < 0:
		return model.NewValidationError("stock must be a non-negative number")
	case !model.IsHexColor(input.BgColor):
		return model.NewValidationError("invalid background color format. Use a hex code (e.g., #FFFFFF)")
	}

	existing, err := s.deals.FindByCode(ctx, input.Code)
	switch {
	case err == nil && existing.ID != dealID:
		return model.ErrDealCodeTaken
	case err != nil && !errors.Is(err, model.ErrDealNotFound):
		return err
	}

	category, err := s.categories.Find(ctx, input.Category)
	if errors.Is(err, model.ErrCategoryNotFound) {
		return model.ErrCategoryNotTopLevel
	}
	if err != nil {
		return err
	}
	if !category.IsTopLevel() {
		return model.ErrCategoryNotTopLevel
	}
	return nil
}

func applyDealInput(d *model.Deal, input DealInput) {
	d.Name = input.Name
	d.Description = input.Description
	d.OriginalPrice = input.OriginalPrice
	d.DealPrice = input.DealPrice
	d.Stock = input.Stock
	d.Images = input.Images
	d.Category = input.Category
	d.Code = input.Code
	d.Rating = input.Rating
	d.ExpiresAt = input.ExpiresAt.UTC()
	d.BgColor = input.BgColor
}
