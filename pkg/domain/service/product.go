package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

const (
	defaultBgColor   = "#FFFFFF"
	minReviewComment = 3
	maxReviewComment = 500
)

type ProductInput struct {
	Name            string
	Description     string
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal
	Shipping        decimal.Decimal
	Stock           int
	Sizes           []model.SizeStock
	Colors          []model.Color
	Warranty        string
	Highlights      []string
	Images          []string
	Category        primitive.ObjectID
	Subcategories   []primitive.ObjectID
	Brand           string
	Code            string
	Rating          float64
	BgColor         string
	PaymentMethods  []string
	IsNewArrival    bool
	IsBestSeller    bool
}

// ProductInputFrom returns the input that would recreate p, for partial updates.
func ProductInputFrom(p *model.Product) ProductInput {
	return ProductInput{
		Name:            p.Name,
		Description:     p.Description,
		BasePrice:       p.BasePrice,
		DiscountedPrice: p.DiscountedPrice,
		Shipping:        p.Shipping,
		Stock:           p.Stock,
		Sizes:           p.Sizes,
		Colors:          p.Colors,
		Warranty:        p.Warranty,
		Highlights:      p.Highlights,
		Images:          p.Images,
		Category:        p.Category,
		Subcategories:   p.Subcategories,
		Brand:           p.Brand,
		Code:            p.Code,
		Rating:          p.Rating,
		BgColor:         p.BgColor,
		PaymentMethods:  p.PaymentMethods,
		IsNewArrival:    p.IsNewArrival,
		IsBestSeller:    p.IsBestSeller,
	}
}

type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID primitive.ObjectID, input ProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, productID primitive.ObjectID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]model.Product, error)
	DeleteProduct(ctx context.Context, productID primitive.ObjectID) error

	SubmitReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*model.Review, error)
	ListReviews(ctx context.Context, productID primitive.ObjectID) ([]model.Review, error)
}

func NewProductService(
	products model.ProductRepository,
	reviews model.ReviewRepository,
	categories model.CategoryRepository,
	carts model.CartRepository,
	users model.UserRepository,
	dispatcher EventDispatcher,
) ProductService {
	return &productService{
		products:   products,
		reviews:    reviews,
		categories: categories,
		carts:      carts,
		users:      users,
		dispatcher: dispatcher,
	}
}

type productService struct {
	products   model.ProductRepository
	reviews    model.ReviewRepository
	categories model.CategoryRepository
	carts      model.CartRepository
	users      model.UserRepository
	dispatcher EventDispatcher
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := s.validate(ctx, primitive.NilObjectID, &input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{ID: s.products.NextID(), CreatedAt: now}
	applyProductInput(product, input)
	if product.Rating == 0 {
		product.Rating = model.DefaultProductRating
	}
	product.UpdatedAt = now

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: product.ID, Code: product.Code})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID primitive.ObjectID, input ProductInput) (*model.Product, error) {
	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, productID, &input); err != nil {
		return nil, err
	}

	applyProductInput(product, input)
	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, productID primitive.ObjectID) (*model.Product, error) {
	return s.products.Find(ctx, productID)
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *productService) ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]model.Product, error) {
	return s.products.FindByCategory(ctx, categoryID)
}

func (s *productService) DeleteProduct(ctx context.Context, productID primitive.ObjectID) error {
	if _, err := s.products.Find(ctx, productID); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	if err := s.reviews.DeleteByProduct(ctx, productID); err != nil {
		log.WithError(err).WithField("productID", productID.Hex()).Warn("failed to delete product reviews")
	}
	if err := s.carts.DeleteByProduct(ctx, productID); err != nil {
		log.WithError(err).WithField("productID", productID.Hex()).Warn("failed to delete product cart rows")
	}

	_ = s.dispatcher.Dispatch(model.ProductDeleted{ProductID: productID})
	return nil
}

func (s *productService) SubmitReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*model.Review, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 {
		return nil, model.NewValidationError("rating must be between 1 and 5")
	}
	if len(comment) < minReviewComment || len(comment) > maxReviewComment {
		return nil, model.NewValidationError("comment must be between %d and %d characters", minReviewComment, maxReviewComment)
	}

	if _, err := s.users.Find(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.products.Find(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.reviews.FindByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, model.ErrReviewAlreadyExists
	}

	review := &model.Review{
		ID:        s.reviews.NextID(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	average := 0.0
	if len(reviews) > 0 {
		average = float64(total) / float64(len(reviews))
	}
	if err := s.products.SetRating(ctx, productID, average); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ReviewSubmitted{ProductID: productID, UserID: userID, Rating: rating})
	return review, nil
}

func (s *productService) ListReviews(ctx context.Context, productID primitive.ObjectID) ([]model.Review, error) {
	return s.reviews.FindByProduct(ctx, productID)
}

func (s *productService) validate(ctx context.Context, productID primitive.ObjectID, input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.Brand = strings.TrimSpace(input.Brand)
	if input.BgColor == "" {
		input.BgColor = defaultBgColor
	}

	switch {
	case input.Name == "" || input.Brand == "" || input.Code == "" || input.Category.IsZero():
		return model.NewValidationError("please provide all required fields")
	case len(input.Images) == 0:
		return model.ErrInvalidProductImages
	case !input.BasePrice.IsPositive() || !input.DiscountedPrice.IsPositive():
		return model.NewValidationError("prices must be valid positive numbers")
	case input.DiscountedPrice.GreaterThan(input.BasePrice):
		return model.NewValidationError("discounted price cannot be higher than base price")
	case input.Shipping.IsNegative():
		return model.NewValidationError("shipping cost must be a non-negative number")
	case input.Stock < 0:
		return model.NewValidationError("stock must be a non-negative number")
	case len(input.PaymentMethods) == 0:
		return model.NewValidationError("at least one payment method is required")
	case !model.IsHexColor(input.BgColor):
		return model.NewValidationError("invalid background color format. Use a hex code (e.g., #FFFFFF)")
	}
	for _, size := range input.Sizes {
		if strings.TrimSpace(size.Size) == "" || size.Stock < 0 {
			return model.NewValidationError("size value is required and stock must be a non-negative number")
		}
	}

	existing, err := s.products.FindByCode(ctx, input.Code)
	switch {
	case err == nil && existing.ID != productID:
		return model.ErrProductCodeTaken
	case err != nil && !errors.Is(err, model.ErrProductNotFound):
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

	if len(input.Subcategories) == 0 {
		return nil
	}
	children, err := s.categories.FindChildren(ctx, input.Category)
	if err != nil {
		return err
	}
	allowed := make(map[primitive.ObjectID]struct{}, len(children))
	for _, c := range children {
		allowed[c.ID] = struct{}{}
	}
	for _, id := range input.Subcategories {
		if _, ok := allowed[id]; !ok {
			return model.ErrInvalidSubcategories
		}
	}
	return nil
}

func applyProductInput(p *model.Product, input ProductInput) {
	p.Name = input.Name
	p.Description = input.Description
	p.BasePrice = input.BasePrice
	p.DiscountedPrice = input.DiscountedPrice
	p.Shipping = input.Shipping
	p.Stock = input.Stock
	p.Sizes = input.Sizes
	p.Colors = input.Colors
	p.Warranty = input.Warranty
	p.Highlights = input.Highlights
	p.Images = input.Images
	p.Category = input.Category
	p.Subcategories = input.Subcategories
	p.Brand = input.Brand
	p.Code = input.Code
	p.Rating = input.Rating
	p.BgColor = input.BgColor
	p.PaymentMethods = input.PaymentMethods
	p.IsNewArrival = input.IsNewArrival
	p.IsBestSeller = input.IsBestSeller
}
