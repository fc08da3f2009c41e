package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/domain/model"
)

type sizeDocument struct {
	Size  string `bson:"size"`
	Stock int    `bson:"stock"`
}

type colorDocument struct {
	Name string `bson:"name"`
	Hex  string `bson:"hex"`
}

type productDocument struct {
	ID              primitive.ObjectID   `bson:"_id"`
	Name            string               `bson:"name"`
	Description     string               `bson:"description"`
	BasePrice       float64              `bson:"basePrice"`
	DiscountedPrice float64              `bson:"discountedPrice"`
	Stock           int                  `bson:"stock"`
	Sizes           []sizeDocument       `bson:"sizes"`
	Colors          []colorDocument      `bson:"colors"`
	Warranty        string               `bson:"warranty"`
	Highlights      []string             `bson:"highlights"`
	Images          []string             `bson:"images"`
	Category        primitive.ObjectID   `bson:"category"`
	Subcategories   []primitive.ObjectID `bson:"subcategories"`
	Brand           string               `bson:"brand"`
	Code            string               `bson:"product_code"`
	Rating          float64              `bson:"rating"`
	BgColor         string               `bson:"bgColor"`
	Shipping        float64              `bson:"shipping"`
	PaymentMethods  []string             `bson:"paymentMethods"`
	IsNewArrival    bool                 `bson:"isNewArrival"`
	IsBestSeller    bool                 `bson:"isBestSeller"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toProductDocument(p *model.Product) productDocument {
	sizes := make([]sizeDocument, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		sizes = append(sizes, sizeDocument{Size: s.Size, Stock: s.Stock})
	}
	colors := make([]colorDocument, 0, len(p.Colors))
	for _, c := range p.Colors {
		colors = append(colors, colorDocument{Name: c.Name, Hex: c.Hex})
	}
	return productDocument{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		BasePrice:       money(p.BasePrice),
		DiscountedPrice: money(p.DiscountedPrice),
		Stock:           p.Stock,
		Sizes:           sizes,
		Colors:          colors,
		Warranty:        p.Warranty,
		Highlights:      p.Highlights,
		Images:          p.Images,
		Category:        p.Category,
		Subcategories:   p.Subcategories,
		Brand:           p.Brand,
		Code:            p.Code,
		Rating:          p.Rating,
		BgColor:         p.BgColor,
		Shipping:        money(p.Shipping),
		PaymentMethods:  p.PaymentMethods,
		IsNewArrival:    p.IsNewArrival,
		IsBestSeller:    p.IsBestSeller,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d productDocument) toModel() model.Product {
	var sizes []model.SizeStock
	for _, s := range d.Sizes {
		sizes = append(sizes, model.SizeStock{Size: s.Size, Stock: s.Stock})
	}
	var colors []model.Color
	for _, c := range d.Colors {
		colors = append(colors, model.Color{Name: c.Name, Hex: c.Hex})
	}
	return model.Product{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		BasePrice:       fromMoney(d.BasePrice),
		DiscountedPrice: fromMoney(d.DiscountedPrice),
		Stock:           d.Stock,
		Sizes:           sizes,
		Colors:          colors,
		Warranty:        d.Warranty,
		Highlights:      d.Highlights,
		Images:          d.Images,
		Category:        d.Category,
		Subcategories:   d.Subcategories,
		Brand:           d.Brand,
		Code:            d.Code,
		Rating:          d.Rating,
		BgColor:         d.BgColor,
		Shipping:        fromMoney(d.Shipping),
		PaymentMethods:  d.PaymentMethods,
		IsNewArrival:    d.IsNewArrival,
		IsBestSeller:    d.IsBestSeller,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

func (r *ProductRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	return insertOne(ctx, r.coll, toProductDocument(product), model.ErrProductCodeTaken)
}

func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	return replaceByID(ctx, r.coll, product.ID, toProductDocument(product), model.ErrProductNotFound, model.ErrProductCodeTaken)
}

func (r *ProductRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	doc, err := findOne[productDocument](ctx, r.coll, bson.M{"_id": id}, model.ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product := doc.toModel()
	return &product, nil
}

func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	doc, err := findOne[productDocument](ctx, r.coll, bson.M{"product_code": code}, model.ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	product := doc.toModel()
	return &product, nil
}

func (r *ProductRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll(ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, productDocument.toModel)
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	return findAll(ctx, r.coll, bson.M{}, productDocument.toModel, newestFirst())
}

func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]model.Product, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"category": categoryID},
		bson.M{"subcategories": categoryID},
	}}
	return findAll(ctx, r.coll, filter, productDocument.toModel, newestFirst())
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrProductNotFound)
}

func (r *ProductRepository) AdjustStock(ctx context.Context, id primitive.ObjectID, size string, delta int) error {
	if size == "" {
		return updateByID(ctx, r.coll, id, bson.M{"$inc": bson.M{"stock": delta}}, model.ErrProductNotFound)
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem.size": size}},
	})
	return updateByID(ctx, r.coll, id, bson.M{"$inc": bson.M{"sizes.$[elem].stock": delta}}, model.ErrProductNotFound, opts)
}

func (r *ProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"rating": rating}}, model.ErrProductNotFound)
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	ProductID primitive.ObjectID `bson:"productId"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d reviewDocument) toModel() model.Review {
	return model.Review{
		ID:        d.ID,
		UserID:    d.UserID,
		ProductID: d.ProductID,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

type ReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	doc := reviewDocument{
		ID:        review.ID,
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	return insertOne(ctx, r.coll, doc, model.ErrReviewAlreadyExists)
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]model.Review, error) {
	return findAll(ctx, r.coll, bson.M{"productId": productID}, reviewDocument.toModel, newestFirst())
}

func (r *ReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*model.Review, error) {
	doc, err := findOne[reviewDocument](ctx, r.coll, bson.M{"userId": userID, "productId": productID}, model.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}
	review := doc.toModel()
	return &review, nil
}

func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	return deleteMany(ctx, r.coll, bson.M{"productId": productID})
}
