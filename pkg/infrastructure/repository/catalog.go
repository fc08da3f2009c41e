package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/domain/model"
)

type categoryDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	ParentCategory primitive.ObjectID `bson:"parentCategory,omitempty"`
	Image          string             `bson:"image,omitempty"`
}

func toCategoryDocument(c *model.Category) categoryDocument {
	return categoryDocument{
		ID:             c.ID,
		Name:           c.Name,
		ParentCategory: c.ParentCategory,
		Image:          c.Image,
	}
}

func (d categoryDocument) toModel() model.Category {
	return model.Category{
		ID:             d.ID,
		Name:           d.Name,
		ParentCategory: d.ParentCategory,
		Image:          d.Image,
	}
}

type CategoryRepository struct {
	coll *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(categoriesCollection)}
}

func (r *CategoryRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return insertOne(ctx, r.coll, toCategoryDocument(category), model.ErrCategoryNameTaken)
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	return replaceByID(ctx, r.coll, category.ID, toCategoryDocument(category), model.ErrCategoryNotFound, model.ErrCategoryNameTaken)
}

func (r *CategoryRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByName matches the whole name case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	return r.findOne(ctx, bson.M{"name": pattern})
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*model.Category, error) {
	doc, err := findOne[categoryDocument](ctx, r.coll, filter, model.ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}
	category := doc.toModel()
	return &category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll(ctx, r.coll, bson.M{}, categoryDocument.toModel, opts)
}

func (r *CategoryRepository) FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll(ctx, r.coll, bson.M{"parentCategory": parentID}, categoryDocument.toModel, opts)
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrCategoryNotFound)
}

type dealDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	OriginalPrice float64            `bson:"originalPrice"`
	DealPrice     float64            `bson:"dealPrice"`
	Stock         int                `bson:"stock"`
	Images        []string           `bson:"images"`
	Category      primitive.ObjectID `bson:"category"`
	Code          string             `bson:"deal_code"`
	Rating        float64            `bson:"rating"`
	ExpiresAt     time.Time          `bson:"expiresAt"`
	BgColor       string             `bson:"bgColor"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toDealDocument(d *model.Deal) dealDocument {
	return dealDocument{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		OriginalPrice: money(d.OriginalPrice),
		DealPrice:     money(d.DealPrice),
		Stock:         d.Stock,
		Images:        d.Images,
		Category:      d.Category,
		Code:          d.Code,
		Rating:        d.Rating,
		ExpiresAt:     d.ExpiresAt,
		BgColor:       d.BgColor,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (d dealDocument) toModel() model.Deal {
	return model.Deal{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		OriginalPrice: fromMoney(d.OriginalPrice),
		DealPrice:     fromMoney(d.DealPrice),
		Stock:         d.Stock,
		Images:        d.Images,
		Category:      d.Category,
		Code:          d.Code,
		Rating:        d.Rating,
		ExpiresAt:     d.ExpiresAt,
		BgColor:       d.BgColor,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type DealRepository struct {
	coll *mongo.Collection
}

func NewDealRepository(db *mongo.Database) *DealRepository {
	return &DealRepository{coll: db.Collection(dealsCollection)}
}

func (r *DealRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *DealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return insertOne(ctx, r.coll, toDealDocument(deal), model.ErrDealCodeTaken)
}

func (r *DealRepository) Update(ctx context.Context, deal *model.Deal) error {
	return replaceByID(ctx, r.coll, deal.ID, toDealDocument(deal), model.ErrDealNotFound, model.ErrDealCodeTaken)
}

func (r *DealRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Deal, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *DealRepository) FindByCode(ctx context.Context, code string) (*model.Deal, error) {
	return r.findOne(ctx, bson.M{"deal_code": code})
}

func (r *DealRepository) findOne(ctx context.Context, filter bson.M) (*model.Deal, error) {
	doc, err := findOne[dealDocument](ctx, r.coll, filter, model.ErrDealNotFound)
	if err != nil {
		return nil, err
	}
	deal := doc.toModel()
	return &deal, nil
}

func (r *DealRepository) FindActive(ctx context.Context, now time.Time, categoryID primitive.ObjectID) ([]model.Deal, error) {
	filter := bson.M{"expiresAt": bson.M{"$gte": now}}
	if !categoryID.IsZero() {
		filter["category"] = categoryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})
	return findAll(ctx, r.coll, filter, dealDocument.toModel, opts)
}

func (r *DealRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrDealNotFound)
}
