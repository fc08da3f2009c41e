package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/pkg/domain/model"
)

type discountCodeDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Code      string             `bson:"code"`
	IsUsed    bool               `bson:"isUsed"`
	CreatedAt time.Time          `bson:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt"`
}

func toDiscountCodeDocument(c *model.DiscountCode) discountCodeDocument {
	return discountCodeDocument{
		ID:        c.ID,
		Email:     c.Email,
		Code:      c.Code,
		IsUsed:    c.IsUsed,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
	}
}

func (d discountCodeDocument) toModel() model.DiscountCode {
	return model.DiscountCode{
		ID:        d.ID,
		Email:     d.Email,
		Code:      d.Code,
		IsUsed:    d.IsUsed,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

type DiscountCodeRepository struct {
	coll *mongo.Collection
}

func NewDiscountCodeRepository(db *mongo.Database) *DiscountCodeRepository {
	return &DiscountCodeRepository{coll: db.Collection(discountCodesCollection)}
}

func (r *DiscountCodeRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *DiscountCodeRepository) Create(ctx context.Context, code *model.DiscountCode) error {
	return insertOne(ctx, r.coll, toDiscountCodeDocument(code), nil)
}

func (r *DiscountCodeRepository) Update(ctx context.Context, code *model.DiscountCode) error {
	return replaceByID(ctx, r.coll, code.ID, toDiscountCodeDocument(code), model.ErrDiscountCodeNotFound, nil)
}

func (r *DiscountCodeRepository) FindByCodeAndEmail(ctx context.Context, code, email string) (*model.DiscountCode, error) {
	doc, err := findOne[discountCodeDocument](ctx, r.coll, bson.M{"code": code, "email": email}, model.ErrDiscountCodeNotFound)
	if err != nil {
		return nil, err
	}
	discount := doc.toModel()
	return &discount, nil
}

func (r *DiscountCodeRepository) FindActiveByEmail(ctx context.Context, email string, now time.Time) (*model.DiscountCode, error) {
	filter := bson.M{
		"email":     email,
		"isUsed":    false,
		"expiresAt": bson.M{"$gt": now},
	}
	doc, err := findOne[discountCodeDocument](ctx, r.coll, filter, model.ErrDiscountCodeNotFound)
	if err != nil {
		return nil, err
	}
	discount := doc.toModel()
	return &discount, nil
}
