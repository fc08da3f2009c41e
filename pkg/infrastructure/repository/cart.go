package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/pkg/domain/model"
)

type cartDocument struct {
	OwnerFields `bson:",inline"`

	ID            primitive.ObjectID `bson:"_id"`
	ProductID     primitive.ObjectID `bson:"productId"`
	SelectedImage string             `bson:"selectedImage"`
	SelectedSize  string             `bson:"selectedSize"`
	Quantity      int                `bson:"quantity"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toCartDocument(item *model.CartItem) cartDocument {
	return cartDocument{
		ID:            item.ID,
		OwnerFields:   toOwnerFields(item.Owner),
		ProductID:     item.ProductID,
		SelectedImage: item.SelectedImage,
		SelectedSize:  item.SelectedSize,
		Quantity:      item.Quantity,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func (d cartDocument) toModel() model.CartItem {
	return model.CartItem{
		ID:            d.ID,
		Owner:         d.owner(),
		ProductID:     d.ProductID,
		SelectedImage: d.SelectedImage,
		SelectedSize:  d.SelectedSize,
		Quantity:      d.Quantity,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type CartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection(cartsCollection)}
}

func (r *CartRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *CartRepository) Create(ctx context.Context, item *model.CartItem) error {
	return insertOne(ctx, r.coll, toCartDocument(item), nil)
}

func (r *CartRepository) Update(ctx context.Context, item *model.CartItem) error {
	return replaceByID(ctx, r.coll, item.ID, toCartDocument(item), model.ErrCartItemNotFound, nil)
}

func (r *CartRepository) FindByKey(ctx context.Context, key model.ItemKey) (*model.CartItem, error) {
	doc, err := findOne[cartDocument](ctx, r.coll, keyFilter(key), model.ErrCartItemNotFound)
	if err != nil {
		return nil, err
	}
	item := doc.toModel()
	return &item, nil
}

func (r *CartRepository) FindByOwner(ctx context.Context, owner model.Owner) ([]model.CartItem, error) {
	return findAll(ctx, r.coll, ownerFilter(owner), cartDocument.toModel, newestFirst())
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrCartItemNotFound)
}

func (r *CartRepository) DeleteByOwner(ctx context.Context, owner model.Owner) error {
	return deleteMany(ctx, r.coll, ownerFilter(owner))
}

func (r *CartRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	return deleteMany(ctx, r.coll, bson.M{"productId": productID})
}

type wishlistDocument struct {
	OwnerFields `bson:",inline"`

	ID            primitive.ObjectID `bson:"_id"`
	ProductID     primitive.ObjectID `bson:"productId"`
	SelectedImage string             `bson:"selectedImage"`
	SelectedSize  string             `bson:"selectedSize"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d wishlistDocument) toModel() model.WishlistItem {
	return model.WishlistItem{
		ID:            d.ID,
		Owner:         d.owner(),
		ProductID:     d.ProductID,
		SelectedImage: d.SelectedImage,
		SelectedSize:  d.SelectedSize,
		CreatedAt:     d.CreatedAt,
	}
}

type WishlistRepository struct {
	coll *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{coll: db.Collection(wishlistsCollection)}
}

func (r *WishlistRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *WishlistRepository) Create(ctx context.Context, item *model.WishlistItem) error {
	doc := wishlistDocument{
		ID:            item.ID,
		OwnerFields:   toOwnerFields(item.Owner),
		ProductID:     item.ProductID,
		SelectedImage: item.SelectedImage,
		SelectedSize:  item.SelectedSize,
		CreatedAt:     item.CreatedAt,
	}
	return insertOne(ctx, r.coll, doc, nil)
}

func (r *WishlistRepository) FindByKey(ctx context.Context, key model.ItemKey) (*model.WishlistItem, error) {
	doc, err := findOne[wishlistDocument](ctx, r.coll, keyFilter(key), model.ErrWishlistItemNotFound)
	if err != nil {
		return nil, err
	}
	item := doc.toModel()
	return &item, nil
}

func (r *WishlistRepository) FindByOwner(ctx context.Context, owner model.Owner) ([]model.WishlistItem, error) {
	return findAll(ctx, r.coll, ownerFilter(owner), wishlistDocument.toModel, newestFirst())
}

func (r *WishlistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrWishlistItemNotFound)
}
