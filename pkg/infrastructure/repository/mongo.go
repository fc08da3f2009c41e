// Package repository stores the storefront domain in MongoDB, one collection
// per entity.
package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/domain/model"
)

const (
	usersCollection         = "users"
	pendingUsersCollection  = "temp_users"
	productsCollection      = "products"
	reviewsCollection       = "reviews"
	ordersCollection        = "orders"
	cartsCollection         = "carts"
	wishlistsCollection     = "wishlists"
	discountCodesCollection = "discount_codes"
	activitiesCollection    = "activities"
	categoriesCollection    = "categories"
	dealsCollection         = "deals"
	slidesCollection        = "slides"
	bannersCollection       = "banners"
	reelsCollection         = "reels"
	campaignsCollection     = "campaigns"
)

// Connect opens a client and pings the primary. Embedded documents decode
// into bson.M so free-form activity payloads round-trip as JSON objects.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping mongo")
	}
	return client, nil
}

func findOne[D any](ctx context.Context, coll *mongo.Collection, filter interface{}, notFound error, opts ...*options.FindOneOptions) (*D, error) {
	var doc D
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find in %s", coll.Name())
	}
	return &doc, nil
}

func findAll[D any, T any](ctx context.Context, coll *mongo.Collection, filter interface{}, toModel func(D) T, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", coll.Name())
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", coll.Name())
	}
	result := make([]T, 0, len(docs))
	for _, doc := range docs {
		result = append(result, toModel(doc))
	}
	return result, nil
}

// insertOne maps a unique index violation to duplicate when it is set.
func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}, duplicate error) error {
	_, err := coll.InsertOne(ctx, doc)
	if duplicate != nil && mongo.IsDuplicateKeyError(err) {
		return duplicate
	}
	return errors.Wrapf(err, "failed to insert into %s", coll.Name())
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}, notFound, duplicate error) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if duplicate != nil && mongo.IsDuplicateKeyError(err) {
		return duplicate
	}
	if err != nil {
		return errors.Wrapf(err, "failed to update %s", coll.Name())
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, update interface{}, notFound error, opts ...*options.UpdateOptions) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update, opts...)
	if err != nil {
		return errors.Wrapf(err, "failed to update %s", coll.Name())
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, notFound error) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "failed to delete from %s", coll.Name())
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func deleteMany(ctx context.Context, coll *mongo.Collection, filter interface{}) error {
	_, err := coll.DeleteMany(ctx, filter)
	return errors.Wrapf(err, "failed to delete from %s", coll.Name())
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// Prices are stored as doubles, the way the storefront frontend reads them.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func fromMoney(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// OwnerFields is embedded into documents that belong to a user or a guest.
// Exactly one field is stored.
type OwnerFields struct {
	UserID  primitive.ObjectID `bson:"user_id,omitempty"`
	GuestID string             `bson:"guest_id,omitempty"`
}

func toOwnerFields(owner model.Owner) OwnerFields {
	if id, ok := owner.UserID(); ok {
		return OwnerFields{UserID: id}
	}
	guestID, _ := owner.GuestID()
	return OwnerFields{GuestID: guestID}
}

func (f OwnerFields) owner() model.Owner {
	if !f.UserID.IsZero() {
		return model.RegisteredOwner(f.UserID)
	}
	return model.GuestOwner(f.GuestID)
}

func ownerFilter(owner model.Owner) bson.M {
	if id, ok := owner.UserID(); ok {
		return bson.M{"user_id": id}
	}
	guestID, _ := owner.GuestID()
	return bson.M{"guest_id": guestID, "user_id": bson.M{"$exists": false}}
}

func keyFilter(key model.ItemKey) bson.M {
	filter := ownerFilter(key.Owner)
	filter["productId"] = key.ProductID
	filter["selectedImage"] = key.SelectedImage
	filter["selectedSize"] = key.SelectedSize
	return filter
}

var (
	_ model.ProductRepository      = (*ProductRepository)(nil)
	_ model.ReviewRepository       = (*ReviewRepository)(nil)
	_ model.OrderRepository        = (*OrderRepository)(nil)
	_ model.CartRepository         = (*CartRepository)(nil)
	_ model.WishlistRepository     = (*WishlistRepository)(nil)
	_ model.DiscountCodeRepository = (*DiscountCodeRepository)(nil)
	_ model.ActivityRepository     = (*ActivityRepository)(nil)
	_ model.UserRepository         = (*UserRepository)(nil)
	_ model.PendingUserRepository  = (*PendingUserRepository)(nil)
	_ model.CategoryRepository     = (*CategoryRepository)(nil)
	_ model.DealRepository         = (*DealRepository)(nil)
	_ model.SlideRepository        = (*SlideRepository)(nil)
	_ model.BannerRepository       = (*BannerRepository)(nil)
	_ model.ReelRepository         = (*ReelRepository)(nil)
	_ model.CampaignRepository     = (*CampaignRepository)(nil)
)
