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

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"password"`
	Role           string             `bson:"role"`
	ProfileImage   string             `bson:"profileImage,omitempty"`
	ResetToken     string             `bson:"resetPasswordToken,omitempty"`
	ResetExpiresAt *time.Time         `bson:"resetPasswordExpires,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toUserDocument(u *model.User) userDocument {
	return userDocument{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		Role:           u.Role,
		ProfileImage:   u.ProfileImage,
		ResetToken:     u.ResetToken,
		ResetExpiresAt: u.ResetExpiresAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toModel() model.User {
	return model.User{
		ID:             d.ID,
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		Role:           d.Role,
		ProfileImage:   d.ProfileImage,
		ResetToken:     d.ResetToken,
		ResetExpiresAt: d.ResetExpiresAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return insertOne(ctx, r.coll, toUserDocument(user), model.ErrEmailTaken)
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return replaceByID(ctx, r.coll, user.ID, toUserDocument(user), model.ErrUserNotFound, model.ErrEmailTaken)
}

func (r *UserRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	doc, err := findOne[userDocument](ctx, r.coll, filter, model.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	user := doc.toModel()
	return &user, nil
}

func (r *UserRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll(ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, userDocument.toModel)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	return findAll(ctx, r.coll, bson.M{}, userDocument.toModel, newestFirst())
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrUserNotFound)
}

type pendingUserDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"password"`
	OTP            string             `bson:"otp"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d pendingUserDocument) toModel() model.PendingUser {
	return model.PendingUser{
		ID:             d.ID,
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		OTP:            d.OTP,
		CreatedAt:      d.CreatedAt,
	}
}

// PendingUserRepository relies on a TTL index to expire signups. Reads also
// skip expired rows because the TTL monitor runs only once a minute.
type PendingUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewPendingUserRepository(db *mongo.Database) *PendingUserRepository {
	return &PendingUserRepository{
		coll: db.Collection(pendingUsersCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *PendingUserRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *PendingUserRepository) Create(ctx context.Context, user *model.PendingUser) error {
	doc := pendingUserDocument{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		OTP:            user.OTP,
		CreatedAt:      user.CreatedAt,
	}
	return insertOne(ctx, r.coll, doc, model.ErrEmailTaken)
}

func (r *PendingUserRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.PendingUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PendingUserRepository) FindByEmail(ctx context.Context, email string) (*model.PendingUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *PendingUserRepository) findOne(ctx context.Context, filter bson.M) (*model.PendingUser, error) {
	filter["createdAt"] = bson.M{"$gt": r.now().Add(-model.PendingUserTTL)}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	doc, err := findOne[pendingUserDocument](ctx, r.coll, filter, model.ErrPendingUserNotFound, opts)
	if err != nil {
		return nil, err
	}
	user := doc.toModel()
	return &user, nil
}

func (r *PendingUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrPendingUserNotFound)
}
