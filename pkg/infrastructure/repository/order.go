package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/pkg/domain/model"
)

type orderItemDocument struct {
	ProductID     primitive.ObjectID `bson:"productId"`
	Quantity      int                `bson:"quantity"`
	SelectedImage string             `bson:"selectedImage"`
	SelectedSize  string             `bson:"selectedSize,omitempty"`
	SelectedColor string             `bson:"selectedColor,omitempty"`
}

type orderDocument struct {
	OwnerFields `bson:",inline"`

	ID              primitive.ObjectID  `bson:"_id"`
	FullName        string              `bson:"fullName"`
	Items           []orderItemDocument `bson:"products"`
	OriginalAmount  float64             `bson:"originalAmount"`
	ShippingAmount  float64             `bson:"shippingAmount"`
	TotalAmount     float64             `bson:"totalAmount"`
	DiscountApplied bool                `bson:"discountApplied"`
	DiscountCode    string              `bson:"discountCode,omitempty"`
	Status          string              `bson:"status"`
	PaymentStatus   string              `bson:"paymentStatus"`
	ShippingAddress string              `bson:"shippingAddress"`
	Email           string              `bson:"email"`
	Phone           string              `bson:"phone"`
	City            string              `bson:"city,omitempty"`
	DeliveredAt     *time.Time          `bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

func toOrderDocument(o *model.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemDocument{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedImage: item.SelectedImage,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	return orderDocument{
		ID:              o.ID,
		OwnerFields:     toOwnerFields(o.Owner),
		FullName:        o.FullName,
		Items:           items,
		OriginalAmount:  money(o.OriginalAmount),
		ShippingAmount:  money(o.ShippingAmount),
		TotalAmount:     money(o.TotalAmount),
		DiscountApplied: o.DiscountApplied,
		DiscountCode:    o.DiscountCode,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		Email:           o.Email,
		Phone:           o.Phone,
		City:            o.City,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (d orderDocument) toModel() model.Order {
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, model.OrderItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedImage: item.SelectedImage,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	return model.Order{
		ID:              d.ID,
		Owner:           d.owner(),
		FullName:        d.FullName,
		Items:           items,
		OriginalAmount:  fromMoney(d.OriginalAmount),
		ShippingAmount:  fromMoney(d.ShippingAmount),
		TotalAmount:     fromMoney(d.TotalAmount),
		DiscountApplied: d.DiscountApplied,
		DiscountCode:    d.DiscountCode,
		Status:          model.OrderStatus(d.Status),
		PaymentStatus:   model.PaymentStatus(d.PaymentStatus),
		ShippingAddress: d.ShippingAddress,
		Email:           d.Email,
		Phone:           d.Phone,
		City:            d.City,
		DeliveredAt:     d.DeliveredAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(ordersCollection)}
}

func (r *OrderRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return insertOne(ctx, r.coll, toOrderDocument(order), nil)
}

func (r *OrderRepository) Update(ctx context.Context, order *model.Order) error {
	return replaceByID(ctx, r.coll, order.ID, toOrderDocument(order), model.ErrOrderNotFound, nil)
}

func (r *OrderRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	doc, err := findOne[orderDocument](ctx, r.coll, bson.M{"_id": id}, model.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	order := doc.toModel()
	return &order, nil
}

func (r *OrderRepository) FindByOwner(ctx context.Context, owner model.Owner) ([]model.Order, error) {
	return findAll(ctx, r.coll, ownerFilter(owner), orderDocument.toModel, newestFirst())
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	return findAll(ctx, r.coll, bson.M{}, orderDocument.toModel, newestFirst())
}

func (r *OrderRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	return count, errors.Wrap(err, "failed to count orders")
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrOrderNotFound)
}
