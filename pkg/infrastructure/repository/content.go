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

type slideDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Title           string             `bson:"title"`
	Subtitle        string             `bson:"subtitle"`
	ButtonText      string             `bson:"buttonText"`
	Image           string             `bson:"image"`
	MobileImage     string             `bson:"mobileImage,omitempty"`
	Link            string             `bson:"link"`
	BgColor         string             `bson:"bgColor"`
	TitleColor      string             `bson:"titleColor"`
	SubtitleColor   string             `bson:"subtitleColor"`
	ButtonBgColor   string             `bson:"buttonBgColor"`
	ButtonTextColor string             `bson:"buttonTextColor"`
	Size            string             `bson:"size"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func toSlideDocument(s *model.Slide) slideDocument {
	return slideDocument{
		ID:              s.ID,
		Title:           s.Title,
		Subtitle:        s.Subtitle,
		ButtonText:      s.ButtonText,
		Image:           s.Image,
		MobileImage:     s.MobileImage,
		Link:            s.Link,
		BgColor:         s.BgColor,
		TitleColor:      s.TitleColor,
		SubtitleColor:   s.SubtitleColor,
		ButtonBgColor:   s.ButtonBgColor,
		ButtonTextColor: s.ButtonTextColor,
		Size:            string(s.Size),
		CreatedAt:       s.CreatedAt,
	}
}

func (d slideDocument) toModel() model.Slide {
	return model.Slide{
		ID:              d.ID,
		Title:           d.Title,
		Subtitle:        d.Subtitle,
		ButtonText:      d.ButtonText,
		Image:           d.Image,
		MobileImage:     d.MobileImage,
		Link:            d.Link,
		BgColor:         d.BgColor,
		TitleColor:      d.TitleColor,
		SubtitleColor:   d.SubtitleColor,
		ButtonBgColor:   d.ButtonBgColor,
		ButtonTextColor: d.ButtonTextColor,
		Size:            model.SlideSize(d.Size),
		CreatedAt:       d.CreatedAt,
	}
}

type SlideRepository struct {
	coll *mongo.Collection
}

func NewSlideRepository(db *mongo.Database) *SlideRepository {
	return &SlideRepository{coll: db.Collection(slidesCollection)}
}

func (r *SlideRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *SlideRepository) Create(ctx context.Context, slide *model.Slide) error {
	return insertOne(ctx, r.coll, toSlideDocument(slide), nil)
}

func (r *SlideRepository) Update(ctx context.Context, slide *model.Slide) error {
	return replaceByID(ctx, r.coll, slide.ID, toSlideDocument(slide), model.ErrSlideNotFound, nil)
}

func (r *SlideRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Slide, error) {
	doc, err := findOne[slideDocument](ctx, r.coll, bson.M{"_id": id}, model.ErrSlideNotFound)
	if err != nil {
		return nil, err
	}
	slide := doc.toModel()
	return &slide, nil
}

func (r *SlideRepository) FindAll(ctx context.Context) ([]model.Slide, error) {
	return findAll(ctx, r.coll, bson.M{}, slideDocument.toModel, newestFirst())
}

func (r *SlideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrSlideNotFound)
}

type bannerDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Image      string             `bson:"image,omitempty"`
	Video      string             `bson:"video,omitempty"`
	Title      string             `bson:"title"`
	ButtonText string             `bson:"buttonText"`
	ButtonLink string             `bson:"buttonLink"`
	Timer      string             `bson:"timer,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type BannerRepository struct {
	coll *mongo.Collection
}

func NewBannerRepository(db *mongo.Database) *BannerRepository {
	return &BannerRepository{coll: db.Collection(bannersCollection)}
}

func (r *BannerRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *BannerRepository) Replace(ctx context.Context, banner *model.Banner) error {
	if err := deleteMany(ctx, r.coll, bson.M{}); err != nil {
		return err
	}
	doc := bannerDocument{
		ID:         banner.ID,
		Image:      banner.Image,
		Video:      banner.Video,
		Title:      banner.Title,
		ButtonText: banner.ButtonText,
		ButtonLink: banner.ButtonLink,
		Timer:      banner.Timer,
		CreatedAt:  banner.CreatedAt,
		UpdatedAt:  banner.UpdatedAt,
	}
	return insertOne(ctx, r.coll, doc, nil)
}

func (r *BannerRepository) FindLatest(ctx context.Context) (*model.Banner, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	doc, err := findOne[bannerDocument](ctx, r.coll, bson.M{}, model.ErrBannerNotFound, opts)
	if err != nil {
		return nil, err
	}
	return &model.Banner{
		ID:         doc.ID,
		Image:      doc.Image,
		Video:      doc.Video,
		Title:      doc.Title,
		ButtonText: doc.ButtonText,
		ButtonLink: doc.ButtonLink,
		Timer:      doc.Timer,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func (r *BannerRepository) DeleteAll(ctx context.Context) error {
	return deleteMany(ctx, r.coll, bson.M{})
}

type reelDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	VideoURL    string             `bson:"videoUrl"`
	UserID      primitive.ObjectID `bson:"user,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d reelDocument) toModel() model.Reel {
	return model.Reel{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		VideoURL:    d.VideoURL,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
}

type ReelRepository struct {
	coll *mongo.Collection
}

func NewReelRepository(db *mongo.Database) *ReelRepository {
	return &ReelRepository{coll: db.Collection(reelsCollection)}
}

func (r *ReelRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *ReelRepository) Create(ctx context.Context, reel *model.Reel) error {
	doc := reelDocument{
		ID:          reel.ID,
		Title:       reel.Title,
		Description: reel.Description,
		VideoURL:    reel.VideoURL,
		UserID:      reel.UserID,
		CreatedAt:   reel.CreatedAt,
	}
	return insertOne(ctx, r.coll, doc, nil)
}

func (r *ReelRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Reel, error) {
	doc, err := findOne[reelDocument](ctx, r.coll, bson.M{"_id": id}, model.ErrReelNotFound)
	if err != nil {
		return nil, err
	}
	reel := doc.toModel()
	return &reel, nil
}

func (r *ReelRepository) FindAll(ctx context.Context) ([]model.Reel, error) {
	return findAll(ctx, r.coll, bson.M{}, reelDocument.toModel, newestFirst())
}

func (r *ReelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrReelNotFound)
}

type campaignDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Subject        string             `bson:"subject"`
	Body           string             `bson:"body"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty"`
	SentAt         *time.Time         `bson:"sentAt,omitempty"`
	RecipientCount int                `bson:"recipientCount"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toCampaignDocument(c *model.Campaign) campaignDocument {
	return campaignDocument{
		ID:             c.ID,
		Subject:        c.Subject,
		Body:           c.Body,
		CreatedBy:      c.CreatedBy,
		SentAt:         c.SentAt,
		RecipientCount: c.RecipientCount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (d campaignDocument) toModel() model.Campaign {
	return model.Campaign{
		ID:             d.ID,
		Subject:        d.Subject,
		Body:           d.Body,
		CreatedBy:      d.CreatedBy,
		SentAt:         d.SentAt,
		RecipientCount: d.RecipientCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type CampaignRepository struct {
	coll *mongo.Collection
}

func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{coll: db.Collection(campaignsCollection)}
}

func (r *CampaignRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *CampaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	return insertOne(ctx, r.coll, toCampaignDocument(campaign), nil)
}

func (r *CampaignRepository) Update(ctx context.Context, campaign *model.Campaign) error {
	return replaceByID(ctx, r.coll, campaign.ID, toCampaignDocument(campaign), model.ErrCampaignNotFound, nil)
}

func (r *CampaignRepository) Find(ctx context.Context, id primitive.ObjectID) (*model.Campaign, error) {
	doc, err := findOne[campaignDocument](ctx, r.coll, bson.M{"_id": id}, model.ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}
	campaign := doc.toModel()
	return &campaign, nil
}

func (r *CampaignRepository) FindAll(ctx context.Context) ([]model.Campaign, error) {
	return findAll(ctx, r.coll, bson.M{}, campaignDocument.toModel, newestFirst())
}

func (r *CampaignRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.coll, id, model.ErrCampaignNotFound)
}
