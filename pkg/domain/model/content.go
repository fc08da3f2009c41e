package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSlideNotFound       = errors.New("slide not found")
	ErrBannerNotFound      = errors.New("banner not found")
	ErrBannerMediaRequired = errors.New("image or video is required")
	ErrReelNotFound        = errors.New("reel not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrCampaignAlreadySent = errors.New("campaign already sent")
	ErrNoRecipients        = errors.New("no users to send email to")
)

type SlideSize string

const (
	SlideSmall  SlideSize = "small"
	SlideMedium SlideSize = "medium"
	SlideLarge  SlideSize = "large"
)

type Slide struct {
	ID              primitive.ObjectID
	Title           string
	Subtitle        string
	ButtonText      string
	Image           string
	MobileImage     string
	Link            string
	BgColor         string
	TitleColor      string
	SubtitleColor   string
	ButtonBgColor   string
	ButtonTextColor string
	Size            SlideSize
	CreatedAt       time.Time
}

type SlideRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, slide *Slide) error
	Update(ctx context.Context, slide *Slide) error
	Find(ctx context.Context, id primitive.ObjectID) (*Slide, error)
	FindAll(ctx context.Context) ([]Slide, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Banner is the single promotional banner shown on the storefront.
type Banner struct {
	ID         primitive.ObjectID
	Image      string
	Video      string
	Title      string
	ButtonText string
	ButtonLink string
	Timer      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BannerRepository interface {
	NextID() primitive.ObjectID
	// Replace removes every stored banner and stores the given one.
	Replace(ctx context.Context, banner *Banner) error
	FindLatest(ctx context.Context) (*Banner, error)
	DeleteAll(ctx context.Context) error
}

type Reel struct {
	ID          primitive.ObjectID
	Title       string
	Description string
	VideoURL    string
	UserID      primitive.ObjectID
	CreatedAt   time.Time
}

type ReelRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, reel *Reel) error
	Find(ctx context.Context, id primitive.ObjectID) (*Reel, error)
	FindAll(ctx context.Context) ([]Reel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Campaign struct {
	ID             primitive.ObjectID
	Subject        string
	Body           string
	CreatedBy      primitive.ObjectID
	SentAt         *time.Time
	RecipientCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CampaignRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, campaign *Campaign) error
	Update(ctx context.Context, campaign *Campaign) error
	Find(ctx context.Context, id primitive.ObjectID) (*Campaign, error)
	FindAll(ctx context.Context) ([]Campaign, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
