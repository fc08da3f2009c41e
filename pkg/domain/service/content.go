package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

type ContentService interface {
	CreateSlide(ctx context.Context, slide model.Slide) (*model.Slide, error)
	UpdateSlide(ctx context.Context, slideID primitive.ObjectID, slide model.Slide) (*model.Slide, error)
	GetSlide(ctx context.Context, slideID primitive.ObjectID) (*model.Slide, error)
	ListSlides(ctx context.Context) ([]model.Slide, error)
	DeleteSlide(ctx context.Context, slideID primitive.ObjectID) error

	GetBanner(ctx context.Context) (*model.Banner, error)
	// SaveBanner replaces the current banner.
	SaveBanner(ctx context.Context, banner model.Banner) (*model.Banner, error)
	DeleteBanner(ctx context.Context) error

	CreateReel(ctx context.Context, reel model.Reel) (*model.Reel, error)
	ListReels(ctx context.Context) ([]model.Reel, error)
	GetReel(ctx context.Context, reelID primitive.ObjectID) (*model.Reel, error)
	DeleteReel(ctx context.Context, reelID primitive.ObjectID) error
}

func NewContentService(slides model.SlideRepository, banners model.BannerRepository, reels model.ReelRepository) ContentService {
	return &contentService{slides: slides, banners: banners, reels: reels}
}

type contentService struct {
	slides  model.SlideRepository
	banners model.BannerRepository
	reels   model.ReelRepository
}

func (s *contentService) CreateSlide(ctx context.Context, slide model.Slide) (*model.Slide, error) {
	if err := normalizeSlide(&slide); err != nil {
		return nil, err
	}
	slide.ID = s.slides.NextID()
	slide.CreatedAt = time.Now().UTC()
	if err := s.slides.Create(ctx, &slide); err != nil {
		return nil, err
	}
	return &slide, nil
}

func (s *contentService) UpdateSlide(ctx context.Context, slideID primitive.ObjectID, slide model.Slide) (*model.Slide, error) {
	existing, err := s.slides.Find(ctx, slideID)
	if err != nil {
		return nil, err
	}
	if err := normalizeSlide(&slide); err != nil {
		return nil, err
	}
	slide.ID = existing.ID
	slide.CreatedAt = existing.CreatedAt
	if err := s.slides.Update(ctx, &slide); err != nil {
		return nil, err
	}
	return &slide, nil
}

func (s *contentService) GetSlide(ctx context.Context, slideID primitive.ObjectID) (*model.Slide, error) {
	return s.slides.Find(ctx, slideID)
}

func (s *contentService) ListSlides(ctx context.Context) ([]model.Slide, error) {
	return s.slides.FindAll(ctx)
}

func (s *contentService) DeleteSlide(ctx context.Context, slideID primitive.ObjectID) error {
	if _, err := s.slides.Find(ctx, slideID); err != nil {
		return err
	}
	return s.slides.Delete(ctx, slideID)
}

func (s *contentService) GetBanner(ctx context.Context) (*model.Banner, error) {
	return s.banners.FindLatest(ctx)
}

func (s *contentService) SaveBanner(ctx context.Context, banner model.Banner) (*model.Banner, error) {
	if strings.TrimSpace(banner.Image) == "" && strings.TrimSpace(banner.Video) == "" {
		return nil, model.ErrBannerMediaRequired
	}
	now := time.Now().UTC()
	banner.ID = s.banners.NextID()
	banner.CreatedAt = now
	banner.UpdatedAt = now
	if err := s.banners.Replace(ctx, &banner); err != nil {
		return nil, err
	}
	return &banner, nil
}

func (s *contentService) DeleteBanner(ctx context.Context) error {
	return s.banners.DeleteAll(ctx)
}

func (s *contentService) CreateReel(ctx context.Context, reel model.Reel) (*model.Reel, error) {
	reel.Title = strings.TrimSpace(reel.Title)
	reel.VideoURL = strings.TrimSpace(reel.VideoURL)
	if reel.Title == "" || reel.VideoURL == "" {
		return nil, model.NewValidationError("title and video URL are required")
	}
	reel.ID = s.reels.NextID()
	reel.CreatedAt = time.Now().UTC()
	if err := s.reels.Create(ctx, &reel); err != nil {
		return nil, err
	}
	return &reel, nil
}

func (s *contentService) ListReels(ctx context.Context) ([]model.Reel, error) {
	return s.reels.FindAll(ctx)
}

func (s *contentService) GetReel(ctx context.Context, reelID primitive.ObjectID) (*model.Reel, error) {
	return s.reels.Find(ctx, reelID)
}

func (s *contentService) DeleteReel(ctx context.Context, reelID primitive.ObjectID) error {
	return s.reels.Delete(ctx, reelID)
}

func normalizeSlide(slide *model.Slide) error {
	if strings.TrimSpace(slide.Image) == "" {
		return model.NewValidationError("slide image is required")
	}
	switch slide.Size {
	case "":
		slide.Size = model.SlideMedium
	case model.SlideSmall, model.SlideMedium, model.SlideLarge:
	default:
		return model.NewValidationError("slide size must be small, medium or large")
	}
	defaults := []struct {
		field *string
		value string
	}{
		{&slide.Link, "/products"},
		{&slide.BgColor, "#ffffff"},
		{&slide.TitleColor, "#000000"},
		{&slide.SubtitleColor, "#000000"},
		{&slide.ButtonBgColor, "#ffffff"},
		{&slide.ButtonTextColor, "#000000"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	return nil
}
