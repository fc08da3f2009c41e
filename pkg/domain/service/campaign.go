package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, subject, body string, createdBy primitive.ObjectID) (*model.Campaign, error)
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	// SendCampaign mails every registered user. A campaign is sent at most once.
	SendCampaign(ctx context.Context, campaignID primitive.ObjectID) (*model.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID primitive.ObjectID) error
}

func NewCampaignService(campaigns model.CampaignRepository, users model.UserRepository, notifier Notifier, dispatcher EventDispatcher) CampaignService {
	return &campaignService{campaigns: campaigns, users: users, notifier: notifier, dispatcher: dispatcher}
}

type campaignService struct {
	campaigns  model.CampaignRepository
	users      model.UserRepository
	notifier   Notifier
	dispatcher EventDispatcher
}

func (s *campaignService) CreateCampaign(ctx context.Context, subject, body string, createdBy primitive.ObjectID) (*model.Campaign, error) {
	subject, body = strings.TrimSpace(subject), strings.TrimSpace(body)
	if subject == "" || body == "" {
		return nil, model.NewValidationError("subject and body are required")
	}
	now := time.Now().UTC()
	campaign := &model.Campaign{
		ID:        s.campaigns.NextID(),
		Subject:   subject,
		Body:      body,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	return s.campaigns.FindAll(ctx)
}

func (s *campaignService) SendCampaign(ctx context.Context, campaignID primitive.ObjectID) (*model.Campaign, error) {
	campaign, err := s.campaigns.Find(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.SentAt != nil {
		return nil, model.ErrCampaignAlreadySent
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			recipients = append(recipients, u.Email)
		}
	}
	if len(recipients) == 0 {
		return nil, model.ErrNoRecipients
	}

	if err := s.notifier.SendCampaign(ctx, campaign.Subject, campaign.Body, recipients); err != nil {
		return nil, errors.Wrap(err, "failed to send campaign emails")
	}

	now := time.Now().UTC()
	campaign.SentAt = &now
	campaign.RecipientCount = len(recipients)
	campaign.UpdatedAt = now
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CampaignSent{CampaignID: campaign.ID, RecipientCount: campaign.RecipientCount})
	return campaign, nil
}

func (s *campaignService) DeleteCampaign(ctx context.Context, campaignID primitive.ObjectID) error {
	if _, err := s.campaigns.Find(ctx, campaignID); err != nil {
		return err
	}
	return s.campaigns.Delete(ctx, campaignID)
}
