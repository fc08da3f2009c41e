package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pkg/errors"

	"storefront/pkg/domain/model"
)

const discountCodeBytes = 4

// DiscountValidation is the outcome of checking a code without redeeming it.
type DiscountValidation struct {
	Valid   bool
	Message string
}

type DiscountService interface {
	Subscribe(ctx context.Context, email string) (*model.DiscountCode, error)
	Validate(ctx context.Context, email, code string) (DiscountValidation, error)
	// Redeem marks the code used. The caller applies the discount.
	Redeem(ctx context.Context, email, code string) (*model.DiscountCode, error)
}

func NewDiscountService(repo model.DiscountCodeRepository, notifier Notifier, dispatcher EventDispatcher) DiscountService {
	return &discountService{repo: repo, notifier: notifier, dispatcher: dispatcher}
}

type discountService struct {
	repo       model.DiscountCodeRepository
	notifier   Notifier
	dispatcher EventDispatcher
}

func (s *discountService) Subscribe(ctx context.Context, email string) (*model.DiscountCode, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, model.NewValidationError("please provide an email address")
	}

	now := time.Now().UTC()
	if _, err := s.repo.FindActiveByEmail(ctx, email, now); err == nil {
		return nil, model.ErrActiveDiscountCodeExists
	} else if !errors.Is(err, model.ErrDiscountCodeNotFound) {
		return nil, err
	}

	code, err := generateDiscountCode()
	if err != nil {
		return nil, err
	}

	discount := &model.DiscountCode{
		ID:        s.repo.NextID(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(model.DiscountCodeTTL),
	}
	if err := s.repo.Create(ctx, discount); err != nil {
		return nil, err
	}

	s.notifier.SendDiscountCode(email, code, discount.ExpiresAt)
	_ = s.dispatcher.Dispatch(model.DiscountCodeIssued{Email: email})
	return discount, nil
}

func (s *discountService) Validate(ctx context.Context, email, code string) (DiscountValidation, error) {
	email, code = normalizeEmail(email), normalizeCode(code)
	if email == "" || code == "" {
		return DiscountValidation{}, model.NewValidationError("email and discount code are required")
	}

	discount, err := s.repo.FindByCodeAndEmail(ctx, code, email)
	if errors.Is(err, model.ErrDiscountCodeNotFound) {
		return DiscountValidation{Message: "Invalid discount code"}, nil
	}
	if err != nil {
		return DiscountValidation{}, err
	}

	switch discount.Check(time.Now().UTC()) {
	case model.ErrDiscountCodeUsed:
		return DiscountValidation{Message: "Discount code has already been used"}, nil
	case model.ErrDiscountCodeExpired:
		return DiscountValidation{Message: "Discount code has expired"}, nil
	}
	return DiscountValidation{Valid: true, Message: "Valid discount code"}, nil
}

func (s *discountService) Redeem(ctx context.Context, email, code string) (*model.DiscountCode, error) {
	email, code = normalizeEmail(email), normalizeCode(code)

	discount, err := s.repo.FindByCodeAndEmail(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if err := discount.Check(time.Now().UTC()); err != nil {
		return nil, err
	}

	discount.IsUsed = true
	if err := s.repo.Update(ctx, discount); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.DiscountCodeRedeemed{Email: email, Code: code})
	return discount, nil
}

func generateDiscountCode() (string, error) {
	b := make([]byte, discountCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate discount code")
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
