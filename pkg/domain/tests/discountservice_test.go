package tests

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

var discountCodePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := &mockDiscountRepository{}
	notifier := newMockNotifier()
	dispatcher := &mockEventDispatcher{}
	discountService := service.NewDiscountService(repo, notifier, dispatcher)

	t.Run("Success", func(t *testing.T) {
		code, err := discountService.Subscribe(ctx, " Fatima@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "fatima@example.com", code.Email)
		assert.Regexp(t, discountCodePattern, code.Code)
		assert.False(t, code.IsUsed)
		assert.WithinDuration(t, time.Now().Add(model.DiscountCodeTTL), code.ExpiresAt, time.Minute)
		assert.Equal(t, code.Code, notifier.discountCodes["fatima@example.com"])

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.DiscountCodeIssued)
		assert.True(t, ok)
	})

	t.Run("Fail on active code", func(t *testing.T) {
		dispatcher.Reset()
		_, err := discountService.Subscribe(ctx, "fatima@example.com")
		assert.ErrorIs(t, err, model.ErrActiveDiscountCodeExists)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("New code once the old one is used", func(t *testing.T) {
		_, err := discountService.Redeem(ctx, "fatima@example.com", repo.codes[0].Code)
		require.NoError(t, err)

		code, err := discountService.Subscribe(ctx, "fatima@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, repo.codes[0].ID, code.ID)
		assert.Len(t, repo.codes, 2)
	})

	t.Run("Fail on empty email", func(t *testing.T) {
		_, err := discountService.Subscribe(ctx, "  ")
		var validationErr *model.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestValidateDiscountCode(t *testing.T) {
	ctx := context.Background()
	repo := &mockDiscountRepository{}
	discountService := service.NewDiscountService(repo, newMockNotifier(), &mockEventDispatcher{})
	now := time.Now().UTC()

	for _, d := range []*model.DiscountCode{
		{Email: "valid@example.com", Code: "AAAA1111", ExpiresAt: now.Add(time.Hour)},
		{Email: "used@example.com", Code: "BBBB2222", ExpiresAt: now.Add(time.Hour), IsUsed: true},
		{Email: "expired@example.com", Code: "CCCC3333", ExpiresAt: now.Add(-time.Minute)},
	} {
		d.ID = repo.NextID()
		d.CreatedAt = now
		require.NoError(t, repo.Create(ctx, d))
	}

	cases := []struct {
		email, code string
		valid       bool
		message     string
	}{
		{"valid@example.com", "aaaa1111", true, "Valid discount code"},
		{"used@example.com", "BBBB2222", false, "Discount code has already been used"},
		{"expired@example.com", "CCCC3333", false, "Discount code has expired"},
		{"valid@example.com", "BBBB2222", false, "Invalid discount code"},
	}
	for _, c := range cases {
		result, err := discountService.Validate(ctx, c.email, c.code)
		require.NoError(t, err)
		assert.Equal(t, c.valid, result.Valid, c.code)
		assert.Equal(t, c.message, result.Message, c.code)
	}

	_, err := discountService.Validate(ctx, "", "AAAA1111")
	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	t.Run("Validate does not consume", func(t *testing.T) {
		assert.False(t, repo.codes[0].IsUsed)
	})

	t.Run("Redeem errors", func(t *testing.T) {
		_, err := discountService.Redeem(ctx, "used@example.com", "BBBB2222")
		assert.ErrorIs(t, err, model.ErrDiscountCodeUsed)
		_, err = discountService.Redeem(ctx, "expired@example.com", "CCCC3333")
		assert.ErrorIs(t, err, model.ErrDiscountCodeExpired)
		_, err = discountService.Redeem(ctx, "other@example.com", "AAAA1111")
		assert.ErrorIs(t, err, model.ErrDiscountCodeNotFound)
	})
}
