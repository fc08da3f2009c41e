package tests

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func TestNotifier(t *testing.T) {
	sender := &mockMailSender{}
	queue := &syncQueue{}
	notifier := service.NewNotifier(sender, queue, service.NotifierConfig{
		AdminEmail:    "admin@example.com",
		StorefrontURL: "https://shop.example.com/",
	})

	t.Run("OTP", func(t *testing.T) {
		notifier.SendOTP("new@example.com", "482913")
		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"new@example.com"}, sender.sent[0].to)
		assert.Contains(t, sender.sent[0].body, "482913")
		assert.Contains(t, sender.sent[0].body, "10 minutes")
	})

	t.Run("Password reset link", func(t *testing.T) {
		sender.sent = nil
		notifier.SendPasswordReset("user@example.com", "abc123")
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].body, "https://shop.example.com/reset-password/abc123")
	})

	t.Run("Discount code", func(t *testing.T) {
		sender.sent = nil
		notifier.SendDiscountCode("sub@example.com", "ABCD1234", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].body, "ABCD1234")
		assert.Contains(t, sender.sent[0].body, "November 2, 2026")
	})

	t.Run("Order confirmation goes to customer and admin", func(t *testing.T) {
		sender.sent = nil
		productID := primitive.NewObjectID()
		order := &model.Order{
			ID:             primitive.NewObjectID(),
			FullName:       "Amina Khan",
			Email:          "amina@example.com",
			Items:          []model.OrderItem{{ProductID: productID, Quantity: 2, SelectedSize: "M"}},
			ShippingAmount: decimal.NewFromInt(10),
			TotalAmount:    decimal.RequireFromString("99.5"),
		}
		notifier.SendOrderConfirmation(order, map[string]model.Product{productID.Hex(): {Name: "Linen Shirt"}})

		require.Len(t, sender.sent, 2)
		assert.Equal(t, []string{"amina@example.com"}, sender.sent[0].to)
		assert.Contains(t, sender.sent[0].body, "- Linen Shirt x2 (size M)")
		assert.Contains(t, sender.sent[0].body, "Total: 99.50")
		assert.Equal(t, []string{"admin@example.com"}, sender.sent[1].to)
		assert.Equal(t, []string{"mail.otp", "mail.reset", "mail.discount", "mail.order.customer", "mail.order.admin"}, queue.names)
	})

	t.Run("Campaign sends directly", func(t *testing.T) {
		sender.sent = nil
		err := notifier.SendCampaign(context.Background(), "Sale", "Body", []string{"a@example.com", "b@example.com"})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		assert.Len(t, sender.sent[0].to, 2)

		err = notifier.SendCampaign(context.Background(), "Sale", "Body", nil)
		assert.ErrorIs(t, err, model.ErrNoRecipients)
	})
}
