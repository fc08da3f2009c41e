package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/pkg/domain/model"
)

type Notifier interface {
	SendOTP(email, otp string)
	SendDiscountCode(email, code string, expiresAt time.Time)
	SendPasswordReset(email, token string)
	SendOrderConfirmation(order *model.Order, products map[string]model.Product)
	SendCampaign(ctx context.Context, subject, body string, recipients []string) error
}

type NotifierConfig struct {
	AdminEmail    string
	StorefrontURL string
}

func NewNotifier(sender model.MailSender, queue TaskQueue, config NotifierConfig) Notifier {
	return &notifier{sender: sender, queue: queue, config: config}
}

type notifier struct {
	sender model.MailSender
	queue  TaskQueue
	config NotifierConfig
}

func (n *notifier) SendOTP(email, otp string) {
	subject := "Your verification code"
	body := fmt.Sprintf("Your one-time verification code is %s. It expires in %d minutes.", otp, int(model.PendingUserTTL.Minutes()))
	n.enqueue("mail.otp", []string{email}, subject, body)
}

func (n *notifier) SendDiscountCode(email, code string, expiresAt time.Time) {
	subject := "Your 10% discount code"
	body := fmt.Sprintf("Thanks for subscribing! Use code %s at checkout for 10%% off. Valid until %s.",
		code, expiresAt.UTC().Format("January 2, 2006"))
	n.enqueue("mail.discount", []string{email}, subject, body)
}

func (n *notifier) SendPasswordReset(email, token string) {
	subject := "Reset your password"
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(n.config.StorefrontURL, "/"), token)
	body := fmt.Sprintf("Follow this link within the next hour to reset your password: %s", link)
	n.enqueue("mail.reset", []string{email}, subject, body)
}

func (n *notifier) SendOrderConfirmation(order *model.Order, products map[string]model.Product) {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductID.Hex()
		if p, ok := products[name]; ok {
			name = p.Name
		}
		line := fmt.Sprintf("- %s x%d", name, item.Quantity)
		if item.SelectedSize != "" {
			line += fmt.Sprintf(" (size %s)", item.SelectedSize)
		}
		lines = append(lines, line)
	}
	summary := strings.Join(lines, "\n")

	customerBody := fmt.Sprintf("Hi %s,\n\nWe received your order %s.\n\n%s\n\nShipping: %s\nTotal: %s\n\nShipping to: %s",
		order.FullName, order.ID.Hex(), summary, order.ShippingAmount.StringFixed(2), order.TotalAmount.StringFixed(2), order.ShippingAddress)
	n.enqueue("mail.order.customer", []string{order.Email}, fmt.Sprintf("Order confirmation %s", order.ID.Hex()), customerBody)

	if n.config.AdminEmail == "" {
		return
	}
	adminBody := fmt.Sprintf("New order %s from %s (%s, %s).\n\n%s\n\nTotal: %s\nDiscount applied: %t",
		order.ID.Hex(), order.FullName, order.Email, order.Phone, summary, order.TotalAmount.StringFixed(2), order.DiscountApplied)
	n.enqueue("mail.order.admin", []string{n.config.AdminEmail}, fmt.Sprintf("New order %s", order.ID.Hex()), adminBody)
}

func (n *notifier) SendCampaign(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return model.ErrNoRecipients
	}
	return n.sender.Send(ctx, recipients, subject, body)
}

func (n *notifier) enqueue(name string, to []string, subject, body string) {
	n.queue.Submit(name, func(ctx context.Context) error {
		return n.sender.Send(ctx, to, subject, body)
	})
}
