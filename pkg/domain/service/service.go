package service

import (
	"context"

	"storefront/pkg/domain/model"
)

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}

// TaskQueue runs best-effort side effects in the background. Submit reports
// false when the task was dropped.
type TaskQueue interface {
	Submit(name string, task func(ctx context.Context) error) bool
}

type Locator interface {
	Locate(ctx context.Context, ip string) (*model.Location, error)
}

// Client describes the caller of a request for analytics enrichment.
type Client struct {
	IP        string
	UserAgent string
	Referer   string
}
