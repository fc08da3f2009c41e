package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEventTypeRequired = errors.New("event_type is required")

const (
	EventPageView    = "page_view"
	EventAddToCart   = "add_to_cart"
	EventOrderPlaced = "order_placed"
	EventSessionEnd  = "session_end"
)

type Location struct {
	IP        string
	City      string
	Region    string
	Country   string
	Org       string
	Latitude  float64
	Longitude float64
}

// Activity is an append-only analytics event. Both ids may be present when a
// guest signs in mid-session.
type Activity struct {
	ID          primitive.ObjectID
	UserID      primitive.ObjectID
	GuestID     string
	UserDisplay string
	SessionID   string
	EventType   string
	URL         string
	Element     string
	Data        map[string]interface{}
	DurationMS  *int64
	Meta        map[string]interface{}
	CreatedAt   time.Time
}

func (a *Activity) HasUser() bool {
	return !a.UserID.IsZero()
}

// Timeline holds the first and second all-time activity timestamps of an
// identifier. Zero values mean absent.
type Timeline struct {
	First  time.Time
	Second time.Time
}

type ActivityFilter struct {
	UserID    primitive.ObjectID
	GuestID   string
	EventType string
	Start     time.Time
	End       time.Time
	Limit     int64
	Skip      int64
}

type EventCount struct {
	EventType string
	Count     int64
}

type ActivitySummary struct {
	CountsByType         []EventCount
	UniqueUsers          int64
	AvgSessionDurationMS float64
	SessionSamples       int64
}

type ActivityRepository interface {
	NextID() primitive.ObjectID
	Create(ctx context.Context, activity *Activity) error
	SetLocation(ctx context.Context, id primitive.ObjectID, location Location) error
	HasUserActivity(ctx context.Context, userID primitive.ObjectID) (bool, error)
	HasGuestActivity(ctx context.Context, guestID string) (bool, error)
	Find(ctx context.Context, filter ActivityFilter) ([]Activity, error)
	FindSince(ctx context.Context, since time.Time) ([]Activity, error)
	GuestTimelines(ctx context.Context) (map[string]Timeline, error)
	UserTimelines(ctx context.Context) (map[string]Timeline, error)
	// FindGuestLinks returns activities of the given guests that also carry a user id.
	FindGuestLinks(ctx context.Context, guestIDs []string, limit int64) ([]Activity, error)
	Summary(ctx context.Context) (*ActivitySummary, error)
}
