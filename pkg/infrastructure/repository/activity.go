package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/pkg/domain/model"
)

const defaultActivityLimit = 100

var errActivityNotFound = errors.New("activity not found")

type activityDocument struct {
	ID          primitive.ObjectID     `bson:"_id"`
	UserID      primitive.ObjectID     `bson:"user_id,omitempty"`
	GuestID     string                 `bson:"guest_id,omitempty"`
	UserDisplay string                 `bson:"user_display,omitempty"`
	SessionID   string                 `bson:"session_id,omitempty"`
	EventType   string                 `bson:"event_type"`
	URL         string                 `bson:"url,omitempty"`
	Element     string                 `bson:"element,omitempty"`
	Data        map[string]interface{} `bson:"data"`
	DurationMS  *int64                 `bson:"duration_ms,omitempty"`
	Meta        map[string]interface{} `bson:"meta"`
	CreatedAt   time.Time              `bson:"createdAt"`
}

func (d activityDocument) toModel() model.Activity {
	return model.Activity{
		ID:          d.ID,
		UserID:      d.UserID,
		GuestID:     d.GuestID,
		UserDisplay: d.UserDisplay,
		SessionID:   d.SessionID,
		EventType:   d.EventType,
		URL:         d.URL,
		Element:     d.Element,
		Data:        d.Data,
		DurationMS:  d.DurationMS,
		Meta:        d.Meta,
		CreatedAt:   d.CreatedAt,
	}
}

type locationDocument struct {
	IP        string  `bson:"ip"`
	City      string  `bson:"city"`
	Region    string  `bson:"region"`
	Country   string  `bson:"country"`
	Org       string  `bson:"org"`
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activitiesCollection)}
}

func (r *ActivityRepository) NextID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	doc := activityDocument{
		ID:          activity.ID,
		UserID:      activity.UserID,
		GuestID:     activity.GuestID,
		UserDisplay: activity.UserDisplay,
		SessionID:   activity.SessionID,
		EventType:   activity.EventType,
		URL:         activity.URL,
		Element:     activity.Element,
		Data:        activity.Data,
		DurationMS:  activity.DurationMS,
		Meta:        activity.Meta,
		CreatedAt:   activity.CreatedAt,
	}
	return insertOne(ctx, r.coll, doc, nil)
}

func (r *ActivityRepository) SetLocation(ctx context.Context, id primitive.ObjectID, location model.Location) error {
	doc := locationDocument{
		IP:        location.IP,
		City:      location.City,
		Region:    location.Region,
		Country:   location.Country,
		Org:       location.Org,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"meta.location": doc}}, errActivityNotFound)
}

func (r *ActivityRepository) HasUserActivity(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	return r.exists(ctx, bson.M{"user_id": userID})
}

func (r *ActivityRepository) HasGuestActivity(ctx context.Context, guestID string) (bool, error) {
	return r.exists(ctx, bson.M{"guest_id": guestID})
}

func (r *ActivityRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "failed to count activities")
	}
	return count > 0, nil
}

func (r *ActivityRepository) Find(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["user_id"] = filter.UserID
	}
	if filter.GuestID != "" {
		query["guest_id"] = filter.GuestID
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	createdAt := bson.M{}
	if !filter.Start.IsZero() {
		createdAt["$gte"] = filter.Start
	}
	if !filter.End.IsZero() {
		createdAt["$lte"] = filter.End
	}
	if len(createdAt) > 0 {
		query["createdAt"] = createdAt
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	opts := newestFirst().SetLimit(limit).SetSkip(filter.Skip)
	return findAll(ctx, r.coll, query, activityDocument.toModel, opts)
}

func (r *ActivityRepository) FindSince(ctx context.Context, since time.Time) ([]model.Activity, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": since}}
	return findAll(ctx, r.coll, filter, activityDocument.toModel)
}

func (r *ActivityRepository) GuestTimelines(ctx context.Context) (map[string]model.Timeline, error) {
	type guestTimeline struct {
		ID    string      `bson:"_id"`
		Times []time.Time `bson:"times"`
	}
	docs, err := aggregateTimelines[guestTimeline](ctx, r.coll, "guest_id", bson.M{"$type": "string", "$ne": ""})
	if err != nil {
		return nil, err
	}
	result := make(map[string]model.Timeline, len(docs))
	for _, doc := range docs {
		result[doc.ID] = toTimeline(doc.Times)
	}
	return result, nil
}

func (r *ActivityRepository) UserTimelines(ctx context.Context) (map[string]model.Timeline, error) {
	type userTimeline struct {
		ID    primitive.ObjectID `bson:"_id"`
		Times []time.Time        `bson:"times"`
	}
	docs, err := aggregateTimelines[userTimeline](ctx, r.coll, "user_id", bson.M{"$type": "objectId"})
	if err != nil {
		return nil, err
	}
	result := make(map[string]model.Timeline, len(docs))
	for _, doc := range docs {
		result[doc.ID.Hex()] = toTimeline(doc.Times)
	}
	return result, nil
}

func toTimeline(times []time.Time) model.Timeline {
	var t model.Timeline
	if len(times) > 0 {
		t.First = times[0].UTC()
	}
	if len(times) > 1 {
		t.Second = times[1].UTC()
	}
	return t
}

// aggregateTimelines groups activities by field and keeps the two earliest
// timestamps of each identifier.
func aggregateTimelines[D any](ctx context.Context, coll *mongo.Collection, field string, match bson.M) ([]D, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: match}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"times": bson.M{"$firstN": bson.M{"input": "$createdAt", "n": 2}},
		}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to aggregate %s timelines", field)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s timelines", field)
	}
	return docs, nil
}

func (r *ActivityRepository) FindGuestLinks(ctx context.Context, guestIDs []string, limit int64) ([]model.Activity, error) {
	if len(guestIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"guest_id": bson.M{"$in": guestIDs},
		"user_id":  bson.M{"$exists": true},
	}
	return findAll(ctx, r.coll, filter, activityDocument.toModel, newestFirst().SetLimit(limit))
}

func (r *ActivityRepository) Summary(ctx context.Context) (*model.ActivitySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byType": bson.A{
				bson.M{"$group": bson.M{"_id": "$event_type", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
			},
			"users": bson.A{
				bson.M{"$match": bson.M{"user_id": bson.M{"$exists": true}}},
				bson.M{"$group": bson.M{"_id": "$user_id"}},
				bson.M{"$count": "count"},
			},
			"sessions": bson.A{
				bson.M{"$match": bson.M{
					"event_type":  model.EventSessionEnd,
					"duration_ms": bson.M{"$type": "number"},
				}},
				bson.M{"$group": bson.M{
					"_id":   nil,
					"avg":   bson.M{"$avg": "$duration_ms"},
					"count": bson.M{"$sum": 1},
				}},
			},
		}}},
	}

	var result []struct {
		ByType []struct {
			EventType string `bson:"_id"`
			Count     int64  `bson:"count"`
		} `bson:"byType"`
		Users []struct {
			Count int64 `bson:"count"`
		} `bson:"users"`
		Sessions []struct {
			Avg   float64 `bson:"avg"`
			Count int64   `bson:"count"`
		} `bson:"sessions"`
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate activity summary")
	}
	if err := cur.All(ctx, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode activity summary")
	}

	summary := &model.ActivitySummary{}
	if len(result) == 0 {
		return summary, nil
	}
	facets := result[0]
	for _, t := range facets.ByType {
		summary.CountsByType = append(summary.CountsByType, model.EventCount{EventType: t.EventType, Count: t.Count})
	}
	if len(facets.Users) > 0 {
		summary.UniqueUsers = facets.Users[0].Count
	}
	if len(facets.Sessions) > 0 {
		summary.AvgSessionDurationMS = facets.Sessions[0].Avg
		summary.SessionSamples = facets.Sessions[0].Count
	}
	return summary, nil
}
