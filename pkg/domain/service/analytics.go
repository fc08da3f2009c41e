package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"storefront/pkg/domain/model"
	"storefront/pkg/useragent"
)

const (
	weeklyWindow      = 7 * 24 * time.Hour
	monthlyWindow     = 365 * 24 * time.Hour
	weeklySampleLimit = 200
	guestLinkLimit    = 500
)

var checkoutURLPattern = regexp.MustCompile(`cashout|checkout|payment`)

type EventInput struct {
	EventType   string
	UserID      primitive.ObjectID
	GuestID     string
	SessionID   string
	UserDisplay string
	URL         string
	Element     string
	Data        map[string]interface{}
	Meta        map[string]interface{}
	DurationMS  *int64
}

type UserRef struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type EventCounts struct {
	AddToCart   int `json:"add_to_cart"`
	OrderPlaced int `json:"order_placed"`
	PageView    int `json:"page_view"`
}

func (c *EventCounts) add(eventType string) {
	switch eventType {
	case model.EventAddToCart:
		c.AddToCart++
	case model.EventOrderPlaced:
		c.OrderPlaced++
	case model.EventPageView:
		c.PageView++
	}
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type WeeklyGuests struct {
	UniqueCount    int                `json:"unique_count"`
	ReturningCount int                `json:"returning_count"`
	UniqueIDs      []string           `json:"unique_ids"`
	ReturningIDs   []string           `json:"returning_ids"`
	UserMap        map[string]UserRef `json:"user_map"`
	Breakdown      struct {
		Unique    EventCounts `json:"unique"`
		Returning EventCounts `json:"visitors"`
	} `json:"breakdown"`
}

type WeeklyRegistered struct {
	ActiveCount    int                `json:"active_count"`
	NewCount       int                `json:"new_count"`
	ReturningCount int                `json:"returning_count"`
	NewIDs         []string           `json:"new_ids"`
	ReturningIDs   []string           `json:"returning_ids"`
	UserMap        map[string]UserRef `json:"user_map"`
	Breakdown      struct {
		New       EventCounts `json:"new"`
		Returning EventCounts `json:"returning"`
	} `json:"breakdown"`
}

type WeeklyReport struct {
	Period     Period           `json:"period"`
	Guests     WeeklyGuests     `json:"guests"`
	Registered WeeklyRegistered `json:"registered"`
}

type MonthBreakdown struct {
	UniqueGuests           int      `json:"unique_guests"`
	ReturningGuests        int      `json:"returning_guests"`
	RegisteredNew          int      `json:"registered_new"`
	RegisteredReturning    int      `json:"registered_returning"`
	UniqueGuestIDs         []string `json:"unique_guest_ids"`
	ReturningGuestIDs      []string `json:"returning_guest_ids"`
	RegisteredNewIDs       []string `json:"registered_new_ids"`
	RegisteredReturningIDs []string `json:"registered_returning_ids"`
	EventCounts
	Cohorts struct {
		Unique              EventCounts `json:"unique"`
		Returning           EventCounts `json:"returning"`
		RegisteredNew       EventCounts `json:"registered_new"`
		RegisteredReturning EventCounts `json:"registered_returning"`
	} `json:"cohorts"`
}

type MonthlyReport struct {
	Breakdown map[string]*MonthBreakdown `json:"breakdown"`
	UserMap   map[string]UserRef         `json:"user_map"`
}

type AnalyticsService interface {
	LogEvent(ctx context.Context, input EventInput, client Client) (*model.Activity, error)
	// Track records a server-side activity. Failures are logged, never returned.
	Track(ctx context.Context, activity *model.Activity, client Client)
	Events(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error)
	Summary(ctx context.Context) (*model.ActivitySummary, error)
	Weekly(ctx context.Context, now time.Time) (*WeeklyReport, error)
	Monthly(ctx context.Context, now time.Time) (*MonthlyReport, error)
}

func NewAnalyticsService(
	activities model.ActivityRepository,
	users model.UserRepository,
	carts model.CartRepository,
	products model.ProductRepository,
	locator Locator,
	queue TaskQueue,
) AnalyticsService {
	return &analyticsService{
		activities: activities,
		users:      users,
		carts:      carts,
		products:   products,
		locator:    locator,
		queue:      queue,
	}
}

type analyticsService struct {
	activities model.ActivityRepository
	users      model.UserRepository
	carts      model.CartRepository
	products   model.ProductRepository
	locator    Locator
	queue      TaskQueue
}

func (s *analyticsService) LogEvent(ctx context.Context, input EventInput, client Client) (*model.Activity, error) {
	if strings.TrimSpace(input.EventType) == "" {
		return nil, model.ErrEventTypeRequired
	}

	activity := &model.Activity{
		UserID:      input.UserID,
		GuestID:     input.GuestID,
		UserDisplay: input.UserDisplay,
		SessionID:   input.SessionID,
		EventType:   input.EventType,
		URL:         input.URL,
		Element:     input.Element,
		Data:        copyMap(input.Data),
		Meta:        copyMap(input.Meta),
		DurationMS:  input.DurationMS,
	}

	if activity.EventType == model.EventPageView {
		s.annotatePageView(ctx, activity)
	}

	if err := s.record(ctx, activity, client); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *analyticsService) Track(ctx context.Context, activity *model.Activity, client Client) {
	if err := s.record(ctx, activity, client); err != nil {
		log.WithError(err).WithField("eventType", activity.EventType).Warn("failed to record activity")
	}
}

func (s *analyticsService) record(ctx context.Context, activity *model.Activity, client Client) error {
	if activity.Data == nil {
		activity.Data = map[string]interface{}{}
	}
	if activity.Meta == nil {
		activity.Meta = map[string]interface{}{}
	}
	enrichMeta(activity.Meta, client)

	activity.ID = s.activities.NextID()
	activity.CreatedAt = time.Now().UTC()
	if err := s.activities.Create(ctx, activity); err != nil {
		return err
	}

	if client.IP != "" && s.locator != nil {
		id, ip := activity.ID, client.IP
		s.queue.Submit("analytics.geo", func(ctx context.Context) error {
			location, err := s.locator.Locate(ctx, ip)
			if err != nil {
				return err
			}
			return s.activities.SetLocation(ctx, id, *location)
		})
	}
	return nil
}

func (s *analyticsService) annotatePageView(ctx context.Context, activity *model.Activity) {
	var owner model.Owner
	switch {
	case activity.HasUser():
		owner = model.RegisteredOwner(activity.UserID)
	case activity.GuestID != "":
		owner = model.GuestOwner(activity.GuestID)
	default:
		return
	}

	if checkoutURLPattern.MatchString(strings.ToLower(activity.URL)) {
		lines, err := loadCartLines(ctx, s.carts, s.products, owner)
		if err != nil {
			log.WithError(err).Warn("failed to attach cart snapshot")
		} else if len(lines) > 0 {
			activity.Data["cart_snapshot"] = cartSnapshot(lines)
		}
	}

	var seen bool
	var err error
	if activity.HasUser() {
		seen, err = s.activities.HasUserActivity(ctx, activity.UserID)
	} else {
		seen, err = s.activities.HasGuestActivity(ctx, activity.GuestID)
	}
	if err != nil {
		log.WithError(err).Warn("failed to check first visit")
		return
	}
	if !seen {
		activity.Meta["first_visit"] = true
	}
}

func (s *analyticsService) Events(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	return s.activities.Find(ctx, filter)
}

func (s *analyticsService) Summary(ctx context.Context) (*model.ActivitySummary, error) {
	return s.activities.Summary(ctx)
}

type timelines struct {
	guests map[string]model.Timeline
	users  map[string]model.Timeline
	events []model.Activity
}

func (s *analyticsService) loadTimelines(ctx context.Context, since time.Time) (*timelines, error) {
	t := &timelines{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.guests, err = s.activities.GuestTimelines(gctx)
		return err
	})
	g.Go(func() (err error) {
		t.users, err = s.activities.UserTimelines(gctx)
		return err
	})
	g.Go(func() (err error) {
		t.events, err = s.activities.FindSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *analyticsService) Weekly(ctx context.Context, now time.Time) (*WeeklyReport, error) {
	end := now.UTC()
	start := end.Add(-weeklyWindow)

	t, err := s.loadTimelines(ctx, start)
	if err != nil {
		return nil, err
	}

	guestSet, userSet := map[string]struct{}{}, map[string]struct{}{}
	var inWindow []model.Activity
	for _, a := range t.events {
		if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
			continue
		}
		inWindow = append(inWindow, a)
		if a.GuestID != "" {
			guestSet[a.GuestID] = struct{}{}
		}
		if a.HasUser() {
			userSet[a.UserID.Hex()] = struct{}{}
		}
	}

	report := &WeeklyReport{Period: Period{Start: start, End: end}}
	report.Guests.UniqueIDs, report.Guests.ReturningIDs = []string{}, []string{}
	report.Registered.NewIDs, report.Registered.ReturningIDs = []string{}, []string{}

	for _, gid := range sortedKeys(guestSet) {
		switch model.Classify(t.guests[gid], start, end) {
		case model.CohortNew:
			report.Guests.UniqueCount++
			report.Guests.UniqueIDs = appendCapped(report.Guests.UniqueIDs, gid, weeklySampleLimit)
		case model.CohortReturning:
			report.Guests.ReturningCount++
			report.Guests.ReturningIDs = appendCapped(report.Guests.ReturningIDs, gid, weeklySampleLimit)
		}
	}

	report.Registered.ActiveCount = len(userSet)
	for _, uid := range sortedKeys(userSet) {
		switch model.Classify(t.users[uid], start, end) {
		case model.CohortNew:
			report.Registered.NewCount++
			report.Registered.NewIDs = appendCapped(report.Registered.NewIDs, uid, weeklySampleLimit)
		case model.CohortReturning:
			report.Registered.ReturningCount++
			report.Registered.ReturningIDs = appendCapped(report.Registered.ReturningIDs, uid, weeklySampleLimit)
		}
	}

	for _, a := range inWindow {
		if a.HasUser() {
			switch model.Classify(t.users[a.UserID.Hex()], start, end) {
			case model.CohortNew:
				report.Registered.Breakdown.New.add(a.EventType)
			case model.CohortReturning:
				report.Registered.Breakdown.Returning.add(a.EventType)
			}
			continue
		}
		if a.GuestID != "" {
			switch model.Classify(t.guests[a.GuestID], start, end) {
			case model.CohortNew:
				report.Guests.Breakdown.Unique.add(a.EventType)
			case model.CohortReturning:
				report.Guests.Breakdown.Returning.add(a.EventType)
			}
		}
	}

	sampled := append(append([]string{}, report.Guests.UniqueIDs...), report.Guests.ReturningIDs...)
	report.Guests.UserMap = s.guestUserMap(ctx, sampled)
	report.Registered.UserMap = s.userMap(ctx, append(append([]string{}, report.Registered.NewIDs...), report.Registered.ReturningIDs...))
	return report, nil
}

func (s *analyticsService) Monthly(ctx context.Context, now time.Time) (*MonthlyReport, error) {
	start := now.UTC().Add(-monthlyWindow)

	t, err := s.loadTimelines(ctx, start)
	if err != nil {
		return nil, err
	}

	type month struct {
		start, end time.Time
		guests     map[string]struct{}
		users      map[string]struct{}
		events     []model.Activity
	}
	months := map[string]*month{}
	for _, a := range t.events {
		created := a.CreatedAt.UTC()
		key := created.Format("2006-01")
		m, ok := months[key]
		if !ok {
			monthStart := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
			m = &month{
				start:  monthStart,
				end:    monthStart.AddDate(0, 1, 0),
				guests: map[string]struct{}{},
				users:  map[string]struct{}{},
			}
			months[key] = m
		}
		m.events = append(m.events, a)
		if a.GuestID != "" {
			m.guests[a.GuestID] = struct{}{}
		}
		if a.HasUser() {
			m.users[a.UserID.Hex()] = struct{}{}
		}
	}

	report := &MonthlyReport{Breakdown: make(map[string]*MonthBreakdown, len(months))}
	registered := map[string]struct{}{}
	for key, m := range months {
		b := &MonthBreakdown{
			UniqueGuestIDs:         []string{},
			ReturningGuestIDs:      []string{},
			RegisteredNewIDs:       []string{},
			RegisteredReturningIDs: []string{},
		}
		for _, gid := range sortedKeys(m.guests) {
			switch model.Classify(t.guests[gid], m.start, m.end) {
			case model.CohortNew:
				b.UniqueGuests++
				b.UniqueGuestIDs = append(b.UniqueGuestIDs, gid)
			case model.CohortReturning:
				b.ReturningGuests++
				b.ReturningGuestIDs = append(b.ReturningGuestIDs, gid)
			}
		}
		for _, uid := range sortedKeys(m.users) {
			switch model.Classify(t.users[uid], m.start, m.end) {
			case model.CohortNew:
				b.RegisteredNew++
				b.RegisteredNewIDs = append(b.RegisteredNewIDs, uid)
				registered[uid] = struct{}{}
			case model.CohortReturning:
				b.RegisteredReturning++
				b.RegisteredReturningIDs = append(b.RegisteredReturningIDs, uid)
				registered[uid] = struct{}{}
			}
		}
		for _, a := range m.events {
			b.EventCounts.add(a.EventType)
			if a.HasUser() {
				switch model.Classify(t.users[a.UserID.Hex()], m.start, m.end) {
				case model.CohortNew:
					b.Cohorts.RegisteredNew.add(a.EventType)
				case model.CohortReturning:
					b.Cohorts.RegisteredReturning.add(a.EventType)
				}
				continue
			}
			if a.GuestID != "" {
				switch model.Classify(t.guests[a.GuestID], m.start, m.end) {
				case model.CohortNew:
					b.Cohorts.Unique.add(a.EventType)
				case model.CohortReturning:
					b.Cohorts.Returning.add(a.EventType)
				}
			}
		}
		report.Breakdown[key] = b
	}

	report.UserMap = s.userMap(ctx, sortedKeys(registered))
	return report, nil
}

// userMap resolves registered ids to usernames. Lookup failures yield an
// empty map.
func (s *analyticsService) userMap(ctx context.Context, hexIDs []string) map[string]UserRef {
	result := map[string]UserRef{}
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		if id, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return result
	}
	users, err := s.users.FindMany(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("failed to load users for analytics")
		return result
	}
	for _, u := range users {
		result[u.ID.Hex()] = UserRef{Username: u.Username, Email: u.Email}
	}
	return result
}

// guestUserMap links sampled guests to the accounts they later signed in with.
func (s *analyticsService) guestUserMap(ctx context.Context, guestIDs []string) map[string]UserRef {
	result := map[string]UserRef{}
	if len(guestIDs) == 0 {
		return result
	}
	links, err := s.activities.FindGuestLinks(ctx, guestIDs, guestLinkLimit)
	if err != nil {
		log.WithError(err).Warn("failed to load guest links")
		return result
	}

	userIDs := map[string]struct{}{}
	for _, a := range links {
		userIDs[a.UserID.Hex()] = struct{}{}
	}
	users := s.userMap(ctx, sortedKeys(userIDs))
	for _, a := range links {
		uid := a.UserID.Hex()
		if ref, ok := users[uid]; ok {
			result[a.GuestID] = ref
		} else {
			result[a.GuestID] = UserRef{UserID: uid}
		}
	}
	return result
}

func enrichMeta(meta map[string]interface{}, client Client) {
	if client.IP != "" {
		meta["ip"] = client.IP
	}
	if client.UserAgent == "" {
		return
	}
	info := useragent.Parse(client.UserAgent)
	setIfAbsent(meta, "ua", info.UA)
	setIfAbsent(meta, "os_name", info.OSName)
	setIfAbsent(meta, "os_version", info.OSVersion)
	setIfAbsent(meta, "device_model", info.DeviceModel)
	setIfAbsent(meta, "device_type", info.DeviceType)
}

func setIfAbsent(m map[string]interface{}, key, value string) {
	if value == "" {
		return
	}
	if existing, ok := m[key]; ok && existing != nil && existing != "" {
		return
	}
	m[key] = value
}

func cartSnapshot(lines []CartLine) []map[string]interface{} {
	snapshot := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		entry := map[string]interface{}{
			"_id":            line.Item.ID.Hex(),
			"product_id":     line.Item.ProductID.Hex(),
			"selected_image": line.Item.SelectedImage,
			"selected_size":  line.Item.SelectedSize,
			"quantity":       line.Item.Quantity,
		}
		if line.Product != nil {
			entry["product_name"] = line.Product.Name
			entry["price"] = line.Product.Price().InexactFloat64()
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot
}

func copyMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func appendCapped(ids []string, id string, limit int) []string {
	if len(ids) >= limit {
		return ids
	}
	return append(ids, id)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
