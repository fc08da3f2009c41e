package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

var (
	_ model.ProductRepository      = &mockProductRepository{}
	_ model.ReviewRepository       = &mockReviewRepository{}
	_ model.CartRepository         = &mockCartRepository{}
	_ model.WishlistRepository     = &mockWishlistRepository{}
	_ model.OrderRepository        = &mockOrderRepository{}
	_ model.DiscountCodeRepository = &mockDiscountRepository{}
	_ model.UserRepository         = &mockUserRepository{}
	_ model.PendingUserRepository  = &mockPendingUserRepository{}
	_ model.CategoryRepository     = &mockCategoryRepository{}
	_ model.DealRepository         = &mockDealRepository{}
	_ model.ActivityRepository     = &mockActivityRepository{}
	_ model.CampaignRepository     = &mockCampaignRepository{}
	_ model.PasswordManager        = mockPasswordManager{}
	_ model.TokenManager           = mockTokenManager{}
	_ model.MailSender             = &mockMailSender{}
	_ service.Notifier             = &mockNotifier{}
	_ service.TaskQueue            = &syncQueue{}
	_ service.EventDispatcher      = &mockEventDispatcher{}
)

type mockProductRepository struct {
	store map[primitive.ObjectID]*model.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{store: make(map[primitive.ObjectID]*model.Product)}
}

func cloneProduct(p *model.Product) *model.Product {
	clone := *p
	clone.Sizes = append([]model.SizeStock(nil), p.Sizes...)
	return &clone
}

func (m *mockProductRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockProductRepository) Create(_ context.Context, p *model.Product) error {
	m.store[p.ID] = cloneProduct(p)
	return nil
}
func (m *mockProductRepository) Update(_ context.Context, p *model.Product) error {
	if _, ok := m.store[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	m.store[p.ID] = cloneProduct(p)
	return nil
}
func (m *mockProductRepository) Find(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	if p, ok := m.store[id]; ok {
		return cloneProduct(p), nil
	}
	return nil, model.ErrProductNotFound
}
func (m *mockProductRepository) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range m.store {
		if p.Code == code {
			return cloneProduct(p), nil
		}
	}
	return nil, model.ErrProductNotFound
}
func (m *mockProductRepository) FindMany(_ context.Context, ids []primitive.ObjectID) ([]model.Product, error) {
	var result []model.Product
	for _, id := range ids {
		if p, ok := m.store[id]; ok {
			result = append(result, *cloneProduct(p))
		}
	}
	return result, nil
}
func (m *mockProductRepository) FindAll(_ context.Context) ([]model.Product, error) {
	result := make([]model.Product, 0, len(m.store))
	for _, p := range m.store {
		result = append(result, *cloneProduct(p))
	}
	return result, nil
}
func (m *mockProductRepository) FindByCategory(_ context.Context, categoryID primitive.ObjectID) ([]model.Product, error) {
	var result []model.Product
	for _, p := range m.store {
		match := p.Category == categoryID
		for _, sub := range p.Subcategories {
			match = match || sub == categoryID
		}
		if match {
			result = append(result, *cloneProduct(p))
		}
	}
	return result, nil
}
func (m *mockProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}
func (m *mockProductRepository) AdjustStock(_ context.Context, id primitive.ObjectID, size string, delta int) error {
	p, ok := m.store[id]
	if !ok {
		return model.ErrProductNotFound
	}
	if size == "" {
		p.Stock += delta
		return nil
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			p.Sizes[i].Stock += delta
			return nil
		}
	}
	return model.ErrInvalidSize
}
func (m *mockProductRepository) SetRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	p, ok := m.store[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.Rating = rating
	return nil
}

type mockReviewRepository struct {
	reviews []model.Review
}

func (m *mockReviewRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockReviewRepository) Create(_ context.Context, r *model.Review) error {
	m.reviews = append(m.reviews, *r)
	return nil
}
func (m *mockReviewRepository) FindByProduct(_ context.Context, productID primitive.ObjectID) ([]model.Review, error) {
	var result []model.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			result = append(result, r)
		}
	}
	return result, nil
}
func (m *mockReviewRepository) FindByUserAndProduct(_ context.Context, userID, productID primitive.ObjectID) (*model.Review, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.ProductID == productID {
			r := r
			return &r, nil
		}
	}
	return nil, model.ErrReviewNotFound
}
func (m *mockReviewRepository) DeleteByProduct(_ context.Context, productID primitive.ObjectID) error {
	kept := m.reviews[:0]
	for _, r := range m.reviews {
		if r.ProductID != productID {
			kept = append(kept, r)
		}
	}
	m.reviews = kept
	return nil
}

func keyMatches(owner model.Owner, productID primitive.ObjectID, image, size string, key model.ItemKey) bool {
	return owner == key.Owner && productID == key.ProductID && image == key.SelectedImage && size == key.SelectedSize
}

type mockCartRepository struct {
	items     []*model.CartItem
	deleteErr error
}

func (m *mockCartRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockCartRepository) Create(_ context.Context, item *model.CartItem) error {
	clone := *item
	m.items = append(m.items, &clone)
	return nil
}
func (m *mockCartRepository) Update(_ context.Context, item *model.CartItem) error {
	for i, existing := range m.items {
		if existing.ID == item.ID {
			clone := *item
			m.items[i] = &clone
			return nil
		}
	}
	return model.ErrCartItemNotFound
}
func (m *mockCartRepository) FindByKey(_ context.Context, key model.ItemKey) (*model.CartItem, error) {
	for _, item := range m.items {
		if keyMatches(item.Owner, item.ProductID, item.SelectedImage, item.SelectedSize, key) {
			clone := *item
			return &clone, nil
		}
	}
	return nil, model.ErrCartItemNotFound
}
func (m *mockCartRepository) FindByOwner(_ context.Context, owner model.Owner) ([]model.CartItem, error) {
	var result []model.CartItem
	for _, item := range m.items {
		if item.Owner == owner {
			result = append(result, *item)
		}
	}
	return result, nil
}
func (m *mockCartRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return m.remove(func(item *model.CartItem) bool { return item.ID == id })
}
func (m *mockCartRepository) DeleteByOwner(_ context.Context, owner model.Owner) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.remove(func(item *model.CartItem) bool { return item.Owner == owner })
}
func (m *mockCartRepository) DeleteByProduct(_ context.Context, productID primitive.ObjectID) error {
	return m.remove(func(item *model.CartItem) bool { return item.ProductID == productID })
}
func (m *mockCartRepository) remove(match func(*model.CartItem) bool) error {
	kept := m.items[:0]
	for _, item := range m.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

type mockWishlistRepository struct {
	items []model.WishlistItem
}

func (m *mockWishlistRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockWishlistRepository) Create(_ context.Context, item *model.WishlistItem) error {
	m.items = append(m.items, *item)
	return nil
}
func (m *mockWishlistRepository) FindByKey(_ context.Context, key model.ItemKey) (*model.WishlistItem, error) {
	for _, item := range m.items {
		if keyMatches(item.Owner, item.ProductID, item.SelectedImage, item.SelectedSize, key) {
			item := item
			return &item, nil
		}
	}
	return nil, model.ErrWishlistItemNotFound
}
func (m *mockWishlistRepository) FindByOwner(_ context.Context, owner model.Owner) ([]model.WishlistItem, error) {
	var result []model.WishlistItem
	for _, item := range m.items {
		if item.Owner == owner {
			result = append(result, item)
		}
	}
	return result, nil
}
func (m *mockWishlistRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return model.ErrWishlistItemNotFound
}

type mockOrderRepository struct {
	store map[primitive.ObjectID]*model.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{store: make(map[primitive.ObjectID]*model.Order)}
}

func (m *mockOrderRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockOrderRepository) Create(_ context.Context, o *model.Order) error {
	clone := *o
	m.store[o.ID] = &clone
	return nil
}
func (m *mockOrderRepository) Update(_ context.Context, o *model.Order) error {
	if _, ok := m.store[o.ID]; !ok {
		return model.ErrOrderNotFound
	}
	clone := *o
	m.store[o.ID] = &clone
	return nil
}
func (m *mockOrderRepository) Find(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	if o, ok := m.store[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, model.ErrOrderNotFound
}
func (m *mockOrderRepository) FindByOwner(_ context.Context, owner model.Owner) ([]model.Order, error) {
	var result []model.Order
	for _, o := range m.store {
		if o.Owner == owner {
			result = append(result, *o)
		}
	}
	return result, nil
}
func (m *mockOrderRepository) FindAll(_ context.Context) ([]model.Order, error) {
	result := make([]model.Order, 0, len(m.store))
	for _, o := range m.store {
		result = append(result, *o)
	}
	return result, nil
}
func (m *mockOrderRepository) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, o := range m.store {
		if id, ok := o.Owner.UserID(); ok && id == userID {
			n++
		}
	}
	return n, nil
}
func (m *mockOrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.store[id]; !ok {
		return model.ErrOrderNotFound
	}
	delete(m.store, id)
	return nil
}

type mockDiscountRepository struct {
	codes []*model.DiscountCode
}

func (m *mockDiscountRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockDiscountRepository) Create(_ context.Context, d *model.DiscountCode) error {
	clone := *d
	m.codes = append(m.codes, &clone)
	return nil
}
func (m *mockDiscountRepository) Update(_ context.Context, d *model.DiscountCode) error {
	for i, existing := range m.codes {
		if existing.ID == d.ID {
			clone := *d
			m.codes[i] = &clone
			return nil
		}
	}
	return model.ErrDiscountCodeNotFound
}
func (m *mockDiscountRepository) FindByCodeAndEmail(_ context.Context, code, email string) (*model.DiscountCode, error) {
	for _, d := range m.codes {
		if d.Code == code && d.Email == email {
			clone := *d
			return &clone, nil
		}
	}
	return nil, model.ErrDiscountCodeNotFound
}
func (m *mockDiscountRepository) FindActiveByEmail(_ context.Context, email string, now time.Time) (*model.DiscountCode, error) {
	for _, d := range m.codes {
		if d.Email == email && !d.IsUsed && d.ExpiresAt.After(now) {
			clone := *d
			return &clone, nil
		}
	}
	return nil, model.ErrDiscountCodeNotFound
}

type mockUserRepository struct {
	store   map[primitive.ObjectID]*model.User
	findErr error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{store: make(map[primitive.ObjectID]*model.User)}
}

func (m *mockUserRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockUserRepository) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.store {
		if existing.Email == u.Email {
			return model.ErrEmailTaken
		}
	}
	clone := *u
	m.store[u.ID] = &clone
	return nil
}
func (m *mockUserRepository) Update(_ context.Context, u *model.User) error {
	if _, ok := m.store[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	clone := *u
	m.store[u.ID] = &clone
	return nil
}
func (m *mockUserRepository) Find(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	if u, ok := m.store[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, model.ErrUserNotFound
}
func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, model.ErrUserNotFound
}
func (m *mockUserRepository) FindByResetToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	for _, u := range m.store {
		if u.ResetToken == token && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, model.ErrUserNotFound
}
func (m *mockUserRepository) FindMany(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.store[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}
func (m *mockUserRepository) FindAll(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.store))
	for _, u := range m.store {
		result = append(result, *u)
	}
	return result, nil
}
func (m *mockUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}

type mockPendingUserRepository struct {
	store map[primitive.ObjectID]*model.PendingUser
}

func (m *mockPendingUserRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockPendingUserRepository) Create(_ context.Context, u *model.PendingUser) error {
	clone := *u
	m.store[u.ID] = &clone
	return nil
}
func (m *mockPendingUserRepository) Find(_ context.Context, id primitive.ObjectID) (*model.PendingUser, error) {
	if u, ok := m.store[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, model.ErrPendingUserNotFound
}
func (m *mockPendingUserRepository) FindByEmail(_ context.Context, email string) (*model.PendingUser, error) {
	for _, u := range m.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, model.ErrPendingUserNotFound
}
func (m *mockPendingUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}

type mockCategoryRepository struct {
	store map[primitive.ObjectID]*model.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{store: make(map[primitive.ObjectID]*model.Category)}
}

func (m *mockCategoryRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockCategoryRepository) Create(_ context.Context, c *model.Category) error {
	clone := *c
	m.store[c.ID] = &clone
	return nil
}
func (m *mockCategoryRepository) Update(_ context.Context, c *model.Category) error {
	clone := *c
	m.store[c.ID] = &clone
	return nil
}
func (m *mockCategoryRepository) Find(_ context.Context, id primitive.ObjectID) (*model.Category, error) {
	if c, ok := m.store[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, model.ErrCategoryNotFound
}
func (m *mockCategoryRepository) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range m.store {
		if strings.EqualFold(c.Name, name) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, model.ErrCategoryNotFound
}
func (m *mockCategoryRepository) FindAll(_ context.Context) ([]model.Category, error) {
	result := make([]model.Category, 0, len(m.store))
	for _, c := range m.store {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
func (m *mockCategoryRepository) FindChildren(_ context.Context, parentID primitive.ObjectID) ([]model.Category, error) {
	var result []model.Category
	for _, c := range m.store {
		if c.ParentCategory == parentID {
			result = append(result, *c)
		}
	}
	return result, nil
}
func (m *mockCategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}

type mockDealRepository struct {
	store map[primitive.ObjectID]*model.Deal
}

func (m *mockDealRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockDealRepository) Create(_ context.Context, d *model.Deal) error {
	clone := *d
	m.store[d.ID] = &clone
	return nil
}
func (m *mockDealRepository) Update(_ context.Context, d *model.Deal) error {
	clone := *d
	m.store[d.ID] = &clone
	return nil
}
func (m *mockDealRepository) Find(_ context.Context, id primitive.ObjectID) (*model.Deal, error) {
	if d, ok := m.store[id]; ok {
		clone := *d
		return &clone, nil
	}
	return nil, model.ErrDealNotFound
}
func (m *mockDealRepository) FindByCode(_ context.Context, code string) (*model.Deal, error) {
	for _, d := range m.store {
		if d.Code == code {
			clone := *d
			return &clone, nil
		}
	}
	return nil, model.ErrDealNotFound
}
func (m *mockDealRepository) FindActive(_ context.Context, now time.Time, categoryID primitive.ObjectID) ([]model.Deal, error) {
	var result []model.Deal
	for _, d := range m.store {
		if d.ExpiresAt.Before(now) {
			continue
		}
		if !categoryID.IsZero() && d.Category != categoryID {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}
func (m *mockDealRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}

// mockActivityRepository is guarded because report generation reads it from
// several goroutines.
type mockActivityRepository struct {
	mu         sync.Mutex
	activities []model.Activity
	locations  map[primitive.ObjectID]model.Location
	createErr  error
}

func (m *mockActivityRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockActivityRepository) Create(_ context.Context, a *model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.activities = append(m.activities, *a)
	return nil
}
func (m *mockActivityRepository) SetLocation(_ context.Context, id primitive.ObjectID, location model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locations == nil {
		m.locations = map[primitive.ObjectID]model.Location{}
	}
	m.locations[id] = location
	return nil
}
func (m *mockActivityRepository) HasUserActivity(_ context.Context, userID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.activities {
		if a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockActivityRepository) HasGuestActivity(_ context.Context, guestID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.activities {
		if a.GuestID == guestID {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockActivityRepository) Find(_ context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Activity
	for _, a := range m.activities {
		if filter.EventType != "" && a.EventType != filter.EventType {
			continue
		}
		if filter.GuestID != "" && a.GuestID != filter.GuestID {
			continue
		}
		if !filter.UserID.IsZero() && a.UserID != filter.UserID {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}
func (m *mockActivityRepository) FindSince(_ context.Context, since time.Time) ([]model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Activity
	for _, a := range m.activities {
		if !a.CreatedAt.Before(since) {
			result = append(result, a)
		}
	}
	return result, nil
}
func (m *mockActivityRepository) GuestTimelines(_ context.Context) (map[string]model.Timeline, error) {
	return m.timelines(func(a model.Activity) string { return a.GuestID }), nil
}
func (m *mockActivityRepository) UserTimelines(_ context.Context) (map[string]model.Timeline, error) {
	return m.timelines(func(a model.Activity) string {
		if a.UserID.IsZero() {
			return ""
		}
		return a.UserID.Hex()
	}), nil
}
func (m *mockActivityRepository) timelines(key func(model.Activity) string) map[string]model.Timeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	times := map[string][]time.Time{}
	for _, a := range m.activities {
		if k := key(a); k != "" {
			times[k] = append(times[k], a.CreatedAt)
		}
	}
	result := make(map[string]model.Timeline, len(times))
	for k, ts := range times {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		t := model.Timeline{First: ts[0]}
		if len(ts) > 1 {
			t.Second = ts[1]
		}
		result[k] = t
	}
	return result
}
func (m *mockActivityRepository) FindGuestLinks(_ context.Context, guestIDs []string, limit int64) ([]model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range guestIDs {
		wanted[id] = true
	}
	var result []model.Activity
	for _, a := range m.activities {
		if wanted[a.GuestID] && !a.UserID.IsZero() && int64(len(result)) < limit {
			result = append(result, a)
		}
	}
	return result, nil
}
func (m *mockActivityRepository) Summary(_ context.Context) (*model.ActivitySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	users := map[primitive.ObjectID]struct{}{}
	for _, a := range m.activities {
		counts[a.EventType]++
		if !a.UserID.IsZero() {
			users[a.UserID] = struct{}{}
		}
	}
	summary := &model.ActivitySummary{UniqueUsers: int64(len(users))}
	for t, c := range counts {
		summary.CountsByType = append(summary.CountsByType, model.EventCount{EventType: t, Count: c})
	}
	return summary, nil
}

func (m *mockActivityRepository) ofType(eventType string) []model.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Activity
	for _, a := range m.activities {
		if a.EventType == eventType {
			result = append(result, a)
		}
	}
	return result
}

type mockCampaignRepository struct {
	store map[primitive.ObjectID]*model.Campaign
}

func (m *mockCampaignRepository) NextID() primitive.ObjectID { return primitive.NewObjectID() }
func (m *mockCampaignRepository) Create(_ context.Context, c *model.Campaign) error {
	clone := *c
	m.store[c.ID] = &clone
	return nil
}
func (m *mockCampaignRepository) Update(_ context.Context, c *model.Campaign) error {
	clone := *c
	m.store[c.ID] = &clone
	return nil
}
func (m *mockCampaignRepository) Find(_ context.Context, id primitive.ObjectID) (*model.Campaign, error) {
	if c, ok := m.store[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, model.ErrCampaignNotFound
}
func (m *mockCampaignRepository) FindAll(_ context.Context) ([]model.Campaign, error) {
	result := make([]model.Campaign, 0, len(m.store))
	for _, c := range m.store {
		result = append(result, *c)
	}
	return result, nil
}
func (m *mockCampaignRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.store, id)
	return nil
}

type mockPasswordManager struct{}

func (mockPasswordManager) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (mockPasswordManager) Check(hashed, p string) (bool, error) {
	return hashed == "hashed:"+p, nil
}

type mockTokenManager struct{}

func (mockTokenManager) Issue(subject primitive.ObjectID) (string, error) {
	return "token-" + subject.Hex(), nil
}
func (mockTokenManager) Parse(token string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimPrefix(token, "token-"))
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type mockMailSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailSender) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// syncQueue runs tasks inline so their effects are visible right away.
type syncQueue struct {
	names []string
	full  bool
}

func (q *syncQueue) Submit(name string, task func(ctx context.Context) error) bool {
	if q.full {
		return false
	}
	q.names = append(q.names, name)
	_ = task(context.Background())
	return true
}

type mockNotifier struct {
	otps          map[string]string
	discountCodes map[string]string
	resetTokens   map[string]string
	orders        []*model.Order
	campaigns     [][]string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		otps:          map[string]string{},
		discountCodes: map[string]string{},
		resetTokens:   map[string]string{},
	}
}

func (n *mockNotifier) SendOTP(email, otp string) { n.otps[email] = otp }
func (n *mockNotifier) SendDiscountCode(email, code string, _ time.Time) {
	n.discountCodes[email] = code
}
func (n *mockNotifier) SendPasswordReset(email, token string) { n.resetTokens[email] = token }
func (n *mockNotifier) SendOrderConfirmation(order *model.Order, _ map[string]model.Product) {
	n.orders = append(n.orders, order)
}
func (n *mockNotifier) SendCampaign(_ context.Context, _, _ string, recipients []string) error {
	n.campaigns = append(n.campaigns, recipients)
	return nil
}

type mockLocator struct {
	location model.Location
}

func (l *mockLocator) Locate(_ context.Context, ip string) (*model.Location, error) {
	location := l.location
	location.IP = ip
	return &location, nil
}

type mockEventDispatcher struct {
	events []service.Event
	err    error
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return m.err
}
func (m *mockEventDispatcher) Reset() {
	m.events = nil
}

func (m *mockEventDispatcher) ofType(eventType string) []service.Event {
	var result []service.Event
	for _, e := range m.events {
		if e.Type() == eventType {
			result = append(result, e)
		}
	}
	return result
}
