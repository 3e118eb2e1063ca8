package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/repositories"
	"cottonwood-backend/internal/shopify"
	"cottonwood-backend/internal/timeutil"
)

// fakeCommerce is an in-memory shop
type fakeCommerce struct {
	mu        sync.Mutex
	customers map[string]*shopify.Customer
	orders    []shopify.Order
	setCalls  int
	setErr    error
	fetchErr  error
	block     chan struct{}
	since     []*time.Time
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{customers: make(map[string]*shopify.Customer)}
}

func (f *fakeCommerce) addCustomer(id int64, email, first, last, tags string) *shopify.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &shopify.Customer{ID: id, Email: email, FirstName: first, LastName: last, Tags: tags}
	f.customers[c.IDString()] = c
	return c
}

func (f *fakeCommerce) addOrder(id int64, customer *shopify.Customer, name string, created time.Time, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *customer
	f.orders = append(f.orders, shopify.Order{
		ID:        id,
		Name:      name,
		CreatedAt: created,
		Customer:  &c,
		LineItems: []shopify.LineItem{{Title: title}},
	})
}

func (f *fakeCommerce) SearchCustomersByTag(ctx context.Context, tag string, updatedSince *time.Time) ([]shopify.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.since = append(f.since, updatedSince)
	var out []shopify.Customer
	for _, c := range f.customers {
		if shopify.HasTag(c.TagList(), tag) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommerce) ListOrders(ctx context.Context, createdSince *time.Time) ([]shopify.Order, error) {
	if f.block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.block:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shopify.Order(nil), f.orders...), nil
}

func (f *fakeCommerce) GetCustomer(ctx context.Context, id string) (*shopify.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, &shopify.APIError{StatusCode: 404, Body: "Not Found"}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommerce) SetCustomerTags(ctx context.Context, id string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	c, ok := f.customers[id]
	if !ok {
		return errors.New("unknown customer")
	}
	c.Tags = shopify.JoinTags(tags)
	return nil
}

type testEnv struct {
	members  *MemberService
	store    *repositories.MemoryMemberStore
	logs     *repositories.MemoryActivityLogStore
	settings *SettingService
	commerce *fakeCommerce
}

// fixedNow is 2024-01-05 in the club timezone
var fixedNow = time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryMemberStore()
	logs := repositories.NewMemoryActivityLogStore()
	settings := NewSettingService(repositories.NewMemorySettingStore())
	commerce := newFakeCommerce()

	members := NewMemberService(store, logs, settings, commerce, membership.DefaultPolicy(), "Quack")
	members.Clock = func() time.Time { return fixedNow }
	return &testEnv{members: members, store: store, logs: logs, settings: settings, commerce: commerce}
}

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return &d
}

func (e *testEnv) activity(t *testing.T) []*models.ActivityLog {
	t.Helper()
	entries, err := e.logs.List(context.Background(), 100, "")
	if err != nil {
		t.Fatal(err)
	}
	return entries
}
