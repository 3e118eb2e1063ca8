package services

import (
	"context"
	"sync"
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/shopify"
)

// MemberStore is the member record store (PostgreSQL or in-memory)
type MemberStore interface {
	ListAll(ctx context.Context) ([]*models.Member, error)
	Get(ctx context.Context, id string) (*models.Member, error)
	GetMany(ctx context.Context, ids []string) ([]*models.Member, error)
	Update(ctx context.Context, id string, u models.MemberUpdate) (*models.Member, error)
	SetTag(ctx context.Context, id, tag string, tagged bool) (*models.Member, error)
	UpsertSnapshot(ctx context.Context, snap models.MemberSnapshot) (models.UpsertOutcome, error)
	DemoteMissing(ctx context.Context, tag string, keep []string) (int, error)
	TagCounts(ctx context.Context) ([]models.TagCount, error)
}

// ActivityLogStore is the append-only audit trail
type ActivityLogStore interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	List(ctx context.Context, limit int, activityType string) ([]*models.ActivityLog, error)
}

// SettingStore is the key/value settings table
type SettingStore interface {
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	Upsert(ctx context.Context, key, value, description, updatedBy string) error
}

// Commerce is the slice of the Shopify Admin API the services use
type Commerce interface {
	SearchCustomersByTag(ctx context.Context, tag string, updatedSince *time.Time) ([]shopify.Customer, error)
	ListOrders(ctx context.Context, createdSince *time.Time) ([]shopify.Order, error)
	GetCustomer(ctx context.Context, id string) (*shopify.Customer, error)
	SetCustomerTags(ctx context.Context, id string, tags []string) error
}

// keyedMutex serializes work per key (member id)
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
