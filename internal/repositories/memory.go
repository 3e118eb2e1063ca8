package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryMemberStore is a thread-safe in-memory member store with the same
// semantics as MemberRepository. Used by tests and the -store=memory dev mode.
type MemoryMemberStore struct {
	mu      sync.RWMutex
	members map[string]*models.Member
	now     func() time.Time
}

func NewMemoryMemberStore() *MemoryMemberStore {
	return &MemoryMemberStore{
		members: make(map[string]*models.Member),
		now:     time.Now,
	}
}

// Put stores a copy of m, assigning an id when empty. Used to seed data.
func (s *MemoryMemberStore) Put(m *models.Member) *models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneMember(m)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Email = strings.ToLower(c.Email)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.UpdatedAt = s.now()
	s.members[c.ID] = c
	return cloneMember(c)
}

func (s *MemoryMemberStore) ListAll(ctx context.Context) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, cloneMember(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryMemberStore) Get(ctx context.Context, id string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneMember(m), nil
}

func (s *MemoryMemberStore) GetMany(ctx context.Context, ids []string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Member
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, cloneMember(m))
		}
	}
	return out, nil
}

func (s *MemoryMemberStore) Update(ctx context.Context, id string, u models.MemberUpdate) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Notes != nil {
		m.Notes = *u.Notes
	}
	switch {
	case u.ClearOverride:
		m.HasOverride = false
		m.RenewalOverrideDate = nil
	case u.OverrideDate != nil:
		d := *u.OverrideDate
		m.HasOverride = true
		m.RenewalOverrideDate = &d
	}
	m.UpdatedAt = s.now()
	return cloneMember(m), nil
}

func (s *MemoryMemberStore) SetTag(ctx context.Context, id, tag string, tagged bool) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.HasQuackTag = tagged
	m.Tags = withTag(m.Tags, tag, tagged)
	m.UpdatedAt = s.now()
	return cloneMember(m), nil
}

func (s *MemoryMemberStore) UpsertSnapshot(ctx context.Context, snap models.MemberSnapshot) (models.UpsertOutcome, error) {
	var out models.UpsertOutcome
	email := strings.ToLower(strings.TrimSpace(snap.Email))
	if email == "" {
		return out, fmt.Errorf("customer %s has no email", snap.ShopifyCustomerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var m *models.Member
	for _, existing := range s.members {
		if snap.ShopifyCustomerID != "" && existing.ShopifyCustomerID == snap.ShopifyCustomerID {
			m = existing
			break
		}
		if existing.Email == email {
			m = existing
		}
	}
	if m == nil {
		m = &models.Member{ID: uuid.NewString(), CreatedAt: s.now()}
		s.members[m.ID] = m
		out.Created = true
	}
	out.MemberID = m.ID

	orders, join, lastRenewal := membership.NormalizeOrders(membership.MergeOrders(m.Orders, snap.Orders))
	if snap.ShopifyCustomerID != "" {
		m.ShopifyCustomerID = snap.ShopifyCustomerID
	}
	if !s.emailTaken(email, m.ID) {
		m.Email = email
	}
	m.Name = snap.Name
	m.Phone = snap.Phone
	m.Tags = append([]string{}, snap.Tags...)
	m.HasQuackTag = snap.HasQuackTag
	m.Orders = orders
	m.JoinDate = join
	m.LastRenewalDate = lastRenewal
	m.LastOrderNumber = membership.LastOrderNumber(orders)
	m.UpdatedAt = s.now()
	return out, nil
}

// emailTaken reports whether a member other than id uses email. Callers hold s.mu.
func (s *MemoryMemberStore) emailTaken(email, id string) bool {
	for _, other := range s.members {
		if other.ID != id && other.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryMemberStore) DemoteMissing(ctx context.Context, tag string, keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	demoted := 0
	for _, m := range s.members {
		if m.HasQuackTag && (m.ShopifyCustomerID == "" || !keepSet[m.ShopifyCustomerID]) {
			m.HasQuackTag = false
			m.Tags = withTag(m.Tags, tag, false)
			m.UpdatedAt = s.now()
			demoted++
		}
	}
	return demoted, nil
}

func (s *MemoryMemberStore) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, m := range s.members {
		for _, t := range m.Tags {
			counts[t]++
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// MemoryActivityLogStore is an append-only in-memory activity log
type MemoryActivityLogStore struct {
	mu      sync.RWMutex
	entries []*models.ActivityLog
	now     func() time.Time
}

func NewMemoryActivityLogStore() *MemoryActivityLogStore {
	return &MemoryActivityLogStore{now: time.Now}
}

func (s *MemoryActivityLogStore) Create(ctx context.Context, log *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = uuid.NewString()
	log.CreatedAt = s.now()
	c := *log
	s.entries = append(s.entries, &c)
	return nil
}

func (s *MemoryActivityLogStore) List(ctx context.Context, limit int, activityType string) ([]*models.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.ActivityLog{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if activityType != "" && e.ActivityType != activityType {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

// MemorySettingStore is an in-memory key/value settings table
type MemorySettingStore struct {
	mu       sync.RWMutex
	settings map[string]models.SystemSetting
}

func NewMemorySettingStore() *MemorySettingStore {
	return &MemorySettingStore{settings: make(map[string]models.SystemSetting)}
}

func (s *MemorySettingStore) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemorySettingStore) Upsert(ctx context.Context, key, value, description, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = models.SystemSetting{
		SettingKey:   key,
		SettingValue: value,
		Description:  description,
		UpdatedAt:    time.Now(),
		UpdatedBy:    updatedBy,
	}
	return nil
}

func withTag(tags []string, tag string, present bool) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			if !present {
				continue
			}
		}
		out = append(out, t)
	}
	if present && !found {
		out = append(out, tag)
	}
	return out
}

func cloneMember(m *models.Member) *models.Member {
	c := *m
	c.Tags = append([]string(nil), m.Tags...)
	if m.Orders != nil {
		c.Orders = append([]models.MemberOrder(nil), m.Orders...)
	}
	for _, p := range []**time.Time{&c.JoinDate, &c.LastRenewalDate, &c.RenewalOverrideDate} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return &c
}
