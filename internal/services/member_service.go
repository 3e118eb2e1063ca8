package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cottonwood-backend/internal/cache"
	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/metrics"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/repositories"
	"cottonwood-backend/internal/timeutil"
)

// MaxNotesLength bounds staff notes
const MaxNotesLength = 5000

// MaxOverrideYears is how far from today an override date may be set
const MaxOverrideYears = 100

// tagSearchTTL is how long live tag search results are cached
const tagSearchTTL = 5 * time.Minute

type MemberService struct {
	Repo         MemberStore
	ActivityLogs ActivityLogStore
	Settings     *SettingService
	Commerce     Commerce
	Policy       membership.Policy
	MemberTag    string
	Clock        func() time.Time

	locks *keyedMutex
}

// NewMemberService wires the roster operations. commerce may be nil, in which
// case tag changes are applied locally only and live tag search is unavailable.
func NewMemberService(repo MemberStore, logs ActivityLogStore, settings *SettingService, commerce Commerce, policy membership.Policy, memberTag string) *MemberService {
	return &MemberService{
		Repo:         repo,
		ActivityLogs: logs,
		Settings:     settings,
		Commerce:     commerce,
		Policy:       policy,
		MemberTag:    memberTag,
		Clock:        timeutil.Now,
		locks:        newKeyedMutex(),
	}
}

// Today is the reference calendar date for status resolution
func (s *MemberService) Today() time.Time {
	return timeutil.DateOf(s.Clock())
}

// Roster resolves every stored member against today
func (s *MemberService) Roster(ctx context.Context) ([]membership.Resolved, error) {
	members, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	return membership.ResolveAll(members, s.Today(), s.Policy), nil
}

// ListMembers returns one filtered page of the roster
func (s *MemberService) ListMembers(ctx context.Context, f membership.Filter, page, pageSize int) (*models.MemberListResponse, error) {
	all, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	p := membership.Query(all, f, page, pageSize)

	resp := &models.MemberListResponse{
		Members:    make([]models.MemberSummary, 0, len(p.Members)),
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
	for _, r := range p.Members {
		resp.Members = append(resp.Members, membership.ToSummary(r))
	}
	return resp, nil
}

// GetMember returns one member with its order history
func (s *MemberService) GetMember(ctx context.Context, id string) (*models.MemberResponse, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(m), nil
}

// UpdateMember applies notes and override edits atomically and returns the
// freshly resolved member
func (s *MemberService) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.MemberResponse, error) {
	update, err := validateUpdate(req, s.Today())
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	m, err := s.Repo.Update(ctx, id, update)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	log.Printf("[Members] Updated member %s (notes=%t override=%t clear=%t)",
		id, update.Notes != nil, update.OverrideDate != nil, update.ClearOverride)
	return s.respond(m), nil
}

func validateUpdate(req *models.UpdateMemberRequest, today time.Time) (models.MemberUpdate, error) {
	var u models.MemberUpdate
	if req == nil {
		return u, invalid("", "request body is required")
	}
	if req.Notes != nil {
		if len(*req.Notes) > MaxNotesLength {
			return u, invalid("notes", fmt.Sprintf("must be at most %d characters", MaxNotesLength))
		}
		u.Notes = req.Notes
	}

	override := ""
	if req.RenewalOverrideDate != nil {
		override = strings.TrimSpace(*req.RenewalOverrideDate)
	}
	if override != "" && req.ClearOverride {
		return u, invalid("renewalOverrideDate", "cannot set and clear the override in one request")
	}
	if override != "" {
		d, err := timeutil.ParseDate(override)
		if err != nil {
			return u, invalid("renewalOverrideDate", "must be a date in YYYY-MM-DD format")
		}
		if d.Before(today.AddDate(-MaxOverrideYears, 0, 0)) || d.After(today.AddDate(MaxOverrideYears, 0, 0)) {
			return u, invalid("renewalOverrideDate", fmt.Sprintf("must be within %d years of today", MaxOverrideYears))
		}
		u.OverrideDate = &d
	}
	u.ClearOverride = req.ClearOverride
	return u, nil
}

// AddTag enrolls the member by adding the membership tag
func (s *MemberService) AddTag(ctx context.Context, id string) (*models.TagMutationResponse, error) {
	return s.setTag(ctx, id, true)
}

// RemoveTag un-enrolls the member by removing the membership tag
func (s *MemberService) RemoveTag(ctx context.Context, id string) (*models.TagMutationResponse, error) {
	return s.setTag(ctx, id, false)
}

func (s *MemberService) setTag(ctx context.Context, id string, tagged bool) (*models.TagMutationResponse, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.HasQuackTag == tagged {
		msg := fmt.Sprintf("%s already has the %s tag", m.Name, s.MemberTag)
		if !tagged {
			msg = fmt.Sprintf("%s does not have the %s tag", m.Name, s.MemberTag)
		}
		return &models.TagMutationResponse{Success: true, Message: msg}, nil
	}

	if s.Commerce != nil && m.ShopifyCustomerID != "" {
		if err := s.pushTag(ctx, m.ShopifyCustomerID, tagged); err != nil {
			log.Printf("[Members] Failed to update tags for customer %s: %v", m.ShopifyCustomerID, err)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	if _, err := s.Repo.SetTag(ctx, id, s.MemberTag, tagged); err != nil {
		return nil, fmt.Errorf("failed to store tag change: %w", err)
	}

	action, activity, msg := "add", models.ActivityTagAdded, fmt.Sprintf("Added %s tag to %s", s.MemberTag, m.Name)
	if !tagged {
		action, activity, msg = "remove", models.ActivityTagRemoved, fmt.Sprintf("Removed %s tag from %s", s.MemberTag, m.Name)
	}
	s.recordActivity(ctx, activity, msg, m)
	metrics.TagChangesTotal.WithLabelValues(action).Inc()
	cache.InvalidatePattern(ctx, cache.TagSearchPattern)

	log.Printf("[Members] %s", msg)
	return &models.TagMutationResponse{Success: true, Message: msg}, nil
}

// pushTag rewrites the customer's upstream tag list from its current value
func (s *MemberService) pushTag(ctx context.Context, customerID string, tagged bool) error {
	customer, err := s.Commerce.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	tags := customer.TagList()
	next := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if strings.EqualFold(t, s.MemberTag) {
			found = true
			if !tagged {
				continue
			}
		}
		next = append(next, t)
	}
	if tagged && !found {
		next = append(next, s.MemberTag)
	}
	return s.Commerce.SetCustomerTags(ctx, customerID, next)
}

func (s *MemberService) recordActivity(ctx context.Context, activityType, description string, m *models.Member) {
	entry := &models.ActivityLog{ActivityType: activityType, Description: description}
	if m != nil {
		name, email := m.Name, m.Email
		entry.MemberName = &name
		entry.MemberEmail = &email
	}
	if err := s.ActivityLogs.Create(ctx, entry); err != nil {
		log.Printf("[Members] Failed to write activity log (%s): %v", activityType, err)
	}
}

// Stats computes the dashboard counters
func (s *MemberService) Stats(ctx context.Context) (*models.ClubStats, error) {
	all, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := s.Settings.LastSyncAt(ctx)
	if err != nil {
		log.Printf("[Members] Failed to read last sync time: %v", err)
	}
	stats := membership.ComputeStats(all, s.Today(), lastSync)
	return &stats, nil
}

// Forecast returns the 16 month renewal forecast
func (s *MemberService) Forecast(ctx context.Context) ([]models.ForecastMonth, error) {
	all, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	return membership.Forecast(all, s.Today()), nil
}

// TagCounts aggregates tags over stored members
func (s *MemberService) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	return s.Repo.TagCounts(ctx)
}

// SearchCustomersByTag runs a live commerce search, cached briefly in Redis
func (s *MemberService) SearchCustomersByTag(ctx context.Context, tag string) ([]models.TaggedCustomer, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, invalid("tag", "is required")
	}
	if s.Commerce == nil {
		return nil, ErrCommerceUnavailable
	}

	key := fmt.Sprintf(cache.TagSearchKeyFmt, strings.ToLower(tag))
	if data, ok := cache.GetCached(ctx, key); ok {
		var cached []models.TaggedCustomer
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	customers, err := s.Commerce.SearchCustomersByTag(ctx, tag, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	out := make([]models.TaggedCustomer, 0, len(customers))
	for _, c := range customers {
		out = append(out, models.TaggedCustomer{
			ID:          c.IDString(),
			Email:       c.Email,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Tags:        c.TagList(),
			OrdersCount: c.OrdersCount,
			TotalSpent:  c.TotalSpent,
		})
	}
	if data, err := json.Marshal(out); err == nil {
		cache.SetCached(ctx, key, data, tagSearchTTL)
	}
	return out, nil
}

func (s *MemberService) get(ctx context.Context, id string) (*models.Member, error) {
	m, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	return m, nil
}

func (s *MemberService) respond(m *models.Member) *models.MemberResponse {
	r := membership.Resolved{Member: m, Resolution: membership.Resolve(m, s.Today(), s.Policy)}
	resp := membership.ToResponse(r)
	return &resp
}
