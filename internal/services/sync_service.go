package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"cottonwood-backend/internal/cache"
	"cottonwood-backend/internal/metrics"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/shopify"

	"golang.org/x/sync/errgroup"
)

// SyncOptions controls what the sync pulls and how long it may run
type SyncOptions struct {
	MemberTag      string
	ProspectTag    string
	SKUs           []string
	ProductKeyword string
	Timeout        time.Duration
	LockTTL        time.Duration
}

// SyncService mirrors commerce customers and membership orders into the
// member store
type SyncService struct {
	Repo     MemberStore
	Settings *SettingService
	Commerce Commerce
	Options  SyncOptions
	Clock    func() time.Time

	running atomic.Bool
}

func NewSyncService(repo MemberStore, settings *SettingService, commerce Commerce, opts SyncOptions) *SyncService {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * opts.Timeout
	}
	return &SyncService{
		Repo:     repo,
		Settings: settings,
		Commerce: commerce,
		Options:  opts,
		Clock:    time.Now,
	}
}

// Status reports the last successful sync and whether one is running
func (s *SyncService) Status(ctx context.Context) (*models.SyncStatus, error) {
	last, err := s.Settings.LastSyncAt(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SyncStatus{
		LastSyncAt: last,
		InProgress: s.running.Load() || cache.IsLocked(ctx, cache.SyncLockKey),
	}, nil
}

// Sync pulls customers and orders from the commerce platform. A full sync
// re-reads everything and demotes members no longer tagged upstream; an
// incremental sync only reads changes since the last successful run.
func (s *SyncService) Sync(ctx context.Context, full bool) (*models.SyncResult, error) {
	if s.Commerce == nil {
		return nil, ErrCommerceUnavailable
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	token, err := cache.AcquireLock(ctx, cache.SyncLockKey, s.Options.LockTTL)
	switch {
	case errors.Is(err, cache.ErrUnavailable):
		// single instance without Redis; the in-process flag is enough
	case err != nil:
		log.Printf("[Sync] Redis lock unavailable, continuing with local lock: %v", err)
	case token == "":
		return nil, ErrSyncInProgress
	default:
		defer func() {
			if err := cache.ReleaseLock(context.Background(), cache.SyncLockKey, token); err != nil {
				log.Printf("[Sync] Failed to release lock: %v", err)
			}
		}()
	}

	started := s.Clock()
	mode := "incremental"
	if full {
		mode = "full"
	}

	result, err := s.run(ctx, full, started)
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(mode, "failure").Inc()
		log.Printf("[Sync] %s sync failed: %v", mode, err)
		return nil, err
	}
	metrics.SyncRunsTotal.WithLabelValues(mode, "success").Inc()
	log.Printf("[Sync] %s sync complete: %d new, %d updated, %d demoted, %d orders",
		mode, result.NewMembers, result.UpdatedMembers, result.DemotedMembers, result.TotalOrders)
	return result, nil
}

func (s *SyncService) run(parent context.Context, full bool, started time.Time) (*models.SyncResult, error) {
	ctx, cancel := context.WithTimeout(parent, s.Options.Timeout)
	defer cancel()

	var since *time.Time
	if !full {
		last, err := s.Settings.LastSyncAt(ctx)
		if err != nil {
			return nil, err
		}
		if last == nil {
			log.Printf("[Sync] No previous sync recorded, running a full sync")
			full = true
		}
		since = last
	}

	var tagged, prospects []shopify.Customer
	var orders []shopify.Order
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tagged, err = s.Commerce.SearchCustomersByTag(gctx, s.Options.MemberTag, since)
		return err
	})
	if s.Options.ProspectTag != "" {
		g.Go(func() error {
			var err error
			prospects, err = s.Commerce.SearchCustomersByTag(gctx, s.Options.ProspectTag, since)
			return err
		})
	}
	g.Go(func() error {
		var err error
		orders, err = s.Commerce.ListOrders(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, &SyncError{Err: interrupted(ctx)}
		}
		return nil, &SyncError{Err: fmt.Errorf("%w: %v", ErrUpstream, err)}
	}

	snapshots := s.buildSnapshots(append(tagged, prospects...), orders)

	ids := make([]string, 0, len(snapshots))
	for id := range snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &models.SyncResult{Full: full, SyncedAt: started}
	failed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, s.partial(interrupted(ctx), result, failed)
		}
		snap := snapshots[id]
		outcome, err := s.Repo.UpsertSnapshot(ctx, *snap)
		if err != nil {
			if ctx.Err() != nil {
				return nil, s.partial(interrupted(ctx), result, failed)
			}
			failed++
			metrics.SyncedMembersTotal.WithLabelValues("failed").Inc()
			log.Printf("[Sync] Failed to upsert customer %s: %v", id, err)
			continue
		}
		if outcome.Created {
			result.NewMembers++
			metrics.SyncedMembersTotal.WithLabelValues("created").Inc()
		} else {
			result.UpdatedMembers++
			metrics.SyncedMembersTotal.WithLabelValues("updated").Inc()
		}
		result.TotalOrders += len(snap.Orders)
	}

	if failed > 0 {
		return nil, s.partial(fmt.Errorf("%d member upserts failed", failed), result, failed)
	}

	if full {
		keep := make([]string, 0, len(tagged))
		for _, c := range tagged {
			keep = append(keep, c.IDString())
		}
		demoted, err := s.Repo.DemoteMissing(ctx, s.Options.MemberTag, keep)
		if err != nil {
			return nil, s.partial(fmt.Errorf("demote untagged members: %w", err), result, failed)
		}
		result.DemotedMembers = demoted
	}

	if err := s.Settings.SetLastSyncAt(ctx, started); err != nil {
		return nil, s.partial(fmt.Errorf("record sync time: %w", err), result, failed)
	}
	result.Success = true
	return result, nil
}

// interrupted names why ctx ended: its own deadline or the caller
func interrupted(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrSyncTimeout
	}
	return ErrSyncCanceled
}

func (s *SyncService) partial(err error, r *models.SyncResult, failed int) *SyncError {
	return &SyncError{
		Err:            err,
		Processed:      r.NewMembers + r.UpdatedMembers + failed,
		NewMembers:     r.NewMembers,
		UpdatedMembers: r.UpdatedMembers,
		Failed:         failed,
	}
}

// buildSnapshots groups membership orders under their customers. Customers
// seen only through an order are included from the order's embedded record.
func (s *SyncService) buildSnapshots(customers []shopify.Customer, orders []shopify.Order) map[string]*models.MemberSnapshot {
	snapshots := make(map[string]*models.MemberSnapshot)
	add := func(c shopify.Customer) *models.MemberSnapshot {
		id := c.IDString()
		if snap, ok := snapshots[id]; ok {
			return snap
		}
		tags := c.TagList()
		name := c.FullName()
		if name == "" {
			name = c.Email
		}
		snap := &models.MemberSnapshot{
			ShopifyCustomerID: id,
			Email:             c.Email,
			Name:              name,
			Phone:             c.Phone,
			Tags:              tags,
			HasQuackTag:       shopify.HasTag(tags, s.Options.MemberTag),
		}
		snapshots[id] = snap
		return snap
	}

	for _, c := range customers {
		add(c)
	}

	for _, o := range orders {
		if o.CancelledAt != nil || !IsMembershipOrder(o, s.Options.SKUs, s.Options.ProductKeyword) {
			continue
		}
		if o.Customer == nil {
			log.Printf("[Sync] Skipping membership order %s with no customer", o.Name)
			continue
		}
		snap := add(*o.Customer)
		if snap.Email == "" {
			snap.Email = o.Email
		}
		number := o.Name
		if number == "" {
			number = "#" + strconv.Itoa(o.OrderNumber)
		}
		snap.Orders = append(snap.Orders, models.MemberOrder{
			ShopifyOrderID: strconv.FormatInt(o.ID, 10),
			OrderNumber:    number,
			OrderDate:      o.CreatedAt,
		})
	}
	return snapshots
}

// IsMembershipOrder reports whether any line item is a membership product,
// by SKU or by title keyword
func IsMembershipOrder(o shopify.Order, skus []string, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	for _, li := range o.LineItems {
		for _, sku := range skus {
			if li.SKU != "" && strings.EqualFold(li.SKU, sku) {
				return true
			}
		}
		if keyword != "" && strings.Contains(strings.ToLower(li.Title), keyword) {
			return true
		}
	}
	return false
}
