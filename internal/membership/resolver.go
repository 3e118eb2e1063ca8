// Package membership turns stored member records into renewal status, due dates,
// dashboard statistics and roster pages. Everything here is pure: callers pass
// the reference date and policy explicitly.
package membership

import (
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"
)

// Policy holds the configurable status thresholds
type Policy struct {
	// GraceDays is how long after the due date a member stays Overdue before Expired.
	GraceDays int
	// LapsedAfterDays moves untagged, non-overridden members past this many days
	// overdue into Lapsed. Zero disables Lapsed.
	LapsedAfterDays int
}

// DefaultPolicy is a 30 day grace window and Lapsed after a full year overdue
func DefaultPolicy() Policy {
	return Policy{GraceDays: 30, LapsedAfterDays: 365}
}

// Resolution is the derived state of one member on one day
type Resolution struct {
	Status           models.MembershipStatus
	DueDate          *time.Time
	DaysUntilRenewal *int
}

// Resolved pairs a member with its resolution
type Resolved struct {
	Member *models.Member
	Resolution
}

// EffectiveDueDate returns the override when set, otherwise one year after the
// last renewal (or the join date for first-year members). Nil for prospects.
func EffectiveDueDate(m *models.Member) *time.Time {
	if m.JoinDate == nil {
		return nil
	}
	if m.HasOverride && m.RenewalOverrideDate != nil {
		d := dateOnly(*m.RenewalOverrideDate)
		return &d
	}
	anchor := *m.JoinDate
	if m.LastRenewalDate != nil && !m.LastRenewalDate.Before(*m.JoinDate) {
		anchor = *m.LastRenewalDate
	}
	d := timeutil.AddYears(dateOnly(anchor), 1)
	return &d
}

// Enrolled reports whether m's status is computed from its due date: it carries
// the enrollment tag, has renewed at least once, or staff set an override. A
// first-year member whose tag was removed falls back to Prospect.
func Enrolled(m *models.Member) bool {
	return m.HasQuackTag || m.LastRenewalDate != nil || m.HasOverride
}

// Resolve computes status, due date and countdown for m as of today
func Resolve(m *models.Member, today time.Time, p Policy) Resolution {
	due := EffectiveDueDate(m)
	if due == nil || !Enrolled(m) {
		return Resolution{Status: models.StatusProspect}
	}

	days := timeutil.DaysBetween(today, *due)
	res := Resolution{DueDate: due, DaysUntilRenewal: &days}

	switch {
	case days >= 0:
		res.Status = models.StatusActive
	case days >= -p.GraceDays:
		res.Status = models.StatusOverdue
	case p.LapsedAfterDays > 0 && days < -p.LapsedAfterDays && !m.HasQuackTag && !m.HasOverride:
		res.Status = models.StatusLapsed
	default:
		res.Status = models.StatusExpired
	}
	return res
}

// ResolveAll resolves every member against the same reference date
func ResolveAll(members []*models.Member, today time.Time, p Policy) []Resolved {
	out := make([]Resolved, 0, len(members))
	for _, m := range members {
		out = append(out, Resolved{Member: m, Resolution: Resolve(m, today, p)})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
