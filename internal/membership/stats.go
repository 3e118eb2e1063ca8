package membership

import (
	"sort"
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"
)

// ForecastTrailingMonths and ForecastLeadingMonths bound the forecast window
// around the current month.
const (
	ForecastTrailingMonths = 3
	ForecastLeadingMonths  = 12
)

// ComputeStats counts the resolved set. It must be given every member, not a page.
func ComputeStats(all []Resolved, today time.Time, lastSyncAt *time.Time) models.ClubStats {
	stats := models.ClubStats{TotalMembers: len(all), LastSyncAt: lastSyncAt}
	left := timeutil.DaysLeftInMonth(today)

	for _, r := range all {
		switch r.Status {
		case models.StatusActive:
			stats.ActiveMembers++
			if r.DaysUntilRenewal != nil && *r.DaysUntilRenewal <= left {
				stats.ExpiringThisMonth++
			}
		case models.StatusOverdue:
			stats.OverdueMembers++
		case models.StatusExpired:
			stats.ExpiredMembers++
		case models.StatusLapsed:
			stats.LapsedMembers++
		case models.StatusProspect:
			stats.ProspectCount++
		}
	}
	stats.AllMembers = AllMembersCount(stats)
	return stats
}

// AllMembersCount is the roster's "All Members" figure: active plus overdue
func AllMembersCount(s models.ClubStats) int {
	return s.ActiveMembers + s.OverdueMembers
}

// Forecast buckets every renewal cycle due in the 16 month window around today.
// A cycle followed by a later membership order is renewed; the member's current
// effective due date is outstanding.
func Forecast(all []Resolved, today time.Time) []models.ForecastMonth {
	current := timeutil.StartOfMonth(today)
	first := timeutil.AddMonths(current, -ForecastTrailingMonths)
	n := ForecastTrailingMonths + 1 + ForecastLeadingMonths

	buckets := make([]models.ForecastMonth, n)
	for i := range buckets {
		m := timeutil.AddMonths(first, i)
		buckets[i] = models.ForecastMonth{
			Month:      m.Format(timeutil.MonthLayout),
			MonthShort: m.Format(timeutil.MonthShort),
			IsPast:     m.Before(current),
			IsCurrent:  m.Equal(current),
		}
	}

	index := func(d time.Time) int {
		m := timeutil.StartOfMonth(d)
		i := (m.Year()-first.Year())*12 + int(m.Month()) - int(first.Month())
		if i < 0 || i >= n {
			return -1
		}
		return i
	}

	for _, r := range all {
		if r.DueDate == nil {
			continue
		}
		for _, due := range renewedDueDates(r.Member) {
			if i := index(due); i >= 0 {
				buckets[i].Renewed++
				buckets[i].Total++
			}
		}
		if i := index(*r.DueDate); i >= 0 {
			buckets[i].Outstanding++
			buckets[i].Total++
		}
	}
	return buckets
}

// renewedDueDates returns the due date of every completed cycle: each anchor
// (join or renewal order) except the last one, plus a year.
func renewedDueDates(m *models.Member) []time.Time {
	if m.JoinDate == nil {
		return nil
	}
	join := dateOnly(*m.JoinDate)
	seen := map[time.Time]bool{join: true}
	anchors := []time.Time{join}
	add := func(d time.Time) {
		d = dateOnly(d)
		if d.Before(join) || seen[d] {
			return
		}
		seen[d] = true
		anchors = append(anchors, d)
	}
	for _, o := range m.Orders {
		if !o.IsOriginalOrder {
			add(timeutil.DateOf(o.OrderDate))
		}
	}
	if m.LastRenewalDate != nil {
		add(*m.LastRenewalDate)
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Before(anchors[j]) })

	dues := make([]time.Time, 0, len(anchors)-1)
	for _, a := range anchors[:len(anchors)-1] {
		dues = append(dues, timeutil.AddYears(a, 1))
	}
	return dues
}
