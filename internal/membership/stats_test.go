package membership

import (
	"testing"

	"cottonwood-backend/internal/models"
)

func TestComputeStats(t *testing.T) {
	today := day("2024-01-20")
	members := []*models.Member{
		{ID: "a", JoinDate: datePtr("2023-01-25"), HasQuackTag: true}, // due in 5 days, this month
		{ID: "b", JoinDate: datePtr("2023-06-01"), HasQuackTag: true}, // active, later
		{ID: "c", JoinDate: datePtr("2023-01-10"), HasQuackTag: true}, // overdue 10 days
		{ID: "d", JoinDate: datePtr("2022-06-01"), HasQuackTag: true}, // expired
		{ID: "e"}, // prospect
		{ID: "f", JoinDate: datePtr("2019-01-01"), LastRenewalDate: datePtr("2020-01-01")}, // lapsed
		{ID: "g", JoinDate: datePtr("2023-01-31"), HasQuackTag: true},                      // due on the last day of the month
		{ID: "h", JoinDate: datePtr("2023-02-01"), HasQuackTag: true},                      // due next month
		{ID: "i", JoinDate: datePtr("2023-06-01")},                                         // tag removed in first year
	}

	stats := ComputeStats(ResolveAll(members, today, DefaultPolicy()), today, nil)

	want := models.ClubStats{
		TotalMembers:      9,
		ActiveMembers:     4,
		OverdueMembers:    1,
		ExpiredMembers:    1,
		LapsedMembers:     1,
		ProspectCount:     2,
		ExpiringThisMonth: 2,
		AllMembers:        5,
	}
	if stats != want {
		t.Errorf("stats = %+v\nwant   %+v", stats, want)
	}
}

func TestForecastWindow(t *testing.T) {
	buckets := Forecast(nil, day("2024-06-10"))

	if len(buckets) != 16 {
		t.Fatalf("len = %d, want 16", len(buckets))
	}
	if buckets[0].Month != "2024-03" || !buckets[0].IsPast {
		t.Errorf("first bucket = %+v", buckets[0])
	}
	if buckets[3].Month != "2024-06" || !buckets[3].IsCurrent || buckets[3].IsPast {
		t.Errorf("current bucket = %+v", buckets[3])
	}
	if buckets[15].Month != "2025-06" || buckets[15].MonthShort != "Jun" {
		t.Errorf("last bucket = %+v", buckets[15])
	}
	for i, b := range buckets {
		if i != 3 && b.IsCurrent {
			t.Errorf("bucket %s marked current", b.Month)
		}
	}
}

func TestForecastRenewedAndOutstanding(t *testing.T) {
	today := day("2024-06-10")
	orders, join, last := NormalizeOrders([]models.MemberOrder{
		{OrderNumber: "1000", OrderDate: orderAt("2023-03-15")},
		{OrderNumber: "1400", OrderDate: orderAt("2024-03-01")},
	})
	renewed := &models.Member{ID: "r", JoinDate: join, LastRenewalDate: last, Orders: orders}
	overdue := &models.Member{ID: "o", JoinDate: datePtr("2023-05-20"), HasQuackTag: true}
	prospect := &models.Member{ID: "p"}

	buckets := Forecast(ResolveAll([]*models.Member{renewed, overdue, prospect}, today, DefaultPolicy()), today)

	byMonth := map[string]models.ForecastMonth{}
	for _, b := range buckets {
		byMonth[b.Month] = b
		if b.Total != b.Renewed+b.Outstanding {
			t.Errorf("%s: total %d != renewed %d + outstanding %d", b.Month, b.Total, b.Renewed, b.Outstanding)
		}
	}

	if b := byMonth["2024-03"]; b.Renewed != 1 || b.Outstanding != 0 {
		t.Errorf("2024-03 = %+v, want 1 renewed", b)
	}
	if b := byMonth["2024-05"]; b.Outstanding != 1 || b.Renewed != 0 {
		t.Errorf("2024-05 = %+v, want 1 outstanding", b)
	}
	if b := byMonth["2025-03"]; b.Outstanding != 1 {
		t.Errorf("2025-03 = %+v, want 1 outstanding", b)
	}

	sum := 0
	for _, b := range buckets {
		sum += b.Total
	}
	if sum != 3 {
		t.Errorf("total cycles = %d, want 3", sum)
	}
}

func TestForecastUsesOverride(t *testing.T) {
	today := day("2024-06-10")
	m := &models.Member{
		JoinDate:            datePtr("2023-06-15"),
		HasOverride:         true,
		RenewalOverrideDate: datePtr("2024-09-01"),
	}
	buckets := Forecast(ResolveAll([]*models.Member{m}, today, DefaultPolicy()), today)
	for _, b := range buckets {
		want := 0
		if b.Month == "2024-09" {
			want = 1
		}
		if b.Outstanding != want {
			t.Errorf("%s outstanding = %d, want %d", b.Month, b.Outstanding, want)
		}
	}
}
