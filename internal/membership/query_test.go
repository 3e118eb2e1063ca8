package membership

import (
	"fmt"
	"testing"

	"cottonwood-backend/internal/models"
)

func statusPtr(s models.MembershipStatus) *models.MembershipStatus { return &s }
func boolPtr(b bool) *bool                                         { return &b }

func overdueRoster(n int) []Resolved {
	today := day("2024-02-15")
	members := make([]*models.Member, 0, n+5)
	for i := 0; i < n; i++ {
		members = append(members, &models.Member{
			ID:          fmt.Sprintf("o%03d", i),
			Name:        fmt.Sprintf("Overdue %02d", i%17),
			Email:       fmt.Sprintf("overdue%d@example.com", i),
			JoinDate:    datePtr("2023-02-01"),
			HasQuackTag: true,
		})
	}
	for i := 0; i < 5; i++ {
		members = append(members, &models.Member{
			ID:          fmt.Sprintf("a%d", i),
			Name:        fmt.Sprintf("Active %d", i),
			Email:       fmt.Sprintf("active%d@example.com", i),
			JoinDate:    datePtr("2023-12-01"),
			HasQuackTag: i%2 == 0,
		})
	}
	return ResolveAll(members, today, DefaultPolicy())
}

func TestQueryPageBeyondEnd(t *testing.T) {
	page := Query(overdueRoster(40), Filter{Status: statusPtr(models.StatusOverdue)}, 3, 25)

	if len(page.Members) != 0 {
		t.Errorf("members = %d, want 0", len(page.Members))
	}
	if page.TotalCount != 40 || page.TotalPages != 2 {
		t.Errorf("totalCount=%d totalPages=%d, want 40 and 2", page.TotalCount, page.TotalPages)
	}
	if page.Members == nil {
		t.Error("empty page must be an empty list, not nil")
	}
}

func TestQueryPaginationTotality(t *testing.T) {
	all := overdueRoster(53)
	filters := []Filter{
		{},
		{Status: statusPtr(models.StatusOverdue)},
		{HasTag: boolPtr(true)},
		{Search: "OVERDUE 1"},
	}
	for _, f := range filters {
		want := Apply(all, f)
		seen := map[string]bool{}
		var got []string
		first := Query(all, f, 1, 7)
		for p := 1; p <= first.TotalPages; p++ {
			for _, r := range Query(all, f, p, 7).Members {
				if seen[r.Member.ID] {
					t.Fatalf("filter %+v: %s appears twice", f, r.Member.ID)
				}
				seen[r.Member.ID] = true
				got = append(got, r.Member.ID)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("filter %+v: paged %d members, want %d", f, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i].Member.ID {
				t.Fatalf("filter %+v: position %d = %s, want %s", f, i, got[i], want[i].Member.ID)
			}
		}
	}
}

func TestQueryFiltersCompose(t *testing.T) {
	all := overdueRoster(10)

	page := Query(all, Filter{Status: statusPtr(models.StatusActive), HasTag: boolPtr(true)}, 1, 25)
	if page.TotalCount != 3 {
		t.Errorf("active+tagged = %d, want 3", page.TotalCount)
	}

	page = Query(all, Filter{Search: "ACTIVE2@example"}, 1, 25)
	if page.TotalCount != 1 || page.Members[0].Member.ID != "a2" {
		t.Errorf("email search = %+v", page)
	}

	page = Query(all, Filter{Status: statusPtr(models.StatusExpired)}, 1, 25)
	if page.TotalCount != 0 || page.TotalPages != 0 {
		t.Errorf("expired = %+v, want empty", page)
	}
}

func TestQueryStableOrder(t *testing.T) {
	all := []Resolved{
		{Member: &models.Member{ID: "2", Name: "bob"}},
		{Member: &models.Member{ID: "1", Name: "Bob"}},
		{Member: &models.Member{ID: "3", Name: "alice"}},
	}
	page := Query(all, Filter{}, 1, 25)
	var ids []string
	for _, r := range page.Members {
		ids = append(ids, r.Member.ID)
	}
	if fmt.Sprint(ids) != "[3 1 2]" {
		t.Errorf("order = %v, want [3 1 2]", ids)
	}
}

func TestQueryNormalizesPaging(t *testing.T) {
	page := Query(overdueRoster(3), Filter{}, 0, 0)
	if page.Page != 1 || page.PageSize != DefaultPageSize {
		t.Errorf("page=%d size=%d", page.Page, page.PageSize)
	}
}
