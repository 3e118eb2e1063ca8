package membership

import (
	"sort"
	"strings"

	"cottonwood-backend/internal/models"
)

// Page sizes for roster queries
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Filter narrows the roster. Unset fields match everything; set fields are ANDed.
type Filter struct {
	Status *models.MembershipStatus
	HasTag *bool
	Search string
}

// Page is one slice of the filtered, ordered roster
type Page struct {
	Members    []Resolved
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// Matches reports whether r passes every set filter
func (f Filter) Matches(r Resolved) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.HasTag != nil && r.Member.HasQuackTag != *f.HasTag {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(r.Member.Name), q) &&
			!strings.Contains(strings.ToLower(r.Member.Email), q) {
			return false
		}
	}
	return true
}

// Apply filters and orders the set by name (case-insensitive), then id
func Apply(all []Resolved, f Filter) []Resolved {
	out := make([]Resolved, 0, len(all))
	for _, r := range all {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Member.Name), strings.ToLower(out[j].Member.Name)
		if a != b {
			return a < b
		}
		return out[i].Member.ID < out[j].Member.ID
	})
	return out
}

// Query filters, orders and paginates. Pages are 1-indexed; a page past the end
// is empty but still reports accurate totals.
func Query(all []Resolved, f Filter, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	matched := Apply(all, f)
	total := len(matched)
	result := Page{
		Members:    []Resolved{},
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	result.Members = matched[start:end]
	return result
}
