package membership

import (
	"sort"
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"
)

// NormalizeOrders sorts orders chronologically (order number breaks ties) and
// marks the earliest as the original enrollment order. It returns the join date
// and the latest renewal date, both as club calendar dates.
func NormalizeOrders(orders []models.MemberOrder) ([]models.MemberOrder, *time.Time, *time.Time) {
	if len(orders) == 0 {
		return nil, nil, nil
	}

	sorted := make([]models.MemberOrder, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OrderDate.Equal(sorted[j].OrderDate) {
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		}
		return sorted[i].OrderNumber < sorted[j].OrderNumber
	})

	for i := range sorted {
		sorted[i].IsOriginalOrder = i == 0
	}

	join := timeutil.DateOf(sorted[0].OrderDate)
	var lastRenewal *time.Time
	if len(sorted) > 1 {
		d := timeutil.DateOf(sorted[len(sorted)-1].OrderDate)
		if !d.Before(join) {
			lastRenewal = &d
		}
	}
	return sorted, &join, lastRenewal
}

// MergeOrders unions two order sets keyed by order id (falling back to order number)
func MergeOrders(existing, incoming []models.MemberOrder) []models.MemberOrder {
	seen := make(map[string]int, len(existing)+len(incoming))
	merged := make([]models.MemberOrder, 0, len(existing)+len(incoming))
	for _, set := range [][]models.MemberOrder{existing, incoming} {
		for _, o := range set {
			key := o.ShopifyOrderID
			if key == "" {
				key = "#" + o.OrderNumber
			}
			if i, ok := seen[key]; ok {
				merged[i] = o
				continue
			}
			seen[key] = len(merged)
			merged = append(merged, o)
		}
	}
	return merged
}

// LastOrderNumber returns the order number of the most recent order
func LastOrderNumber(orders []models.MemberOrder) string {
	var last *models.MemberOrder
	for i := range orders {
		if last == nil || !orders[i].OrderDate.Before(last.OrderDate) {
			last = &orders[i]
		}
	}
	if last == nil {
		return ""
	}
	return last.OrderNumber
}
