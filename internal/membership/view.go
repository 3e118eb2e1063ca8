package membership

import (
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/timeutil"
)

// ToSummary renders a resolved member as a roster row
func ToSummary(r Resolved) models.MemberSummary {
	m := r.Member
	resp := models.MemberSummary{
		ID:                      m.ID,
		ShopifyCustomerID:       m.ShopifyCustomerID,
		Email:                   m.Email,
		Name:                    m.Name,
		Phone:                   optString(m.Phone),
		JoinDate:                optDate(m.JoinDate),
		LastRenewalDate:         optDate(m.LastRenewalDate),
		EffectiveRenewalDueDate: optDate(r.DueDate),
		HasOverride:             m.HasOverride,
		Status:                  r.Status,
		HasQuackTag:             m.HasQuackTag,
		LastOrderNumber:         optString(m.LastOrderNumber),
		DaysUntilRenewal:        r.DaysUntilRenewal,
		Notes:                   m.Notes,
	}
	if m.HasOverride {
		resp.RenewalOverrideDate = optDate(m.RenewalOverrideDate)
	}
	return resp
}

// ToResponse renders a resolved member together with its order history
func ToResponse(r Resolved) models.MemberResponse {
	resp := models.MemberResponse{
		MemberSummary: ToSummary(r),
		Orders:        make([]models.OrderResponse, 0, len(r.Member.Orders)),
	}
	for _, o := range r.Member.Orders {
		resp.Orders = append(resp.Orders, models.OrderResponse{
			OrderNumber:     o.OrderNumber,
			OrderDate:       timeutil.FormatDate(timeutil.DateOf(o.OrderDate)),
			IsOriginalOrder: o.IsOriginalOrder,
		})
	}
	return resp
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := timeutil.FormatDate(*d)
	return &s
}
