package models

import (
	"strings"
	"time"
)

// MembershipStatus is the resolved renewal-lifecycle state of a member
type MembershipStatus string

const (
	StatusProspect MembershipStatus = "Prospect"
	StatusActive   MembershipStatus = "Active"
	StatusOverdue  MembershipStatus = "Overdue"
	StatusExpired  MembershipStatus = "Expired"
	StatusLapsed   MembershipStatus = "Lapsed"
)

// ParseMembershipStatus accepts a status name in any letter case
func ParseMembershipStatus(s string) (MembershipStatus, bool) {
	for _, st := range []MembershipStatus{StatusProspect, StatusActive, StatusOverdue, StatusExpired, StatusLapsed} {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Member is the stored membership record. Status, due date and countdown are
// never stored; they are resolved on every read.
type Member struct {
	ID                  string        `json:"id"`
	ShopifyCustomerID   string        `json:"shopifyCustomerId"`
	Email               string        `json:"email"`
	Name                string        `json:"name"`
	Phone               string        `json:"phone,omitempty"`
	JoinDate            *time.Time    `json:"joinDate,omitempty"`
	LastRenewalDate     *time.Time    `json:"lastRenewalDate,omitempty"`
	RenewalOverrideDate *time.Time    `json:"renewalOverrideDate,omitempty"`
	HasOverride         bool          `json:"hasOverride"`
	HasQuackTag         bool          `json:"hasQuackTag"`
	Tags                []string      `json:"tags"`
	Notes               string        `json:"notes"`
	LastOrderNumber     string        `json:"lastOrderNumber,omitempty"`
	Orders              []MemberOrder `json:"orders,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// MemberOrder is a qualifying membership order (enrollment or renewal)
type MemberOrder struct {
	ShopifyOrderID  string    `json:"shopifyOrderId"`
	OrderNumber     string    `json:"orderNumber"`
	OrderDate       time.Time `json:"orderDate"`
	IsOriginalOrder bool      `json:"isOriginalOrder"`
}

// MemberSummary is a roster row: a member with its resolved fields
type MemberSummary struct {
	ID                      string           `json:"id"`
	ShopifyCustomerID       string           `json:"shopifyCustomerId"`
	Email                   string           `json:"email"`
	Name                    string           `json:"name"`
	Phone                   *string          `json:"phone"`
	JoinDate                *string          `json:"joinDate"`
	LastRenewalDate         *string          `json:"lastRenewalDate"`
	RenewalOverrideDate     *string          `json:"renewalOverrideDate"`
	EffectiveRenewalDueDate *string          `json:"effectiveRenewalDueDate"`
	HasOverride             bool             `json:"hasOverride"`
	Status                  MembershipStatus `json:"status"`
	HasQuackTag             bool             `json:"hasQuackTag"`
	LastOrderNumber         *string          `json:"lastOrderNumber"`
	DaysUntilRenewal        *int             `json:"daysUntilRenewal"`
	Notes                   string           `json:"notes"`
}

// MemberResponse is a single member with its full order history. Orders is
// always present, empty when the member has none.
type MemberResponse struct {
	MemberSummary
	Orders []OrderResponse `json:"orders"`
}

// OrderResponse is the wire shape of a membership order
type OrderResponse struct {
	OrderNumber     string `json:"orderNumber"`
	OrderDate       string `json:"orderDate"`
	IsOriginalOrder bool   `json:"isOriginalOrder"`
}

// MemberListResponse is one page of the member roster
type MemberListResponse struct {
	Members    []MemberSummary `json:"members"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// UpdateMemberRequest carries staff edits. Nil fields are left unchanged.
type UpdateMemberRequest struct {
	Notes               *string `json:"notes,omitempty"`
	RenewalOverrideDate *string `json:"renewalOverrideDate,omitempty"`
	ClearOverride       bool    `json:"clearOverride,omitempty"`
}

// MemberUpdate is a validated UpdateMemberRequest applied by the store in one write
type MemberUpdate struct {
	Notes         *string
	OverrideDate  *time.Time
	ClearOverride bool
}

// TagMutationResponse is returned by the tag add/remove endpoints
type TagMutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
