package models

import "time"

// SyncResult summarises a sync run
type SyncResult struct {
	Success        bool      `json:"success"`
	Full           bool      `json:"full"`
	NewMembers     int       `json:"newMembers"`
	UpdatedMembers int       `json:"updatedMembers"`
	DemotedMembers int       `json:"demotedMembers"`
	TotalOrders    int       `json:"totalOrders"`
	SyncedAt       time.Time `json:"syncedAt"`
}

// SyncStatus reports when the last successful sync finished
type SyncStatus struct {
	LastSyncAt *time.Time `json:"lastSyncAt"`
	InProgress bool       `json:"inProgress"`
}

// MemberSnapshot is what sync observed upstream for one customer; it never
// carries notes or override fields, so an upsert cannot disturb them
type MemberSnapshot struct {
	ShopifyCustomerID string
	Email             string
	Name              string
	Phone             string
	Tags              []string
	HasQuackTag       bool
	Orders            []MemberOrder
}

// UpsertOutcome tells the caller whether an upsert created a member
type UpsertOutcome struct {
	MemberID string
	Created  bool
}
