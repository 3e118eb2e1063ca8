package models

import "time"

// ActivityLog is a write-once audit entry for staff actions
type ActivityLog struct {
	ID           string    `json:"id"`
	ActivityType string    `json:"activityType"`
	Description  string    `json:"description"`
	MemberName   *string   `json:"memberName,omitempty"`
	MemberEmail  *string   `json:"memberEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Activity types
const (
	ActivityEmailSent  = "email_sent"
	ActivityTagAdded   = "tag_added"
	ActivityTagRemoved = "tag_removed"
)

// ValidActivityType reports whether t is a known activity type
func ValidActivityType(t string) bool {
	switch t {
	case ActivityEmailSent, ActivityTagAdded, ActivityTagRemoved:
		return true
	}
	return false
}
