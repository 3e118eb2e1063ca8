package models

import "time"

// ClubStats are the dashboard counters, computed over the full member set
type ClubStats struct {
	TotalMembers      int        `json:"totalMembers"`
	ActiveMembers     int        `json:"activeMembers"`
	OverdueMembers    int        `json:"overdueMembers"`
	ExpiredMembers    int        `json:"expiredMembers"`
	LapsedMembers     int        `json:"lapsedMembers"`
	ProspectCount     int        `json:"prospectCount"`
	ExpiringThisMonth int        `json:"expiringThisMonth"`
	AllMembers        int        `json:"allMembers"`
	LastSyncAt        *time.Time `json:"lastSyncAt"`
}

// ForecastMonth is one calendar-month bucket of the renewal forecast
type ForecastMonth struct {
	Month       string `json:"month"`
	MonthShort  string `json:"monthShort"`
	Total       int    `json:"total"`
	Renewed     int    `json:"renewed"`
	Outstanding int    `json:"outstanding"`
	IsPast      bool   `json:"isPast"`
	IsCurrent   bool   `json:"isCurrent"`
}
