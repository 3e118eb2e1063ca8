package models

import "time"

type SystemSetting struct {
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	Description  string    `json:"description"`
	UpdatedAt    time.Time `json:"updated_at"`
	UpdatedBy    string    `json:"updated_by"`
}

// Setting keys
const (
	SettingLastSyncAt    = "last_sync_at"
	SettingEmailSettings = "email_settings"
)
