package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/repositories"
)

type SettingService struct {
	Repo SettingStore
}

func NewSettingService(repo SettingStore) *SettingService {
	return &SettingService{Repo: repo}
}

// LastSyncAt returns when the last successful sync started, nil if never
func (s *SettingService) LastSyncAt(ctx context.Context) (*time.Time, error) {
	setting, err := s.Repo.Get(ctx, models.SettingLastSyncAt)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, setting.SettingValue)
	if err != nil {
		return nil, fmt.Errorf("corrupt %s setting: %w", models.SettingLastSyncAt, err)
	}
	return &t, nil
}

// SetLastSyncAt records a successful sync
func (s *SettingService) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return s.Repo.Upsert(ctx, models.SettingLastSyncAt, t.UTC().Format(time.RFC3339Nano),
		"Start time of the last successful commerce sync", "sync")
}

// EmailSettings returns the stored outreach defaults, or the built-in defaults
func (s *SettingService) EmailSettings(ctx context.Context) (models.EmailSettings, error) {
	settings := models.DefaultEmailSettings()
	setting, err := s.Repo.Get(ctx, models.SettingEmailSettings)
	if errors.Is(err, repositories.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal([]byte(setting.SettingValue), &settings); err != nil {
		return models.DefaultEmailSettings(), fmt.Errorf("corrupt %s setting: %w", models.SettingEmailSettings, err)
	}
	return settings, nil
}

// UpdateEmailSettings validates and stores outreach defaults
func (s *SettingService) UpdateEmailSettings(ctx context.Context, settings models.EmailSettings, updatedBy string) (models.EmailSettings, error) {
	settings.DefaultSubject = strings.TrimSpace(settings.DefaultSubject)
	if settings.DefaultSubject == "" {
		return settings, invalid("defaultSubject", "must not be empty")
	}
	if len(settings.DefaultSubject) > 200 {
		return settings, invalid("defaultSubject", "must be at most 200 characters")
	}
	if len(settings.Greeting) > 500 || len(settings.Signature) > 2000 {
		return settings, invalid("", "greeting or signature too long")
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return settings, err
	}
	if err := s.Repo.Upsert(ctx, models.SettingEmailSettings, string(raw), "Staff outreach email defaults", updatedBy); err != nil {
		return settings, err
	}
	return settings, nil
}
