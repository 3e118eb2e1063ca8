package services

import (
	"context"

	"cottonwood-backend/internal/models"
)

// Activity log page bounds
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 100
)

type ActivityLogService struct {
	Repo ActivityLogStore
}

func NewActivityLogService(repo ActivityLogStore) *ActivityLogService {
	return &ActivityLogService{Repo: repo}
}

// List returns the newest entries first, optionally of one type
func (s *ActivityLogService) List(ctx context.Context, limit int, activityType string) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > MaxActivityLimit {
		limit = DefaultActivityLimit
	}
	if activityType != "" && !models.ValidActivityType(activityType) {
		return nil, invalid("type", "must be one of email_sent, tag_added, tag_removed")
	}
	return s.Repo.List(ctx, limit, activityType)
}
