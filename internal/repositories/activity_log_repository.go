package repositories

import (
	"context"

	"cottonwood-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityLogRepository struct {
	DB *pgxpool.Pool
}

func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{DB: db}
}

// Create appends an entry. Entries are never updated or deleted.
func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	id := uuid.New()
	query := `
		INSERT INTO activity_logs (id, activity_type, description, member_name, member_email, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	if err := r.DB.QueryRow(ctx, query,
		id, log.ActivityType, log.Description, log.MemberName, log.MemberEmail,
	).Scan(&log.CreatedAt); err != nil {
		return err
	}
	log.ID = id.String()
	return nil
}

// List returns up to limit entries, newest first, optionally of one type
func (r *ActivityLogRepository) List(ctx context.Context, limit int, activityType string) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, activity_type, description, member_name, member_email, created_at
		FROM activity_logs
		WHERE ($2 = '' OR activity_type = $2)
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := r.DB.Query(ctx, query, limit, activityType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.ActivityLog{}
	for rows.Next() {
		var id uuid.UUID
		entry := &models.ActivityLog{}
		if err := rows.Scan(&id, &entry.ActivityType, &entry.Description, &entry.MemberName, &entry.MemberEmail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.ID = id.String()
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
