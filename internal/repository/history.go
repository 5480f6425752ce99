package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationStatus is the durable row shadowing each status write. The
// consumer services upsert into the same table when they report outcomes.
type NotificationStatus struct {
	RequestID string `gorm:"primaryKey"`
	Status    string
	Channel   string
	Detail    string
	UpdatedAt time.Time
}

// StatusHistory keeps a durable per-notification status row in Postgres.
// Redis holds the authoritative fast-path record; this table survives cache
// expiry for audit queries.
type StatusHistory struct {
	db        *gorm.DB
	tableName string
}

func NewStatusHistory(db *gorm.DB, tableName string) (*StatusHistory, error) {
	if tableName == "" {
		tableName = "notification_statuses"
	}
	if err := db.Table(tableName).AutoMigrate(&NotificationStatus{}); err != nil {
		return nil, err
	}
	return &StatusHistory{db: db, tableName: tableName}, nil
}

// Record upserts the latest status for a request id.
func (h *StatusHistory) Record(ctx context.Context, requestID, status, channel, detail string) error {
	row := NotificationStatus{
		RequestID: requestID,
		Status:    status,
		Channel:   channel,
		Detail:    detail,
		UpdatedAt: time.Now().UTC(),
	}
	return h.db.WithContext(ctx).Table(h.tableName).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "channel", "detail", "updated_at"}),
		}).Create(&row).Error
}
