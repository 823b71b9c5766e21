package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type AuditLog struct {
	ID uint `gorm:"primaryKey"`

	EventID        uint `gorm:"not null;index:idx_audit_logs_event_time,priority:1"`
	RegistrationID uint `gorm:"not null"`
	PerformedBy    uint `gorm:"not null"`

	Action        string `gorm:"not null"`
	Reason        string `gorm:"not null"`
	PreviousValue string
	NewValue      string

	Timestamp time.Time `gorm:"not null;index:idx_audit_logs_event_time,priority:2,sort:desc"`
}

type AuditLogDAO struct {
	db *gorm.DB
}

func NewAuditLogDAO(db *gorm.DB) *AuditLogDAO {
	return &AuditLogDAO{
		db: db,
	}
}

func (d *AuditLogDAO) FindByEvent(ctx context.Context, eventID uint) ([]AuditLog, error) {
	var logs []AuditLog
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("timestamp DESC").
		Find(&logs)
	if result.Error != nil {
		return nil, result.Error
	}

	return logs, nil
}
