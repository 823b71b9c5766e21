package repository

import (
	"context"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

type AuditLogDAO interface {
	FindByEvent(ctx context.Context, eventID uint) ([]dao.AuditLog, error)
}

type AuditLogRepository struct {
	dao AuditLogDAO
}

func NewAuditLogRepository(dao AuditLogDAO) *AuditLogRepository {
	return &AuditLogRepository{
		dao: dao,
	}
}

func (r *AuditLogRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.AuditLog, error) {
	logs, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.AuditLog, len(logs))
	for i, l := range logs {
		result[i] = domain.AuditLog{
			ID:             l.ID,
			EventID:        l.EventID,
			RegistrationID: l.RegistrationID,
			PerformedBy:    l.PerformedBy,
			Action:         l.Action,
			Reason:         l.Reason,
			PreviousValue:  l.PreviousValue,
			NewValue:       l.NewValue,
			Timestamp:      l.Timestamp,
		}
	}

	return result, nil
}
