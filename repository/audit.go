package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mahapatra12/vitam-cms/domain"
)

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) domain.AuditEventRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) SaveEvent(ctx context.Context, event *domain.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
