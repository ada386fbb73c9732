package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pairusuo/blog-backend/internal/domain"
)

// AuditRepository stores admin audit entries
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, action string, page, perPage int) ([]domain.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository migrates the audit table and returns the repository
func NewAuditRepository(db *gorm.DB) (AuditRepository, error) {
	if err := db.AutoMigrate(&domain.AuditLog{}); err != nil {
		return nil, err
	}
	return &auditRepository{db: db}, nil
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest first, optionally filtered by action
func (r *auditRepository) List(ctx context.Context, action string, page, perPage int) ([]domain.AuditLog, int64, error) {
	var logs []domain.AuditLog
	var total int64

	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.AuditLog{})
		if action != "" {
			q = q.Where("action = ?", action)
		}
		return q
	}

	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := scope().Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error

	return logs, total, err
}
