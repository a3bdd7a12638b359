package repository

import (
	"context"

	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"gorm.io/gorm"
)

// AuditoriaRepository is write-only from the core's perspective; rows are
// inserted by the async audit worker and never touched again.
type AuditoriaRepository interface {
	Create(ctx context.Context, entry *model.Auditoria) error
	ListByTabla(ctx context.Context, tabla string, limit int) ([]model.Auditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, entry *model.Auditoria) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditoriaRepo) ListByTabla(ctx context.Context, tabla string, limit int) ([]model.Auditoria, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.Auditoria
	err := r.db.WithContext(ctx).Where("tabla = ?", tabla).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
