package repository

import (
	"context"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository is the session revocation list. It is consulted on every
// authenticated request, outside the write path.
type TokenRepository interface {
	// Insert adds a revoked token and reports whether it was newly inserted.
	// A duplicate jti is a harmless no-op, not an error.
	Insert(ctx context.Context, t *model.TokenRevocado) (bool, error)
	Exists(ctx context.Context, jti string) (bool, error)
	// DeleteExpired removes entries whose expiry has passed and returns the
	// count. An entry is never removed before its expiry, however long ago it
	// was revoked, since the token itself remains presentable until then.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepo struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) TokenRepository { return &tokenRepo{db: db} }

func (r *tokenRepo) Insert(ctx context.Context, t *model.TokenRevocado) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *tokenRepo) Exists(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TokenRevocado{}).
		Where("jti = ?", jti).Count(&n).Error
	return n > 0, err
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.TokenRevocado{})
	return res.RowsAffected, res.Error
}
