package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type revokedTokenGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewRevokedTokenRepository(db *gorm.DB) repo.RevokedTokenRepository {
	return &revokedTokenGormRepository{db: db}
}

// 墓標を書き込む
func (r *revokedTokenGormRepository) Create(ctx context.Context, token *model.RevokedToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return err
	}
	return nil
}

// トークンハッシュで1件検索
func (r *revokedTokenGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RevokedToken, error) {
	var t model.RevokedToken

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&t).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrRevokedTokenNotFound
		}
		return nil, err
	}

	return &t, nil
}

// 期限切れ墓標の掃除
func (r *revokedTokenGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expire_at < ?", now).
		Delete(&model.RevokedToken{})

	return result.RowsAffected, result.Error
}
