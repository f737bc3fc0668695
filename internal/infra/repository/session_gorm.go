package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewSessionRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// セッションを保存。トークンハッシュのuniqueインデックスが衝突を防ぐ
func (r *sessionGormRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return err
	}
	return nil
}

// 現在のトークンハッシュで1件検索
func (r *sessionGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("refresh_token_hash = ?", tokenHash).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// IDで1件検索
func (r *sessionGormRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// 失効していない通常セッションの一覧
func (r *sessionGormRepository) ListActiveByUserID(ctx context.Context, userID string) ([]model.Session, error) {
	var sessions []model.Session

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND device_name <> ?", userID, false, model.DeviceLoginAttempt).
		Order("created_at DESC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// 回転。旧ハッシュをWHEREに入れた条件付き更新なので、
// 同じトークンで競合した2本のうち片方は必ず0件更新で負ける
func (r *sessionGormRepository) Rotate(ctx context.Context, sessionID string, oldHash string, newHash string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND refresh_token_hash = ? AND revoked = ?", sessionID, oldHash, false).
		Updates(map[string]interface{}{
			"refresh_token_hash": newHash,
			"expires_at":         expiresAt,
		})

	if result.Error != nil {
		return result.Error
	}

	// 0件更新は「すでに回転済み/失効/存在しない」
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// revoked=trueにする。行は残す
func (r *sessionGormRepository) Revoke(ctx context.Context, sessionID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND revoked = ?", sessionID, false).
		Update("revoked", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// 指定ユーザーの全セッションを失効させる（再利用検知時）
func (r *sessionGormRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

// 仮レコードの削除
func (r *sessionGormRepository) DeleteByID(ctx context.Context, sessionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&model.Session{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// 期限切れセッションの掃除
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.Session{})

	return result.RowsAffected, result.Error
}
