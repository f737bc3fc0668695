package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrRevokedTokenNotFound = errors.New("revoked token not found")

// 失効済みトークンの墓標。rotate・logout・revoke時に必ず書く
type RevokedTokenRepository interface {
	Create(ctx context.Context, token *model.RevokedToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RevokedToken, error)
	// 期限切れの掃除
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
