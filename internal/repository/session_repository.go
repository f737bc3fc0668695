package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// セッション台帳の保存・取得・回転・失効
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// 現在のトークンハッシュで1件検索。「見つからない」は再利用検知の入口になる
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	FindByID(ctx context.Context, sessionID string) (*model.Session, error)
	// 失効していないセッション一覧（仮レコードは含めない）
	ListActiveByUserID(ctx context.Context, userID string) ([]model.Session, error)

	// 回転：ハッシュ差し替え＋期限延長。
	// WHEREに旧ハッシュを含めた条件付き更新で、競合した側は0件更新＝ErrSessionNotFoundになる
	Rotate(ctx context.Context, sessionID string, oldHash string, newHash string, expiresAt time.Time) error

	// revoked=true にする。削除はしない（監査のため）
	Revoke(ctx context.Context, sessionID string) error
	RevokeAllByUserID(ctx context.Context, userID string) error

	// 仮レコード（ログイン試行）の削除
	DeleteByID(ctx context.Context, sessionID string) error
	// 期限切れの掃除。正しさには不要で、容量回収のためだけに呼ぶ
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
