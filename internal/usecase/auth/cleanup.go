package auth

import (
	"context"

	"app/internal/logging"
)

// PurgeExpired は期限切れのセッションと墓標を削除する。
// 定期実行前提。失敗しても次回にやり直せるのでエラーはログに残すだけ
func (u *AuthUsecase) PurgeExpired(ctx context.Context) {
	now := u.clock.Now()
	log := logging.FromContext(ctx)

	sessions, err := u.sessions.DeleteExpired(ctx, now)
	if err != nil {
		log.Warn("expired session cleanup failed", "error", err)
	}

	tombstones, err := u.revoked.DeleteExpired(ctx, now)
	if err != nil {
		log.Warn("expired tombstone cleanup failed", "error", err)
	}

	if sessions > 0 || tombstones > 0 {
		log.Info("expired auth records purged",
			"sessions", sessions,
			"tombstones", tombstones,
		)
	}
}
