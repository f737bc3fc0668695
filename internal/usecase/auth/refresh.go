package auth

import (
	"context"
	"errors"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/logging"
	"app/internal/repository"
)

// Refresh はリフレッシュトークンを回転させて新しいアクセストークンを発行する。
// 旧トークンはこの呼び出しで死ぬ。もう一度出てきたら盗難とみなす
func (u *AuthUsecase) Refresh(ctx context.Context, rawToken string, meta SessionMeta) (*SessionIssue, error) {
	if rawToken == "" {
		return nil, ErrInvalidSession
	}
	oldHash := crypto.HashToken(rawToken)

	session, err := u.sessions.FindByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// 台帳に無い＝でたらめか、回転済みトークンの再利用。墓標で見分ける
			return nil, u.detectReuse(ctx, oldHash, meta)
		}
		return nil, err
	}

	// ログイン試行のトークンでは更新させない
	if session.IsAttempt() {
		return nil, ErrInvalidSession
	}
	if session.Revoked {
		return nil, ErrSessionRevoked
	}
	if session.Expired(u.clock.Now()) {
		return nil, ErrSessionExpired
	}

	// 回転の前に旧ハッシュの墓標を置く。
	// 先に墓標を置いておけば、回転と同時に再利用されても検知側が勝つ
	if err := u.tombstone(ctx, session.UserID, oldHash, session.ExpiresAt); err != nil {
		return nil, err
	}

	newRaw, err := crypto.NewRawToken(crypto.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}
	newHash := crypto.HashToken(newRaw)
	newExpiry := u.clock.Now().Add(u.refreshTTL)

	err = u.sessions.Rotate(ctx, session.ID, oldHash, newHash, newExpiry)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// 同じ旧トークンで並行に回転された。負けた側は再利用として扱う
			return nil, u.reuseIncident(ctx, session.UserID, meta)
		}
		return nil, err
	}

	now := u.clock.Now()
	accessToken, accessExpiry, err := u.issuer.Sign(session.UserID, session.ID, now)
	if err != nil {
		return nil, err
	}

	return &SessionIssue{
		UserID:           session.UserID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     newRaw,
		RefreshExpiresAt: newExpiry,
	}, nil
}

// 台帳に無いトークンを墓標と照合する。
// 墓標にあれば再利用確定、無ければただの無効トークン
func (u *AuthUsecase) detectReuse(ctx context.Context, tokenHash string, meta SessionMeta) error {
	tomb, err := u.revoked.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrRevokedTokenNotFound) {
			return ErrInvalidSession
		}
		return err
	}
	return u.reuseIncident(ctx, tomb.UserID, meta)
}

// 再利用検知時の対応：そのユーザーの全セッションを失効させる。
// どのセッションが盗まれたか分からないので全部落とす
func (u *AuthUsecase) reuseIncident(ctx context.Context, userID string, meta SessionMeta) error {
	logging.FromContext(ctx).Warn("refresh token reuse detected, revoking all sessions",
		"user_id", userID,
	)

	if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	u.recordAudit(ctx, userID, model.AuditActionReuseDetected, meta)

	return ErrReuseDetected
}
