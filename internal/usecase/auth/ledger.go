package auth

import (
	"context"
	"errors"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/logging"
	"app/internal/repository"
)

// セッション台帳まわりの共通処理。
// 生トークンは呼び出し元へ返すだけで、保存するのは常にハッシュ

// ログイン試行（2FA待ちの仮レコード）を1件作り、生トークンを返す
func (u *AuthUsecase) createAttempt(ctx context.Context, userID string, meta SessionMeta) (string, *model.Session, error) {
	raw, err := crypto.NewRawToken(crypto.RefreshTokenBytes)
	if err != nil {
		return "", nil, err
	}

	now := u.clock.Now()
	attempt := &model.Session{
		ID:               u.idGen.NewID(),
		UserID:           userID,
		RefreshTokenHash: crypto.HashToken(raw),
		DeviceName:       model.DeviceLoginAttempt,
		IP:               meta.IP,
		UserAgent:        meta.UserAgent,
		ExpiresAt:        now.Add(attemptTTL),
	}

	if err := u.sessions.Create(ctx, attempt); err != nil {
		return "", nil, err
	}
	return raw, attempt, nil
}

// 本セッションを1件作り、生リフレッシュトークンを返す
func (u *AuthUsecase) createSession(ctx context.Context, userID string, meta SessionMeta) (string, *model.Session, error) {
	raw, err := crypto.NewRawToken(crypto.RefreshTokenBytes)
	if err != nil {
		return "", nil, err
	}

	deviceName := meta.DeviceName
	if deviceName == "" {
		deviceName = "Unknown"
	}

	now := u.clock.Now()
	session := &model.Session{
		ID:               u.idGen.NewID(),
		UserID:           userID,
		RefreshTokenHash: crypto.HashToken(raw),
		DeviceName:       deviceName,
		IP:               meta.IP,
		UserAgent:        meta.UserAgent,
		ExpiresAt:        now.Add(u.refreshTTL),
	}

	if err := u.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}
	return raw, session, nil
}

// 生トークンからログイン試行を引く。
// 本セッションのトークン・失効済み・期限切れはすべて弾く
func (u *AuthUsecase) lookupAttempt(ctx context.Context, rawToken string) (*model.Session, error) {
	if rawToken == "" {
		return nil, ErrInvalidAttempt
	}

	attempt, err := u.sessions.FindByTokenHash(ctx, crypto.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidAttempt
		}
		return nil, err
	}

	if !attempt.IsAttempt() || attempt.Revoked {
		return nil, ErrInvalidAttempt
	}
	if attempt.Expired(u.clock.Now()) {
		return nil, ErrAttemptExpired
	}
	return attempt, nil
}

// 失効させたトークンの墓標を残す。以後このハッシュが来たら再利用と断定できる
func (u *AuthUsecase) tombstone(ctx context.Context, userID string, tokenHash string, expireAt time.Time) error {
	return u.revoked.Create(ctx, &model.RevokedToken{
		ID:        u.idGen.NewID(),
		TokenHash: tokenHash,
		UserID:    userID,
		ExpireAt:  expireAt,
	})
}

// 監査ログ追記。書き込み失敗で認証フローを止めない
func (u *AuthUsecase) recordAudit(ctx context.Context, userID string, action model.AuditAction, meta SessionMeta) {
	err := u.audit.Create(ctx, &model.AuditLog{
		UserID:    userID,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("audit log write failed",
			"action", string(action),
			"error", err,
		)
	}
}
