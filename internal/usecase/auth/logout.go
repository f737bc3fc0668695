package auth

import (
	"context"
	"errors"

	"app/internal/crypto"
	"app/internal/repository"
)

// Logout は提示されたリフレッシュトークンのセッションを失効させる。
// 冪等：トークンが無い・すでに無効でもエラーにしない（クライアントは必ずCookieを消せる）
func (u *AuthUsecase) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	tokenHash := crypto.HashToken(rawToken)
	session, err := u.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	// 2FA待ちの仮レコードは消すだけでよい
	if session.IsAttempt() {
		return u.sessions.DeleteByID(ctx, session.ID)
	}

	if err := u.tombstone(ctx, session.UserID, tokenHash, session.ExpiresAt); err != nil {
		return err
	}
	if err := u.sessions.Revoke(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}
	return nil
}
