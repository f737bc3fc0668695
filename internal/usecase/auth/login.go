package auth

import (
	"context"
	"errors"
	"time"

	"app/internal/repository"
)

// パスワード照合を通った直後の状態。セッションはまだ無い
type LoginResult struct {
	// 2FA検証まで持ち回る試行トークン（5分で失効）
	AttemptToken     string
	AttemptExpiresAt time.Time

	// trueなら /generate-2fa → /verify-2fa、falseなら /verify-2fa だけ
	RequireSetup bool
}

// Login はパスワードを照合してログイン試行を作る。
// セッションが手に入るのは2FAを通ってから
func (u *AuthUsecase) Login(ctx context.Context, email string, password string, meta SessionMeta) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// アカウント無しとパスワード違いは同じ応答にする
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.verifier.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, ErrNotVerified
	}

	rawToken, attempt, err := u.createAttempt(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AttemptToken:     rawToken,
		AttemptExpiresAt: attempt.ExpiresAt,
		RequireSetup:     user.RequireSecondFactorSetup(),
	}, nil
}
