package auth

import (
	"context"
	"errors"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
)

// VerifyEmail はメール内の確認トークンを消費して、2FA登録待ちへ進める。
// トークンは一度使ったら消える（再クリックは無効）
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrTokenInvalid
	}

	user, err := u.users.FindByVerificationTokenHash(ctx, crypto.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	if user.VerificationTokenExpiry == nil || user.VerificationTokenExpiry.Before(u.clock.Now()) {
		return ErrTokenExpired
	}

	// 確認のたびに2FAを登録し直させる。端末を失くした後のreauthもここに合流する
	user.State = model.AccountNeedsSecondFactorSetup
	user.TwoFASecret = ""
	user.ClearVerificationToken()

	return u.users.Update(ctx, user)
}
