package auth

import (
	"context"
	"fmt"

	"app/internal/crypto"
)

// Reauth は認証アプリを失くしたユーザーの再入口。
// パスワード照合済みのログイン試行を条件に、確認メールをもう一度送る。
// メールのリンクを踏むとVerifyEmailが旧シークレットを破棄して2FA再登録へ落とす
func (u *AuthUsecase) Reauth(ctx context.Context, attemptToken string) error {
	attempt, err := u.lookupAttempt(ctx, attemptToken)
	if err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, attempt.UserID)
	if err != nil {
		return err
	}

	rawToken, err := crypto.NewRawToken(crypto.VerificationTokenBytes)
	if err != nil {
		return err
	}
	tokenHash := crypto.HashToken(rawToken)
	expiry := u.clock.Now().Add(verificationTTL)

	user.VerificationTokenHash = &tokenHash
	user.VerificationTokenExpiry = &expiry
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	if err := u.mailer.SendVerification(ctx, user.Email, rawToken); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
