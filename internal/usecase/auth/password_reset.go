package auth

import (
	"context"
	"errors"
	"fmt"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
)

// RequestPasswordChange はパスワード変更リンクをメールで送る。
// トークンはメール確認と同じ置き場（有効な確認トークンはユーザーにつき常に1つ）
func (u *AuthUsecase) RequestPasswordChange(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownAccount
		}
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

	resetLink := fmt.Sprintf("%s/change-password?token=%s", u.frontendURL, rawToken)
	if err := u.mailer.SendPasswordReset(ctx, email, rawToken, resetLink); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// ChangePassword はメールで届いたトークンと引き換えにパスワードを更新する
func (u *AuthUsecase) ChangePassword(ctx context.Context, rawToken string, newPassword string, meta SessionMeta) error {
	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return err
	}

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

	passwordHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.ClearVerificationToken()

	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	u.recordAudit(ctx, user.ID, model.AuditActionPasswordChanged, meta)
	return nil
}
