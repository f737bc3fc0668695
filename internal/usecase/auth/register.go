package auth

import (
	"context"
	"errors"
	"fmt"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
)

// Register は新規ユーザーを作り、確認メールを送る。
// ログインできるのはメール確認と2FA登録を終えてから
func (u *AuthUsecase) Register(ctx context.Context, name string, email string, password string) error {
	if err := u.validator.ValidateRegister(ctx, name, email, password); err != nil {
		return err
	}

	// 確認済みが同じemailを持っていたら重複。未確認なら古いレコードを消して作り直す
	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		if existing.IsVerified() {
			return ErrEmailAlreadyExists
		}
		if err := u.users.DeleteUnverifiedByEmail(ctx, email); err != nil {
			return err
		}
	}

	passwordHash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}

	rawToken, err := crypto.NewRawToken(crypto.VerificationTokenBytes)
	if err != nil {
		return err
	}
	tokenHash := crypto.HashToken(rawToken)
	expiry := u.clock.Now().Add(verificationTTL)

	user := &model.User{
		ID:                      u.idGen.NewID(),
		Name:                    name,
		Email:                   email,
		PasswordHash:            passwordHash,
		State:                   model.AccountNeedsVerification,
		VerificationTokenHash:   &tokenHash,
		VerificationTokenExpiry: &expiry,
	}

	if err := u.users.Create(ctx, user); err != nil {
		// Delete→Createの間に確認済みが入った場合など
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrEmailAlreadyExists
		}
		return err
	}

	if err := u.mailer.SendVerification(ctx, email, rawToken); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// ResendVerification は未確認ユーザーの確認トークンを作り直して再送する
func (u *AuthUsecase) ResendVerification(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownAccount
		}
		return err
	}
	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	// 旧トークンは上書きで無効になる（有効な確認トークンは常に1つ）
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

	if err := u.mailer.SendVerification(ctx, email, rawToken); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
