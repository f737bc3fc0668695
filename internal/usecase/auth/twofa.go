package auth

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 2FA初回登録で返すもの。URIは認証アプリ登録用のotpauth://
type SetupResult struct {
	Secret string
	URI    string
}

// 2FA通過後に発行される一式
type SessionIssue struct {
	UserID string

	AccessToken     string
	AccessExpiresAt time.Time

	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Setup2FA はTOTPシークレットを発行してユーザーに保存する。
// 有効なログイン試行（＝パスワード照合済み）が前提。登録が確定するのはVerify2FAで
func (u *AuthUsecase) Setup2FA(ctx context.Context, attemptToken string) (*SetupResult, error) {
	attempt, err := u.lookupAttempt(ctx, attemptToken)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, attempt.UserID)
	if err != nil {
		return nil, err
	}
	if !user.RequireSecondFactorSetup() {
		// 登録済みのシークレットを勝手に差し替えさせない
		return nil, ErrTwoFAAlreadySetup
	}

	secret, uri, err := u.secondFactor.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}

	// シークレットは暗号化して保存。平文はこのレスポンス限り
	sealed, err := u.cipher.Seal(secret)
	if err != nil {
		return nil, err
	}
	user.TwoFASecret = sealed
	// ここで登録済み扱いにする。二度目のSetupはErrTwoFAAlreadySetupで弾かれ、
	// 登録し直しはreauth経由でしかできない
	user.State = model.AccountActive
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &SetupResult{Secret: secret, URI: uri}, nil
}

// Verify2FA はTOTPコードを検証し、ログイン試行を本セッションへ昇格させる
func (u *AuthUsecase) Verify2FA(ctx context.Context, attemptToken string, code string, meta SessionMeta) (*SessionIssue, error) {
	attempt, err := u.lookupAttempt(ctx, attemptToken)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, attempt.UserID)
	if err != nil {
		return nil, err
	}
	if user.TwoFASecret == "" {
		return nil, ErrTwoFANotSetup
	}

	secret, err := u.cipher.Open(user.TwoFASecret)
	if err != nil {
		return nil, err
	}
	if !u.secondFactor.VerifyCode(secret, code) {
		return nil, ErrInvalidOTP
	}

	// 試行は一度しか使えない。昇格の前に消す
	if err := u.sessions.DeleteByID(ctx, attempt.ID); err != nil {
		return nil, err
	}

	rawRefresh, session, err := u.createSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	accessToken, accessExpiry, err := u.issuer.Sign(user.ID, session.ID, now)
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	u.recordAudit(ctx, user.ID, model.AuditActionLogin, meta)

	return &SessionIssue{
		UserID:           user.ID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: session.ExpiresAt,
	}, nil
}
