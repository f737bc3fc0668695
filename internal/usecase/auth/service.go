package auth

import (
	"time"

	"app/internal/mail"
	"app/internal/repository"
)

const (
	// メール確認・パスワード変更トークンの寿命
	verificationTTL = 15 * time.Minute
	// ログイン試行（2FA待ち）の寿命
	attemptTTL = 5 * time.Minute
)

// AuthUsecaseは認証フロー全体のオーケストレータ。
// ストレージには必ずrepository経由で触る
type AuthUsecase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	revoked  repository.RevokedTokenRepository
	audit    repository.AuditLogRepository

	validator    CredentialValidator
	hasher       PasswordHasher
	verifier     PasswordVerifier
	issuer       AccessTokenIssuer
	secondFactor SecondFactor
	cipher       SecretCipher
	mailer       mail.Mailer

	idGen IDGenerator
	clock Clock

	refreshTTL  time.Duration
	frontendURL string
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	revoked repository.RevokedTokenRepository,
	audit repository.AuditLogRepository,
	validator CredentialValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	secondFactor SecondFactor,
	cipher SecretCipher,
	mailer mail.Mailer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
	frontendURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:        users,
		sessions:     sessions,
		revoked:      revoked,
		audit:        audit,
		validator:    validator,
		hasher:       hasher,
		verifier:     verifier,
		issuer:       issuer,
		secondFactor: secondFactor,
		cipher:       cipher,
		mailer:       mailer,
		idGen:        idGen,
		clock:        clock,
		refreshTTL:   refreshTTL,
		frontendURL:  frontendURL,
	}
}

// セッションに紐付けるリクエスト情報
type SessionMeta struct {
	IP         string
	UserAgent  string
	DeviceName string
}
