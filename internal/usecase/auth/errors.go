package auth

import "errors"

// 入力不正（400）
var (
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrUndeliverableEmail = errors.New("invalid email domain")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")
	ErrNameTooShort       = errors.New("name is too short")
	ErrMissingFields      = errors.New("all fields required")
)

// 認証まわり。どのチェックで落ちたかは外に見せない
var (
	// emailなし・パスワード違いを同じメッセージに寄せる（存在オラクル防止）
	ErrInvalidCredentials = errors.New("invalid credentials")
	// 未確認アカウント。確認状態は秘密ではないので明示的に返す
	ErrNotVerified = errors.New("account not verified")
)

// 競合
var (
	// 確認済みアカウントが同じemailを持っている
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrAlreadyVerified    = errors.New("user already verified")
	// 再送・パスワード変更要求でemailが見つからない
	ErrUnknownAccount = errors.New("user not found")
)

// ログイン試行（2FA待ちの仮セッション）
var (
	ErrInvalidAttempt = errors.New("invalid or expired login attempt")
	ErrAttemptExpired = errors.New("login attempt expired")
)

// 2FA
var (
	ErrTwoFAAlreadySetup = errors.New("2fa already set up")
	ErrTwoFANotSetup     = errors.New("2fa not set up")
	ErrInvalidOTP        = errors.New("invalid otp")
)

// 確認トークン（メール確認・パスワード変更）
var (
	ErrTokenInvalid = errors.New("invalid or expired token")
	ErrTokenExpired = errors.New("token expired")
)

// リフレッシュ。ErrInvalidSessionは「知らないトークン」と意図的に区別がつかない
var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionRevoked = errors.New("session revoked")
	ErrSessionExpired = errors.New("session expired")
	// 再利用検知。全セッション失効済みなのでクライアントは完全再ログインへ
	ErrReuseDetected = errors.New("token reuse detected, all sessions revoked")
)

// 外部依存（メール）の失敗。握りつぶさず呼び出し元へ
var ErrMailDelivery = errors.New("failed to send verification email")
