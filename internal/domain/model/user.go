package model

import "time"

// アカウントの状態。登録→メール確認→2FA登録→利用可能、の一方向に進む
type AccountState string

const (
	// メール確認待ち。この状態ではログインできない
	AccountNeedsVerification AccountState = "NEEDS_VERIFICATION"
	// メール確認済み・2FA未登録
	AccountNeedsSecondFactorSetup AccountState = "NEEDS_2FA_SETUP"
	// 2FA登録済み
	AccountActive AccountState = "ACTIVE"
)

type User struct {
	ID           string       `gorm:"type:uuid;primaryKey"`
	Name         string       `gorm:"not null"`
	Email        string       `gorm:"uniqueIndex;not null"`
	PasswordHash string       `gorm:"column:password_hash;not null"`
	State        AccountState `gorm:"type:varchar(30);not null;default:'NEEDS_VERIFICATION'"`

	// TOTPシークレット（暗号化済みペイロード。平文は保存しない）
	TwoFASecret string `gorm:"column:two_fa_secret;not null;default:''"`

	// 確認トークンはユーザーにつき同時に1つだけ（ハッシュ＋期限）
	VerificationTokenHash   *string `gorm:"index"`
	VerificationTokenExpiry *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// メール確認済みかどうか
func (u *User) IsVerified() bool {
	return u.State != AccountNeedsVerification
}

// 2FAの初回登録が必要かどうか
func (u *User) RequireSecondFactorSetup() bool {
	return u.State == AccountNeedsSecondFactorSetup
}

// 確認トークンを消す（使用済み・再発行時）
func (u *User) ClearVerificationToken() {
	u.VerificationTokenHash = nil
	u.VerificationTokenExpiry = nil
}
