package model

import "time"

// ログイン試行（パスワードOK・2FA待ち）を表す固定のデバイス名
const DeviceLoginAttempt = "login-attempt"

// Sessionは1デバイス分のリフレッシュトークン系列。
// DeviceName が DeviceLoginAttempt のものは2FA待ちの仮レコード（TTL5分）
type Session struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"type:uuid;not null;index"`

	// 現在有効なリフレッシュトークンのsha256（生トークンは保存しない）
	RefreshTokenHash string `gorm:"not null;uniqueIndex"`

	DeviceName string `gorm:"not null"`
	IP         string
	UserAgent  string

	Revoked   bool      `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 2FA待ちの仮レコードかどうか
func (s *Session) IsAttempt() bool {
	return s.DeviceName == DeviceLoginAttempt
}

// 期限切れかどうか（期限は絶対時刻。rotate時のみ延長される）
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
