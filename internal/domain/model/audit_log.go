package model

import "time"

// 認証まわりのセキュリティイベント種別
type AuditAction string

const (
	// 2FAまで通ってセッションが発行された
	AuditActionLogin AuditAction = "LOGIN"
	// リフレッシュトークンの再利用を検知し、全セッションを失効させた
	AuditActionReuseDetected AuditAction = "REUSE_DETECTED"
	// ユーザー操作でセッションを失効させた
	AuditActionSessionRevoked AuditAction = "SESSION_REVOKED"
	// パスワードが変更された
	AuditActionPasswordChanged AuditAction = "PASSWORD_CHANGED"
)

// 監査ログ。「誰に」「何が」起きたかだけを残す。
// トークンやOTPなどの秘密は絶対に書かない
type AuditLog struct {
	ID     int64       `gorm:"primaryKey;autoIncrement"`
	UserID string      `gorm:"type:uuid;not null;index"`
	Action AuditAction `gorm:"type:varchar(50);not null;index"`

	IP        string
	UserAgent string

	CreatedAt time.Time `gorm:"not null;index"`
}
