package model

import "time"

// RevokedTokenは失効済みリフレッシュトークンの墓標。
// lookupで見つからないトークンがここにあれば「過去に有効だったものの再利用」と断定できる
type RevokedToken struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TokenHash string `gorm:"not null;index"`
	UserID    string `gorm:"type:uuid;not null;index"`

	// 元セッションの期限をそのまま引き継ぐ。過ぎたら掃除してよい
	ExpireAt  time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
