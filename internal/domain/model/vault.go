package model

import "time"

// Divisionは保管庫内のグループ（仕事用・個人用など）。
// 同一ユーザー内で名前はユニーク
type Division struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_division_owner_name"`
	Name   string `gorm:"not null;uniqueIndex:idx_division_owner_name"`

	Credentials []Credential `gorm:"foreignKey:DivisionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentialは保管する1件の認証情報。
// パスワードは暗号化済みペイロードで保持する
type Credential struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	DivisionID string `gorm:"type:uuid;not null;index"`

	Site     string `gorm:"not null"`
	Username string `gorm:"not null"`

	PasswordSealed string `gorm:"column:password_sealed;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
