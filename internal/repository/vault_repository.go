package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrDivisionNotFound   = errors.New("division not found")
	ErrCredentialNotFound = errors.New("credential not found")
	// 同一ユーザー内で同名のdivision
	ErrDivisionNameTaken = errors.New("division name already taken")
)

// 保管庫（division＋credential）の保存・取得
type VaultRepository interface {
	// credentialを含めて所有divisionを全部返す
	ListDivisions(ctx context.Context, userID string) ([]model.Division, error)
	CreateDivision(ctx context.Context, division *model.Division) error
	// 所有者チェック込みで1件取得
	FindDivision(ctx context.Context, userID string, divisionID string) (*model.Division, error)
	DeleteDivision(ctx context.Context, userID string, divisionID string) error

	CreateCredential(ctx context.Context, credential *model.Credential) error
	FindCredential(ctx context.Context, credentialID string) (*model.Credential, error)
	UpdateCredential(ctx context.Context, credential *model.Credential) error
	DeleteCredential(ctx context.Context, credentialID string) error
}
