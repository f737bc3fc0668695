package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email重複（uniqueインデックス違反）
var ErrEmailTaken = errors.New("email already taken")

// ユーザーの保存・取得を約束
type UserRepository interface {
	// 新規ユーザー作成。email重複はErrEmailTaken
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// メールからユーザーを1件取得する
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 確認トークンのハッシュから1件取得する（メール確認・パスワード変更）
	FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	// ユーザー情報の更新（状態遷移・2FA登録・トークン消費など）
	Update(ctx context.Context, user *model.User) error
	// 未確認のまま残っている同emailのレコードを消す（再登録を許すため）
	DeleteUnverifiedByEmail(ctx context.Context, email string) error
}
