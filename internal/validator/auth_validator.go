package validator

import (
	"context"
	"net"
	"regexp"
	"strings"

	"app/internal/usecase/auth"
)

// よく使われる弱いパスワード。完全一覧ではなく最低限の足切り
var weakPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
	"admin123":    {},
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	// MXレコードの実在チェック。テストではfalseにして外に出ない
	checkMX bool
}

// Usecaseは interface を依存注入
func NewAuthValidator(checkMX bool) auth.CredentialValidator {
	return &authValidator{checkMX: checkMX}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	// 必須チェック
	if name == "" || email == "" || password == "" {
		return auth.ErrMissingFields
	}

	if len(name) < 2 {
		return auth.ErrNameTooShort
	}

	// email形式
	if !emailRe.MatchString(email) {
		return auth.ErrInvalidEmailFormat
	}

	// ドメインが受信できるか（MX）。確認メールが届かないemailは最初から弾く
	if v.checkMX {
		domain := email[strings.LastIndex(email, "@")+1:]
		records, err := net.DefaultResolver.LookupMX(ctx, domain)
		if err != nil || len(records) == 0 {
			return auth.ErrUndeliverableEmail
		}
	}

	return v.ValidatePassword(password)
}

// パスワード単体の検証（登録・変更の両方で使う）
func (v *authValidator) ValidatePassword(password string) error {
	if password == "" {
		return auth.ErrMissingFields
	}
	if len(password) < 8 {
		return auth.ErrPasswordTooShort
	}
	if _, ok := weakPasswords[strings.ToLower(password)]; ok {
		return auth.ErrWeakPassword
	}
	return nil
}
