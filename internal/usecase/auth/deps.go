package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 平文パスワードからハッシュへ
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// アクセストークンを発行する約束
type AccessTokenIssuer interface {
	Sign(userID string, sessionID string, now time.Time) (token string, expiresAt time.Time, err error)
}

// TOTPの生成と検証
type SecondFactor interface {
	GenerateSecret(accountEmail string) (secret string, uri string, err error)
	VerifyCode(secret string, code string) bool
}

// シークレットの封緘・開封（2FAシークレットの保存用）
type SecretCipher interface {
	Seal(plaintext string) (string, error)
	Open(payload string) (string, error)
}

// 入力検証。usecaseはミドルウェア側の検証を信用せず、ここでもう一度かける
type CredentialValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidatePassword(password string) error
}

// bcryptハッシュ化。pepperを足してからハッシュする
type BcryptPasswordHasher struct {
	cost   int
	pepper string
}

// DI
func NewBcryptPasswordHasher(cost int, pepper string) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost, pepper: pepper}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain+h.pepper), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct {
	pepper string
}

// DI
func NewBcryptPasswordVerifier(pepper string) *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{pepper: pepper}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain+v.pepper))
	return err == nil
}
