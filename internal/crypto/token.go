package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// リフレッシュ・ログイン試行トークンの長さ（48バイト→hex96文字）
	RefreshTokenBytes = 48
	// メール確認・パスワード変更トークンの長さ
	VerificationTokenBytes = 32
)

// 生トークンのsha256をhexで返す。DBにはこれだけを保存する
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ランダムな生トークンを作る（OSの安全な乱数をhexで）
func NewRawToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("byteLen must be positive")
	}

	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
