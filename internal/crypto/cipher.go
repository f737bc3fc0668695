package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// AES-GCMの標準nonce長（12バイト）
	nonceSize = 12
	// GCMの認証タグ長
	tagSize = 16
)

// 改ざん・壊れたペイロードはすべてこれに寄せる
var ErrIntegrity = errors.New("cipher: integrity check failed")

// CipherはAES-256-GCMでシークレットを封緘・開封する。
// ペイロード形式は hex(nonce).hex(tag).hex(ciphertext)
type Cipher struct {
	aead cipher.AEAD
}

// 鍵は32バイト固定。長さ違いは起動時エラーにする（実行時には起きない）
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// 平文を封緘する。nonceは呼び出しごとに必ず新しく引く
// （同じ鍵でのnonce再利用は機密性が完全に壊れるため、キャッシュ等は禁止）
func (c *Cipher) Seal(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// GCMは末尾にタグを付けて返す
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) + "." + hex.EncodeToString(tag) + "." + hex.EncodeToString(ciphertext), nil
}

// ペイロードを開封する。区切り数違い・hex不正・タグ不一致はすべてErrIntegrity
func (c *Cipher) Open(payload string) (string, error) {
	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return "", ErrIntegrity
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", ErrIntegrity
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrIntegrity
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrIntegrity
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrIntegrity
	}

	return string(plaintext), nil
}
