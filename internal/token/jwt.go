package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// アクセストークンのクレーム。subにユーザーID、sidにセッションID
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signerは短命アクセストークンの発行と検証（HS256）。
// 永続化も失効もしない。本当の失効はセッション台帳（refresh側）で行う
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// 署名付きトークンを発行
func (s *Signer) Sign(userID string, sessionID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 検証。壊れている・期限切れ・署名方式違いはすべてnilを返す。
// 呼び出し側は「claimsなし＝未認証」とだけ扱えばいい
func (s *Signer) Verify(raw string) *Claims {
	var claims Claims

	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || tok == nil || !tok.Valid {
		return nil
	}

	return &claims
}

// ダッシュボード等が使う唯一の認可プリミティブ
func (s *Signer) ResolveUserID(raw string) (string, bool) {
	claims := s.Verify(raw)
	if claims == nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
