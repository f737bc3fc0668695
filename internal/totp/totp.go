package totp

import (
	"encoding/base64"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// RFC 6238の固定パラメータ（30秒ステップ・6桁・SHA1・±1ステップ許容）
var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// EngineはTOTPシークレットの生成とコード検証。状態は持たない。
// シークレットの暗号化・復号は呼び出し側（usecase）の責任
type Engine struct {
	issuer string
}

func NewEngine(issuer string) *Engine {
	return &Engine{issuer: issuer}
}

// シークレットと認証アプリ登録用のotpauth URIを作る
func (e *Engine) GenerateSecret(accountEmail string) (secret string, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountEmail,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// コードを検証する。時計ズレ吸収のため前後1ステップまで許す
func (e *Engine) VerifyCode(secret string, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), validateOpts)
	return err == nil && ok
}

// otpauth URIをQRコードPNGのdata URLにする（フロントでそのまま<img>に出せる）
func QRDataURL(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
