package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =====================
// Scenario A: 登録→メール確認→ログイン→2FA
// =====================

func TestRegisterToFirstLogin(t *testing.T) {
	c := NewTestClient(t)
	email := "alice@e2e.test"

	// 弱いパスワードは入口で弾かれる
	resp, body := c.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Alice", "email": email, "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, hasMessage(body, "Password too weak"))

	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Alice", "email": email, "password": "Str0ngPass!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// メール確認前はログインできない
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "Str0ngPass!",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.True(t, hasMessage(body, "not verified"))

	// 確認トークンはメール経由でしか手に入らない
	rawToken := testMailer.lastVerification(email)
	assert.NotEmpty(t, rawToken)

	resp, _ = c.doJSON(t, http.MethodGet, "/api/auth/verify-email?token="+rawToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 確認トークンは単回使用
	resp, _ = c.doJSON(t, http.MethodGet, "/api/auth/verify-email?token="+rawToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// パスワードが合っていてもアクセストークンはまだ出ない
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "Str0ngPass!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginOut struct {
		Require2FASetup bool   `json:"require2FASetup"`
		AccessToken     string `json:"accessToken"`
	}
	decode(t, body, &loginOut)
	assert.True(t, loginOut.Require2FASetup)
	assert.Empty(t, loginOut.AccessToken)

	// 2FA登録
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/generate-2fa", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var gen struct {
		QRCodeURL  string `json:"qrCodeUrl"`
		OtpauthURL string `json:"otpauthUrl"`
	}
	decode(t, body, &gen)
	assert.Contains(t, gen.QRCodeURL, "data:image/png;base64,")
	secret := secretFromURI(t, gen.OtpauthURL)

	// 間違ったOTPではセッションが出ない
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
		"otp": "000000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, hasMessage(body, "Invalid OTP"))

	// 正しいOTPで初めてアクセストークンとrefresh cookieが出る
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
		"otp": currentOTP(t, secret), "deviceName": "Chrome on mac",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, body, &out)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, c.cookieValue(t, c.BaseURL+"/api/auth/refresh", "refresh_token"))
}

func TestLogin_UnknownAndWrongPassword_SameMessage(t *testing.T) {
	c, _ := registerAndLogin(t, "bob@e2e.test", "Str0ngPass!", "Device A")

	// 存在しないemailとパスワード違いは同じ応答（存在が漏れない）
	resp1, body1 := c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "noone@e2e.test", "password": "Str0ngPass!",
	})
	resp2, body2 := c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "bob@e2e.test", "password": "WrongPass1!",
	})
	assert.Equal(t, http.StatusBadRequest, resp1.StatusCode)
	assert.Equal(t, resp1.StatusCode, resp2.StatusCode)
	assert.Equal(t, string(body1), string(body2))
}

// =====================
// Scenario B: 回転と再利用検知
// =====================

func TestRefreshRotation_ReuseRevokesEverything(t *testing.T) {
	c, _ := registerAndLogin(t, "carol@e2e.test", "Str0ngPass!", "Device A")

	refreshURL := c.BaseURL + "/api/auth/refresh"
	oldToken := c.cookieValue(t, refreshURL, "refresh_token")
	assert.NotEmpty(t, oldToken)

	// 正常な回転。cookieが差し替わる
	resp, body := c.doJSON(t, http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, body, &out)
	assert.NotEmpty(t, out.AccessToken)

	newToken := c.cookieValue(t, refreshURL, "refresh_token")
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, oldToken, newToken)

	// 旧トークンの再利用＝盗難扱い
	req, err := http.NewRequest(http.MethodPost, refreshURL, nil)
	assert.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: oldToken})

	plain := &http.Client{}
	replayResp, err := plain.Do(req)
	assert.NoError(t, err)
	defer replayResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, replayResp.StatusCode)

	// 巻き添えで正規のトークンも失効している
	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, hasMessage(body, "revoked"))
}

func TestRefresh_NoCookie(t *testing.T) {
	c := NewTestClient(t)

	resp, body := c.doJSON(t, http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, hasMessage(body, "No refresh token"))
}

// =====================
// Scenario C: セッション一覧と個別失効
// =====================

func TestSessions_ListAndRevoke(t *testing.T) {
	email := "dave@e2e.test"
	c1, secret := registerAndLogin(t, email, "Str0ngPass!", "Laptop")

	// 2台目：2FAは登録済みなのでverifyだけ
	c2 := NewTestClient(t)
	resp, _ := c2.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "Str0ngPass!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := c2.doJSON(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
		"otp": currentOTP(t, secret), "deviceName": "Phone",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, body, &out)
	c2.Bearer = out.AccessToken

	// 一覧はアクセストークン必須
	anon := NewTestClient(t)
	resp, _ = anon.doJSON(t, http.MethodGet, "/api/auth/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = c1.doJSON(t, http.MethodGet, "/api/auth/sessions", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Sessions []struct {
			ID         string `json:"id"`
			DeviceName string `json:"deviceName"`
		} `json:"sessions"`
	}
	decode(t, body, &list)
	assert.Len(t, list.Sessions, 2)

	var phoneSessionID string
	for _, s := range list.Sessions {
		if s.DeviceName == "Phone" {
			phoneSessionID = s.ID
		}
	}
	assert.NotEmpty(t, phoneSessionID)

	// 1台目から2台目を失効させる
	resp, _ = c1.doJSON(t, http.MethodDelete, "/api/auth/sessions/"+phoneSessionID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 失効した端末はもう回転できない
	resp, body = c2.doJSON(t, http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, hasMessage(body, "revoked"))

	// 存在しないIDは404
	resp, _ = c1.doJSON(t, http.MethodDelete, "/api/auth/sessions/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =====================
// Scenario D: パスワード変更（トークン単回使用）
// =====================

func TestPasswordChange_TokenSingleUse(t *testing.T) {
	email := "erin@e2e.test"
	_, secret := registerAndLogin(t, email, "OldPassword1!", "Laptop")

	c := NewTestClient(t)
	resp, _ := c.doJSON(t, http.MethodPost, "/api/auth/request-password-change", map[string]string{
		"email": email,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rawToken := testMailer.lastReset(email)
	assert.NotEmpty(t, rawToken)

	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"token": rawToken, "password": "NewPassword1!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 使用済みトークンはもう通らない
	resp, body := c.doJSON(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"token": rawToken, "password": "AnotherPass1!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, hasMessage(body, "Invalid or expired token"))

	// 旧パスワードは死に、新パスワードで2FAまで進める
	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "OldPassword1!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": "NewPassword1!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
		"otp": currentOTP(t, secret), "deviceName": "Laptop",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 未知のemailへの要求は404
	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/request-password-change", map[string]string{
		"email": "ghost@e2e.test",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =====================
// Logout
// =====================

func TestLogout_Idempotent(t *testing.T) {
	c, _ := registerAndLogin(t, "frank@e2e.test", "Str0ngPass!", "Laptop")

	resp, _ := c.doJSON(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 2回目も成功（冪等）
	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
