package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/handler"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/server"
	"app/internal/token"
	"app/internal/totp"
	auth "app/internal/usecase/auth"
	vaultuc "app/internal/usecase/vault"
	"app/internal/validator"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	otptotp "github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// =====================
// アプリをプロセス内で丸ごと起動するハーネス。
// DBはsqliteインメモリ、メールはキャプチャ、MXチェックは無効
// =====================

var (
	testServer *httptest.Server
	testMailer *captureMailer
)

type captureMailer struct {
	mu sync.Mutex
	// アドレスごとの最後の生トークン
	verification map[string]string
	reset        map[string]string
}

func (m *captureMailer) SendVerification(ctx context.Context, to string, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification[to] = rawToken
	return nil
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, to string, rawToken string, resetLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = rawToken
	return nil
}

func (m *captureMailer) lastVerification(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verification[to]
}

func (m *captureMailer) lastReset(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset[to]
}

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func TestMain(m *testing.M) {
	gormDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.RevokedToken{},
		&model.AuditLog{},
		&model.Division{},
		&model.Credential{},
	); err != nil {
		panic(err)
	}

	cipher, err := crypto.NewCipher(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		panic(err)
	}

	testMailer = &captureMailer{
		verification: map[string]string{},
		reset:        map[string]string{},
	}

	signer := token.NewSigner("e2e-test-secret", 10*time.Minute)
	frontendURL := "http://localhost:5173"

	authUC := auth.NewAuthUsecase(
		infraRepo.NewUserRepository(gormDB),
		infraRepo.NewSessionRepository(gormDB),
		infraRepo.NewRevokedTokenRepository(gormDB),
		infraRepo.NewAuditLogRepository(gormDB),
		validator.NewAuthValidator(false),
		auth.NewBcryptPasswordHasher(4, "e2e-pepper"),
		auth.NewBcryptPasswordVerifier("e2e-pepper"),
		signer,
		totp.NewEngine("PersonalVault"),
		cipher,
		testMailer,
		uuidGen{},
		systemClock{},
		30*24*time.Hour,
		frontendURL,
	)
	vaultUC := vaultuc.NewVaultUsecase(infraRepo.NewVaultRepository(gormDB), cipher, uuidGen{})

	authH := handler.NewAuthHandler(authUC, 30*24*time.Hour, false, frontendURL)
	vaultH := handler.NewVaultHandler(vaultUC)

	e := server.New(logging.New("test"), signer, authH, vaultH, frontendURL)
	testServer = httptest.NewServer(e)

	code := m.Run()

	testServer.Close()
	os.Exit(code)
}

// =====================
// HTTPクライアント（cookie jar付き）
// =====================

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
	Bearer  string
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: testServer.URL,
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TestClient) doJSON(t *testing.T, method string, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, respBody
}

func decode(t *testing.T, raw []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("json.Unmarshal failed: %v (body: %s)", err, raw)
	}
}

// jarから名前でcookie値を取り出す。pathスコープ違いも拾えるようURLを指定する
func (c *TestClient) cookieValue(t *testing.T, rawURL string, name string) string {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("url.Parse failed: %v", err)
	}
	for _, ck := range c.HTTP.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// otpauth URIからbase32シークレットを抜く
func secretFromURI(t *testing.T, uri string) string {
	t.Helper()

	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("otpauth URI parse failed: %v", err)
	}
	secret := u.Query().Get("secret")
	if secret == "" {
		t.Fatalf("otpauth URI has no secret: %s", uri)
	}
	return secret
}

func currentOTP(t *testing.T, secret string) string {
	t.Helper()

	code, err := otptotp.GenerateCode(secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("totp.GenerateCode failed: %v", err)
	}
	return code
}

// 登録→メール確認→ログイン→2FA登録→OTP検証まで一気に進めて、
// アクセストークンを持つクライアントを返す
func registerAndLogin(t *testing.T, email string, password string, deviceName string) (*TestClient, string) {
	t.Helper()
	c := NewTestClient(t)

	resp, _ := c.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "E2E User", "email": email, "password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got %d", resp.StatusCode)
	}

	rawToken := testMailer.lastVerification(email)
	if rawToken == "" {
		t.Fatalf("no verification mail captured for %s", email)
	}
	resp, _ = c.doJSON(t, http.MethodGet, "/api/auth/verify-email?token="+rawToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-email: got %d", resp.StatusCode)
	}

	resp, _ = c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d", resp.StatusCode)
	}

	resp, body := c.doJSON(t, http.MethodPost, "/api/auth/generate-2fa", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate-2fa: got %d (%s)", resp.StatusCode, body)
	}
	var gen struct {
		OtpauthURL string `json:"otpauthUrl"`
	}
	decode(t, body, &gen)
	secret := secretFromURI(t, gen.OtpauthURL)

	resp, body = c.doJSON(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
		"otp": currentOTP(t, secret), "deviceName": deviceName,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-2fa: got %d (%s)", resp.StatusCode, body)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, body, &out)
	if out.AccessToken == "" {
		t.Fatalf("verify-2fa: empty access token")
	}
	c.Bearer = out.AccessToken

	return c, secret
}

func hasMessage(body []byte, want string) bool {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return false
	}
	return strings.Contains(m.Message, want)
}
