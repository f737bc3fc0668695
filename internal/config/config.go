package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定。起動時に一度だけ読み、以後は不変
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート

	JWTSecret string // アクセストークン署名シークレット

	// シークレット暗号化鍵。64文字のhex（32バイト）以外なら起動させない
	MasterKey []byte

	// bcrypt前にパスワードへ足すpepper（DB流出単体で辞書攻撃させないため）
	PasswordPepper string

	// SMTP
	EmailHost string
	EmailPort int
	EmailUser string
	EmailPass string

	GoEnv        string // dev/prod
	FrontendURL  string // リセットリンクなどで使う
	BackendURL   string // メール内の確認リンクで使う
	CookieSecure bool

	RefreshTTLDays int // リフレッシュトークンの寿命（日）
}

// Loadは環境変数から読み込む
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		PasswordPepper: os.Getenv("PASSWORD_PEPPER"),

		EmailHost: os.Getenv("EMAIL_HOST"),
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),

		GoEnv:       os.Getenv("GO_ENV"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		BackendURL:  os.Getenv("BACKEND_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FrontendURL == "" {
		return Config{}, fmt.Errorf("FRONTEND_URL is required")
	}
	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("BACKEND_URL is required")
	}

	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	emailPort, err := mustAtoi("EMAIL_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.EmailPort = emailPort

	// 鍵が無い・短い状態で起動して弱い暗号で動くくらいなら、ここで死ぬ
	masterHex := os.Getenv("MASTER_KEY")
	if len(masterHex) != 64 {
		return Config{}, fmt.Errorf("MASTER_KEY must be 64 hex chars (32 bytes)")
	}
	masterKey, err := hex.DecodeString(masterHex)
	if err != nil {
		return Config{}, fmt.Errorf("MASTER_KEY must be valid hex: %w", err)
	}
	cfg.MasterKey = masterKey

	cfg.CookieSecure = envBool("COOKIE_SECURE", cfg.GoEnv == "prod")

	cfg.RefreshTTLDays = 30
	if v := os.Getenv("REFRESH_TOKEN_TTL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be a positive number")
		}
		cfg.RefreshTTLDays = days
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
