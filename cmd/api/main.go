package main

import (
	"context"
	"fmt"
	"time"

	"app/internal/config"
	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/mail"
	"app/internal/server"
	"app/internal/token"
	"app/internal/totp"
	auth "app/internal/usecase/auth"
	vault "app/internal/usecase/vault"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	bcryptCost = 12
	accessTTL  = 10 * time.Minute
	totpIssuer = "PersonalVault"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.GoEnv)

	//DB接続
	gormDB, err := db.Connect(cfg)
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

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	sessionRepo := infraRepo.NewSessionRepository(gormDB)
	revokedRepo := infraRepo.NewRevokedTokenRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogRepository(gormDB)
	vaultRepo := infraRepo.NewVaultRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	cipher, err := crypto.NewCipher(cfg.MasterKey)
	if err != nil {
		panic(err)
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）。pepperはハッシュ前に足す
	hasher := auth.NewBcryptPasswordHasher(bcryptCost, cfg.PasswordPepper)
	verifier := auth.NewBcryptPasswordVerifier(cfg.PasswordPepper)

	signer := token.NewSigner(cfg.JWTSecret, accessTTL)
	secondFactor := totp.NewEngine(totpIssuer)

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:       cfg.EmailHost,
		Port:       cfg.EmailPort,
		Username:   cfg.EmailUser,
		Password:   cfg.EmailPass,
		From:       cfg.EmailUser,
		BackendURL: cfg.BackendURL,
	})
	if err != nil {
		panic(err)
	}

	//Usecase生成
	authUC := auth.NewAuthUsecase(
		userRepo, sessionRepo, revokedRepo, auditRepo,
		validator.NewAuthValidator(true),
		hasher, verifier, signer, secondFactor, cipher, mailer,
		idGen, clock,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
		cfg.FrontendURL,
	)
	vaultUC := vault.NewVaultUsecase(vaultRepo, cipher, idGen)

	//Handler生成
	refreshTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour
	authH := handler.NewAuthHandler(authUC, refreshTTL, cfg.CookieSecure, cfg.FrontendURL)
	vaultH := handler.NewVaultHandler(vaultUC)

	//期限切れレコードの掃除を1時間ごとに回す
	go func() {
		ctx := logging.IntoContext(context.Background(), logger)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authUC.PurgeExpired(ctx)
		}
	}()

	//Server起動
	e := server.New(logger, signer, authH, vaultH, cfg.FrontendURL)

	logger.Info("server starting", "port", cfg.Port, "env", cfg.GoEnv)
	if err := server.Start(e, cfg.Port); err != nil {
		panic(fmt.Errorf("server stopped: %w", err))
	}
}
