package server

import (
	"app/internal/handler"
	appmw "app/internal/middleware"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, signer *token.Signer, authH *handler.AuthHandler, vaultH *handler.VaultHandler) {
	auth := e.Group("/api/auth")

	// 公開ルート
	auth.POST("/register", authH.Register)
	auth.GET("/verify-email", authH.VerifyEmail)
	auth.POST("/resend-verification", authH.ResendVerification)
	auth.POST("/login", authH.Login)

	// ログイン試行cookieが必要なルート
	auth.POST("/generate-2fa", authH.Generate2FA)
	auth.POST("/verify-2fa", authH.Verify2FA)
	auth.POST("/reauth", authH.Reauth)

	// refresh cookieベース
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	// パスワード変更（メールのトークンベース）
	auth.POST("/request-password-change", authH.RequestPasswordChange)
	auth.POST("/change-password", authH.ChangePassword)

	// アクセストークン必須
	jwtGuard := appmw.AuthJWT(signer)
	auth.GET("/sessions", authH.ListSessions, jwtGuard)
	auth.DELETE("/sessions/:id", authH.RevokeSession, jwtGuard)

	dashboard := e.Group("/api/dashboard", jwtGuard)
	dashboard.GET("", vaultH.GetVault)
	dashboard.POST("/divisions", vaultH.CreateDivision)
	dashboard.DELETE("/divisions/:id", vaultH.DeleteDivision)
	dashboard.POST("/divisions/:id/credentials", vaultH.AddCredential)
	dashboard.PUT("/credentials/:id", vaultH.UpdateCredential)
	dashboard.DELETE("/credentials/:id", vaultH.DeleteCredential)
}
