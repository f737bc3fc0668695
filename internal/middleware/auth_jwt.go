package middleware

import (
	"net/http"
	"strings"

	"app/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // string (uuid)
	CtxSessionIDKey = "session_id" // string (uuid)
)

// bearerAuth用のJWT検証ミドルウェア
func AuthJWT(signer *token.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized."))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized."))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Unauthorized."))
			}

			//署名・期限の検証はSignerに任せる
			claims := signer.Verify(rawToken)
			if claims == nil || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token."))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.Subject)
			c.Set(CtxSessionIDKey, claims.SessionID)

			return next(c)
		}
	}
}

// 認証済みハンドラがユーザーIDを取り出すためのヘルパ
func UserID(c echo.Context) string {
	if v, ok := c.Get(CtxUserIDKey).(string); ok {
		return v
	}
	return ""
}

func errorJSON(msg string) map[string]string {
	return map[string]string{"message": msg}
}
