package server

import (
	"log/slog"
	"net/http"

	"app/internal/handler"
	appmw "app/internal/middleware"
	"app/internal/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはechoインスタンスを組み立てる。起動はしない（テストはこれをhttptestに載せる）
func New(
	logger *slog.Logger,
	signer *token.Signer,
	authH *handler.AuthHandler,
	vaultH *handler.VaultHandler,
	frontendURL string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(logger))

	// cookieを使うのでオリジンは固定、credentials必須
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, signer, authH, vaultH)

	return e
}

func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
