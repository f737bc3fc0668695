package middleware

import (
	"log/slog"
	"time"

	"app/internal/logging"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// リクエストごとのロガーをctxに入れて、完了時に1行ログを出す。
// トークンやボディは決してログに書かない
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			l := base.With(
				"request_id", uuid.NewString(),
				"method", req.Method,
				"path", req.URL.Path,
			)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			l.Info("request",
				"status", c.Response().Status,
				"remote_ip", c.RealIP(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
