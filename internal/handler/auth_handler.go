package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/middleware"
	"app/internal/totp"
	auth "app/internal/usecase/auth"

	"github.com/labstack/echo/v4"
)

const (
	cookieLoginAttempt = "login_attempt"
	cookieRefreshToken = "refresh_token"

	// 試行cookieは /api/auth 配下すべて、refreshは /refresh にだけ送らせる
	pathAuth    = "/api/auth"
	pathRefresh = "/api/auth/refresh"
)

type AuthHandler struct {
	uc           *auth.AuthUsecase
	refreshTTL   time.Duration // refresh cookie の有効期限
	attemptTTL   time.Duration // login_attempt cookie の有効期限
	cookieSecure bool
	frontendURL  string
}

// DIコンストラクタ
func NewAuthHandler(uc *auth.AuthUsecase, refreshTTL time.Duration, cookieSecure bool, frontendURL string) *AuthHandler {
	return &AuthHandler{
		uc:           uc,
		refreshTTL:   refreshTTL,
		attemptTTL:   5 * time.Minute,
		cookieSecure: cookieSecure,
		frontendURL:  frontendURL,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func msg(s string) messageResponse { return messageResponse{Message: s} }

// リクエストボディ
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verify2FARequest struct {
	OTP        string `json:"otp"`
	DeviceName string `json:"deviceName"`
}

type changePasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) meta(c echo.Context) auth.SessionMeta {
	return auth.SessionMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("All fields required."))
	}

	err := h.uc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			return c.JSON(http.StatusBadRequest, msg("All fields required."))
		case errors.Is(err, auth.ErrNameTooShort):
			return c.JSON(http.StatusBadRequest, msg("Name is too short."))
		case errors.Is(err, auth.ErrInvalidEmailFormat):
			return c.JSON(http.StatusBadRequest, msg("Invalid email format."))
		case errors.Is(err, auth.ErrUndeliverableEmail):
			return c.JSON(http.StatusBadRequest, msg("Invalid email domain."))
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, msg("Password too weak."))
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusBadRequest, msg("Email already registered."))
		case errors.Is(err, auth.ErrMailDelivery):
			return c.JSON(http.StatusInternalServerError, msg("Failed to send verification email."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, msg("User registered. Please verify your email."))
}

// GET /api/auth/verify-email?token=...
// メールから直接開かれるのでJSONではなくHTMLを返す
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	rawToken := c.QueryParam("token")
	if rawToken == "" {
		return c.HTML(http.StatusBadRequest, h.verifyPage("Verification failed", "Token missing.", false))
	}

	err := h.uc.VerifyEmail(c.Request().Context(), rawToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenInvalid):
			return c.HTML(http.StatusBadRequest, h.verifyPage("Verification failed",
				"Invalid or expired token.<br> Please register again, to get a new verification email.", false))
		case errors.Is(err, auth.ErrTokenExpired):
			return c.HTML(http.StatusBadRequest, h.verifyPage("Verification failed", "Token expired.", false))
		default:
			return c.HTML(http.StatusInternalServerError, h.verifyPage("Verification failed", "Server error.", false))
		}
	}

	return c.HTML(http.StatusOK, h.verifyPage("Email verified", "Verification successful. You can now log in.", true))
}

// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, msg("Email required."))
	}

	err := h.uc.ResendVerification(c.Request().Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownAccount):
			return c.JSON(http.StatusNotFound, msg("User not found."))
		case errors.Is(err, auth.ErrAlreadyVerified):
			return c.JSON(http.StatusBadRequest, msg("User already verified."))
		case errors.Is(err, auth.ErrMailDelivery):
			return c.JSON(http.StatusInternalServerError, msg("Failed to send verification email."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, msg("Verification email resent."))
}

// POST /api/auth/login
// パスワードが合っていてもセッションはまだ作らない。2FA待ちの試行cookieを置くだけ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, msg("Email and password required."))
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password, h.meta(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, msg("Invalid credentials."))
		case errors.Is(err, auth.ErrNotVerified):
			return c.JSON(http.StatusForbidden, msg("Account not verified."))
		default:
			return serverError(c, err)
		}
	}

	h.setCookie(c, cookieLoginAttempt, out.AttemptToken, pathAuth, h.attemptTTL)

	return c.JSON(http.StatusOK, map[string]any{
		"require2FASetup": out.RequireSetup,
		"message":         "Enter your 2FA code.",
	})
}

// POST /api/auth/generate-2fa
func (h *AuthHandler) Generate2FA(c echo.Context) error {
	attemptToken := h.readCookie(c, cookieLoginAttempt)
	if attemptToken == "" {
		return c.JSON(http.StatusBadRequest, msg("Missing login attempt."))
	}

	out, err := h.uc.Setup2FA(c.Request().Context(), attemptToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidAttempt), errors.Is(err, auth.ErrAttemptExpired):
			return c.JSON(http.StatusBadRequest, msg("Invalid or expired login attempt."))
		case errors.Is(err, auth.ErrTwoFAAlreadySetup):
			return c.JSON(http.StatusBadRequest, msg("2FA already set up."))
		default:
			return serverError(c, err)
		}
	}

	qrCodeURL, err := totp.QRDataURL(out.URI)
	if err != nil {
		return serverError(c, err)
	}

	// QRを読めない環境向けにotpauth URIも返す（手入力用）
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "qr code generated.",
		"qrCodeUrl":  qrCodeURL,
		"otpauthUrl": out.URI,
	})
}

// POST /api/auth/verify-2fa
// OTPが通ったら試行を本セッションへ昇格させ、refresh cookieとアクセストークンを返す
func (h *AuthHandler) Verify2FA(c echo.Context) error {
	var req verify2FARequest
	if err := c.Bind(&req); err != nil || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, msg("OTP required."))
	}

	attemptToken := h.readCookie(c, cookieLoginAttempt)
	if attemptToken == "" {
		return c.JSON(http.StatusBadRequest, msg("Session timed out log in again"))
	}

	meta := h.meta(c)
	meta.DeviceName = req.DeviceName

	out, err := h.uc.Verify2FA(c.Request().Context(), attemptToken, req.OTP, meta)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidAttempt), errors.Is(err, auth.ErrAttemptExpired):
			return c.JSON(http.StatusBadRequest, msg("Invalid or expired login attempt."))
		case errors.Is(err, auth.ErrTwoFANotSetup):
			return c.JSON(http.StatusBadRequest, msg("2FA not set up."))
		case errors.Is(err, auth.ErrInvalidOTP):
			return c.JSON(http.StatusBadRequest, msg("Invalid OTP."))
		default:
			return serverError(c, err)
		}
	}

	h.setCookie(c, cookieRefreshToken, out.RefreshToken, pathRefresh, h.refreshTTL)

	return c.JSON(http.StatusOK, map[string]any{
		"accessToken": out.AccessToken,
		"message":     "Logged in.",
	})
}

// POST /api/auth/refresh
// cookieのリフレッシュトークンを回転させる
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.readCookie(c, cookieRefreshToken)
	if raw == "" {
		return c.JSON(http.StatusOK, msg("No refresh token."))
	}

	out, err := h.uc.Refresh(c.Request().Context(), raw, h.meta(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrReuseDetected):
			h.clearCookie(c, cookieRefreshToken, pathRefresh)
			return c.JSON(http.StatusUnauthorized, msg("Token reuse detected. All sessions revoked."))
		case errors.Is(err, auth.ErrInvalidSession):
			return c.JSON(http.StatusUnauthorized, msg("Invalid session."))
		case errors.Is(err, auth.ErrSessionRevoked):
			return c.JSON(http.StatusUnauthorized, msg("Session revoked."))
		case errors.Is(err, auth.ErrSessionExpired):
			return c.JSON(http.StatusUnauthorized, msg("Session expired."))
		default:
			return serverError(c, err)
		}
	}

	h.setCookie(c, cookieRefreshToken, out.RefreshToken, pathRefresh, h.refreshTTL)

	return c.JSON(http.StatusOK, map[string]any{"accessToken": out.AccessToken})
}

// POST /api/auth/logout
// 冪等。cookieが無くても成功で返し、必ずcookieを消す
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := h.readCookie(c, cookieRefreshToken)
	if raw != "" {
		if err := h.uc.Logout(c.Request().Context(), raw); err != nil {
			return serverError(c, err)
		}
	}

	h.clearCookie(c, cookieRefreshToken, pathRefresh)
	h.clearCookie(c, cookieLoginAttempt, pathAuth)
	return c.JSON(http.StatusOK, msg("Logged out."))
}

// GET /api/auth/sessions （要アクセストークン）
func (h *AuthHandler) ListSessions(c echo.Context) error {
	userID := middleware.UserID(c)

	views, err := h.uc.ListSessions(c.Request().Context(), userID, h.readCookie(c, cookieRefreshToken))
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"sessions": views})
}

// DELETE /api/auth/sessions/:id （要アクセストークン）
func (h *AuthHandler) RevokeSession(c echo.Context) error {
	userID := middleware.UserID(c)

	err := h.uc.RevokeSession(c.Request().Context(), userID, c.Param("id"), h.meta(c))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			return c.JSON(http.StatusNotFound, msg("Session not found."))
		}
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, msg("Session revoked."))
}

// POST /api/auth/reauth
// 認証アプリを失くしたときの再入口。確認メールをもう一度送る
func (h *AuthHandler) Reauth(c echo.Context) error {
	attemptToken := h.readCookie(c, cookieLoginAttempt)
	if attemptToken == "" {
		return c.JSON(http.StatusBadRequest, msg("Session timed out log in again"))
	}

	err := h.uc.Reauth(c.Request().Context(), attemptToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidAttempt), errors.Is(err, auth.ErrAttemptExpired):
			return c.JSON(http.StatusBadRequest, msg("Invalid or expired login attempt."))
		case errors.Is(err, auth.ErrMailDelivery):
			return c.JSON(http.StatusInternalServerError, msg("Failed to send verification email."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, msg("Reauthenticated."))
}

// POST /api/auth/request-password-change
func (h *AuthHandler) RequestPasswordChange(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, msg("Email required."))
	}

	err := h.uc.RequestPasswordChange(c.Request().Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownAccount):
			return c.JSON(http.StatusNotFound, msg("User not found."))
		case errors.Is(err, auth.ErrMailDelivery):
			return c.JSON(http.StatusInternalServerError, msg("Failed to send verification email."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, msg("Password change email sent."))
}

// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, msg("Missing token."))
	}

	err := h.uc.ChangePassword(c.Request().Context(), req.Token, req.Password, h.meta(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenInvalid):
			return c.JSON(http.StatusBadRequest, msg("Invalid or expired token."))
		case errors.Is(err, auth.ErrTokenExpired):
			return c.JSON(http.StatusBadRequest, msg("This password reset link has expired."))
		case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, msg("Password too weak."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, msg("Password Updated successfully"))
}

// cookieヘルパ。認証cookieは常にHttpOnly・SameSite=Lax
func (h *AuthHandler) setCookie(c echo.Context, name string, value string, path string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context, name string, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// メール確認結果の簡易ページ
func (h *AuthHandler) verifyPage(title string, body string, ok bool) string {
	link := ""
	if ok {
		link = fmt.Sprintf(
			`<a href="%s/login" style="padding:12px 12px;background:#5eead4;color:#000;border-radius:8px;text-decoration:none">Go to Login</a>`,
			h.frontendURL,
		)
	}

	return fmt.Sprintf(`<!doctype html><html><body style="font-family: Inter,system-ui; background:#0a0a0a; color:#fff; min-height:100vh; display:flex;align-items:center;justify-content:center">
<div style="text-align:center">
<h1>%s</h1><p style="padding-bottom:15px">%s</p>
%s
</div></body></html>`, title, body, link)
}
